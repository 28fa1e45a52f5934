package config

import "time"

var (
	SetlistLoadTimeout = 5 * time.Second
	SongLoadTimeout    = 3 * time.Second
)
