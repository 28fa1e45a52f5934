package source

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/stagekit/stagekit/song"
)

// Memory is an in-process source for tests and offline performances.
type Memory struct {
	setlists map[string]*song.Setlist
	songs    map[string]*song.Song
}

func NewMemory() *Memory {
	return &Memory{
		setlists: make(map[string]*song.Setlist),
		songs:    make(map[string]*song.Song),
	}
}

func (m *Memory) AddSetlist(list *song.Setlist) {
	m.setlists[list.ID] = list
	for i := range list.Songs {
		m.songs[list.Songs[i].ID] = &list.Songs[i]
	}
}

func (m *Memory) AddSong(s *song.Song) {
	m.songs[s.ID] = s
}

func (m *Memory) LoadSetlist(_ context.Context, id string) (*song.Setlist, error) {
	if list, ok := m.setlists[id]; ok {
		return list, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) LoadSong(_ context.Context, id string) (*song.Song, error) {
	if s, ok := m.songs[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// SetlistFromFile loads a setlist file: the same JSON shape the data
// service returns for a single setlist.
func SetlistFromFile(filePath string) (*song.Setlist, error) {
	data, err := os.ReadFile(filePath)
	if nil != err {
		return nil, fmt.Errorf("failed to read setlist file %q: %v", filePath, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("setlist file %q is not valid JSON", filePath)
	}

	list, err := parseSetlist(gjson.ParseBytes(data))
	if nil != err {
		return nil, fmt.Errorf("failed to parse setlist file %q: %v", filePath, err)
	}
	return list, nil
}

// FromFile loads a setlist file into a memory source.
func FromFile(filePath string) (*Memory, error) {
	list, err := SetlistFromFile(filePath)
	if nil != err {
		return nil, err
	}
	m := NewMemory()
	m.AddSetlist(list)
	return m, nil
}

// StaticIdentity always resolves the same user. Offline performances run
// under it.
type StaticIdentity struct {
	User User
}

func (s StaticIdentity) CurrentUser(context.Context) (*User, error) {
	return &s.User, nil
}
