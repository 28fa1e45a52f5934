package source

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/stagekit/stagekit/song"
)

// parseSong validates one raw song record into the closed content model.
// The stored shape is loose: file_url may sit at the top level or inside
// content_data.file, and content_data.lyrics may carry inline text. Binary
// wins when both are present, mirroring sheet-before-text precedence.
func parseSong(j gjson.Result) (*song.Song, error) {
	id := j.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("song record has no id: %s", j.Raw)
	}

	contentType, err := song.ParseContentType(j.Get("content_type").String())
	if nil != err {
		return nil, fmt.Errorf("song %q: %v", id, err)
	}

	return &song.Song{
		ID:      id,
		Title:   j.Get("title").String(),
		Artist:  j.Get("artist").String(),
		Key:     j.Get("key").String(),
		BPM:     int(j.Get("bpm").Int()),
		Type:    contentType,
		Content: resolveContent(j),
	}, nil
}

func resolveContent(j gjson.Result) song.Content {
	if fileURL := j.Get("file_url").String(); fileURL != "" {
		return song.BinaryContent{FileURL: fileURL}
	}
	if fileURL := j.Get("content_data.file").String(); fileURL != "" {
		return song.BinaryContent{FileURL: fileURL}
	}
	if lyrics := j.Get("content_data.lyrics").String(); strings.TrimSpace(lyrics) != "" {
		return song.TextContent{Lyrics: lyrics}
	}
	return song.EmptyContent{}
}

func parseSetlist(j gjson.Result) (*song.Setlist, error) {
	id := j.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("setlist record has no id: %s", j.Raw)
	}

	rawSongs := j.Get("songs").Array()
	songs := make([]song.Song, 0, len(rawSongs))
	for _, raw := range rawSongs {
		s, err := parseSong(raw)
		if nil != err {
			return nil, err
		}
		songs = append(songs, *s)
	}

	return &song.Setlist{
		ID:    id,
		Title: j.Get("title").String(),
		Songs: songs,
	}, nil
}
