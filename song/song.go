package song

import (
	"fmt"
	"strings"
)

// ContentType is the closed set of content kinds a song can carry.
type ContentType string

const (
	ContentTypeLyrics     ContentType = "lyrics"
	ContentTypeChords     ContentType = "chords"
	ContentTypeTab        ContentType = "tab"
	ContentTypeSheetMusic ContentType = "sheet-music"
)

func ParseContentType(s string) (ContentType, error) {
	switch t := ContentType(strings.ToLower(strings.TrimSpace(s))); t {
	case ContentTypeLyrics, ContentTypeChords, ContentTypeTab, ContentTypeSheetMusic:
		return t, nil
	default:
		return "", fmt.Errorf("unknown content type %q", s)
	}
}

// BinaryFirst reports whether the type is presented from a binary asset
// (sheet or tab image/PDF) rather than inline text.
func (t ContentType) BinaryFirst() bool {
	switch t {
	case ContentTypeSheetMusic, ContentTypeTab:
		return true
	default:
		return false
	}
}

// Content is the validated payload union. Exactly one shape is attached to a
// song; binary wins over text when the data source carries both.
type Content interface {
	isContent()
}

type TextContent struct {
	Lyrics string
}

type BinaryContent struct {
	FileURL string
}

type EmptyContent struct{}

func (TextContent) isContent()   {}
func (BinaryContent) isContent() {}
func (EmptyContent) isContent()  {}

type Song struct {
	ID      string
	Title   string
	Artist  string
	Key     string
	BPM     int
	Type    ContentType
	Content Content
}

// Fingerprint returns the cacheable identity of the song's binary asset,
// and false for songs without one.
func (s *Song) Fingerprint() (Fingerprint, bool) {
	if b, ok := s.Content.(BinaryContent); ok && b.FileURL != "" {
		return NewFingerprint(b.FileURL, s.ID), true
	}
	return "", false
}

// Fingerprint identifies a cacheable unit of binary content.
type Fingerprint string

func NewFingerprint(fileURL, songID string) Fingerprint {
	return Fingerprint(fileURL + "|" + songID)
}

func (f Fingerprint) String() string {
	return string(f)
}

// SongID returns the song identity component of the fingerprint.
func (f Fingerprint) SongID() string {
	if i := strings.LastIndexByte(string(f), '|'); i >= 0 {
		return string(f)[i+1:]
	}
	return string(f)
}

// URL returns the asset location component of the fingerprint.
func (f Fingerprint) URL() string {
	if i := strings.LastIndexByte(string(f), '|'); i >= 0 {
		return string(f)[:i]
	}
	return string(f)
}
