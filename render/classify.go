package render

import (
	"strings"

	"github.com/stagekit/stagekit/song"
)

// CachedPayload is the already-fetched view of a song's binary asset: the
// revocable handle to render from and the MIME type reported by the fetch.
type CachedPayload struct {
	BlobURL  string
	MIMEType string
}

var imageMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// Classify decides what to draw for a song. It is pure: no I/O, no side
// effects, and it never fails. Unrecognized shapes fall through to
// KindUnsupported or the matching no-content kind.
//
// Binary content wins over text when both could apply, mirroring the rule
// that a sheet is shown before lyrics. When cached is non-nil its blob
// handle and MIME type take precedence over the song's stored URL.
func Classify(s *song.Song, cached *CachedPayload) Decision {
	switch c := s.Content.(type) {
	case song.BinaryContent:
		return classifyBinary(c.FileURL, cached)
	case song.TextContent:
		if strings.TrimSpace(c.Lyrics) != "" {
			return Decision{Kind: KindLyrics, Lyrics: c.Lyrics}
		}
		return noContent(s.Type)
	default:
		return noContent(s.Type)
	}
}

func classifyBinary(fileURL string, cached *CachedPayload) Decision {
	if fileURL == "" && cached == nil {
		return Decision{Kind: KindNoSheet}
	}

	renderURL := fileURL
	mimeType := ""
	if nil != cached {
		if cached.BlobURL != "" {
			renderURL = cached.BlobURL
		}
		mimeType = normalizeMIME(cached.MIMEType)
	}

	switch {
	case mimeType == "application/pdf":
		return Decision{Kind: KindPDF, URL: renderURL, MIMEType: mimeType}
	case isImageMIME(mimeType):
		return Decision{Kind: KindImage, URL: renderURL, MIMEType: mimeType}
	case mimeType != "":
		return Decision{Kind: KindUnsupported, URL: renderURL, MIMEType: mimeType}
	case URLHasExtension(fileURL, ".pdf"):
		return Decision{Kind: KindPDF, URL: renderURL}
	case hasImageExtension(fileURL):
		return Decision{Kind: KindImage, URL: renderURL}
	default:
		return Decision{Kind: KindUnsupported, URL: renderURL}
	}
}

func noContent(t song.ContentType) Decision {
	if t.BinaryFirst() {
		return Decision{Kind: KindNoSheet}
	}
	return Decision{Kind: KindNoLyrics}
}

func isImageMIME(mimeType string) bool {
	_, ok := imageMIMETypes[mimeType]
	return ok
}

func hasImageExtension(fileURL string) bool {
	for _, ext := range imageExtensions {
		if URLHasExtension(fileURL, ext) {
			return true
		}
	}
	return false
}

// normalizeMIME strips any media type parameters ("; charset=...") and
// lowercases the bare type.
func normalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
