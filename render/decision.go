package render

// Kind enumerates what the presentation layer should draw.
type Kind uint8

// The zero value is KindNoSheet so an undecided view falls back to the
// benign placeholder.
const (
	KindNoSheet Kind = iota
	KindNoLyrics
	KindPDF
	KindImage
	KindLyrics
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	case KindLyrics:
		return "lyrics"
	case KindUnsupported:
		return "unsupported"
	case KindNoSheet:
		return "no-sheet"
	case KindNoLyrics:
		return "no-lyrics"
	default:
		return "unknown"
	}
}

// Decision is produced fresh on every navigation or content-load event and
// never persisted. URL and MIMEType are set for the binary kinds, Lyrics for
// KindLyrics.
type Decision struct {
	Kind     Kind
	URL      string
	MIMEType string
	Lyrics   string
}
