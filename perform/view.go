package perform

import (
	"github.com/stagekit/stagekit/controls"
	"github.com/stagekit/stagekit/render"
	"github.com/stagekit/stagekit/song"
)

const maxDiagnosticURLLen = 64

// Failure is the on-screen diagnostic for a foreground fetch that failed:
// enough to troubleshoot on stage, never a stack trace.
type Failure struct {
	URL      string
	MIMEType string
}

func newFailure(url, mimeType string) *Failure {
	return &Failure{URL: truncateURL(url), MIMEType: mimeType}
}

func truncateURL(url string) string {
	if len(url) <= maxDiagnosticURLLen {
		return url
	}
	return url[:maxDiagnosticURLLen] + "…"
}

// View is the full "what to draw" tuple for the presentation layer. Loading
// is distinct from any decision kind; Decision is meaningful only when
// Loading is false.
type View struct {
	Index         int
	Total         int
	Song          *song.Song
	Decision      render.Decision
	Loading       bool
	Failure       *Failure
	CanGoNext     bool
	CanGoPrevious bool
	Controls      controls.State
}

// View recomputes the current render decision. It is cheap and synchronous;
// asynchronous cache resolution triggers OnUpdate so callers know to re-read.
func (s *Session) View() View {
	s.mux.Lock()
	defer s.mux.Unlock()

	v := View{ //nolint:exhaustruct
		Index:         s.nav.Current(),
		Total:         s.nav.Len(),
		CanGoNext:     s.nav.CanGoNext(),
		CanGoPrevious: s.nav.CanGoPrevious(),
		Controls:      s.controls.Snapshot(),
	}

	cur := s.list.At(s.nav.Current())
	if cur == nil {
		v.Decision = render.Decision{Kind: render.KindNoSheet} //nolint:exhaustruct
		return v
	}
	v.Song = cur

	if s.loading {
		v.Loading = true
		return v
	}

	if nil != s.failure {
		v.Failure = s.failure
		v.Decision = render.Decision{Kind: render.KindNoSheet} //nolint:exhaustruct
		return v
	}

	var cached *render.CachedPayload
	if nil != s.currentEntry {
		cached = &render.CachedPayload{
			BlobURL:  blobURL(s.currentFP),
			MIMEType: s.currentEntry.MIMEType,
		}
	}
	v.Decision = render.Classify(cur, cached)
	return v
}
