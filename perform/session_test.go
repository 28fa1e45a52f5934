package perform_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagekit/stagekit/config"
	"github.com/stagekit/stagekit/fetch"
	"github.com/stagekit/stagekit/perform"
	"github.com/stagekit/stagekit/render"
	"github.com/stagekit/stagekit/song"
)

func testSetlist() *song.Setlist {
	return &song.Setlist{ID: "l", Title: "Friday Night", Songs: []song.Song{
		{ID: "a", Title: "A", BPM: 96, Type: song.ContentTypeLyrics, Content: song.TextContent{Lyrics: "Verse 1..."}},       //nolint:exhaustruct
		{ID: "b", Title: "B", BPM: 120, Type: song.ContentTypeSheetMusic, Content: song.BinaryContent{FileURL: "http://x/b.pdf"}}, //nolint:exhaustruct
		{ID: "c", Title: "C", BPM: 140, Type: song.ContentTypeTab, Content: song.BinaryContent{FileURL: "http://x/c.jpg"}},        //nolint:exhaustruct
	}}
}

type stubFetcher struct {
	mux      sync.Mutex
	payloads map[string]*fetch.Payload
	errs     map[string]error
	delay    map[string]chan struct{}
	calls    map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		mux: sync.Mutex{},
		payloads: map[string]*fetch.Payload{
			"http://x/b.pdf": {Bytes: []byte("pdf"), MIMEType: "application/pdf"},
			"http://x/c.jpg": {Bytes: []byte("jpg"), MIMEType: "image/jpeg"},
		},
		errs:  map[string]error{},
		delay: map[string]chan struct{}{},
		calls: map[string]int{},
	}
}

func (f *stubFetcher) fetch(ctx context.Context, url string) (*fetch.Payload, error) {
	f.mux.Lock()
	f.calls[url]++
	gate := f.delay[url]
	err := f.errs[url]
	payload := f.payloads[url]
	f.mux.Unlock()

	if nil != gate {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if nil != err {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("no payload configured")
	}
	return payload, nil
}

func testOptions(fetcher fetch.Func, onUpdate func()) perform.Options {
	return perform.Options{
		StartIndex: 0,
		Cache: config.Cache{
			MaxBytes:   1024 * 1024,
			TTL:        config.Duration(time.Minute),
			SweepEvery: config.Duration(time.Minute),
		},
		Preload: config.Preload{
			Window:        2,
			Concurrency:   2,
			Retries:       1,
			RetryInterval: config.Duration(10 * time.Millisecond),
		},
		Fetcher:  fetcher,
		OnUpdate: onUpdate,
	}
}

func decisionKind(s *perform.Session) render.Kind {
	return s.View().Decision.Kind
}

func TestSessionEndToEnd(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	s := perform.NewSession(testSetlist(), testOptions(fetcher.fetch, nil), zerolog.Nop())
	defer s.Close()

	// Index 0 is a text song: synchronous lyrics decision, no loading state.
	v := s.View()
	assert.Equal(t, 0, v.Index)
	assert.False(t, v.Loading)
	assert.Equal(t, render.KindLyrics, v.Decision.Kind)
	assert.Equal(t, "Verse 1...", v.Decision.Lyrics)
	assert.False(t, v.CanGoPrevious)
	assert.True(t, v.CanGoNext)
	assert.Equal(t, 96, v.Controls.BPM)

	// Moving to the PDF song updates the index immediately and resolves the
	// decision once the fetch settles.
	s.Next()
	assert.Equal(t, 1, s.View().Index)
	assert.Eventually(t, func() bool { return decisionKind(s) == render.KindPDF }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 120, s.View().Controls.BPM)
	assert.Equal(t, "blob:b", s.View().Decision.URL)

	s.Next()
	v = s.View()
	assert.Equal(t, 2, v.Index)
	assert.False(t, v.CanGoNext)
	assert.Eventually(t, func() bool { return decisionKind(s) == render.KindImage }, 2*time.Second, 10*time.Millisecond)

	// Both binary songs end up fetched exactly once: the preloader and the
	// foreground path share the cache.
	fetcher.mux.Lock()
	assert.Equal(t, 1, fetcher.calls["http://x/b.pdf"])
	assert.Equal(t, 1, fetcher.calls["http://x/c.jpg"])
	fetcher.mux.Unlock()

	// Navigating at the end of the list is a no-op.
	s.Next()
	assert.Equal(t, 2, s.View().Index)
}

func TestSessionLoadingState(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	gate := make(chan struct{})
	fetcher.delay["http://x/b.pdf"] = gate

	updated := make(chan struct{}, 8)
	s := perform.NewSession(testSetlist(), testOptions(fetcher.fetch, func() { updated <- struct{}{} }), zerolog.Nop())
	defer s.Close()

	s.Next()
	v := s.View()
	assert.True(t, v.Loading)
	assert.Equal(t, 1, v.Index)

	close(gate)
	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an update once the fetch settled")
	}
	v = s.View()
	assert.False(t, v.Loading)
	assert.Equal(t, render.KindPDF, v.Decision.Kind)
}

func TestSessionStaleFetchIsIgnored(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	gate := make(chan struct{})
	fetcher.delay["http://x/b.pdf"] = gate

	s := perform.NewSession(testSetlist(), testOptions(fetcher.fetch, nil), zerolog.Nop())
	defer s.Close()

	// Head to the slow PDF song, then immediately back to the lyrics song.
	s.Next()
	s.Previous()
	v := s.View()
	assert.Equal(t, 0, v.Index)
	assert.False(t, v.Loading)
	assert.Equal(t, render.KindLyrics, v.Decision.Kind)

	// The late result must not clobber the current lyrics view.
	close(gate)
	time.Sleep(100 * time.Millisecond)
	v = s.View()
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, render.KindLyrics, v.Decision.Kind)
}

func TestSessionFetchFailure(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.errs["http://x/b.pdf"] = fetch.ErrUnavailable

	s := perform.NewSession(testSetlist(), testOptions(fetcher.fetch, nil), zerolog.Nop())
	defer s.Close()

	s.Next()
	assert.Eventually(t, func() bool {
		v := s.View()
		return !v.Loading && v.Failure != nil
	}, 2*time.Second, 10*time.Millisecond)

	v := s.View()
	assert.Equal(t, render.KindNoSheet, v.Decision.Kind)
	assert.Equal(t, "http://x/b.pdf", v.Failure.URL)

	// Retrying navigation recovers: leaving and returning tries again.
	fetcher.mux.Lock()
	delete(fetcher.errs, "http://x/b.pdf")
	fetcher.mux.Unlock()

	s.Previous()
	s.Next()
	assert.Eventually(t, func() bool { return decisionKind(s) == render.KindPDF }, 2*time.Second, 10*time.Millisecond)
}

func TestSessionUnexpectedFetchErrorFallsBack(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.errs["http://x/b.pdf"] = errors.New("boom")

	s := perform.NewSession(testSetlist(), testOptions(fetcher.fetch, nil), zerolog.Nop())
	defer s.Close()

	// An error shape the fetcher contract does not name still degrades to
	// the no-sheet fallback instead of taking the process down.
	s.Next()
	assert.Eventually(t, func() bool {
		v := s.View()
		return !v.Loading && v.Failure != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, render.KindNoSheet, s.View().Decision.Kind)

	// The session stays usable afterwards.
	s.Previous()
	assert.Equal(t, render.KindLyrics, s.View().Decision.Kind)
}

func TestSessionNavigatesOntoInFlightPreload(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	gate := make(chan struct{})
	fetcher.delay["http://x/b.pdf"] = gate

	s := perform.NewSession(testSetlist(), testOptions(fetcher.fetch, nil), zerolog.Nop())
	defer s.Close()

	// The preloader's fetch for the PDF song is in flight; moving onto the
	// song joins it, and the replan cancelling the old preload plan must not
	// turn into a visible failure.
	s.Next()
	time.Sleep(50 * time.Millisecond)
	close(gate)

	assert.Eventually(t, func() bool { return decisionKind(s) == render.KindPDF }, 2*time.Second, 10*time.Millisecond)
	assert.Nil(t, s.View().Failure)
}

func TestSessionReleasesHandleOfExpiredSong(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	opts := testOptions(fetcher.fetch, nil)
	opts.Cache.TTL = config.Duration(30 * time.Millisecond)

	s := perform.NewSession(testSetlist(), opts, zerolog.Nop())
	defer s.Close()

	s.Next()
	assert.Eventually(t, func() bool { return decisionKind(s) == render.KindPDF }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 1, s.Tracker().Stats().TrackedResourceCount)

	// Let the PDF's cache entry expire while it is still displayed, then
	// navigate away: its handle must not outlive the move.
	time.Sleep(60 * time.Millisecond)
	s.Next()
	assert.Eventually(t, func() bool { return decisionKind(s) == render.KindImage }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, s.Tracker().Stats().TrackedResourceCount)
}

func TestSessionGoTo(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	s := perform.NewSession(testSetlist(), testOptions(fetcher.fetch, nil), zerolog.Nop())
	defer s.Close()

	require.NoError(t, s.GoTo(2))
	assert.Equal(t, 2, s.View().Index)
	assert.Error(t, s.GoTo(5))
	assert.Equal(t, 2, s.View().Index)
}

func TestSessionStartIndexClamps(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	opts := testOptions(fetcher.fetch, nil)
	opts.StartIndex = 42
	s := perform.NewSession(testSetlist(), opts, zerolog.Nop())
	defer s.Close()

	assert.Equal(t, 0, s.View().Index)
}

func TestSessionCloseReleasesEverything(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	s := perform.NewSession(testSetlist(), testOptions(fetcher.fetch, nil), zerolog.Nop())

	s.Next()
	assert.Eventually(t, func() bool { return decisionKind(s) == render.KindPDF }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, s.Tracker().Stats().TrackedResourceCount)

	s.Close()
	assert.Equal(t, 0, s.Tracker().Stats().TrackedResourceCount)

	// Close is idempotent.
	s.Close()
}

func TestSessionZoomAndMetronomePassthrough(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	s := perform.NewSession(testSetlist(), testOptions(fetcher.fetch, nil), zerolog.Nop())
	defer s.Close()

	s.ZoomIn()
	s.ZoomIn()
	assert.Equal(t, 120, s.View().Controls.Zoom)
	s.ResetZoom()
	assert.Equal(t, 100, s.View().Controls.Zoom)

	s.ToggleDarkSheet()
	assert.True(t, s.View().Controls.DarkSheet)

	s.ToggleMetronome()
	assert.True(t, s.View().Controls.Playing)
	s.IncreaseBPM()
	assert.Equal(t, 97, s.View().Controls.BPM)
}
