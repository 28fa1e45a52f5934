package preload

import (
	"github.com/stagekit/stagekit/iterutil"
	"github.com/stagekit/stagekit/song"
)

const DefaultWindow = 2

// Plan lists the fingerprints worth warming around current, in priority
// order: next, previous, next+2, previous-2, expanding outward up to window
// positions each way. The current song is excluded (it is fetched eagerly by
// the session, never by the preloader), as are songs without binary content.
func Plan(list *song.Setlist, current, window int) []song.Fingerprint {
	if list.Len() == 0 || current < 0 || current >= list.Len() {
		return nil
	}
	if window <= 0 {
		window = DefaultWindow
	}

	plan := make([]song.Fingerprint, 0, 2*window)
	for i := range iterutil.Outward(current, window, list.Len()) {
		if fp, ok := list.At(i).Fingerprint(); ok {
			plan = append(plan, fp)
		}
	}
	return plan
}
