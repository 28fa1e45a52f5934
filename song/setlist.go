package song

// Setlist is an ordered sequence of songs in performance order. A single
// song viewed outside a named setlist is a setlist of length one.
type Setlist struct {
	ID    string
	Title string
	Songs []Song
}

func (s *Setlist) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Songs)
}

// At returns the song at position i, or nil when out of range.
func (s *Setlist) At(i int) *Song {
	if s == nil || i < 0 || i >= len(s.Songs) {
		return nil
	}
	return &s.Songs[i]
}

// Single wraps one song into a degenerate setlist.
func Single(s Song) *Setlist {
	return &Setlist{ID: s.ID, Title: s.Title, Songs: []Song{s}}
}
