package render_test

import (
	"testing"

	"github.com/stagekit/stagekit/render"
)

func TestURLHasExtension(t *testing.T) {
	t.Parallel()

	t.Run("matching", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			url string
			ext string
		}{
			{"https://x.com/file.pdf", ".pdf"},
			{"https://x.com/file.pdf?token=123", ".pdf"},
			{"https://x.com/file.PDF?token=123", ".pdf"},
			{"https://x.com/file.pdf#page=2", ".pdf"},
			{"https://x.com/file.pdf?token=123#page=2", ".pdf"},
			{"https://x.com/a/b/chart.jpeg", ".jpeg"},
			{"file.png?v=1", ".png"},
		}
		for _, test := range tests {
			if !render.URLHasExtension(test.url, test.ext) {
				t.Errorf("expected %q to have extension %q", test.url, test.ext)
			}
		}
	})

	t.Run("non_matching", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			url string
			ext string
		}{
			{"https://x.com/file.jpeg", ".jpg"},
			{"https://x.com/file.pdf.bak", ".pdf"},
			{"https://x.com/file?name=a.pdf", ".pdf"},
			{"https://x.com/file", ".pdf"},
		}
		for _, test := range tests {
			if render.URLHasExtension(test.url, test.ext) {
				t.Errorf("expected %q to not have extension %q", test.url, test.ext)
			}
		}
	})
}
