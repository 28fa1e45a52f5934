package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/stagekit/stagekit/perform"
	"github.com/stagekit/stagekit/render"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	metaStyle   = lipgloss.NewStyle().Faint(true)
	sheetStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	darkStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2).
			Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyle = lipgloss.NewStyle().Faint(true)
	beatOn      = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render("●")
	beatOff     = metaStyle.Render("○")
)

func (m Model) View() string {
	v := m.session.View()

	var b strings.Builder
	b.WriteString(m.header(v))
	b.WriteString("\n\n")
	b.WriteString(m.body(v))
	b.WriteString("\n\n")
	b.WriteString(m.statusLine(v))
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m Model) header(v perform.View) string {
	if v.Song == nil {
		return headerStyle.Render("No content")
	}
	title := headerStyle.Render(v.Song.Title)
	meta := fmt.Sprintf("%s  ·  %d/%d", v.Song.Artist, v.Index+1, v.Total)
	if v.Song.Key != "" {
		meta += "  ·  key " + v.Song.Key
	}
	return title + "\n" + metaStyle.Render(meta)
}

func (m Model) body(v perform.View) string {
	if v.Loading {
		return m.spinner.View() + " loading sheet…"
	}

	style := lo.Ternary(v.Controls.DarkSheet, darkStyle, sheetStyle)

	switch v.Decision.Kind {
	case render.KindLyrics:
		return style.Render(v.Decision.Lyrics)
	case render.KindPDF:
		return style.Render(fmt.Sprintf("PDF sheet ready\n%s\nzoom %d%%", v.Decision.URL, v.Controls.Zoom))
	case render.KindImage:
		return style.Render(fmt.Sprintf("Image sheet ready\n%s\nzoom %d%%", v.Decision.URL, v.Controls.Zoom))
	case render.KindUnsupported:
		return warnStyle.Render(fmt.Sprintf("Unsupported content\n%s\n%s", v.Decision.URL, v.Decision.MIMEType))
	case render.KindNoSheet:
		if nil != v.Failure {
			return warnStyle.Render(fmt.Sprintf("No sheet available\n%s %s", v.Failure.URL, v.Failure.MIMEType))
		}
		return metaStyle.Render("No sheet available")
	case render.KindNoLyrics:
		return metaStyle.Render("No lyrics available")
	default:
		return ""
	}
}

func (m Model) statusLine(v perform.View) string {
	beat := lo.Ternary(v.Controls.Playing && m.beat, beatOn, beatOff)
	parts := []string{
		fmt.Sprintf("zoom %d%%", v.Controls.Zoom),
		lo.Ternary(v.Controls.DarkSheet, "dark", "light"),
		fmt.Sprintf("%s %d bpm", beat, v.Controls.BPM),
	}
	if v.Controls.Feedback != "" {
		parts = append(parts, v.Controls.Feedback)
	}
	return statusStyle.Render(strings.Join(parts, "  ·  "))
}

func (m Model) helpLine() string {
	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return statusStyle.Render(strings.Join(parts, "  "))
}
