package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minMarkdownWrap is the narrowest wrap width handed to glamour.
const minMarkdownWrap = 24

// markdownRenderer renders task bodies for the detail overlay. View runs on
// every frame, so the last body is cached per wrap width.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer

	lastInput  string
	lastOutput string
}

// render converts a markdown task body into styled terminal text wrapped at width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrapWidth := max(minMarkdownWrap, width)

	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
		r.lastInput, r.lastOutput = "", ""
	}
	if r.lastInput == markdown && r.lastOutput != "" {
		return r.lastOutput
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	r.lastInput = markdown
	r.lastOutput = strings.TrimRight(rendered, "\n")
	return r.lastOutput
}
