// Package markdown renders intention descriptions for the preparation screen.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle removes the document margins glamour adds by default.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with bloom's layout.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer wrapping at width. style is "dark" or "light";
// anything else follows the terminal background.
func New(width int, style string) (*Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch style {
	case "dark", "light":
		opts = append(opts, glamour.WithStandardStyle(style))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	opts = append(opts, glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)))

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output without the
// trailing blank lines glamour emits.
func (r *Renderer) Render(markdown string) (string, error) {
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n "), nil
}
