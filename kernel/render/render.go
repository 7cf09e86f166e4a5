package render

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/suntrap/buildboard/kernel/model"
	"golang.org/x/term"
)

const barWidth = 20

// ColorEnabled reports whether f is a terminal and NO_COLOR is unset.
func ColorEnabled(f *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or 120 when f is not a terminal.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return 120
}

// Renderer turns model values into text tables.
type Renderer struct {
	Color bool
}

func New(color bool) *Renderer {
	return &Renderer{Color: color}
}

// ProgressColor is red for a failed build, green at 100% and blue otherwise.
func ProgressColor(s model.Server) text.Color {
	switch s.Progress() {
	case model.ProgressFailed:
		return text.FgRed
	case model.ProgressComplete:
		return text.FgGreen
	}
	return text.FgBlue
}

// Bar draws a fixed-width progress bar for s.
func (r *Renderer) Bar(s model.Server) string {
	filled := s.Percent() * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return r.paint(ProgressColor(s), bar)
}

func (r *Renderer) paint(c text.Color, s string) string {
	if !r.Color {
		return s
	}
	return c.Sprint(s)
}

// FormatConfig renders a config map as compact JSON in key order.
func FormatConfig(c model.ConfigMap) string {
	if len(c) == 0 {
		return "{}"
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}
