package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/anivanovic/codestats/pkg/statserr"
)

const (
	DefaultWidth     = 10
	DefaultThreshold = 5
)

// Entry is one category of the stats provider response.
type Entry struct {
	Label   string
	Percent float64
	Text    string
}

// Row is the bar chart form of an Entry.
type Row struct {
	Label   string
	Filled  int
	Empty   int
	Percent int
	Text    string
}

// Style holds the glyphs used for the two parts of a bar.
type Style struct {
	Filled string
	Empty  string
}

var DefaultStyle = Style{Filled: "█", Empty: "░"}

type Renderer struct {
	Width     int
	Threshold int
	Style     Style
}

func NewRenderer(width, threshold int, style Style) *Renderer {
	return &Renderer{Width: width, Threshold: threshold, Style: style}
}

// Render formats entries with the default style.
func Render(entries []Entry, width, threshold int) (string, error) {
	return NewRenderer(width, threshold, DefaultStyle).Render(entries)
}

// RoundPercent rounds half away from zero, so 4.5 becomes 5. NaN rounds to
// 0 and values outside the int range saturate.
func RoundPercent(p float64) int {
	switch {
	case math.IsNaN(p):
		return 0
	case p >= math.MaxInt:
		return math.MaxInt
	case p <= math.MinInt:
		return math.MinInt
	}
	return int(math.Round(p))
}

// NewRow derives the bar for e. The bar is computed from the percent
// clamped to [0, 100] so out of range percentages never overflow it.
func NewRow(e Entry, width int) Row {
	percent := RoundPercent(e.Percent)
	filled := width * min(max(percent, 0), 100) / 100
	return Row{
		Label:   e.Label,
		Filled:  filled,
		Empty:   width - filled,
		Percent: percent,
		Text:    e.Text,
	}
}

// Rows validates entries and returns the rows at or above the threshold,
// in input order.
func (r *Renderer) Rows(entries []Entry) ([]Row, error) {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		if err := validate(e); err != nil {
			return nil, err
		}
		if RoundPercent(e.Percent) < r.Threshold {
			continue
		}
		rows = append(rows, NewRow(e, r.Width))
	}
	return rows, nil
}

// Render returns one label line and one bar line per row. Rows are
// separated by a single newline, the result has no trailing newline.
func (r *Renderer) Render(entries []Entry) (string, error) {
	rows, err := r.Rows(entries)
	if err != nil {
		return "", err
	}
	return r.Format(rows), nil
}

func (r *Renderer) Format(rows []Row) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, r.formatRow(row))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) formatRow(row Row) string {
	var b strings.Builder
	b.WriteString(row.Label)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(r.Style.Filled, row.Filled))
	b.WriteString(strings.Repeat(r.Style.Empty, row.Empty))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(row.Percent))
	b.WriteString(" %")
	if row.Text != "" {
		b.WriteByte(' ')
		b.WriteString(row.Text)
	}
	return b.String()
}

func validate(e Entry) error {
	if math.IsNaN(e.Percent) || math.IsInf(e.Percent, 0) {
		return &statserr.EntryError{Label: e.Label, Percent: e.Percent}
	}
	if p := RoundPercent(e.Percent); p < 0 || p > 100 {
		return &statserr.EntryError{Label: e.Label, Percent: e.Percent}
	}
	return nil
}
