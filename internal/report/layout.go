package report

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// glyphs further apart than this fraction of the font size start a new run
const runGapRatio = 0.2

type textLine struct {
	y    float64
	runs []string
}

// layoutLines groups positioned glyphs into lines keyed by their rounded
// baseline, top to bottom. Glyphs keep their drawing order within a line;
// a horizontal jump starts a new run and runs are joined by one space.
func layoutLines(glyphs []pdf.Text) []string {
	var (
		lines   []*textLine
		byY     = make(map[float64]*textLine)
		current *textLine
		prev    pdf.Text
		run     strings.Builder
	)

	flush := func() {
		if current != nil {
			if s := strings.TrimSpace(run.String()); s != "" {
				current.runs = append(current.runs, s)
			}
		}
		run.Reset()
	}

	for _, g := range glyphs {
		if isNoise(g.S) {
			continue
		}

		y := math.Round(g.Y)
		line, ok := byY[y]
		if !ok {
			line = &textLine{y: y}
			byY[y] = line
			lines = append(lines, line)
		}

		if line != current || jumped(prev, g) {
			flush()
			current = line
		}
		run.WriteString(g.S)
		prev = g
	}
	flush()

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := strings.Join(line.runs, " "); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func jumped(prev, next pdf.Text) bool {
	threshold := math.Max(math.Abs(prev.FontSize)*runGapRatio, 1)
	return math.Abs(next.X-(prev.X+prev.W)) > threshold
}

// isNoise reports glyphs that carry no text: the line break appended after
// every TJ array, control codes, and codes missing from the font's map.
func isNoise(s string) bool {
	for _, r := range s {
		if r != unicode.ReplacementChar && !unicode.IsControl(r) {
			return false
		}
	}
	return true
}
