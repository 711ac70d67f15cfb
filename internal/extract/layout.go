package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/pdfwatch/pdfwatch/internal/namegen"
)

// layoutLine is one aggregated text line from the first page.
// offset grows downward, so the topmost line has the smallest offset.
type layoutLine struct {
	offset float64
	size   float64
	text   string
}

const (
	// lineYTolerance groups spans whose baselines are this close.
	lineYTolerance = 2.0
	// headingFloor is the minimum font size for a heading candidate.
	headingFloor = 12.0
	// headingRatio scales the median line size into a heading threshold.
	headingRatio = 1.25
)

var (
	anySpace   = regexp.MustCompile(`[\s\x{3000}]+`)
	digitsOnly = regexp.MustCompile(`^[0-9\-–—/\.]+$`)
	hyphenTail = regexp.MustCompile(`[-‐‑–—]+\s*$`)
	asciiLine  = regexp.MustCompile(`^[A-Za-z0-9 \-]+$`)
	lowerPair  = regexp.MustCompile(`([a-z])\s+([a-z])`)
)

// LayoutTitle extracts a title candidate from the first page: the
// topmost line whose font size clears max(12, 1.25×median), falling back
// to the topmost of the ten largest lines. Returns "" when nothing
// qualifies.
func (e *Extractor) LayoutTitle(path string) (title string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("layout title extraction panicked", "path", path, "cause", r)
			title = ""
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	if r.NumPage() == 0 {
		return ""
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return ""
	}

	lines := aggregateLines(page.Content().Text)
	if len(lines) == 0 {
		return ""
	}

	sizes := make([]float64, len(lines))
	for i, l := range lines {
		sizes[i] = l.size
	}
	threshold := headingRatio * median(sizes)
	if threshold < headingFloor {
		threshold = headingFloor
	}

	var large []layoutLine
	for _, l := range lines {
		if l.size >= threshold {
			large = append(large, l)
		}
	}

	var cand layoutLine
	if len(large) > 0 {
		cand = topmost(large)
	} else {
		// Fall back to the ten largest lines and prefer the topmost.
		bySize := append([]layoutLine(nil), lines...)
		sort.SliceStable(bySize, func(i, j int) bool { return bySize[i].size > bySize[j].size })
		if len(bySize) > 10 {
			bySize = bySize[:10]
		}
		cand = topmost(bySize)
	}

	title = joinNextLine(cand, lines)
	title = anySpace.ReplaceAllString(strings.TrimSpace(title), " ")

	if cleaned := namegen.CleanTitle(title); len([]rune(cleaned)) >= 4 {
		title = cleaned
	}
	title = repairSplitWords(title)
	title = namegen.Sanitize(title, 0)

	if len([]rune(title)) < 2 {
		return ""
	}
	return title
}

// aggregateLines groups positioned spans into lines with a representative
// font size, filtering out noise lines.
func aggregateLines(spans []pdf.Text) []layoutLine {
	// PDF y grows upward; negate so smaller offset means nearer the top.
	type group struct {
		y     float64
		spans []pdf.Text
	}
	var groups []group
	for _, s := range spans {
		if strings.TrimSpace(s.S) == "" {
			continue
		}
		placed := false
		for i := range groups {
			if abs(groups[i].y-s.Y) <= lineYTolerance {
				groups[i].spans = append(groups[i].spans, s)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, group{y: s.Y, spans: []pdf.Text{s}})
		}
	}

	var lines []layoutLine
	for _, g := range groups {
		sort.SliceStable(g.spans, func(i, j int) bool { return g.spans[i].X < g.spans[j].X })

		var sb strings.Builder
		size := 0.0
		for _, s := range g.spans {
			sb.WriteString(s.S)
			if s.FontSize > size {
				size = s.FontSize
			}
		}

		text := anySpace.ReplaceAllString(strings.TrimSpace(sb.String()), " ")
		compact := strings.Map(dropSpace, text)
		if len([]rune(compact)) < 2 {
			continue
		}
		if punctuationOnly(compact) || digitsOnly.MatchString(compact) {
			continue
		}

		lines = append(lines, layoutLine{offset: -g.y, size: size, text: text})
	}
	return lines
}

// topmost picks the line nearest the top, breaking ties by size.
func topmost(lines []layoutLine) layoutLine {
	best := lines[0]
	for _, l := range lines[1:] {
		if l.offset < best.offset || (l.offset == best.offset && l.size > best.size) {
			best = l
		}
	}
	return best
}

// joinNextLine appends the line directly below the candidate when the two
// share near-identical font size and the title looks line-wrapped.
func joinNextLine(cand layoutLine, lines []layoutLine) string {
	title := cand.text

	tolerance := cand.size * 0.1
	if tolerance < 1.0 {
		tolerance = 1.0
	}

	var next *layoutLine
	for i := range lines {
		l := lines[i]
		if l.offset <= cand.offset || abs(l.size-cand.size) > tolerance {
			continue
		}
		if next == nil || l.offset < next.offset {
			next = &lines[i]
		}
	}
	if next == nil {
		return title
	}
	nextText := strings.TrimSpace(next.text)

	// Hyphenated line wrap: drop the hyphen and splice.
	if hyphenTail.MatchString(strings.TrimRight(title, " ")) {
		return hyphenTail.ReplaceAllString(title, "") + nextText
	}

	// English text continuing onto the next line.
	if asciiLine.MatchString(title) && len(nextText) > 0 && isASCIILetter(rune(nextText[0])) {
		last := []rune(strings.TrimRight(title, " "))
		if len(last) > 0 && unicode.IsLower(last[len(last)-1]) && unicode.IsLower(rune(nextText[0])) {
			return title + nextText
		}
		return title + " " + nextText
	}
	return title
}

// repairSplitWords removes spurious spaces inside lowercase English words
// introduced by span splitting ("Organizat ion" → "Organization").
func repairSplitWords(s string) string {
	for {
		repaired := lowerPair.ReplaceAllString(s, "$1$2")
		if repaired == s {
			return repaired
		}
		s = repaired
	}
}

func punctuationOnly(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func dropSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return -1
	}
	return r
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
