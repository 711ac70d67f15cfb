// Package namegen synthesizes and sanitizes output filenames.
package namegen

import (
	"regexp"
	"strings"
)

// Clamp bounds for the configured maximum filename length.
const (
	MinLength     = 20
	MaxLength     = 80
	DefaultLength = 40
)

// minCut is the shortest prefix a delimiter-aware truncation may keep.
const minCut = 10

// fallbackName is used when sanitization consumes the whole input.
const fallbackName = "名称未設定"

var (
	illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	controlChars = regexp.MustCompile(`[\x00-\x1F]`)
	lineBreaks   = regexp.MustCompile(`[\r\n\t]+`)
	multiSpace   = regexp.MustCompile(`\s{2,}`)
)

// Windows reserved device names; a bare match gets an underscore prefix.
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// cutDelimiters are preferred truncation points, and also what gets
// trimmed off the end after a delimiter cut.
var cutDelimiters = []string{"　", "、", "（", "(", "・", " ", "-", "—", "–", "_"}

// Sanitize strips filesystem-illegal characters, normalizes whitespace,
// guards reserved device names, and clamps the result to maxLen (bounded
// to [MinLength, MaxLength]). The result is always a valid filename and
// the function is idempotent.
func Sanitize(name string, maxLen int) string {
	s := strings.TrimSpace(name)
	orig := s

	s = illegalChars.ReplaceAllString(s, "")
	s = controlChars.ReplaceAllString(s, "")
	s = lineBreaks.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.Trim(s, " .")

	root := s
	if i := strings.IndexByte(root, '.'); i >= 0 {
		root = root[:i]
	}
	if _, reserved := reservedNames[strings.ToUpper(strings.TrimSpace(root))]; reserved {
		s = "_" + s
	}

	limit := maxLen
	if limit <= 0 {
		limit = DefaultLength
	}
	if limit < MinLength {
		limit = MinLength
	}
	if limit > MaxLength {
		limit = MaxLength
	}

	runes := []rune(s)
	if len(runes) > limit {
		window := string(runes[:limit])
		cut := -1
		for _, d := range cutDelimiters {
			if p := strings.LastIndex(window, d); p > cut {
				cut = p
			}
		}
		if cut >= 0 && len([]rune(window[:cut])) >= minCut {
			s = strings.TrimRight(window[:cut], " 　、（(・-—–_")
		} else {
			s = window
		}
		// Mark the truncation when there is room for the ellipsis.
		if len([]rune(orig)) > len([]rune(s)) && len([]rune(s)) < limit {
			marked := []rune(s + "…")
			if len(marked) > limit {
				marked = marked[:limit]
			}
			s = string(marked)
		}
		s = strings.Trim(s, " .")
	}

	if s == "" {
		return fallbackName
	}
	return s
}
