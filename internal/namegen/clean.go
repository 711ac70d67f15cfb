package namegen

import (
	"regexp"
	"strings"
)

var (
	titlePrefix  = regexp.MustCompile(`^(ファイル名|タイトル|題名)[:：]\s*`)
	explanation  = regexp.MustCompile(`この文書は.*$`)
	colonSplit   = regexp.MustCompile(`\s*[:：]\s*`)
	quoteCutset  = "「」\"'"
	fillerTails  = []string{"について", "に関する", "に係る", "のご案内", "の案内", "の通知", "のお願い"}
	fillerMinLen = 8
)

// CleanTitle normalizes a title candidate returned by the classification
// service (or scraped from the page layout): first line only, label
// prefixes stripped, cut at the first full stop or colon, quotes removed,
// and redundant filler suffixes dropped.
func CleanTitle(resp string) string {
	s := strings.TrimSpace(resp)
	if s == "" {
		return ""
	}

	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	s = titlePrefix.ReplaceAllString(s, "")
	s = explanation.ReplaceAllString(s, "")

	// Keep everything before the first Japanese full stop.
	if i := strings.Index(s, "。"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	// A colon usually introduces an explanation; keep the left side.
	if parts := colonSplit.Split(s, 2); len(parts) > 0 {
		s = strings.TrimSpace(parts[0])
	}

	s = strings.Trim(s, quoteCutset)

	for _, tail := range fillerTails {
		if strings.HasSuffix(s, tail) && len([]rune(s)) > fillerMinLen {
			s = strings.TrimSuffix(s, tail)
			break
		}
	}

	return s
}
