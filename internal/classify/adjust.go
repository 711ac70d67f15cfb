package classify

import (
	"strings"

	"github.com/pdfwatch/pdfwatch/internal/model"
)

// genericMarkers flag a label as too vague to trust on its own.
var genericMarkers = []string{"資料", "その他"}

// financialKeywords promote administrative labels to 計算書 when the text
// is dominated by financial-statement vocabulary.
var financialKeywords = []string{"計算書", "損益計算書", "貸借対照表", "決算書"}

// AdjustPrimary re-scores an ambiguous or generic label against keyword
// tallies for the primary document categories. Multi-page composites
// (a statement plus attached reference material) bias the service toward
// generic labels; when one primary category's keywords dominate the text,
// its label wins. This is heuristic policy, not a correctness guarantee.
func AdjustPrimary(text, aiLabel string) string {
	label := strings.TrimSpace(aiLabel)
	lower := strings.ToLower(text)

	if isGeneric(label) {
		bestLabel, bestCount := label, 0
		for _, cat := range model.PrimaryCategories() {
			if c := countAny(lower, cat.Keywords); c > bestCount {
				bestLabel, bestCount = cat.Label, c
			}
		}
		if bestCount >= 1 {
			return bestLabel
		}
	}

	// Administrative notices over clearly financial text resolve to 計算書.
	for _, g := range model.GenericLabels {
		if label == g {
			if countAny(lower, financialKeywords) >= 1 {
				return "計算書"
			}
			break
		}
	}

	return label
}

func isGeneric(label string) bool {
	if label == "" || label == "PDF文書" {
		return true
	}
	for _, m := range genericMarkers {
		if strings.Contains(label, m) {
			return true
		}
	}
	return false
}

func countAny(lowerText string, keywords []string) int {
	total := 0
	for _, k := range keywords {
		total += strings.Count(lowerText, strings.ToLower(k))
	}
	return total
}
