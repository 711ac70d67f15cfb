package model

import "strings"

// Label preset identifiers selectable per folder.
const (
	PresetAuto       = "auto"
	PresetBusiness   = "business"
	PresetLegal      = "legal"
	PresetRealEstate = "realestate"
)

// FallbackLabel is returned whenever classification cannot produce a
// usable document type. It is never empty.
const FallbackLabel = "その他書類"

// RegistryLabel is the fixed document type used for registry certificates
// once a label matches the registry keyword set.
const RegistryLabel = "登記事項証明書"

var commonLabels = []string{
	"登記事項証明書", "印鑑証明書",
	"契約書", "覚書", "議事録", "定款", "委任状", "就任承諾書",
	"見積書", "請求書", "領収書", "注文書", "納品書", "仕様書", "送付状",
	"受付のお知らせ", "必要書類等一覧", "その他書類",
}

var presetLabels = map[string][]string{
	PresetBusiness: {
		"見積書", "請求書", "領収書", "注文書", "納品書", "仕様書", "送付状", "請求明細", "その他書類",
	},
	PresetLegal: {
		"契約書", "覚書", "規程", "議事録", "定款", "委任状", "就任承諾書", "印鑑証明書", "その他書類",
	},
	PresetRealEstate: {
		"登記事項証明書", "重要事項説明", "売買契約書", "賃貸借契約書", "不動産契約書", "その他書類",
	},
}

// LabelSet returns the closed label vocabulary for a preset. Unknown or
// empty presets resolve to the merged generic list.
func LabelSet(preset string) []string {
	if labels, ok := presetLabels[strings.ToLower(preset)]; ok {
		return append([]string(nil), labels...)
	}
	return append([]string(nil), commonLabels...)
}

// registryKeywords identify registry-class documents that get dedicated
// property metadata extraction and fixed naming.
var registryKeywords = []string{
	"登記事項証明書", "登記情報", "登記簿",
	"全部事項証明書", "現在事項証明書", "建物事項証明書",
	"土地登記", "建物登記", "不動産登記",
}

// IsRegistryLabel reports whether a classified label denotes a
// real-estate registry certificate.
func IsRegistryLabel(label string) bool {
	for _, k := range registryKeywords {
		if strings.Contains(label, k) {
			return true
		}
	}
	return false
}

// PrimaryCategory groups the keyword vocabulary used to re-score generic
// classification results against the document's full text.
type PrimaryCategory struct {
	Label    string
	Keywords []string
}

// PrimaryCategories lists the primary document classes, in priority order,
// together with the substrings that indicate each one.
func PrimaryCategories() []PrimaryCategory {
	return []PrimaryCategory{
		{Label: "計算書", Keywords: []string{"計算書", "損益計算書", "貸借対照表", "決算書", "財務諸表"}},
		{Label: "契約書", Keywords: []string{"契約書", "覚書", "合意書"}},
		{Label: "見積書", Keywords: []string{"見積書"}},
		{Label: "請求書", Keywords: []string{"請求書", "請求金額"}},
		{Label: "領収書", Keywords: []string{"領収書", "受領"}},
		{Label: "納品書", Keywords: []string{"納品書"}},
	}
}

// GenericLabels are classification results considered too vague to trust
// when the text strongly indicates a primary document class.
var GenericLabels = []string{"受付のお知らせ", "必要書類等一覧", "PDF文書", "その他書類"}
