package namegen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdfwatch/pdfwatch/internal/model"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		label string
		names model.NameInfo
		prop  model.PropertyInfo
		opts  Options
		want  string
	}{
		{
			name:  "label only",
			label: "請求書",
			want:  "請求書",
		},
		{
			name:  "label with date",
			label: "請求書",
			opts:  Options{IncludeDate: true, Date: "20250815"},
			want:  "請求書_20250815",
		},
		{
			name:  "date skipped when already embedded",
			label: "請求書20250801",
			opts:  Options{IncludeDate: true, Date: "20250815"},
			want:  "請求書20250801",
		},
		{
			name:  "company name preferred over person",
			label: "納品書",
			names: model.NameInfo{Company: "株式会社山田商事", Surname: "山田", GivenName: "太郎"},
			opts:  Options{IncludeNames: true},
			want:  "納品書_株式会社山田商事",
		},
		{
			name:  "full personal name",
			label: "領収書",
			names: model.NameInfo{Surname: "山田", GivenName: "太郎"},
			opts:  Options{IncludeNames: true, IncludeDate: true, Date: "20250815"},
			want:  "領収書_山田太郎_20250815",
		},
		{
			name:  "surname only",
			label: "領収書",
			names: model.NameInfo{Surname: "山田"},
			opts:  Options{IncludeNames: true},
			want:  "領収書_山田",
		},
		{
			name:  "names flag off ignores extracted names",
			label: "領収書",
			names: model.NameInfo{Company: "株式会社山田商事"},
			want:  "領収書",
		},
		{
			name:  "land parcel",
			label: model.RegistryLabel,
			prop: model.PropertyInfo{
				Kind:       model.PropertyLand,
				Location:   "福岡市中央区清川一丁目",
				Identifier: "16番地",
			},
			want: "登記事項証明書_福岡市中央区清川一丁目16番地（土地）",
		},
		{
			name:  "building with location only",
			label: model.RegistryLabel,
			prop: model.PropertyInfo{
				Kind:     model.PropertyBuilding,
				Location: "東京都港区芝浦三丁目",
			},
			want: "登記事項証明書_東京都港区芝浦三丁目（建物）",
		},
		{
			name:  "unit shows identifier only",
			label: model.RegistryLabel,
			prop: model.PropertyInfo{
				Kind:       model.PropertyUnit,
				Location:   "無視される所在",
				Identifier: "パークマンション801号",
			},
			want: "登記事項証明書_パークマンション801号（区分）",
		},
		{
			name:  "unit without identifier",
			label: model.RegistryLabel,
			prop:  model.PropertyInfo{Kind: model.PropertyUnit},
			want:  "登記事項証明書_区分建物（区分）",
		},
		{
			name:  "parcel with nothing extracted",
			label: model.RegistryLabel,
			prop:  model.PropertyInfo{Kind: model.PropertyLand},
			want:  "登記事項証明書_不動産情報（土地）",
		},
		{
			name:  "registry documents never get a date",
			label: model.RegistryLabel,
			prop: model.PropertyInfo{
				Kind:       model.PropertyLand,
				Identifier: "16番地",
			},
			opts: Options{IncludeDate: true, Date: "20250815"},
			want: "登記事項証明書_16番地（土地）",
		},
		{
			name:  "property suppresses the addressee",
			label: model.RegistryLabel,
			names: model.NameInfo{Company: "株式会社山田商事"},
			prop: model.PropertyInfo{
				Kind:       model.PropertyLand,
				Identifier: "16番地",
			},
			opts: Options{IncludeNames: true},
			want: "登記事項証明書_16番地（土地）",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.MaxLength = MaxLength
			assert.Equal(t, tt.want, Build(tt.label, tt.names, tt.prop, opts))
		})
	}
}

func TestBuild_SanitizesResult(t *testing.T) {
	got := Build(`月次報告<速報版>`, model.NameInfo{}, model.PropertyInfo{}, Options{})
	assert.Equal(t, "月次報告速報版", got)
}
