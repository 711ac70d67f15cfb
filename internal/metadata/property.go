package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdfwatch/pdfwatch/internal/common"
	"github.com/pdfwatch/pdfwatch/internal/llm"
	"github.com/pdfwatch/pdfwatch/internal/model"
	"github.com/pdfwatch/pdfwatch/internal/service"
)

const propertyPrompt = `この登記簿から不動産情報を抽出してください。

【出力形式】
種別：[土地/建物/区分建物]
所在：[所在地または「なし」]
地番等：[地番・家屋番号・部屋番号等または「なし」]

【抽出ルール】
- 表題部の「不動産の表示」欄から抽出
- 土地：所在地と地番を分けて記載
- 建物：所在地と家屋番号を分けて記載
- 区分建物：所在は「なし」、地番等に建物名+部屋番号のみ

【例】
種別：土地
所在：福岡市中央区清川一丁目
地番等：11号16番地

種別：区分建物
所在：なし
地番等：パークマンション801号`

// Property extracts parcel metadata from the first page of a registry
// certificate. Labels outside the registry keyword set yield the zero
// PropertyInfo without a service call. For unit-type properties the
// location is suppressed; only the identifier matters for naming.
func (e *Extractor) Property(ctx context.Context, image service.PageImage, label string) (model.PropertyInfo, error) {
	if !model.IsRegistryLabel(label) {
		return model.PropertyInfo{}, nil
	}

	resp, err := e.invoker.Invoke(ctx, []llm.ContentBlock{
		llm.TextBlock(propertyPrompt),
		llm.ImageBlock(image.Data, image.MediaType),
	}, propertyMaxTokens, 0, requestTimeout, nil)
	if err != nil {
		return model.PropertyInfo{}, fmt.Errorf("%w: %v", common.ErrMetadata, err)
	}

	return parsePropertyFields(resp), nil
}

func parsePropertyFields(resp string) model.PropertyInfo {
	var info model.PropertyInfo
	for _, raw := range strings.Split(resp, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		parts := fieldSplit.Split(line, 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "種別":
			info.Kind = model.ParsePropertyKind(val)
		case "所在":
			if !isAbsent(val) {
				info.Location = val
			}
		case "地番等":
			if !isAbsent(val) {
				info.Identifier = val
			}
		}
	}

	// Unit certificates are named by building+room alone.
	if info.Kind == model.PropertyUnit {
		info.Location = ""
	}
	return info
}
