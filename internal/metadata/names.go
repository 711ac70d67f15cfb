// Package metadata extracts structured fields (addressee identity,
// registry parcel data) from page images via the classification service.
package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pdfwatch/pdfwatch/internal/common"
	"github.com/pdfwatch/pdfwatch/internal/llm"
	"github.com/pdfwatch/pdfwatch/internal/model"
	"github.com/pdfwatch/pdfwatch/internal/service"
)

// Invoker sends content blocks to the classification service.
type Invoker interface {
	Invoke(ctx context.Context, blocks []llm.ContentBlock, maxTokens int, temperature float64, timeout time.Duration, candidates []string) (string, error)
}

const (
	namesMaxTokens    = 120
	propertyMaxTokens = 150
	requestTimeout    = 30 * time.Second
)

// Extractor pulls addressee and property metadata from page images.
type Extractor struct {
	invoker Invoker
	logger  *slog.Logger
}

// New creates a metadata Extractor.
func New(invoker Invoker, logger *slog.Logger) *Extractor {
	return &Extractor{invoker: invoker, logger: logger}
}

const addresseePrompt = "この日本の文書から『宛名（受取人）』のみを抽出してください。差出人（発行者）は除外してください。\n\n" +
	"出力は以下の3行のみ。余計な説明・前置きは絶対に出力しない。\n" +
	"法人名：[宛名の法人名または「なし」]\n" +
	"姓：[宛名の姓または「なし」]\n" +
	"名：[宛名の名または「なし」]\n\n" +
	"複数の宛名がある場合は最初の1名（または法人）だけを対象にする。\n" +
	"『様』『殿』の直前の名前を優先。肩書きや差出人の事務所名は出力しない。"

// Addressee extracts the recipient identity from the first page image.
// When the service returns prose instead of the labeled three-line form,
// it retries once with a stricter no-extra-text instruction. A failure is
// non-fatal: the zero NameInfo comes back with the wrapped error.
func (e *Extractor) Addressee(ctx context.Context, image service.PageImage) (model.NameInfo, error) {
	call := func(prompt string) (string, error) {
		return e.invoker.Invoke(ctx, []llm.ContentBlock{
			llm.TextBlock(prompt),
			llm.ImageBlock(image.Data, image.MediaType),
		}, namesMaxTokens, 0, requestTimeout, nil)
	}

	resp, err := call(addresseePrompt)
	if err != nil {
		return model.NameInfo{}, fmt.Errorf("%w: %v", common.ErrMetadata, err)
	}

	info := parseNameFields(resp)
	if info.Empty() {
		strict := addresseePrompt + "\n\n絶対条件: 上記3行のみを出力。例や分析文・理由は出力しない。"
		resp, err = call(strict)
		if err != nil {
			return model.NameInfo{}, fmt.Errorf("%w: %v", common.ErrMetadata, err)
		}
		info = parseNameFields(resp)
	}
	return info, nil
}

// fieldSplit tolerates both full-width and half-width colons.
var fieldSplit = regexp.MustCompile(`[：:]`)

// absenceTokens are literal markers the service uses for "no value".
func isAbsent(v string) bool {
	switch strings.ToLower(v) {
	case "", "なし", "none", "null":
		return true
	}
	return false
}

// parseNameFields parses the labeled three-line response leniently: the
// colon may be full- or half-width, and a surname line holding both names
// separated by whitespace is split.
func parseNameFields(resp string) model.NameInfo {
	var info model.NameInfo
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
		if isAbsent(val) {
			continue
		}
		switch key {
		case "法人名":
			info.Company = val
		case "姓":
			names := strings.Fields(val)
			if len(names) > 0 {
				info.Surname = names[0]
				if len(names) >= 2 && info.GivenName == "" {
					info.GivenName = names[1]
				}
			}
		case "名":
			info.GivenName = val
		}
	}
	return info
}
