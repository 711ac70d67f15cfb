package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdfwatch/pdfwatch/internal/llm"
	"github.com/pdfwatch/pdfwatch/internal/model"
	"github.com/pdfwatch/pdfwatch/internal/namegen"
	"github.com/pdfwatch/pdfwatch/internal/service"
)

// Free-form naming thresholds.
const (
	firstPageTextMin = 40
	fullTextMin      = 120
	namerMaxTokens   = 64
	// layoutSupersedeMax caps how long a layout candidate may be when it
	// replaces a shorter AI result it extends.
	layoutSupersedeMax = 64
)

// Namer produces an unconstrained short title via an ordered strategy
// chain, short-circuiting on the first non-empty validated result.
type Namer struct {
	invoker   Invoker
	extractor service.Extractor
	logger    *slog.Logger
}

// NewNamer creates a Namer.
func NewNamer(invoker Invoker, extractor service.Extractor, logger *slog.Logger) *Namer {
	return &Namer{
		invoker:   invoker,
		extractor: extractor,
		logger:    logger,
	}
}

// namingStrategy is one attempt in the free-form chain. Empty results
// mean "try the next one"; errors are logged and also fall through.
type namingStrategy struct {
	name    string
	attempt func(ctx context.Context) (string, error)
}

// FreeName runs the strategy chain: layout title, AI naming from
// first-page text, AI naming from the first image, AI naming from the
// full text, AI naming from all images. When the layout candidate is a
// case-insensitive prefix extension of the AI result it supersedes it.
func (n *Namer) FreeName(ctx context.Context, path string, content service.ExtractedContent, folder model.FolderConfig) (string, error) {
	layoutTitle := content.LayoutTitle

	strategies := []namingStrategy{
		{name: "layout", attempt: func(context.Context) (string, error) {
			return layoutTitle, nil
		}},
		{name: "text-first-page", attempt: func(ctx context.Context) (string, error) {
			text := n.extractor.ExtractText(path, 1, 1000)
			if len([]rune(text)) < firstPageTextMin {
				return "", nil
			}
			return n.nameFromText(ctx, text, folder)
		}},
		{name: "vision-first-page", attempt: func(ctx context.Context) (string, error) {
			if len(content.Images) == 0 {
				return "", nil
			}
			return n.nameFromVision(ctx, content.Images[:1], folder)
		}},
		{name: "text-full", attempt: func(ctx context.Context) (string, error) {
			if len([]rune(content.Text)) < fullTextMin {
				return "", nil
			}
			return n.nameFromText(ctx, content.Text, folder)
		}},
		{name: "vision-all", attempt: func(ctx context.Context) (string, error) {
			if len(content.Images) == 0 {
				return "", nil
			}
			return n.nameFromVision(ctx, content.Images, folder)
		}},
	}

	var base string
	for _, s := range strategies {
		result, err := s.attempt(ctx)
		if err != nil {
			n.logger.Warn("naming strategy failed", "strategy", s.name, "error", err)
			continue
		}
		if result != "" {
			n.logger.Debug("naming strategy produced a candidate", "strategy", s.name, "candidate", result)
			base = result
			break
		}
	}
	if base == "" {
		return "", fmt.Errorf("free-form naming produced no candidate")
	}

	return supersede(layoutTitle, base), nil
}

// supersede prefers the layout candidate over a shorter AI result it
// extends: a truncated completion loses to the full title line.
func supersede(layoutTitle, base string) string {
	if layoutTitle == "" || base == layoutTitle {
		return base
	}
	lt := strings.Join(strings.Fields(layoutTitle), " ")
	bn := strings.TrimSpace(base)
	if lt != "" && bn != "" &&
		strings.HasPrefix(strings.ToUpper(lt), strings.ToUpper(bn)) &&
		len([]rune(lt)) <= layoutSupersedeMax {
		return lt
	}
	return base
}

func (n *Namer) nameFromText(ctx context.Context, text string, folder model.FolderConfig) (string, error) {
	runes := []rune(text)
	if len(runes) > 1200 {
		runes = runes[:1200]
	}
	base := fmt.Sprintf(
		"この文書の主たるページ（1ページ目）に記載の『タイトルまたは種類名』を1つだけ返してください。\n"+
			"条件: 句読点・説明なし、名詞句のみ。\n"+
			"例: 見積書 / 契約書 / 登記事項証明書 / 受付のお知らせ\n"+
			"ファイル名に不適切な記号 / \\ : * ? \" < > | は使わないこと。\n\n"+
			"【文書内容（抜粋）】\n%s\n",
		string(runes))

	resp, err := n.invoker.Invoke(ctx, []llm.ContentBlock{llm.TextBlock(withInstruction(folder, base))},
		namerMaxTokens, 0, requestTimeout, nil)
	if err != nil {
		return "", err
	}
	return namegen.Sanitize(namegen.CleanTitle(resp), 0), nil
}

func (n *Namer) nameFromVision(ctx context.Context, images []service.PageImage, folder model.FolderConfig) (string, error) {
	base := "この文書の主たるページ（1ページ目）に記載の『タイトルまたは種類名』を1つだけ返してください。\n" +
		"条件: 句読点・説明なし、名詞句のみ。\n" +
		"例: 見積書 / 契約書 / 登記事項証明書 / 受付のお知らせ\n" +
		"ファイル名に不適切な記号 / \\ : * ? \" < > | は使わないこと。"

	blocks := []llm.ContentBlock{llm.TextBlock(withInstruction(folder, base))}
	for i, img := range images {
		if i >= maxVisionPages {
			break
		}
		blocks = append(blocks, llm.ImageBlock(img.Data, img.MediaType))
	}

	resp, err := n.invoker.Invoke(ctx, blocks, namerMaxTokens, 0, requestTimeout, nil)
	if err != nil {
		return "", err
	}
	return namegen.Sanitize(namegen.CleanTitle(resp), 0), nil
}
