// Package classify chooses a document type or a free-form title for
// extracted PDF content.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pdfwatch/pdfwatch/internal/llm"
	"github.com/pdfwatch/pdfwatch/internal/model"
	"github.com/pdfwatch/pdfwatch/internal/service"
)

// Invoker sends content blocks to the classification service. Satisfied
// by *llm.Adapter.
type Invoker interface {
	Invoke(ctx context.Context, blocks []llm.ContentBlock, maxTokens int, temperature float64, timeout time.Duration, candidates []string) (string, error)
}

// Content sufficiency thresholds for strategy selection.
const (
	textStrategyMin   = 200
	maxVisionPages    = 2
	classifyMaxTokens = 50
	requestTimeout    = 30 * time.Second
)

// Classifier picks one label from a closed set per folder preset.
type Classifier struct {
	invoker       Invoker
	logger        *slog.Logger
	adjustPrimary bool
}

// New creates a Classifier. When adjustPrimary is set, generic results
// are re-scored against the primary-category keyword tables.
func New(invoker Invoker, logger *slog.Logger, adjustPrimary bool) *Classifier {
	return &Classifier{
		invoker:       invoker,
		logger:        logger,
		adjustPrimary: adjustPrimary,
	}
}

// Classify returns a document type label, never empty. Text-based
// classification runs when enough text was extracted; otherwise the page
// images go to the vision strategy. With neither available the fixed
// fallback label is returned.
func (c *Classifier) Classify(ctx context.Context, content service.ExtractedContent, folder model.FolderConfig) (string, error) {
	var label string
	var err error

	switch {
	case len([]rune(content.Text)) >= textStrategyMin:
		label, err = c.classifyWithText(ctx, content.Text, folder)
	case len(content.Images) > 0:
		label, err = c.classifyWithVision(ctx, content.Images, folder)
	default:
		c.logger.Warn("no classifiable content, using fallback label")
		return model.FallbackLabel, nil
	}
	if err != nil {
		return "", err
	}

	label = Normalize(label)
	if c.adjustPrimary {
		label = AdjustPrimary(content.Text, label)
	}
	if label == "" {
		label = model.FallbackLabel
	}
	return label, nil
}

func (c *Classifier) classifyWithText(ctx context.Context, text string, folder model.FolderConfig) (string, error) {
	labels := strings.Join(model.LabelSet(folder.Preset), "、")
	runes := []rune(text)
	if len(runes) > 4000 {
		runes = runes[:4000]
	}

	base := fmt.Sprintf(
		"以下の文書テキストを読み、1ページ目を主とみなして、"+
			"次の中から最も適切な1つの文書種別のみを日本語で返してください（説明不要・厳密一致）。\n"+
			"候補: %s\n"+
			"どれにも当てはまらなければ『%s』と返してください。\n\n"+
			"【文書テキスト】\n%s",
		labels, model.FallbackLabel, string(runes))

	resp, err := c.invoker.Invoke(ctx, []llm.ContentBlock{llm.TextBlock(withInstruction(folder, base))},
		classifyMaxTokens, 0, requestTimeout, nil)
	if err != nil {
		return "", err
	}
	return cleanLabel(resp), nil
}

func (c *Classifier) classifyWithVision(ctx context.Context, images []service.PageImage, folder model.FolderConfig) (string, error) {
	labels := strings.Join(model.LabelSet(folder.Preset), "、")
	base := fmt.Sprintf(
		"1ページ目を主とみなして、次の中から最も適切な1つの文書種別のみを日本語で返してください（説明不要・厳密一致）。\n"+
			"候補: %s\n"+
			"どれにも当てはまらなければ『%s』と返してください。",
		labels, model.FallbackLabel)

	blocks := []llm.ContentBlock{llm.TextBlock(withInstruction(folder, base))}
	for i, img := range images {
		if i >= maxVisionPages {
			break
		}
		blocks = append(blocks, llm.ImageBlock(img.Data, img.MediaType))
	}

	resp, err := c.invoker.Invoke(ctx, blocks, classifyMaxTokens, 0, requestTimeout, nil)
	if err != nil {
		return "", err
	}
	return cleanLabel(resp), nil
}

// withInstruction prepends the folder's custom classification instruction.
func withInstruction(folder model.FolderConfig, base string) string {
	if inst := folder.Instruction(); inst != "" {
		return inst + "\n\n" + base
	}
	return base
}

var (
	labelIllegal = regexp.MustCompile(`[<>:"/\\|?*]`)
	labelLeadIn  = regexp.MustCompile(`^この文書は`)
	labelTailOff = regexp.MustCompile(`です$`)
)

// cleanLabel keeps the first response line and strips conversational
// framing plus filename-illegal characters.
func cleanLabel(resp string) string {
	s := strings.TrimSpace(resp)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	s = labelLeadIn.ReplaceAllString(s, "")
	s = labelTailOff.ReplaceAllString(s, "")
	s = labelIllegal.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return model.FallbackLabel
	}
	return s
}

// normalizations maps label variants onto canonical document types.
var normalizations = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`印鑑証明`), "印鑑証明書"},
	{regexp.MustCompile(`(登記事項証明|全部事項証明|現在事項証明)`), "登記事項証明書"},
	{regexp.MustCompile(`請求(書)?`), "請求書"},
	{regexp.MustCompile(`見積(書)?`), "見積書"},
	{regexp.MustCompile(`領収(書)?`), "領収書"},
	{regexp.MustCompile(`納品(書)?`), "納品書"},
	{regexp.MustCompile(`注文(書)?`), "注文書"},
	{regexp.MustCompile(`契約(書)?`), "契約書"},
}

// Normalize standardizes a raw classification label against the built-in
// variant table. Unmatched labels pass through unchanged.
func Normalize(label string) string {
	dt := strings.TrimSpace(label)
	if dt == "" {
		return model.FallbackLabel
	}
	for _, n := range normalizations {
		if n.pattern.MatchString(dt) {
			return n.label
		}
	}
	return dt
}
