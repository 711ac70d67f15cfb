package metadata

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfwatch/pdfwatch/internal/common"
	"github.com/pdfwatch/pdfwatch/internal/llm"
	"github.com/pdfwatch/pdfwatch/internal/model"
	"github.com/pdfwatch/pdfwatch/internal/service"
	"github.com/pdfwatch/pdfwatch/internal/testutil"
)

type mockInvoker struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (m *mockInvoker) Invoke(_ context.Context, blocks []llm.ContentBlock, _ int, _ float64, _ time.Duration, _ []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range blocks {
		if !b.IsImage() {
			m.prompts = append(m.prompts, b.Text)
		}
	}
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", fmt.Errorf("mock exhausted")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

var testImage = service.PageImage{Data: []byte{0x89}, MediaType: "image/png", Page: 1}

func TestAddressee(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     model.NameInfo
	}{
		{
			name:     "company addressee",
			response: "法人名：株式会社山田商事\n姓：なし\n名：なし",
			want:     model.NameInfo{Company: "株式会社山田商事"},
		},
		{
			name:     "personal addressee",
			response: "法人名：なし\n姓：山田\n名：太郎",
			want:     model.NameInfo{Surname: "山田", GivenName: "太郎"},
		},
		{
			name:     "half-width colons accepted",
			response: "法人名:なし\n姓:佐藤\n名:なし",
			want:     model.NameInfo{Surname: "佐藤"},
		},
		{
			name:     "both names on the surname line",
			response: "法人名：なし\n姓：山田 太郎\n名：なし",
			want:     model.NameInfo{Surname: "山田", GivenName: "太郎"},
		},
		{
			name:     "english absence markers",
			response: "法人名：none\n姓：null\n名：なし",
			want:     model.NameInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := &mockInvoker{responses: []string{tt.response, tt.response}}
			e := New(invoker, testutil.DiscardLogger())

			got, err := e.Addressee(context.Background(), testImage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddressee_RetriesOnceWithStrictPrompt(t *testing.T) {
	invoker := &mockInvoker{responses: []string{
		"この画像には宛名らしき記載が見当たりません。",
		"法人名：なし\n姓：鈴木\n名：なし",
	}}
	e := New(invoker, testutil.DiscardLogger())

	got, err := e.Addressee(context.Background(), testImage)
	require.NoError(t, err)
	assert.Equal(t, model.NameInfo{Surname: "鈴木"}, got)

	require.Len(t, invoker.prompts, 2)
	assert.Contains(t, invoker.prompts[1], "絶対条件")
}

func TestAddressee_ServiceErrorWrapped(t *testing.T) {
	invoker := &mockInvoker{err: fmt.Errorf("boom")}
	e := New(invoker, testutil.DiscardLogger())

	_, err := e.Addressee(context.Background(), testImage)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMetadata)
}

func TestProperty(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		response string
		want     model.PropertyInfo
	}{
		{
			name:     "land parcel",
			label:    "登記事項証明書",
			response: "種別：土地\n所在：福岡市中央区清川一丁目\n地番等：16番地",
			want: model.PropertyInfo{
				Kind:       model.PropertyLand,
				Location:   "福岡市中央区清川一丁目",
				Identifier: "16番地",
			},
		},
		{
			name:     "building",
			label:    "建物登記",
			response: "種別：建物\n所在：東京都港区芝浦三丁目\n地番等：12番3号",
			want: model.PropertyInfo{
				Kind:       model.PropertyBuilding,
				Location:   "東京都港区芝浦三丁目",
				Identifier: "12番3号",
			},
		},
		{
			name:     "unit suppresses location",
			label:    "全部事項証明書",
			response: "種別：区分建物\n所在：東京都港区芝浦三丁目\n地番等：パークマンション801号",
			want: model.PropertyInfo{
				Kind:       model.PropertyUnit,
				Identifier: "パークマンション801号",
			},
		},
		{
			name:     "absence markers dropped",
			label:    "登記情報",
			response: "種別：土地\n所在：なし\n地番等：none",
			want:     model.PropertyInfo{Kind: model.PropertyLand},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := &mockInvoker{responses: []string{tt.response}}
			e := New(invoker, testutil.DiscardLogger())

			got, err := e.Property(context.Background(), testImage, tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProperty_NonRegistryLabelSkipsService(t *testing.T) {
	invoker := &mockInvoker{}
	e := New(invoker, testutil.DiscardLogger())

	got, err := e.Property(context.Background(), testImage, "請求書")
	require.NoError(t, err)
	assert.Equal(t, model.PropertyInfo{}, got)
	assert.Empty(t, invoker.prompts)
}
