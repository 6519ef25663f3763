package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ejjays/assets-management/models"
)

func inventory() []models.Asset {
	return []models.Asset{
		{ID: "a1", Name: "MacBook Pro", Category: "Electronics", Status: "In Use", AssignedTo: "John Doe", Value: 2499.99, PurchaseDate: "2024-01-15"},
		{ID: "a2", Name: "Herman Miller Chair", Category: "Furniture", Status: "In Storage", Value: 899.99, PurchaseDate: "2023-11-20"},
		{ID: "a3", Name: "Dell Monitor", Category: "Electronics", Status: "In Repair", Location: "IT Dept", Value: 349.99, PurchaseDate: "2023-08-10"},
	}
}

func TestBuildPrompt(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	p := BuildPrompt("what is in repair?", inventory(), now)

	assert.Contains(t, p, "LIVE INVENTORY (2024-03-01 09:30 UTC)")
	assert.Contains(t, p, "- Total assets: 3")
	assert.Contains(t, p, "- In repair: 1")
	assert.Contains(t, p, "- Total value: $3749.97")
	assert.Contains(t, p, "- Electronics: 2 assets ($2849.98)")
	assert.Contains(t, p, `a2: "Herman Miller Chair"`)
	assert.Contains(t, p, "Location: "+models.DefaultLocation)
	assert.Contains(t, p, "Location: IT Dept")
	assert.True(t, strings.HasSuffix(p, "User question: what is in repair?"))

	recent := p[strings.Index(p, "MOST RECENT PURCHASES"):]
	assert.Less(t, strings.Index(recent, "a1"), strings.Index(recent, "a2"))
}

func TestKeywordAdvisor(t *testing.T) {
	k := KeywordAdvisor{}
	ctx := context.Background()

	tests := []struct {
		message string
		want    []string
		notWant []string
	}{
		{message: "Show all assets", want: []string{"# All assets", "**MacBook Pro**", "`a3`"}},
		{message: "Find laptops", want: []string{"No matches", "laptop"}},
		{message: "find monitors", want: []string{"Dell Monitor"}, notWant: []string{"MacBook"}},
		{message: "chairs", want: []string{"Herman Miller Chair"}},
		{message: "What needs maintenance?", want: []string{"Assets in repair", "Dell Monitor"}, notWant: []string{"Chair"}},
		{message: "Check low stock", want: []string{"Low stock", "Office Supplies"}},
		{message: "What is the total value?", want: []string{"$3749.97", "**Electronics**: $2849.98 across 2 assets"}},
		{message: "category breakdown", want: []string{"**Electronics**: 2 assets", "**Furniture**: 1 assets"}},
		{message: "give me a summary", want: []string{"**Total assets:** 3", "**In storage:** 1"}},
		{message: "hello", want: []string{"Asset Assistant", "**3** assets"}},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, err := k.Advise(ctx, tt.message, inventory())
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, got, w)
			}
		})
	}
}

func TestKeywordAdvisorEmptyInventory(t *testing.T) {
	got, err := KeywordAdvisor{}.Advise(context.Background(), "list everything", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "inventory is empty")

	got, err = KeywordAdvisor{}.Advise(context.Background(), "repair status", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "No assets are currently in repair")
}

type stubAdvisor struct {
	text  string
	err   error
	calls int
}

func (s *stubAdvisor) Advise(context.Context, string, []models.Asset) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestFallbackAdvisor(t *testing.T) {
	ctx := context.Background()

	t.Run("primary answers", func(t *testing.T) {
		primary, secondary := &stubAdvisor{text: "from model"}, &stubAdvisor{text: "canned"}
		f := &FallbackAdvisor{Primary: primary, Secondary: secondary, Log: zap.NewNop()}
		got, err := f.Advise(ctx, "hi", nil)
		require.NoError(t, err)
		assert.Equal(t, "from model", got)
		assert.Zero(t, secondary.calls)
	})

	t.Run("primary fails", func(t *testing.T) {
		primary, secondary := &stubAdvisor{err: errors.New("quota")}, &stubAdvisor{text: "canned"}
		f := &FallbackAdvisor{Primary: primary, Secondary: secondary, Log: zap.NewNop()}
		got, err := f.Advise(ctx, "hi", nil)
		require.NoError(t, err)
		assert.Equal(t, "canned", got)
		assert.Equal(t, 1, primary.calls)
	})

	t.Run("no primary", func(t *testing.T) {
		f := &FallbackAdvisor{Secondary: &stubAdvisor{text: "canned"}}
		got, err := f.Advise(ctx, "hi", nil)
		require.NoError(t, err)
		assert.Equal(t, "canned", got)
	})
}

func geminiServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var sent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-1.5-flash:generateContent"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		sent = string(raw)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &sent
}

func TestGeminiAdvisor(t *testing.T) {
	srv, sent := geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"# Hello"},{"text":" there"}]}}]}`)

	g, err := NewGeminiAdvisor(context.Background(), "test-key", "gemini-1.5-flash",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	got, err := g.Advise(context.Background(), "how many chairs?", inventory())
	require.NoError(t, err)
	assert.Equal(t, "# Hello there", got)

	var req struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal([]byte(*sent), &req))
	require.Len(t, req.Contents, 1)
	assert.Equal(t, "user", req.Contents[0].Role)
	assert.Contains(t, req.Contents[0].Parts[0].Text, "User question: how many chairs?")
}

func TestGeminiAdvisorErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewGeminiAdvisor(context.Background(), "", "gemini-1.5-flash")
		assert.Error(t, err)
	})

	t.Run("upstream failure", func(t *testing.T) {
		srv, _ := geminiServer(t, http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`)
		g, err := NewGeminiAdvisor(context.Background(), "k", "models/gemini-1.5-flash",
			option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
		require.NoError(t, err)
		_, err = g.Advise(context.Background(), "hi", nil)
		assert.Error(t, err)
	})

	t.Run("no text", func(t *testing.T) {
		srv, _ := geminiServer(t, http.StatusOK, `{"candidates":[]}`)
		g, err := NewGeminiAdvisor(context.Background(), "k", "gemini-1.5-flash",
			option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
		require.NoError(t, err)
		_, err = g.Advise(context.Background(), "hi", nil)
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}
