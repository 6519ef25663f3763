package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ejjays/assets-management/chat"
	"github.com/ejjays/assets-management/models"
)

type advisorFunc func(ctx context.Context, message string, assets []models.Asset) (string, error)

func (f advisorFunc) Advise(ctx context.Context, message string, assets []models.Asset) (string, error) {
	return f(ctx, message, assets)
}

func postChat(h *ChatHandler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))
	return rec
}

func TestChat(t *testing.T) {
	h := NewChatHandler(chat.KeywordAdvisor{}, 0, zap.NewNop())

	rec := postChat(h, `{"message":"show all assets","assets":[{"id":"a1","name":"Desk","category":"Furniture","status":"In Use","value":10}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"response":"# All assets`)
	assert.Contains(t, rec.Body.String(), "Desk")

	rec = postChat(h, `{"message":"hello","assets":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code, "an empty snapshot is still a snapshot")
}

func TestChatValidation(t *testing.T) {
	h := NewChatHandler(chat.KeywordAdvisor{}, 0, zap.NewNop())

	for _, body := range []string{`{"assets":[]}`, `{"message":"  ","assets":[]}`, `{"message":"hi"}`, `nope`} {
		rec := postChat(h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.JSONEq(t, `{"error":"Message and assets are required"}`, postChat(h, `{"message":"hi"}`).Body.String())
}

func TestChatFailure(t *testing.T) {
	h := NewChatHandler(advisorFunc(func(context.Context, string, []models.Asset) (string, error) {
		return "", errors.New("upstream down")
	}), 0, zap.NewNop())

	rec := postChat(h, `{"message":"hi","assets":[]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to process chat message"}`, rec.Body.String())
}
