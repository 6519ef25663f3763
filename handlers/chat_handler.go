package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ejjays/assets-management/chat"
	"github.com/ejjays/assets-management/middleware"
	"github.com/ejjays/assets-management/models"
	"github.com/ejjays/assets-management/utils"
)

const defaultChatTimeout = 30 * time.Second

// ChatRequest is the body of POST /chat and of each websocket chat frame.
type ChatRequest struct {
	Message string          `json:"message"`
	Assets  *[]models.Asset `json:"assets"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ChatHandler struct {
	advisor chat.Advisor
	timeout time.Duration
	log     *zap.Logger
}

func NewChatHandler(advisor chat.Advisor, timeout time.Duration, log *zap.Logger) *ChatHandler {
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	return &ChatHandler{advisor: advisor, timeout: timeout, log: log}
}

// Answer runs one stateless exchange. It is shared with the websocket transport.
func (h *ChatHandler) Answer(ctx context.Context, req ChatRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.advisor.Advise(ctx, strings.TrimSpace(req.Message), *req.Assets)
}

// Validate reports the client-facing problem with req, or "".
func (req ChatRequest) Validate() string {
	if strings.TrimSpace(req.Message) == "" || req.Assets == nil {
		return "Message and assets are required"
	}
	return ""
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err, "")
		return
	}
	if msg := req.Validate(); msg != "" {
		utils.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	text, err := h.Answer(r.Context(), req)
	if err != nil {
		h.log.Error("chat failed",
			zap.Error(err),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to process chat message")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ChatResponse{Response: text})
}
