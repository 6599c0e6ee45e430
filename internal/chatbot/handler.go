package chatbot

import (
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/healthmate-api/internal/httputil"
	"github.com/redmonkez12/healthmate-api/internal/logging"
)

const maxChatBody = 64 << 10

// Handler serves POST /chatbot.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type ChatRequest struct {
	Question any    `json:"question"`
	Language string `json:"language,omitempty"`
	Context  string `json:"context,omitempty"`
}

type ChatResponse struct {
	Response         string `json:"response"`
	DetectedLanguage string `json:"detectedLanguage"`
}

// Chat answers a health question
// @Summary      Ask the health assistant
// @Description  Answers in Hindi or English. The language is detected from the question unless given.
// @Tags         chatbot
// @Accept       json
// @Produce      json
// @Param        request body ChatRequest true "Question"
// @Success      200 {object} ChatResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Failure      502 {object} httputil.ErrorResponse "No model available upstream"
// @Router       /chatbot [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	if !h.service.Configured() {
		logger.Error("chatbot called without GEMINI_API_KEY")
		httputil.RespondError(w, "Server missing GEMINI_API_KEY", http.StatusInternalServerError)
		return
	}

	var req ChatRequest
	if err := httputil.DecodeJSON(r, &req, maxChatBody); err != nil {
		logger.Warn("invalid chatbot request body", "error", err)
		httputil.RespondError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	question, ok := req.Question.(string)
	if !ok || strings.TrimSpace(question) == "" {
		httputil.RespondError(w, "Question is required", http.StatusBadRequest)
		return
	}

	answer, err := h.service.Ask(r.Context(), question, req.Language)
	if err != nil {
		status := http.StatusInternalServerError
		var genErr *GenerationError
		if errors.As(err, &genErr) && genErr.UpstreamNotFound() {
			status = http.StatusBadGateway
		}
		logger.Error("chatbot generation failed", "error", err, "status", status)
		httputil.RespondErrorWithDetails(w, "AI service failed", err.Error(), status)
		return
	}

	logger.Info("chatbot answered", "model", answer.Model, "language", answer.Language)
	httputil.RespondJSON(w, ChatResponse{
		Response:         answer.Text,
		DetectedLanguage: answer.Language,
	}, http.StatusOK)
}
