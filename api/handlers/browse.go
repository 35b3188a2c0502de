package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/asktoapi/engine/browse"
	"github.com/asktoapi/engine/llm"
)

// BrowseRequest is the /ai/browse request body.
type BrowseRequest struct {
	Query string `json:"query"`
}

// BrowseHandler serves natural-language questions about the API catalog.
type BrowseHandler struct {
	chain  *browse.Chain
	logger *zap.Logger
}

// NewBrowseHandler creates a BrowseHandler.
func NewBrowseHandler(chain *browse.Chain, logger *zap.Logger) *BrowseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowseHandler{chain: chain, logger: logger}
}

// HandleBrowse handles POST /ai/browse. The success response is the model's
// answer as plain text; errors use the JSON envelope.
func (h *BrowseHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, llm.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req BrowseRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, llm.ErrInvalidRequest, "query must not be empty", h.logger)
		return
	}

	start := time.Now()
	answer, err := h.chain.Answer(r.Context(), req.Query)
	if err != nil {
		h.writeChainError(w, err)
		return
	}

	h.logger.Info("browse request served",
		zap.Int("query_length", len(req.Query)),
		zap.Int("answer_length", len(answer)),
		zap.Duration("duration", time.Since(start)),
	)
	WriteText(w, http.StatusOK, answer)
}

func (h *BrowseHandler) writeChainError(w http.ResponseWriter, err error) {
	if errors.Is(err, browse.ErrEmptyQuery) {
		WriteErrorMessage(w, http.StatusBadRequest, llm.ErrInvalidRequest, "query must not be empty", h.logger)
		return
	}

	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		WriteError(w, llmErr, h.logger)
		return
	}
	if llm.IsTimeout(err) {
		WriteErrorMessage(w, http.StatusGatewayTimeout, llm.ErrTimeout, "request timed out", h.logger)
		return
	}

	h.logger.Error("browse chain failed", zap.Error(err))
	WriteErrorMessage(w, http.StatusInternalServerError, llm.ErrInternalError, "internal error", h.logger)
}
