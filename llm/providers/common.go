// Package providers holds the shared wire types and error mapping used by
// the concrete LLM provider clients.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/asktoapi/engine/llm"
)

// ClassifyTransportError distinguishes deadline expiry from other transport
// failures so callers can surface a retryable timeout. The original error is
// kept as the cause for errors.Is chains.
func ClassifyTransportError(err error, provider string) *llm.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.Error{
			Code: llm.ErrTimeout, Message: "request deadline exceeded",
			HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
			Provider: provider, Cause: err,
		}
	}
	return &llm.Error{
		Code: llm.ErrUpstreamError, Message: "transport failure",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Provider: provider, Cause: err,
	}
}

// MapHTTPError maps an upstream HTTP status to an llm.Error with the
// appropriate retryability flag.
func MapHTTPError(status int, msg string, provider string) *llm.Error {
	switch status {
	case http.StatusUnauthorized:
		return &llm.Error{Code: llm.ErrUnauthorized, Message: msg, HTTPStatus: status, Provider: provider}
	case http.StatusForbidden:
		return &llm.Error{Code: llm.ErrForbidden, Message: msg, HTTPStatus: status, Provider: provider}
	case http.StatusTooManyRequests:
		return &llm.Error{Code: llm.ErrRateLimited, Message: msg, HTTPStatus: status, Retryable: true, Provider: provider}
	case http.StatusBadRequest:
		msgLower := strings.ToLower(msg)
		if strings.Contains(msgLower, "quota") ||
			strings.Contains(msgLower, "credit") ||
			strings.Contains(msgLower, "limit") {
			return &llm.Error{Code: llm.ErrQuotaExceeded, Message: msg, HTTPStatus: status, Provider: provider}
		}
		return &llm.Error{Code: llm.ErrInvalidRequest, Message: msg, HTTPStatus: status, Provider: provider}
	case http.StatusGatewayTimeout:
		return &llm.Error{Code: llm.ErrTimeout, Message: msg, HTTPStatus: status, Retryable: true, Provider: provider}
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return &llm.Error{Code: llm.ErrUpstreamError, Message: msg, HTTPStatus: status, Retryable: true, Provider: provider}
	default:
		return &llm.Error{
			Code: llm.ErrUpstreamError, Message: msg, HTTPStatus: status,
			Retryable: status >= 500, Provider: provider,
		}
	}
}

// ReadErrorMessage extracts a human-readable message from an upstream error
// body, falling back to the raw text when it is not the usual JSON shape.
func ReadErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "upstream returned an empty error body"
	}
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return msg
}

// ChooseModel picks the request model, then the configured default,
// then the fallback.
func ChooseModel(requested, configured, fallback string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return fallback
}

// OpenAICompatRequest is the chat completions request body shared by
// OpenAI-compatible APIs.
type OpenAICompatRequest struct {
	Model       string              `json:"model"`
	Messages    []OpenAICompatMsg   `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float32             `json:"temperature,omitempty"`
	TopP        float32             `json:"top_p,omitempty"`
	Stop        []string            `json:"stop,omitempty"`
}

type OpenAICompatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAICompatResponse is the chat completions response body.
type OpenAICompatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Index        int    `json:"index"`
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ConvertMessages maps llm.Messages to the OpenAI wire shape.
func ConvertMessages(msgs []llm.Message) []OpenAICompatMsg {
	out := make([]OpenAICompatMsg, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, OpenAICompatMsg{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// ToChatResponse converts the wire response to the neutral llm.ChatResponse.
func ToChatResponse(resp OpenAICompatResponse, provider string) *llm.ChatResponse {
	choices := make([]llm.ChatChoice, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		choices = append(choices, llm.ChatChoice{
			Index:        c.Index,
			FinishReason: c.FinishReason,
			Message: llm.Message{
				Role:    llm.Role(c.Message.Role),
				Content: c.Message.Content,
			},
		})
	}
	return &llm.ChatResponse{
		ID:       resp.ID,
		Provider: provider,
		Model:    resp.Model,
		Choices:  choices,
		Usage: llm.ChatUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
}
