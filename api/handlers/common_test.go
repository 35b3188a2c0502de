package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asktoapi/engine/llm"
)

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	cases := map[llm.ErrorCode]int{
		llm.ErrInvalidRequest: http.StatusBadRequest,
		llm.ErrUnauthorized:   http.StatusUnauthorized,
		llm.ErrForbidden:      http.StatusForbidden,
		llm.ErrRateLimited:    http.StatusTooManyRequests,
		llm.ErrQuotaExceeded:  http.StatusPaymentRequired,
		llm.ErrTimeout:        http.StatusGatewayTimeout,
		llm.ErrUpstreamError:  http.StatusBadGateway,
		llm.ErrInternalError:  http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, mapErrorCodeToHTTPStatus(code), string(code))
	}
}

func TestWriteErrorUsesErrorHTTPStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, llm.NewError(llm.ErrRateLimited, "slow down").WithHTTPStatus(http.StatusTooManyRequests), nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "LLM_RATE_LIMITED")
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestWriteErrorFallsBackToCodeMapping(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, llm.NewError(llm.ErrUpstreamError, "bad gateway"), nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWriteText(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteText(rec, http.StatusOK, "hello")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "hello", rec.Body.String())
}

func TestResponseWriterCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusOK) // second call ignored
	_, _ = rw.Write([]byte("x"))

	assert.Equal(t, http.StatusAccepted, rw.StatusCode)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
