package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shaiso/Nodeflow/internal/engine"
	"github.com/shaiso/Nodeflow/internal/executor"
	"github.com/shaiso/Nodeflow/internal/repo"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Error
}

func TestHandleRepoError_NotFoundDetail(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	// Без явного сообщения берётся ресурс и ID из ошибки репозитория
	rec := httptest.NewRecorder()
	err := fmt.Errorf("get: %w", &repo.NotFoundError{Resource: "chain", ID: "c1"})
	if !HandleRepoError(rec, logger, err, "") {
		t.Fatal("expected error to be handled")
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d", rec.Code)
	}
	if detail := decodeError(t, rec); detail.Message != "chain c1: not found" {
		t.Errorf("message: got %q", detail.Message)
	}

	// Явное сообщение имеет приоритет
	rec = httptest.NewRecorder()
	HandleRepoError(rec, logger, err, "chain not found")
	if detail := decodeError(t, rec); detail.Message != "chain not found" {
		t.Errorf("explicit message: got %q", detail.Message)
	}
}

func TestHandleRepoError_NilError(t *testing.T) {
	rec := httptest.NewRecorder()
	if HandleRepoError(rec, slog.New(slog.DiscardHandler), nil, "") {
		t.Error("nil error must not be handled")
	}
}

func TestHandleRunError(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	cases := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{
			name:   "invalid graph",
			err:    engine.NewValidationError("n1", "", "duplicate node ID", engine.ErrDuplicateNodeID),
			status: http.StatusBadRequest,
			code:   ErrCodeBadRequest,
		},
		{
			name:   "empty chain",
			err:    fmt.Errorf("run: %w", executor.ErrEmptyChain),
			status: http.StatusUnprocessableEntity,
			code:   ErrCodeInvalidState,
		},
		{
			name:   "unknown",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   ErrCodeInternalError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleRunError(rec, logger, tc.err)
			if rec.Code != tc.status {
				t.Errorf("status: got %d, want %d", rec.Code, tc.status)
			}
			if detail := decodeError(t, rec); detail.Code != tc.code {
				t.Errorf("code: got %s, want %s", detail.Code, tc.code)
			}
		})
	}
}
