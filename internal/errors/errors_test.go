package errors

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMessage(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{CodeInvalidCredential, "Invalid email or password."},
		{CodeEmailAlreadyInUse, "Email already registered."},
		{CodeWeakPassword, "Password should be at least 6 characters."},
		{CodePopupClosedByUser, "Sign-in cancelled."},
		{"auth/network-request-failed", "Error: network down"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AuthMessage(tt.code, "network down"), tt.code)
	}
}

func TestUnauthorizedDomainError(t *testing.T) {
	err := NewUnauthorizedDomainError("example.org")

	code, ok := AuthCode(err)
	require.True(t, ok)
	assert.Equal(t, CodeUnauthorizedDomain, code)
	assert.Equal(t, "example.org", err.Context["domain"])
	assert.Equal(t, http.StatusForbidden, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewValidationError("bad")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NewNotFoundError("vaccine")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(NewConflictError(nil, "busy")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(NewAuthError(CodeInvalidCredential, nil)))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("wrapped: %w", ErrAccountNotFound)))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(NewTimeoutError("analyze_vaccine")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(NewExternalAPIError(stderrors.New("down"), "Google")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("plain")))
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewDatabaseError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Source, "errors_test.go")
}

func TestHandlerLogsByType(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.New(slog.NewTextHandler(&buf, nil)))

	h.Handle(context.Background(), NewValidationError("bad input"))
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	h.Handle(context.Background(), NewInternalError(stderrors.New("boom")))
	assert.Contains(t, buf.String(), "level=ERROR")

	buf.Reset()
	h.Handle(context.Background(), nil)
	assert.Empty(t, buf.String())
}
