package errors

import (
	"errors"
	"fmt"
)

// Identity provider error codes
const (
	CodeInvalidCredential  = "auth/invalid-credential"
	CodeEmailAlreadyInUse  = "auth/email-already-in-use"
	CodeWeakPassword       = "auth/weak-password"
	CodePopupClosedByUser  = "auth/popup-closed-by-user"
	CodeUnauthorizedDomain = "auth/unauthorized-domain"
	CodeInvalidToken       = "auth/invalid-token"
)

// AuthMessage returns the text shown to the user for a provider error code
func AuthMessage(code, raw string) string {
	switch code {
	case CodeInvalidCredential:
		return "Invalid email or password."
	case CodeEmailAlreadyInUse:
		return "Email already registered."
	case CodeWeakPassword:
		return "Password should be at least 6 characters."
	case CodePopupClosedByUser:
		return "Sign-in cancelled."
	case CodeUnauthorizedDomain:
		return "This domain is not authorized for sign-in. Add it to the authorized domains list."
	default:
		return "Error: " + raw
	}
}

// NewAuthError builds an auth error carrying the provider code and its user message
func NewAuthError(code string, internal error) *AppError {
	raw := code
	if internal != nil {
		raw = internal.Error()
	}
	return Wrap(internal, ErrorTypeAuth, code, AuthMessage(code, raw))
}

// NewUnauthorizedDomainError carries the domain the user must authorize
func NewUnauthorizedDomainError(domain string) *AppError {
	return NewAuthError(CodeUnauthorizedDomain, fmt.Errorf("domain %q is not authorized", domain)).
		WithContext("domain", domain)
}

// AuthCode extracts the provider code from err, if it is an auth error
func AuthCode(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Type == ErrorTypeAuth {
		return appErr.Code, true
	}
	return "", false
}
