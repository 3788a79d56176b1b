package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/health-records/internal/auth"
	"github.com/vladimiradmaev/health-records/internal/domain"
	apperrors "github.com/vladimiradmaev/health-records/internal/errors"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	oauthAccessDenied = "access_denied"
)

// SessionCloser tears down the live session of an account
type SessionCloser interface {
	Close(accountID string)
}

// AuthService resolves credentials to accounts and issues session tokens
type AuthService struct {
	store             domain.AccountStore
	tokens            auth.TokenService
	google            IdentityProvider
	authorizedDomains []string
	sessions          SessionCloser
}

type AuthServiceOption func(*AuthService)

// WithGoogle enables Google sign-in from the listed domains
func WithGoogle(provider IdentityProvider, authorizedDomains []string) AuthServiceOption {
	return func(s *AuthService) {
		s.google = provider
		s.authorizedDomains = authorizedDomains
	}
}

// WithSessions makes Logout close the account's live session
func WithSessions(sessions SessionCloser) AuthServiceOption {
	return func(s *AuthService) {
		s.sessions = sessions
	}
}

func NewAuthService(store domain.AccountStore, tokens auth.TokenService, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{store: store, tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) issue(account domain.Account) (domain.AuthResponse, error) {
	token, err := s.tokens.GenerateToken(account.ID)
	if err != nil {
		return domain.AuthResponse{}, apperrors.NewInternalError(err)
	}
	return domain.AuthResponse{Token: token, Account: account}, nil
}

func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	if len(req.Password) < minPasswordLength {
		return domain.AuthResponse{}, apperrors.NewAuthError(apperrors.CodeWeakPassword, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AuthResponse{}, apperrors.NewInternalError(err)
	}

	account := domain.Account{
		ID:    uuid.NewString(),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Name:  strings.TrimSpace(req.Name),
	}
	if err := s.store.CreateAccount(ctx, account, string(hash)); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return domain.AuthResponse{}, apperrors.NewAuthError(apperrors.CodeEmailAlreadyInUse, err)
		}
		return domain.AuthResponse{}, apperrors.NewDatabaseError(err)
	}

	logger.Info("Account registered", "account_id", account.ID)
	return s.issue(account)
}

func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	account, hash, err := s.store.FindAccountByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.AuthResponse{}, apperrors.NewAuthError(apperrors.CodeInvalidCredential, err)
	}
	if err != nil {
		return domain.AuthResponse{}, apperrors.NewDatabaseError(err)
	}
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return domain.AuthResponse{}, apperrors.NewAuthError(apperrors.CodeInvalidCredential, nil)
	}
	return s.issue(account)
}

// Authenticate resolves a session token to its account
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Account, error) {
	accountID, err := s.tokens.GetAccountIDFromToken(token)
	if err != nil {
		return domain.Account{}, apperrors.NewAuthError(apperrors.CodeInvalidToken, err)
	}
	account, err := s.store.GetAccount(ctx, accountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.Account{}, apperrors.NewAuthError(apperrors.CodeInvalidToken, err)
	}
	if err != nil {
		return domain.Account{}, apperrors.NewDatabaseError(err)
	}
	return account, nil
}

func (s *AuthService) Account(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, apperrors.NewDatabaseError(err)
	}
	return account, nil
}

// Logout ends the live session; issued tokens simply expire
func (s *AuthService) Logout(accountID string) {
	if s.sessions != nil {
		s.sessions.Close(accountID)
	}
	logger.Info("Account logged out", "account_id", accountID)
}

func (s *AuthService) domainAuthorized(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	for _, d := range s.authorizedDomains {
		if strings.EqualFold(d, host) {
			return true
		}
	}
	return false
}

// GoogleAuthURL starts a Google sign-in for a client served from host
func (s *AuthService) GoogleAuthURL(host string) (string, error) {
	if s.google == nil {
		return "", apperrors.New(apperrors.ErrorTypeValidation, "GOOGLE_DISABLED", "Google sign-in is not configured")
	}
	if !s.domainAuthorized(host) {
		return "", apperrors.NewUnauthorizedDomainError(host)
	}
	state, err := s.tokens.GenerateState()
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return s.google.AuthCodeURL(state), nil
}

// GoogleCallback finishes the sign-in. An existing account with the same email is reused.
func (s *AuthService) GoogleCallback(ctx context.Context, req domain.GoogleCallbackRequest) (domain.AuthResponse, error) {
	if s.google == nil {
		return domain.AuthResponse{}, apperrors.New(apperrors.ErrorTypeValidation, "GOOGLE_DISABLED", "Google sign-in is not configured")
	}
	if req.Error == oauthAccessDenied {
		return domain.AuthResponse{}, apperrors.NewAuthError(apperrors.CodePopupClosedByUser, nil)
	}
	if req.Error != "" {
		return domain.AuthResponse{}, apperrors.NewAuthError(req.Error, fmt.Errorf("google: %s", req.Error))
	}
	if err := s.tokens.ValidateState(req.State); err != nil {
		return domain.AuthResponse{}, apperrors.NewAuthError(apperrors.CodeInvalidToken, err)
	}

	identity, err := s.google.Exchange(ctx, req.Code)
	if err != nil {
		return domain.AuthResponse{}, apperrors.NewExternalAPIError(err, "Google")
	}

	account, _, err := s.store.FindAccountByEmail(ctx, identity.Email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAccountNotFound):
		account, err = s.store.EnsureAccount(ctx, domain.Account{
			ID:    "google_" + identity.Subject,
			Email: identity.Email,
			Name:  identity.Name,
		})
		if err != nil {
			return domain.AuthResponse{}, apperrors.NewDatabaseError(err)
		}
	default:
		return domain.AuthResponse{}, apperrors.NewDatabaseError(err)
	}

	logger.Info("Google sign-in", "account_id", account.ID)
	return s.issue(account)
}
