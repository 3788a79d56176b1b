package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vladimiradmaev/health-records/internal/domain"
)

const (
	issuer = "health-records"

	purposeSession    = "session"
	purposeOAuthState = "oauth_state"
)

// Claims carries the standard claims plus the account the token was issued to
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Purpose   string `json:"purpose"`
}

type (
	// TokenService issues and verifies session tokens and OAuth state values
	TokenService interface {
		GenerateToken(accountID string) (string, error)
		GetAccountIDFromToken(token string) (string, error)
		GenerateState() (string, error)
		ValidateState(state string) error
	}

	jwtService struct {
		secretKey []byte
		ttl       time.Duration
		now       func() time.Time
	}
)

// NewJWTService returns an HS256 token service
func NewJWTService(secret string, ttl time.Duration) TokenService {
	return &jwtService{secretKey: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *jwtService) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (j *jwtService) claims(accountID, purpose string, ttl time.Duration) Claims {
	now := j.now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		AccountID: accountID,
		Purpose:   purpose,
	}
}

func (j *jwtService) GenerateToken(accountID string) (string, error) {
	return j.sign(j.claims(accountID, purposeSession, j.ttl))
}

func (j *jwtService) parseToken(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return j.secretKey, nil
}

func (j *jwtService) parse(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, j.parseToken,
		jwt.WithIssuer(issuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !token.Valid || claims.Purpose != purpose {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

func (j *jwtService) GetAccountIDFromToken(tokenString string) (string, error) {
	claims, err := j.parse(tokenString, purposeSession)
	if err != nil {
		return "", err
	}
	if claims.AccountID == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.AccountID, nil
}

// GenerateState returns a short-lived signed value for the OAuth round trip
func (j *jwtService) GenerateState() (string, error) {
	return j.sign(j.claims("", purposeOAuthState, 10*time.Minute))
}

func (j *jwtService) ValidateState(state string) error {
	_, err := j.parse(state, purposeOAuthState)
	return err
}
