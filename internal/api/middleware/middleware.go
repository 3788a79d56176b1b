package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/vladimiradmaev/health-records/internal/api/presenters"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/interfaces"
	"github.com/vladimiradmaev/health-records/internal/logger"
)

// LocalAccountID is the fiber.Ctx local holding the authenticated account id
const LocalAccountID = "user_id"

type (
	Middleware interface {
		AuthMiddleware() fiber.Handler
		CORSMiddleware() fiber.Handler
		RateLimitMiddleware() fiber.Handler
		RecoverMiddleware() fiber.Handler
	}

	middleware struct {
		auth         interfaces.AuthServiceInterface
		sessions     interfaces.SessionToucher
		allowOrigins string
		rateLimit    int
	}
)

func NewMiddleware(auth interfaces.AuthServiceInterface, sessions interfaces.SessionToucher, allowOrigins string, rateLimit int) Middleware {
	return &middleware{
		auth:         auth,
		sessions:     sessions,
		allowOrigins: allowOrigins,
		rateLimit:    rateLimit,
	}
}

// AuthMiddleware accepts a bearer token, or a token query parameter for
// event streams, and keeps the account's session alive
func (m *middleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, domain.ErrTokenNotFound)
		}

		account, err := m.auth.Authenticate(c.Context(), token)
		if err != nil {
			logger.Debug("Rejected token", "path", c.Path(), "error", err)
			return presenters.ServiceError(c, domain.MessageFailedTokenInvalid, err)
		}

		c.Locals(LocalAccountID, account.ID)
		c.SetUserContext(logger.ContextWithFields(c.UserContext(), "account_id", account.ID))
		if m.sessions != nil {
			m.sessions.Touch(account.ID)
		}
		return c.Next()
	}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: m.allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}

func (m *middleware) RateLimitMiddleware() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        m.rateLimit,
		Expiration: 1 * time.Second,
		Next: func(c *fiber.Ctx) bool {
			return m.rateLimit <= 0
		},
	})
}

func (m *middleware) RecoverMiddleware() fiber.Handler {
	return recover.New(recover.Config{EnableStackTrace: true})
}

// AccountID returns the account set by AuthMiddleware
func AccountID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalAccountID).(string)
	return id
}
