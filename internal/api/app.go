package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/vladimiradmaev/health-records/internal/api/handlers"
	"github.com/vladimiradmaev/health-records/internal/api/middleware"
	"github.com/vladimiradmaev/health-records/internal/api/routes"
	"github.com/vladimiradmaev/health-records/internal/api/validation"
	"github.com/vladimiradmaev/health-records/internal/interfaces"
)

// Dependencies holds everything the HTTP layer calls into
type Dependencies struct {
	Auth         interfaces.AuthServiceInterface
	Vaccines     interfaces.VaccineServiceInterface
	Suggestions  interfaces.SuggestionServiceInterface
	Diet         interfaces.DietServiceInterface
	Sessions     interfaces.SessionToucher
	Subscriber   interfaces.SnapshotSubscriber
	AllowOrigins string
	RateLimit    int
	Heartbeat    time.Duration
	AccessLog    bool
}

// NewApp builds the fiber application; event streams end when shutdown is cancelled
func NewApp(shutdown context.Context, deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "health-records",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
	})
	validate := validation.New()

	if deps.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	routesConfig := routes.Config{
		App:               app,
		AuthHandler:       handlers.NewAuthHandler(deps.Auth, validate),
		VaccineHandler:    handlers.NewVaccineHandler(deps.Vaccines, validate),
		SuggestionHandler: handlers.NewSuggestionHandler(deps.Suggestions),
		DietHandler:       handlers.NewDietHandler(deps.Diet, validate),
		EventsHandler:     handlers.NewEventsHandler(shutdown, deps.Subscriber, deps.Heartbeat),
		Middleware:        middleware.NewMiddleware(deps.Auth, deps.Sessions, deps.AllowOrigins, deps.RateLimit),
	}
	routesConfig.Setup()
	return app
}
