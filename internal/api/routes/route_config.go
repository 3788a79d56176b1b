package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vladimiradmaev/health-records/internal/api/handlers"
	"github.com/vladimiradmaev/health-records/internal/api/middleware"
)

type Config struct {
	App               *fiber.App
	AuthHandler       handlers.AuthHandler
	VaccineHandler    handlers.VaccineHandler
	SuggestionHandler handlers.SuggestionHandler
	DietHandler       handlers.DietHandler
	EventsHandler     handlers.EventsHandler
	Middleware        middleware.Middleware
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.RecoverMiddleware())
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.Auth()
	c.Vaccines()
	c.Suggestions()
	c.Diet()
	c.Events()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/v1/auth")
	{
		auth.Post("/register", c.Middleware.RateLimitMiddleware(), c.AuthHandler.Register)
		auth.Post("/login", c.Middleware.RateLimitMiddleware(), c.AuthHandler.Login)
		auth.Get("/google", c.AuthHandler.GoogleURL)
		auth.Get("/google/callback", c.AuthHandler.GoogleCallback)
		auth.Post("/logout", c.Middleware.AuthMiddleware(), c.AuthHandler.Logout)
		auth.Get("/me", c.Middleware.AuthMiddleware(), c.AuthHandler.Me)
	}
}

func (c *Config) Vaccines() {
	vaccines := c.App.Group("/api/v1/vaccines", c.Middleware.AuthMiddleware())

	vaccines.Get("", c.VaccineHandler.GetVaccines)
	vaccines.Post("", c.VaccineHandler.AddVaccine)
	vaccines.Get("/upcoming", c.VaccineHandler.GetUpcoming)
	vaccines.Get("/overdue", c.VaccineHandler.GetOverdue)
	vaccines.Get("/quick-add", c.VaccineHandler.GetQuickAdd)
	vaccines.Get("/export", c.VaccineHandler.Export)
	vaccines.Get("/:id", c.VaccineHandler.GetVaccine)
	vaccines.Put("/:id", c.VaccineHandler.EditVaccine)
	vaccines.Delete("/:id", c.VaccineHandler.DeleteVaccine)

	// analysis and dose actions
	vaccines.Post("/:id/confirm-dose", c.VaccineHandler.ConfirmDose)
	vaccines.Post("/:id/analysis/accept", c.VaccineHandler.AcceptAnalysis)
	vaccines.Post("/:id/analysis/dismiss", c.VaccineHandler.DismissAnalysis)
}

func (c *Config) Suggestions() {
	suggestions := c.App.Group("/api/v1/suggestions", c.Middleware.AuthMiddleware())
	suggestions.Get("", c.SuggestionHandler.GetSuggestions)
	suggestions.Delete("/:id", c.SuggestionHandler.DismissSuggestion)
}

func (c *Config) Diet() {
	diet := c.App.Group("/api/v1/diet", c.Middleware.AuthMiddleware())
	diet.Get("", c.DietHandler.GetEntries)
	diet.Post("", c.DietHandler.AddEntries)
	diet.Get("/suggestions", c.DietHandler.GetSuggestions)
	diet.Get("/timeline", c.DietHandler.GetTimeline)
	diet.Delete("/:id", c.DietHandler.DeleteEntry)
}

func (c *Config) Events() {
	c.App.Get("/api/v1/events", c.Middleware.AuthMiddleware(), c.EventsHandler.Stream)
}
