package api

import (
	"clinic-assistant/docs"
	"clinic-assistant/internal/api/handlers"
	"clinic-assistant/pkg/auth"
	"clinic-assistant/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	Chat   *handlers.ChatHandler
	Health *handlers.HealthHandler
}

func SetupRouter(h Handlers, jwtManager *auth.JWTManager, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-Chat-Session",
		ExposeHeaders: "X-Chat-Session",
	}))
	app.Use(logger.New())

	// importing docs registers the OpenAPI document with swag
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	if h.Health != nil {
		app.Get("/health", h.Health.Health)
	}

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)
	authGroup.Get("/me", middleware.AuthMiddleware(jwtManager, appLogger), h.Auth.Me)

	// Chat accepts guests; the token only identifies the patient when present
	chat := app.Group("/api/v1/chat", middleware.OptionalAuth(jwtManager, appLogger))
	chat.Post("", h.Chat.SendMessage)
	chat.Get("/menu", h.Chat.Menu)
	chat.Get("/history", middleware.AuthMiddleware(jwtManager, appLogger), h.Chat.History)

	return app
}
