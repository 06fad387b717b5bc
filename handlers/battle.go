// handlers/battle.go
package handlers

import (
	"errors"
	"log"

	"dish-battle-server/middleware"
	"dish-battle-server/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBattleRoutes(app *fiber.App, battleService *services.BattleService) {
	app.Get("/health", battleService.Health)
	app.Post("/battle", middleware.RequireJSON(), battleService.RunBattle)
	app.Get("/battles/:id", battleService.GetBattle)

	// Matchmaking needs the caller's identity for the pool's self-match rule.
	mm := app.Group("/matchmaking", middleware.UserContextMiddleware(true))
	mm.Post("/teams", middleware.RequireJSON(), battleService.AddTeam)
	mm.Post("/match", middleware.RequireJSON(), battleService.RequestMatch)
}

// ErrorHandler renders errors that escape the handlers, including the ones
// fiber raises itself (body limit, unknown route), in the {error} envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
		if code == fiber.StatusRequestEntityTooLarge {
			msg = "Request body too large"
		}
	} else {
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
