package person

import (
	"go-org/internal/config"
	"go-org/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PersonApi struct {
	controller *PersonController
	config     *config.Config
}

func NewPersonApi(controller *PersonController, config *config.Config) *PersonApi {
	return &PersonApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all person-related routes
func (h *PersonApi) Setup(app *fiber.App) {
	persons := app.Group("/api/persons", middleware.AuthMiddleware(h.config.SkipAuth))

	persons.Post("/", h.controller.CreatePerson)
	persons.Get("/", h.controller.ListPersons)
	// Registered before /:id so "updated" is not captured as an id.
	persons.Get("/updated", h.controller.ListUpdated)
	persons.Get("/:id", h.controller.GetPerson)
	persons.Put("/:id", h.controller.UpdatePerson)
	persons.Delete("/:id", h.controller.RemovePerson)

	persons.Put("/:id/discharge", h.controller.DischargePerson)
	persons.Put("/:id/assign", h.controller.AssignPerson)
	persons.Put("/:id/manage", h.controller.ManagePerson)

	// Membership reads hang off the group resource but resolve persons.
	groups := app.Group("/api/groups", middleware.AuthMiddleware(h.config.SkipAuth))
	groups.Get("/:id/members", h.controller.GetGroupMembers)
	groups.Get("/:id/export", h.controller.ExportRoster)
}
