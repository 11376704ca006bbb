package group

import (
	"go-org/internal/config"
	"go-org/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type GroupApi struct {
	controller *GroupController
	config     *config.Config
}

func NewGroupApi(controller *GroupController, config *config.Config) *GroupApi {
	return &GroupApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all group-related routes
func (h *GroupApi) Setup(app *fiber.App) {
	groups := app.Group("/api/groups", middleware.AuthMiddleware(h.config.SkipAuth))

	groups.Post("/", h.controller.CreateGroup)
	groups.Get("/", h.controller.GetAllGroups)
	groups.Get("/:id", h.controller.GetGroup)
	groups.Put("/:id", h.controller.UpdateGroup)
	groups.Delete("/:id", h.controller.DeleteGroup)

	groups.Put("/:id/children", h.controller.ChildrenAdoption)
	groups.Get("/:id/subtree", h.controller.GetSubtree)
}
