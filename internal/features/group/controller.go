package group

import (
	common_api "go-org/internal/common/api"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GroupController struct {
	Service GroupService
}

func NewGroupController(service GroupService) *GroupController {
	return &GroupController{Service: service}
}

type CreateGroupRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Clearance int    `json:"clearance,omitempty"`
}

type ChildrenAdoptionRequest struct {
	ChildIDs []string `json:"childIds"`
}

// CreateGroup godoc
func (c *GroupController) CreateGroup(ctx *fiber.Ctx) error {
	var req CreateGroupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	group := &Group{
		Name:      req.Name,
		Type:      req.Type,
		Clearance: req.Clearance,
	}
	if err := c.Service.CreateGroup(ctx.UserContext(), group); err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(group)
}

// GetAllGroups godoc
func (c *GroupController) GetAllGroups(ctx *fiber.Ctx) error {
	groups, err := c.Service.GetAllGroups(ctx.UserContext())
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(groups)
}

// GetGroup godoc
func (c *GroupController) GetGroup(ctx *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	group, err := c.Service.GetGroup(ctx.UserContext(), id)
	if err != nil {
		return common_api.Fail(ctx, err)
	}
	if group == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	return ctx.JSON(group)
}

// UpdateGroup godoc
func (c *GroupController) UpdateGroup(ctx *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	var in UpdateGroupInput
	if err := ctx.BodyParser(&in); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	group, err := c.Service.UpdateGroup(ctx.UserContext(), id, in)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(group)
}

// ChildrenAdoption godoc
func (c *GroupController) ChildrenAdoption(ctx *fiber.Ctx) error {
	parentID, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	var req ChildrenAdoptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	childIDs := make([]primitive.ObjectID, 0, len(req.ChildIDs))
	for _, raw := range req.ChildIDs {
		childID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid child ID: " + raw,
			})
		}
		childIDs = append(childIDs, childID)
	}

	if err := c.Service.ChildrenAdoption(ctx.UserContext(), parentID, childIDs); err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "Children adopted successfully",
	})
}

// DeleteGroup godoc
func (c *GroupController) DeleteGroup(ctx *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	if err := c.Service.DeleteGroup(ctx.UserContext(), id); err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "Group deleted successfully",
	})
}

// GetSubtree godoc
func (c *GroupController) GetSubtree(ctx *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	groups, err := c.Service.CollectSubtree(ctx.UserContext(), id)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(groups)
}
