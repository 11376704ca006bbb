package person

import (
	"strconv"
	"time"

	common_api "go-org/internal/common/api"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PersonController struct {
	Service PersonService
}

func NewPersonController(service PersonService) *PersonController {
	return &PersonController{Service: service}
}

type CreatePersonRequest struct {
	ID                string `json:"id"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Job               string `json:"job,omitempty"`
	Mail              string `json:"mail,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Rank              string `json:"rank,omitempty"`
	Address           string `json:"address,omitempty"`
	IsSecurityOfficer bool   `json:"isSecurityOfficer,omitempty"`
	Clearance         int    `json:"clearance,omitempty"`
}

type AssignRequest struct {
	GroupID string `json:"groupId"`
}

// CreatePerson godoc
func (c *PersonController) CreatePerson(ctx *fiber.Ctx) error {
	var req CreatePersonRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	person := &Person{
		ID:                req.ID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Job:               req.Job,
		Mail:              req.Mail,
		Phone:             req.Phone,
		Rank:              req.Rank,
		Address:           req.Address,
		IsSecurityOfficer: req.IsSecurityOfficer,
		Clearance:         req.Clearance,
	}

	created, err := c.Service.CreateUser(ctx.UserContext(), person)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// ListPersons godoc
func (c *PersonController) ListPersons(ctx *fiber.Ctx) error {
	persons, err := c.Service.GetUsers(ctx.UserContext())
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(persons)
}

// ListUpdated godoc
func (c *PersonController) ListUpdated(ctx *fiber.Ctx) error {
	from, err1 := strconv.ParseInt(ctx.Query("from"), 10, 64)
	to, err2 := strconv.ParseInt(ctx.Query("to"), 10, 64)
	if err1 != nil || err2 != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "from and to must be unix millisecond timestamps",
		})
	}

	persons, err := c.Service.GetUpdatedFrom(ctx.UserContext(), time.UnixMilli(from), time.UnixMilli(to))
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(persons)
}

// GetPerson godoc
func (c *PersonController) GetPerson(ctx *fiber.Ctx) error {
	person, err := c.Service.GetUser(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return common_api.Fail(ctx, err)
	}
	if person == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Person not found",
		})
	}

	return ctx.JSON(person)
}

// UpdatePerson godoc
func (c *PersonController) UpdatePerson(ctx *fiber.Ctx) error {
	var in UpdatePersonInput
	if err := ctx.BodyParser(&in); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	person, err := c.Service.UpdateUser(ctx.UserContext(), ctx.Params("id"), in)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(person)
}

// RemovePerson godoc
func (c *PersonController) RemovePerson(ctx *fiber.Ctx) error {
	result, err := c.Service.RemoveUser(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(result)
}

// DischargePerson godoc
func (c *PersonController) DischargePerson(ctx *fiber.Ctx) error {
	result, err := c.Service.Discharge(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(result)
}

// AssignPerson godoc
func (c *PersonController) AssignPerson(ctx *fiber.Ctx) error {
	groupID, ok := c.parseGroupID(ctx)
	if !ok {
		return nil
	}

	if err := c.Service.Assign(ctx.UserContext(), ctx.Params("id"), groupID); err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "Person assigned successfully",
	})
}

// ManagePerson godoc
func (c *PersonController) ManagePerson(ctx *fiber.Ctx) error {
	groupID, ok := c.parseGroupID(ctx)
	if !ok {
		return nil
	}

	if err := c.Service.Manage(ctx.UserContext(), ctx.Params("id"), groupID); err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "Person promoted successfully",
	})
}

// GetGroupMembers godoc
func (c *PersonController) GetGroupMembers(ctx *fiber.Ctx) error {
	groupID, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	members, err := c.Service.GetGroupMembers(ctx.UserContext(), groupID)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(members)
}

// ExportRoster godoc
func (c *PersonController) ExportRoster(ctx *fiber.Ctx) error {
	groupID, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	data, filename, err := c.Service.ExportRoster(ctx.UserContext(), groupID)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return ctx.Send(data)
}

// parseGroupID pulls the target group id out of the request body, writing
// the error response itself when the body is malformed.
func (c *PersonController) parseGroupID(ctx *fiber.Ctx) (primitive.ObjectID, bool) {
	var req AssignRequest
	if err := ctx.BodyParser(&req); err != nil {
		ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
		return primitive.NilObjectID, false
	}

	groupID, err := primitive.ObjectIDFromHex(req.GroupID)
	if err != nil {
		ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
		return primitive.NilObjectID, false
	}
	return groupID, true
}
