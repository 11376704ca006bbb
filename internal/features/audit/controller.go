package audit

import (
	common_api "go-org/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// RunSweep triggers an on-demand consistency pass.
func (c *AuditController) RunSweep(ctx *fiber.Ctx) error {
	report, err := c.Service.RunSweep(ctx.UserContext())
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(report)
}
