package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/akili/core"
)

// RepairRequest triggers a reconciliation repair for one student.
// A dry run (the default) only reports the diff; apply requires an explicit
// dry_run=false.
type RepairRequest struct {
	Email  string `json:"email" validate:"required,email"`
	DryRun *bool  `json:"dry_run"`
}

func (r *RepairRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

func (r *RepairRequest) IsDryRun() bool {
	if r.DryRun == nil {
		return true
	}
	return *r.DryRun
}

// bindEmailQuery pulls the required `email` query param, cleaned.
func bindEmailQuery(ctx echo.Context) string {
	return core.CleanString(ctx.QueryParam("email"), true /* lower */)
}
