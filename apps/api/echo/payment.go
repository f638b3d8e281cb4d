package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/akili/core"
	"github.com/trezcool/akili/core/payment"
	"github.com/trezcool/akili/core/student"
)

type paymentApi struct {
	svc      *payment.Service
	stdSvc   *student.Service
	logger   core.Logger
	validate *validator.Validate
}

func registerPaymentAPI(
	g *echo.Group,
	svc *payment.Service,
	stdSvc *student.Service,
	logger core.Logger,
	validate *validator.Validate,
) {
	api := paymentApi{
		svc:      svc,
		stdSvc:   stdSvc,
		logger:   logger,
		validate: validate,
	}

	pg := g.Group("/payments")
	pg.GET("", api.history)
	pg.GET("/renewal", api.renewal)
	pg.POST("/repair", api.repair)

	rg := g.Group("/referrals")
	rg.GET("/summary", api.referralSummary)
}

// Handlers

// history returns a student's raw successful payment history, oldest-first.
// Dashboard read: degrades to an empty list on a failed fetch.
func (api *paymentApi) history(ctx echo.Context) error {
	email := bindEmailQuery(ctx)
	if email == "" {
		return ctx.JSON(http.StatusOK, []payment.Event{})
	}

	events, err := api.svc.SuccessfulByEmail(ctx.Request().Context(), email)
	if err != nil {
		api.logger.Error(fmt.Sprintf("querying payment history: %v", err), err)
		events = nil
	}
	if events == nil {
		events = []payment.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

// renewal returns the next-due estimate; null when no significant payment
// exists. Dashboard read: degrades to a null estimate on a failed fetch.
func (api *paymentApi) renewal(ctx echo.Context) error {
	email := bindEmailQuery(ctx)
	if email == "" {
		return ctx.JSON(http.StatusOK, payment.RenewalEstimate{})
	}

	estimate, err := api.svc.RenewalEstimate(ctx.Request().Context(), email)
	if err != nil {
		api.logger.Error(fmt.Sprintf("estimating renewal: %v", err), err)
		estimate = payment.RenewalEstimate{}
	}
	return ctx.JSON(http.StatusOK, estimate)
}

// referralSummary returns the caller's referral commission totals.
// Dashboard read: degrades to zeros on a failed fetch.
func (api *paymentApi) referralSummary(ctx echo.Context) error {
	email := bindEmailQuery(ctx)
	if email == "" {
		return ctx.JSON(http.StatusOK, payment.ReferralSummary{})
	}

	summary, err := api.svc.ReferralSummary(ctx.Request().Context(), email)
	if err != nil {
		api.logger.Error(fmt.Sprintf("summarizing referrals: %v", err), err)
		summary = payment.ReferralSummary{}
	}
	return ctx.JSON(http.StatusOK, summary)
}

// repair recomputes a student's installment slots from the payment log and
// reports (dry run) or writes (apply) the correction. The only mutating
// endpoint; always triggered manually.
func (api *paymentApi) repair(ctx echo.Context) error {
	var data RepairRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RepairRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	report, err := api.stdSvc.Repair(ctx.Request().Context(), data.Email, data.IsDryRun())
	if err != nil {
		return errors.Wrap(err, "repairing student record")
	}
	return ctx.JSON(http.StatusOK, report)
}
