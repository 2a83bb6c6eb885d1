package command

import (
	"context"
	"errors"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DECISION COMMANDS
// Record the provider's decision (won or rejected) or withdraw the
// application. Won and rejected are only reachable from in-progress or
// submitted; all three outcomes are terminal.
// ══════════════════════════════════════════════════════════════════════════════

// RecordWinCommand records a winning decision.
type RecordWinCommand struct {
	// ApplicationID identifies the application.
	ApplicationID string

	// OwnerID is the acting student, for the ownership check.
	OwnerID string

	// Award optionally records the payout details.
	Award *application.AwardDetails
}

// Validate validates the command.
func (c RecordWinCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("record_win: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("record_win: owner_id is required")
	}
	if c.Award != nil && c.Award.Amount < 0 {
		return errors.New("record_win: award amount cannot be negative")
	}
	return nil
}

// RecordRejectionCommand records a rejection.
type RecordRejectionCommand struct {
	ApplicationID string
	OwnerID       string

	// Feedback is the provider's optional rejection feedback.
	Feedback string
}

// Validate validates the command.
func (c RecordRejectionCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("record_rejection: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("record_rejection: owner_id is required")
	}
	return nil
}

// WithdrawCommand withdraws an application.
type WithdrawCommand struct {
	ApplicationID string
	OwnerID       string
}

// Validate validates the command.
func (c WithdrawCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("withdraw: application_id is required")
	}
	if c.OwnerID == "" {
		return errors.New("withdraw: owner_id is required")
	}
	return nil
}

// DecisionResult is the shared result of decision commands.
type DecisionResult struct {
	// Application is the aggregate after the transition.
	Application *application.Application
}

// DecisionHandler handles decision commands.
type DecisionHandler struct {
	repo  application.Repository
	cache application.Cache
	log   *logger.Logger
}

// NewDecisionHandler creates a new DecisionHandler.
func NewDecisionHandler(
	repo application.Repository,
	cache application.Cache,
	log *logger.Logger,
) *DecisionHandler {
	return &DecisionHandler{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// HandleWin executes the record win command.
func (h *DecisionHandler) HandleWin(ctx context.Context, cmd RecordWinCommand) (*DecisionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "RecordWin", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := app.RecordWin(cmd.Award); err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	amount := 0.0
	if cmd.Award != nil {
		amount = cmd.Award.Amount
	}
	h.log.Info("application won",
		logger.ApplicationID(app.ID),
		logger.OwnerID(app.OwnerID),
		logger.Float64("award_amount", amount),
	)

	return &DecisionResult{Application: app}, nil
}

// HandleRejection executes the record rejection command.
func (h *DecisionHandler) HandleRejection(ctx context.Context, cmd RecordRejectionCommand) (*DecisionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "RecordRejection", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := app.RecordRejection(cmd.Feedback); err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("application rejected",
		logger.ApplicationID(app.ID),
		logger.OwnerID(app.OwnerID),
	)

	return &DecisionResult{Application: app}, nil
}

// HandleWithdraw executes the withdraw command.
func (h *DecisionHandler) HandleWithdraw(ctx context.Context, cmd WithdrawCommand) (*DecisionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "Withdraw", shared.ErrValidation, err.Error(), err)
	}

	app, err := loadOwned(ctx, h.repo, cmd.ApplicationID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := app.Withdraw(); err != nil {
		return nil, err
	}

	if err := persist(ctx, h.repo, h.cache, h.log, app); err != nil {
		return nil, err
	}

	h.log.Info("application withdrawn",
		logger.ApplicationID(app.ID),
		logger.OwnerID(app.OwnerID),
	)

	return &DecisionResult{Application: app}, nil
}
