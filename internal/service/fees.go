package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/guttosm/brokerfees/internal/comparison"
	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/fees"
	"github.com/guttosm/brokerfees/internal/logger"
	"github.com/guttosm/brokerfees/internal/storage"
	"github.com/guttosm/brokerfees/internal/validation"
	"github.com/shopspring/decimal"
)

// ErrNoStore is returned by history queries when no repository is configured.
var ErrNoStore = errors.New("validation history is not configured")

// Report is the outcome of validating one table.
type Report struct {
	RunID      string
	Result     models.ValidationResult
	Correction string
}

// FeeService defines the operations exposed over HTTP and the CLI.
// This decouples handlers from the fee engine and the data access layer.
type FeeService interface {
	Quote(broker, instrument string, amount decimal.Decimal) (fees.Quote, bool)
	Comparison(brokers []string) validation.Table
	Personas(brokers []string) []comparison.PersonaRanking
	ValidateTable(ctx context.Context, source string, table validation.Table) Report
	PatchTable(table validation.Table, errs []models.ValidationError) ([]models.ValidationError, int)
	RecentRuns(ctx context.Context, limit int) ([]models.ValidationRun, error)
	RunErrors(ctx context.Context, runID string) ([]models.ValidationError, error)
}

type feeService struct {
	calc      *fees.Calculator
	validator *validation.Validator
	repo      storage.ValidationRepository
}

// NewFeeService wires the calculator to a validator. repo may be nil, in
// which case validation runs are not persisted.
func NewFeeService(calc *fees.Calculator, repo storage.ValidationRepository) FeeService {
	return &feeService{
		calc:      calc,
		validator: validation.NewValidator(calc),
		repo:      repo,
	}
}

func (s *feeService) Quote(broker, instrument string, amount decimal.Decimal) (fees.Quote, bool) {
	return s.calc.Quote(broker, instrument, amount)
}

func (s *feeService) Comparison(brokers []string) validation.Table {
	return comparison.BuildTables(s.calc, brokers)
}

func (s *feeService) Personas(brokers []string) []comparison.PersonaRanking {
	return comparison.RankPersonas(s.calc, brokers)
}

// ValidateTable validates table and records the run. A failure to record is
// logged and leaves RunID empty; the validation result is returned regardless.
func (s *feeService) ValidateTable(ctx context.Context, source string, table validation.Table) Report {
	res := s.validator.Validate(table)
	rep := Report{Result: res, Correction: validation.BuildCorrectionText(res.Errors)}
	if s.repo == nil {
		return rep
	}

	run := models.ValidationRun{
		ID:         uuid.NewString(),
		Source:     source,
		Valid:      res.Valid,
		Checked:    res.Checked,
		Passed:     res.Passed,
		ErrorCount: len(res.Errors),
		CreatedAt:  time.Now().UTC(),
		Errors:     res.Errors,
	}
	if err := s.repo.InsertRun(ctx, run); err != nil {
		logger.L().Error().Err(err).Str("source", source).Msg("failed to record validation run")
		return rep
	}
	rep.RunID = run.ID
	return rep
}

// PatchTable patches table in place. When errs is empty the table is
// validated first and the errors found are patched. It returns the errors
// that were applied and the number of cells written.
func (s *feeService) PatchTable(table validation.Table, errs []models.ValidationError) ([]models.ValidationError, int) {
	if len(errs) == 0 {
		errs = s.validator.Validate(table).Errors
	}
	return errs, validation.Patch(table, errs)
}

func (s *feeService) RecentRuns(ctx context.Context, limit int) ([]models.ValidationRun, error) {
	if s.repo == nil {
		return nil, ErrNoStore
	}
	return s.repo.ListRecentRuns(ctx, limit)
}

func (s *feeService) RunErrors(ctx context.Context, runID string) ([]models.ValidationError, error) {
	if s.repo == nil {
		return nil, ErrNoStore
	}
	return s.repo.GetRunErrors(ctx, runID)
}
