package dto

import (
	"time"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/shopspring/decimal"
)

// ValidationError is one mismatching table cell.
type ValidationError struct {
	Broker      string  `json:"broker" example:"Bolero"`
	Instrument  string  `json:"instrument" example:"stocks"`
	Amount      string  `json:"amount" example:"5000"`
	Observed    float64 `json:"observed" example:"10"`
	Expected    float64 `json:"expected" example:"15"`
	Explanation string  `json:"explanation" example:"1 x EUR15.00 per EUR10,000 slice -> EUR15.00"`
}

// ValidationResponse is returned by POST /api/v1/tables/validate.
//
// Checkable is false when no cell had ground truth; such a table is
// reported valid but nothing was verified.
type ValidationResponse struct {
	RunID      string            `json:"run_id,omitempty" example:"7b0c8a43-54a6-4f5e-9d8f-9a1f0e2b3c4d"`
	Valid      bool              `json:"valid" example:"false"`
	Checkable  bool              `json:"checkable" example:"true"`
	Checked    int               `json:"checked" example:"2"`
	Passed     int               `json:"passed" example:"1"`
	Errors     []ValidationError `json:"errors"`
	Correction string            `json:"correction,omitempty"`
}

// PatchRequest is the body of POST /api/v1/tables/patch. When Errors is
// empty the table is validated first and every mismatch is patched.
type PatchRequest struct {
	Table  map[string]any    `json:"table" binding:"required"`
	Errors []ValidationError `json:"errors"`
}

// PatchResponse returns the patched table.
type PatchResponse struct {
	Table   map[string]any    `json:"table"`
	Patched int               `json:"patched" example:"1"`
	Applied []ValidationError `json:"applied"`
}

// ReconcileRequest replays successive generation attempts through the
// validate, correct and patch loop.
type ReconcileRequest struct {
	Prompt     string           `json:"prompt" example:"Build the Euronext Brussels fee table."`
	Candidates []map[string]any `json:"candidates" binding:"required,min=1"`
}

// ReconcileResponse is the final table of a reconciliation.
type ReconcileResponse struct {
	Outcome     string             `json:"outcome" example:"patched"`
	Attempts    int                `json:"attempts" example:"3"`
	Patched     int                `json:"patched" example:"1"`
	Corrections []string           `json:"corrections"`
	Result      ValidationResponse `json:"result"`
	Table       map[string]any     `json:"table"`
}

// ValidationRun is a persisted validation run.
type ValidationRun struct {
	ID         string    `json:"id" example:"7b0c8a43-54a6-4f5e-9d8f-9a1f0e2b3c4d"`
	Source     string    `json:"source" example:"api"`
	Valid      bool      `json:"valid" example:"true"`
	Checked    int       `json:"checked" example:"126"`
	Passed     int       `json:"passed" example:"126"`
	ErrorCount int       `json:"error_count" example:"0"`
	CreatedAt  time.Time `json:"created_at" example:"2025-09-11T10:00:00Z"`
}

// NewValidationErrors converts validation errors; the result is never nil.
func NewValidationErrors(in []models.ValidationError) []ValidationError {
	out := make([]ValidationError, 0, len(in))
	for _, e := range in {
		out = append(out, ValidationError{
			Broker:      e.Broker,
			Instrument:  e.Instrument,
			Amount:      e.Amount,
			Observed:    e.Observed.InexactFloat64(),
			Expected:    e.Expected.InexactFloat64(),
			Explanation: e.Explanation,
		})
	}
	return out
}

// Models converts request errors back to domain errors.
func Models(in []ValidationError) []models.ValidationError {
	out := make([]models.ValidationError, 0, len(in))
	for _, e := range in {
		out = append(out, models.ValidationError{
			Broker:      e.Broker,
			Instrument:  e.Instrument,
			Amount:      e.Amount,
			Observed:    decimal.NewFromFloat(e.Observed),
			Expected:    decimal.NewFromFloat(e.Expected),
			Explanation: e.Explanation,
		})
	}
	return out
}

// NewValidationResponse converts a validation result.
func NewValidationResponse(runID string, res models.ValidationResult, correction string) ValidationResponse {
	return ValidationResponse{
		RunID:      runID,
		Valid:      res.Valid,
		Checkable:  res.Checkable(),
		Checked:    res.Checked,
		Passed:     res.Passed,
		Errors:     NewValidationErrors(res.Errors),
		Correction: correction,
	}
}

// NewValidationRuns converts persisted runs; the result is never nil.
func NewValidationRuns(in []models.ValidationRun) []ValidationRun {
	out := make([]ValidationRun, 0, len(in))
	for _, r := range in {
		out = append(out, ValidationRun{
			ID:         r.ID,
			Source:     r.Source,
			Valid:      r.Valid,
			Checked:    r.Checked,
			Passed:     r.Passed,
			ErrorCount: r.ErrorCount,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out
}
