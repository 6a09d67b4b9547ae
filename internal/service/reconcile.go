package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/logger"
	"github.com/guttosm/brokerfees/internal/validation"
)

// Generator produces a candidate comparison table for a prompt, typically by
// calling a generative model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (validation.Table, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (validation.Table, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (validation.Table, error) {
	return f(ctx, prompt)
}

// ErrNoCandidate is returned when every generation attempt failed.
var ErrNoCandidate = errors.New("no candidate table was generated")

// Outcome classifies how a reconciliation ended.
type Outcome string

const (
	// OutcomeValid: a candidate matched the calculator on every checked cell.
	OutcomeValid Outcome = "valid"
	// OutcomePatched: retries were exhausted and the last candidate was patched.
	OutcomePatched Outcome = "patched"
	// OutcomeUnverified: the candidate had no cell with ground truth.
	OutcomeUnverified Outcome = "unverified"
)

// Reconciliation is the final table and how it was obtained.
type Reconciliation struct {
	Table    validation.Table
	Result   models.ValidationResult
	Outcome  Outcome
	Attempts int
	Patched  int
	// Corrections holds the correction text sent with each retry.
	Corrections []string
}

// Reconciler runs the generate, validate, correct and patch loop.
type Reconciler struct {
	validator  *validation.Validator
	maxRetries int
}

// NewReconciler returns a Reconciler allowing maxRetries generation attempts
// (at least one).
func NewReconciler(v *validation.Validator, maxRetries int) *Reconciler {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Reconciler{validator: v, maxRetries: maxRetries}
}

// Reconcile asks gen for a table, validates it and retries with the
// correction text appended to prompt until a candidate validates or the
// attempt budget is spent. The last invalid candidate is then patched with
// ground truth. A failed generation call uses up an attempt; cancellation of
// ctx stops the loop.
func (r *Reconciler) Reconcile(ctx context.Context, gen Generator, prompt string) (Reconciliation, error) {
	log := logger.With("reconciler")

	var (
		out        Reconciliation
		last       validation.Table
		lastResult models.ValidationResult
		lastErr    error
		correction string
	)
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Attempts = attempt

		table, err := gen.Generate(ctx, prompt+correction)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt).Msg("generation failed")
			continue
		}

		res := r.validator.Validate(table)
		switch {
		case !res.Checkable():
			log.Warn().Int("attempt", attempt).Msg("candidate has no checkable cells")
			out.Table, out.Result, out.Outcome = table, res, OutcomeUnverified
			return out, nil
		case res.Valid:
			log.Info().Int("attempt", attempt).Int("checked", res.Checked).Msg("candidate validated")
			out.Table, out.Result, out.Outcome = table, res, OutcomeValid
			return out, nil
		}

		log.Info().
			Int("attempt", attempt).
			Int("errors", len(res.Errors)).
			Int("checked", res.Checked).
			Msg("candidate rejected")
		last, lastResult = table, res
		if attempt < r.maxRetries {
			correction = validation.BuildCorrectionText(res.Errors)
			out.Corrections = append(out.Corrections, correction)
		}
	}

	if last == nil {
		return out, fmt.Errorf("%w after %d attempts: %v", ErrNoCandidate, out.Attempts, lastErr)
	}

	out.Patched = validation.Patch(last, lastResult.Errors)
	out.Table = last
	out.Result = r.validator.Validate(last)
	out.Outcome = OutcomePatched
	log.Warn().Int("attempts", out.Attempts).Int("patched", out.Patched).Msg("retries exhausted, patched last candidate")
	return out, nil
}

// ReplayGenerator returns pre-recorded candidates in order, one per call.
// It is not safe for concurrent use.
type ReplayGenerator struct {
	candidates []validation.Table
	next       int
}

// NewReplayGenerator replays candidates in order.
func NewReplayGenerator(candidates []validation.Table) *ReplayGenerator {
	return &ReplayGenerator{candidates: candidates}
}

func (g *ReplayGenerator) Generate(_ context.Context, _ string) (validation.Table, error) {
	if g.next >= len(g.candidates) {
		return nil, fmt.Errorf("replay exhausted after %d candidates", len(g.candidates))
	}
	t := g.candidates[g.next]
	g.next++
	return t, nil
}
