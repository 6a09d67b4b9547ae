package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/guttosm/brokerfees/internal/domain/dto"
	"github.com/guttosm/brokerfees/internal/service"
	"github.com/guttosm/brokerfees/internal/validation"
	"github.com/shopspring/decimal"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

func init() {
	// Table cells keep their literal form (json.Number) when bound from a body.
	binding.EnableDecoderUseNumber = true
}

// Handler provides HTTP handlers for fee lookup, comparison tables and
// table validation.
//
// Responsibilities:
//   - Validate incoming query parameters and request bodies
//   - Delegate to the fee service and the reconciler
//   - Translate domain results into response DTOs
type Handler struct {
	svc service.FeeService
	rec *service.Reconciler
}

// NewHandler constructs a Handler.
//
// Parameters:
//   - svc: Fee service behind the fee, comparison and table endpoints.
//   - rec: Reconciler serving the reconcile endpoint.
//
// Returns:
//   - *Handler: Ready to be passed to NewRouter.
func NewHandler(svc service.FeeService, rec *service.Reconciler) *Handler {
	return &Handler{svc: svc, rec: rec}
}

// GetFee godoc
// @Summary      Compute a trading fee
// @Description  Returns the fee charged by a broker for one trade of the given amount, with a human-readable explanation
// @Tags         fees
// @Produce      json
// @Param        broker      query     string  true  "Broker name or alias" example(Bolero)
// @Param        instrument  query     string  true  "Instrument class" example(stocks)
// @Param        amount      query     string  true  "Trade amount in EUR" example(2500)
// @Success      200  {object}  dto.FeeResponse   "Success"
// @Failure      400  {object}  dto.ErrorResponse "Bad Request"
// @Failure      404  {object}  dto.ErrorResponse "No fee rule"
// @Router       /api/v1/fees [get]
func (h *Handler) GetFee(c *gin.Context) {
	broker := strings.TrimSpace(c.Query("broker"))
	instrument := strings.TrimSpace(c.Query("instrument"))
	if broker == "" || instrument == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("broker and instrument are required", nil))
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(c.Query("amount")))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid amount", err))
		return
	}
	if amount.IsNegative() {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid amount", errors.New("amount must not be negative")))
		return
	}

	q, ok := h.svc.Quote(broker, instrument, amount)
	if !ok {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no fee rule for "+broker+" "+instrument, nil))
		return
	}
	c.JSON(http.StatusOK, dto.NewFeeResponse(q))
}

// GetComparison godoc
// @Summary      Ground-truth comparison table
// @Description  Returns the fee of every broker for every instrument class and canonical transaction size
// @Tags         comparison
// @Produce      json
// @Param        brokers  query     string  false  "Comma-separated brokers, all when empty" example(bolero,degiro)
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/comparison [get]
func (h *Handler) GetComparison(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Comparison(brokerList(c.Query("brokers"))))
}

// GetPersonas godoc
// @Summary      Annual cost per investor persona
// @Description  Ranks brokers by total annual cost of ownership for each persona
// @Tags         comparison
// @Produce      json
// @Param        brokers  query     string  false  "Comma-separated brokers, all when empty"
// @Success      200  {array}   dto.PersonaRanking
// @Router       /api/v1/personas [get]
func (h *Handler) GetPersonas(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewPersonaRankings(h.svc.Personas(brokerList(c.Query("brokers")))))
}

// ValidateTable godoc
// @Summary      Validate a comparison table
// @Description  Checks every fee cell against the calculator and returns the mismatches with correction text. The run is recorded when history is enabled.
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        source  query     string                  false  "Label stored with the run" example(api)
// @Param        table   body      object                  true   "Comparison table"
// @Success      200     {object}  dto.ValidationResponse  "Success"
// @Failure      400     {object}  dto.ErrorResponse       "Bad Request"
// @Router       /api/v1/tables/validate [post]
func (h *Handler) ValidateTable(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("failed to read body", err))
		return
	}
	table, err := validation.Decode(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid table", err))
		return
	}

	source := strings.TrimSpace(c.DefaultQuery("source", "api"))
	rep := h.svc.ValidateTable(c.Request.Context(), source, table)
	c.JSON(http.StatusOK, dto.NewValidationResponse(rep.RunID, rep.Result, rep.Correction))
}

// PatchTable godoc
// @Summary      Patch a comparison table
// @Description  Overwrites flagged cells with the calculator's values. When errors are omitted the table is validated first.
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        request  body      dto.PatchRequest   true  "Table and optional errors"
// @Success      200      {object}  dto.PatchResponse  "Success"
// @Failure      400      {object}  dto.ErrorResponse  "Bad Request"
// @Router       /api/v1/tables/patch [post]
func (h *Handler) PatchTable(c *gin.Context) {
	var req dto.PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid request", err))
		return
	}

	applied, n := h.svc.PatchTable(req.Table, dto.Models(req.Errors))
	c.JSON(http.StatusOK, dto.PatchResponse{
		Table:   req.Table,
		Patched: n,
		Applied: dto.NewValidationErrors(applied),
	})
}

// ReconcileTables godoc
// @Summary      Reconcile generated tables
// @Description  Replays candidate tables as successive generation attempts through the validate, correct and patch loop
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        request  body      dto.ReconcileRequest   true  "Candidates in generation order"
// @Success      200      {object}  dto.ReconcileResponse  "Success"
// @Failure      400      {object}  dto.ErrorResponse      "Bad Request"
// @Failure      422      {object}  dto.ErrorResponse      "No usable candidate"
// @Router       /api/v1/tables/reconcile [post]
func (h *Handler) ReconcileTables(c *gin.Context) {
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid request", err))
		return
	}

	candidates := make([]validation.Table, 0, len(req.Candidates))
	for _, t := range req.Candidates {
		candidates = append(candidates, t)
	}
	rec, err := h.rec.Reconcile(c.Request.Context(), service.NewReplayGenerator(candidates), req.Prompt)
	switch {
	case errors.Is(err, service.ErrNoCandidate):
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("no usable candidate", err))
		return
	case err != nil:
		_ = c.Error(err)
		return
	}

	corrections := rec.Corrections
	if corrections == nil {
		corrections = []string{}
	}
	c.JSON(http.StatusOK, dto.ReconcileResponse{
		Outcome:     string(rec.Outcome),
		Attempts:    rec.Attempts,
		Patched:     rec.Patched,
		Corrections: corrections,
		Result:      dto.NewValidationResponse("", rec.Result, ""),
		Table:       rec.Table,
	})
}

// ListValidations godoc
// @Summary      Recent validation runs
// @Tags         validations
// @Produce      json
// @Param        limit  query     int  false  "Maximum runs (1-100)" default(20)
// @Success      200    {array}   dto.ValidationRun
// @Failure      400    {object}  dto.ErrorResponse  "Bad Request"
// @Failure      503    {object}  dto.ErrorResponse  "History disabled"
// @Failure      500    {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/validations [get]
func (h *Handler) ListValidations(c *gin.Context) {
	limit := defaultRunsLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxRunsLimit {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("limit must be between 1 and 100", err))
			return
		}
		limit = n
	}

	runs, err := h.svc.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewValidationRuns(runs))
}

// GetValidationErrors godoc
// @Summary      Errors of a validation run
// @Tags         validations
// @Produce      json
// @Param        id   path      string  true  "Run ID"
// @Success      200  {array}   dto.ValidationError
// @Failure      400  {object}  dto.ErrorResponse  "Bad Request"
// @Failure      503  {object}  dto.ErrorResponse  "History disabled"
// @Failure      500  {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/validations/{id}/errors [get]
func (h *Handler) GetValidationErrors(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid run id", err))
		return
	}

	errs, err := h.svc.RunErrors(c.Request.Context(), id)
	if err != nil {
		historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewValidationErrors(errs))
}

func historyError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoStore) {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("validation history is disabled", err))
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch validation runs", err))
}

// brokerList splits a comma-separated query value, dropping blanks.
func brokerList(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
