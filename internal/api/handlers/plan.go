package handlers

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clubtools/rotation-planner/internal/cache"
	"github.com/clubtools/rotation-planner/internal/config"
	"github.com/clubtools/rotation-planner/internal/planner"
	"github.com/clubtools/rotation-planner/internal/store"
)

// PlanHandler handles rotation-plan endpoints.
type PlanHandler struct {
	store  *store.LineupStore
	cache  *cache.PlanCache
	config *config.Config
	logger *logrus.Logger
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(lineupStore *store.LineupStore, planCache *cache.PlanCache, cfg *config.Config, logger *logrus.Logger) *PlanHandler {
	return &PlanHandler{
		store:  lineupStore,
		cache:  planCache,
		config: cfg,
		logger: logger,
	}
}

// Plan handles POST /api/v1/plan: runs the multi-match rotation planner over
// the supplied squad, fixtures and formation.
func (h *PlanHandler) Plan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	cacheKey := h.requestHash(req)
	if cached, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil && cached != nil {
		h.logger.WithField("cache_key", cacheKey).Info("Returning cached plan result")
		c.JSON(http.StatusOK, cached)
		return
	}

	result, err := h.runPlan(req)
	if err != nil {
		h.logger.WithError(err).Error("Planning failed")
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "Planning failed",
			Code:  "PLAN_ERROR",
			Details: map[string]string{
				"error": err.Error(),
			},
		})
		return
	}

	if err := h.cache.Set(c.Request.Context(), cacheKey, result); err != nil {
		h.logger.WithError(err).Warn("Failed to cache plan result")
	}

	c.JSON(http.StatusOK, result)
}

// Validate handles POST /api/v1/plan/validate: checks a request without
// running the solver.
func (h *PlanHandler) Validate(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}
	if _, _, _, err := req.toPlanner(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "Invalid plan request",
			Code:  "INVALID_PLAN",
			Details: map[string]string{
				"error": err.Error(),
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// Confirm handles POST /api/v1/plan/confirm: persists a confirmed lineup so
// future runs treat it as played history.
func (h *PlanHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}
	if err := h.store.Confirm(store.ConfirmedLineup{
		MatchID:     req.MatchID,
		Date:        req.Date,
		Assignments: req.Assignments,
	}); err != nil {
		h.logger.WithError(err).Error("Failed to confirm lineup")
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "Failed to confirm lineup",
			Code:  "CONFIRM_ERROR",
			Details: map[string]string{
				"error": err.Error(),
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmed": req.MatchID})
}

// runPlan converts the request, seeds history from confirmed lineups dated
// before the first match, and runs the planner.
func (h *PlanHandler) runPlan(req PlanRequest) (*planner.PlanResult, error) {
	squad, matches, slots, err := req.toPlanner()
	if err != nil {
		return nil, err
	}

	first := time.Time{}
	for _, m := range matches {
		if first.IsZero() || m.Date.Before(first) {
			first = m.Date
		}
	}
	history, consec, err := h.store.HistoryBefore(first)
	if err != nil {
		h.logger.WithError(err).Warn("Could not load confirmed lineups, starting with empty history")
		history, consec = nil, nil
	}

	pl, err := planner.NewPlanner(squad, slots, req.Tactic, history, consec, h.config.PlanConfig())
	if err != nil {
		return nil, err
	}
	return pl.Plan(matches)
}

// requestHash produces the cache key for a plan request.
func (h *PlanHandler) requestHash(req PlanRequest) string {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Sprintf("unhashable-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", md5.Sum(raw))
}
