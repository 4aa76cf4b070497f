package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/application/tier/dto"
	"stockpilot/internal/application/tier/usecases"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/constants"
	"stockpilot/internal/shared/logger"
	"stockpilot/internal/shared/query"
	"stockpilot/internal/shared/utils"
)

// TierHandler handles the entitlement endpoints scoped to the
// authenticated user.
type TierHandler struct {
	resolveStatusUC  *usecases.ResolveTierStatusUseCase
	validateAccessUC *usecases.ValidateFeatureAccessUseCase
	checkUsageUC     *usecases.CheckFeatureUsageUseCase
	trackUsageUC     *usecases.TrackUsageUseCase
	usageSummaryUC   *usecases.GetUsageSummaryUseCase
	history          tier.HistoryRepository
	logger           logger.Interface
}

// NewTierHandler creates a new tier handler
func NewTierHandler(
	resolveStatusUC *usecases.ResolveTierStatusUseCase,
	validateAccessUC *usecases.ValidateFeatureAccessUseCase,
	checkUsageUC *usecases.CheckFeatureUsageUseCase,
	trackUsageUC *usecases.TrackUsageUseCase,
	usageSummaryUC *usecases.GetUsageSummaryUseCase,
	history tier.HistoryRepository,
	logger logger.Interface,
) *TierHandler {
	return &TierHandler{
		resolveStatusUC:  resolveStatusUC,
		validateAccessUC: validateAccessUC,
		checkUsageUC:     checkUsageUC,
		trackUsageUC:     trackUsageUC,
		usageSummaryUC:   usageSummaryUC,
		history:          history,
		logger:           logger,
	}
}

type validateFeatureRequest struct {
	Feature string `json:"feature" validate:"required,min=1,max=64"`
}

type validateBulkRequest struct {
	Features []string `json:"features" validate:"required,min=1,max=16"`
}

type checkUsageRequest struct {
	Feature string `json:"feature" validate:"required,min=1,max=64"`
}

type trackUsageRequest struct {
	Feature string `json:"feature" validate:"required,min=1,max=64"`
	Delta   int    `json:"delta" validate:"required"`
}

// currentUserID extracts the authenticated user ID set by the auth middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return 0, false
	}
	uid, ok := userID.(uint)
	if !ok {
		utils.ErrorResponse(c, http.StatusInternalServerError, "invalid user ID")
		return 0, false
	}
	return uid, true
}

// GetStatus handles GET /tier/status
// Returns the resolved point-in-time tier view for the current user.
func (h *TierHandler) GetStatus(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	status, err := h.resolveStatusUC.Execute(c.Request.Context(), uid)
	if err != nil {
		h.logger.Errorw("failed to resolve tier status", "error", err, "user_id", uid)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, dto.NewTierStatus(status))
}

// ValidateFeature handles POST /tier/validate
// Hard entitlement decision for a single feature.
func (h *TierHandler) ValidateFeature(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	decision, err := h.validateAccessUC.Execute(c.Request.Context(), uid, req.Feature)
	if err != nil {
		h.logger.Errorw("failed to validate feature access",
			"error", err,
			"user_id", uid,
			"feature", req.Feature,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, decision)
}

// ValidateFeaturesBulk handles POST /tier/validate-bulk
// Evaluates several features in one round trip.
func (h *TierHandler) ValidateFeaturesBulk(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validateBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.validateAccessUC.ExecuteBulk(c.Request.Context(), uid, req.Features)
	if err != nil {
		h.logger.Errorw("failed to validate features", "error", err, "user_id", uid)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// CheckUsage handles POST /tier/check
// Warning-mode pre-write guard: never blocks below the limit, warns when
// usage approaches it.
func (h *TierHandler) CheckUsage(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req checkUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	check, err := h.checkUsageUC.Execute(c.Request.Context(), uid, req.Feature)
	if err != nil {
		h.logger.Errorw("failed to check feature usage",
			"error", err,
			"user_id", uid,
			"feature", req.Feature,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, check)
}

// TrackUsage handles POST /tier/usage
// Atomically applies a usage delta; rejects increments past the limit.
func (h *TierHandler) TrackUsage(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req trackUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	usage, err := h.trackUsageUC.Execute(c.Request.Context(), uid, req.Feature, req.Delta)
	if err != nil {
		h.logger.Warnw("usage tracking rejected",
			"error", err,
			"user_id", uid,
			"feature", req.Feature,
			"delta", req.Delta,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, gin.H{
		"feature":       req.Feature,
		"current_usage": usage,
	})
}

// GetUsageSummary handles GET /tier/usage
// Read-only usage report across all known features.
func (h *TierHandler) GetUsageSummary(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := h.usageSummaryUC.Execute(c.Request.Context(), uid)
	if err != nil {
		h.logger.Errorw("failed to build usage summary", "error", err, "user_id", uid)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, summary)
}

// GetHistory handles GET /tier/history
// Lists the current user's plan changes, newest first.
func (h *TierHandler) GetHistory(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := query.PageFilter{
		Page:     1,
		PageSize: queryInt(c, "page_size", 20),
	}

	entries, err := h.history.ListByUser(c.Request.Context(), uid, filter.Limit())
	if err != nil {
		h.logger.Errorw("failed to list tier history", "error", err, "user_id", uid)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, gin.H{
		"history": historyEntries(entries),
	})
}
