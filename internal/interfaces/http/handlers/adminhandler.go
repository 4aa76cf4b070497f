package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/application/tier/usecases"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/logger"
	"stockpilot/internal/shared/query"
	"stockpilot/internal/shared/utils"
)

// AdminHandler handles operator endpoints: plan management for any
// account and manual lifecycle sweeps.
type AdminHandler struct {
	applyPlanChangeUC *usecases.ApplyPlanChangeUseCase
	downgradeUC       *usecases.DowngradeExpiredUseCase
	notifyUC          *usecases.NotifyExpiringUseCase
	history           tier.HistoryRepository
	logger            logger.Interface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	applyPlanChangeUC *usecases.ApplyPlanChangeUseCase,
	downgradeUC *usecases.DowngradeExpiredUseCase,
	notifyUC *usecases.NotifyExpiringUseCase,
	history tier.HistoryRepository,
	logger logger.Interface,
) *AdminHandler {
	return &AdminHandler{
		applyPlanChangeUC: applyPlanChangeUC,
		downgradeUC:       downgradeUC,
		notifyUC:          notifyUC,
		history:           history,
		logger:            logger,
	}
}

type updatePlanRequest struct {
	Plan      string     `json:"plan" validate:"required,oneof=free premium"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Reason    string     `json:"reason,omitempty" validate:"omitempty,oneof=upgrade renewal manual"`
	Notes     string     `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// pathUserID parses the :id path parameter.
func pathUserID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid account ID")
		return 0, false
	}
	return uint(id), true
}

// UpdatePlan handles PUT /admin/accounts/:id/plan
// Applies an operator or billing initiated plan change.
func (h *AdminHandler) UpdatePlan(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req updatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.applyPlanChangeUC.Execute(c.Request.Context(), usecases.ApplyPlanChangeCommand{
		UserID:    userID,
		Plan:      req.Plan,
		ExpiresAt: req.ExpiresAt,
		Reason:    req.Reason,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Errorw("failed to apply plan change",
			"error", err,
			"user_id", userID,
			"plan", req.Plan,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// GetAccountHistory handles GET /admin/accounts/:id/history
func (h *AdminHandler) GetAccountHistory(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	filter := query.PageFilter{
		Page:     1,
		PageSize: queryInt(c, "page_size", 20),
	}

	entries, err := h.history.ListByUser(c.Request.Context(), userID, filter.Limit())
	if err != nil {
		h.logger.Errorw("failed to list tier history", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, gin.H{
		"user_id": userID,
		"history": historyEntries(entries),
	})
}

// RunDowngradeSweep handles POST /admin/jobs/downgrade-expired
// Triggers one downgrade sweep outside the scheduler cadence.
func (h *AdminHandler) RunDowngradeSweep(c *gin.Context) {
	processed, err := h.downgradeUC.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("manual downgrade sweep failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, gin.H{
		"downgraded": processed,
	})
}

// RunExpirationNotices handles POST /admin/jobs/notify-expiring
func (h *AdminHandler) RunExpirationNotices(c *gin.Context) {
	sent, err := h.notifyUC.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("manual notification sweep failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, gin.H{
		"notified": sent,
	})
}
