package handler

import (
	"net/http"
	"strconv"

	"vendora/internal/middleware"
	"vendora/internal/repository"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	engine         WithdrawalEngine
	withdrawalRepo *repository.WithdrawalRepository
	userRepo       *repository.UserRepository
	settingRepo    *repository.SettingRepository
	auditRepo      *repository.AuditLogRepository
}

func NewAdminHandler(
	engine WithdrawalEngine,
	withdrawalRepo *repository.WithdrawalRepository,
	userRepo *repository.UserRepository,
	settingRepo *repository.SettingRepository,
	auditRepo *repository.AuditLogRepository,
) *AdminHandler {
	return &AdminHandler{
		engine:         engine,
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		settingRepo:    settingRepo,
		auditRepo:      auditRepo,
	}
}

// ListWithdrawals handles GET /admin/withdrawals.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	status := c.Query("status")
	page, limit := parsePagination(c)
	list, total, err := h.withdrawalRepo.ListAll(status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

// GetWithdrawal handles GET /admin/withdrawals/:id.
func (h *AdminHandler) GetWithdrawal(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	w, err := h.withdrawalRepo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found", "code": "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// Validate handles POST /admin/withdrawals/:id/validate.
func (h *AdminHandler) Validate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.engine.Validate(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		engineErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Reject handles POST /admin/withdrawals/:id/reject.
func (h *AdminHandler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.Reject(c.Request.Context(), id, req.Reason, middleware.GetUserID(c)); err != nil {
		engineErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MarkPaid handles POST /admin/withdrawals/:id/mark-paid.
func (h *AdminHandler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		PayoutRef string `json:"payout_ref"`
		ProofURL  string `json:"proof_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.MarkPaid(c.Request.Context(), id, req.PayoutRef, req.ProofURL, middleware.GetUserID(c)); err != nil {
		engineErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MarkFailed handles POST /admin/withdrawals/:id/mark-failed.
func (h *AdminHandler) MarkFailed(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.MarkFailed(c.Request.Context(), id, req.Reason, middleware.GetUserID(c)); err != nil {
		engineErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	search := c.Query("search")
	role := c.Query("role")
	page, limit := parsePagination(c)
	users, total, err := h.userRepo.List(search, role, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "total": total, "page": page, "limit": limit})
}

// ListAuditLogs handles GET /admin/audit-logs.
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	resource := c.Query("resource")
	page, limit := parsePagination(c)
	list, total, err := h.auditRepo.List(resource, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

// GetSettings handles GET /admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// UpdateSettings handles PUT /admin/settings.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req struct {
		Settings map[string]string `json:"settings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for k, v := range req.Settings {
		if err := h.settingRepo.Set(k, v); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update setting: " + k})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
