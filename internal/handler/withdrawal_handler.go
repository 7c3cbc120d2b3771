package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"vendora/internal/middleware"
	"vendora/internal/models"
	"vendora/internal/repository"
	"vendora/internal/service"

	"github.com/gin-gonic/gin"
)

// WithdrawalEngine is the settlement-engine surface the handlers drive.
type WithdrawalEngine interface {
	Create(ctx context.Context, userID uint, method string, details map[string]string) (*models.Withdrawal, error)
	Validate(ctx context.Context, id, staffID uint) error
	Reject(ctx context.Context, id uint, reason string, staffID uint) error
	MarkPaid(ctx context.Context, id uint, payoutRef, proofURL string, staffID uint) error
	MarkFailed(ctx context.Context, id uint, reason string, staffID uint) error
}

type WithdrawalHandler struct {
	engine         WithdrawalEngine
	balances       *service.BalanceService
	withdrawalRepo *repository.WithdrawalRepository
}

func NewWithdrawalHandler(
	engine WithdrawalEngine,
	balances *service.BalanceService,
	withdrawalRepo *repository.WithdrawalRepository,
) *WithdrawalHandler {
	return &WithdrawalHandler{
		engine:         engine,
		balances:       balances,
		withdrawalRepo: withdrawalRepo,
	}
}

// GetBalance handles GET /me/balance. Repairs the cache from the ledgers before
// answering so the caller never sees a stale total, and reports whether an open
// request already holds the funds.
func (h *WithdrawalHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	bal, err := h.balances.Recompute(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance error"})
		return
	}
	hasOpen, err := h.withdrawalRepo.HasOpen(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"seller_balance_cents":      bal.SellerCents,
		"community_balance_cents":   bal.CommunityCents,
		"affiliation_balance_cents": bal.AffiliationCents,
		"total_cents":               bal.TotalCents(),
		"has_open_request":          hasOpen,
	})
}

// Create handles POST /me/withdrawals.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Method         string            `json:"method" binding:"required"`
		PaymentDetails map[string]string `json:"payment_details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.engine.Create(c.Request.Context(), userID, req.Method, req.PaymentDetails)
	if err != nil {
		engineErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":               w.ID,
		"reference":        w.Reference,
		"status":           w.Status,
		"amount_gross_cents": w.AmountGrossCents,
		"commission_cents":   w.CommissionCents,
		"amount_net_cents":   w.AmountNetCents,
	})
}

// GetMine handles GET /me/withdrawals/:reference. References are opaque but
// guessable, so ownership is checked before anything is revealed.
func (h *WithdrawalHandler) GetMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.withdrawalRepo.GetByReference(c.Param("reference"))
	if err != nil || w.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found", "code": "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// ListMine handles GET /me/withdrawals.
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.withdrawalRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

// engineErrorResponse maps engine sentinel errors to a status plus a stable
// machine-readable code so the client can explain refusals precisely.
func engineErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_METHOD"})
	case errors.Is(err, service.ErrOpenRequestExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "OPEN_REQUEST_EXISTS"})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INSUFFICIENT_FUNDS"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "INVALID_STATE"})
	case errors.Is(err, service.ErrReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "REASON_REQUIRED"})
	case errors.Is(err, service.ErrPayoutRefRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "PAYOUT_REF_REQUIRED"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
