package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/usecase"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
)

// PassService is the pass behaviour the HTTP API exposes
type PassService interface {
	GetUserPass(ctx context.Context, email, phone string) (usecase.PassLookup, error)
	GetPassSummary(ctx context.Context, email, phone string) (entity.PassSummary, error)
	CheckDuplicatePass(ctx context.Context, email, phone string) (entity.DuplicateCheck, error)
	CleanupDuplicatePasses(ctx context.Context, email, phone string) (int, error)
	PurchasePass(ctx context.Context, req entity.PurchaseRequest) (usecase.PassLookup, error)
	RenewPass(ctx context.Context, email, userID string) (usecase.PassLookup, error)
	ApplyPassBenefit(ctx context.Context, email string, item entity.BenefitItem) (entity.BenefitResult, error)
	UseTurfBooking(ctx context.Context, email, phone string) (int, error)
	UseDiningVoucher(ctx context.Context, email, phone string) (int, error)
}

// ReminderRunner triggers one reminder run
type ReminderRunner interface {
	Run(ctx context.Context) (usecase.ReminderReport, error)
}

type PassHandler struct {
	passService PassService
	reminders   ReminderRunner
	logger      logger.Logger
}

type identityRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type renewRequest struct {
	Email  string `json:"email" binding:"required"`
	UserID string `json:"userId"`
}

type applyBenefitRequest struct {
	Email         string             `json:"email"`
	Type          entity.BenefitType `json:"type" binding:"required"`
	OriginalPrice *float64           `json:"originalPrice" binding:"required"`
}

type cleanupResponse struct {
	Deleted int `json:"deleted"`
}

type usageResponse struct {
	Remaining int `json:"remaining"`
}

func NewPassHandler(passService PassService, reminders ReminderRunner, logger logger.Logger) *PassHandler {
	return &PassHandler{
		passService: passService,
		reminders:   reminders,
		logger:      logger,
	}
}

// RegisterPassRoutes mounts the public pass endpoints
func RegisterPassRoutes(group *gin.RouterGroup, handler *PassHandler) {
	pass := group.Group("/pass")
	pass.GET("", handler.GetPass)
	pass.GET("/summary", handler.GetSummary)
	pass.POST("/check-duplicate", handler.CheckDuplicate)
	pass.POST("/purchase", handler.Purchase)
	pass.POST("/renew", handler.Renew)
	pass.POST("/apply-benefit", handler.ApplyBenefit)
	pass.POST("/use-turf", handler.UseTurf)
	pass.POST("/use-dining", handler.UseDining)
}

// RegisterInternalRoutes mounts the maintenance endpoints behind the cron secret
func RegisterInternalRoutes(group *gin.RouterGroup, handler *PassHandler, cronSecret string) {
	internal := group.Group("/internal", InternalTokenAuth(cronSecret))
	internal.POST("/pass-cleanup", handler.Cleanup)
	if handler.reminders != nil {
		internal.POST("/pass-reminders", handler.RunReminders)
	}
}

// GetPass answers the resolved pass or null. Lookup failures answer null as well.
func (h *PassHandler) GetPass(c *gin.Context) {
	email, phone := identityFromQuery(c)

	lookup, err := h.passService.GetUserPass(c.Request.Context(), email, phone)
	if err != nil {
		h.logger.Warn("Pass lookup failed, answering not found", "error", err)
	}

	if !lookup.Found() {
		FailWithData(c, http.StatusNotFound, ErrPassNotFound, "pass not found", nil)
		return
	}
	Success(c, lookup)
}

func (h *PassHandler) GetSummary(c *gin.Context) {
	email, phone := identityFromQuery(c)

	summary, err := h.passService.GetPassSummary(c.Request.Context(), email, phone)
	if err != nil {
		h.logger.Warn("Pass summary failed, answering defaults", "error", err)
	}
	Success(c, summary)
}

func (h *PassHandler) CheckDuplicate(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, ErrInvalidRequest, "invalid request body")
		return
	}

	check, err := h.passService.CheckDuplicatePass(c.Request.Context(), req.Email, req.Phone)
	if err != nil {
		h.logger.Warn("Duplicate check failed, answering no duplicate", "error", err)
	}
	Success(c, check)
}

func (h *PassHandler) Purchase(c *gin.Context) {
	var req entity.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, ErrInvalidRequest, "invalid request body")
		return
	}

	lookup, err := h.passService.PurchasePass(c.Request.Context(), req)
	switch {
	case err == nil:
		Success(c, lookup)
	case errors.Is(err, usecase.ErrNoIdentity):
		Fail(c, http.StatusBadRequest, ErrInvalidRequest, err.Error())
	case errors.Is(err, usecase.ErrDuplicatePass):
		Fail(c, http.StatusConflict, ErrDuplicatePass, err.Error())
	default:
		Fail(c, http.StatusInternalServerError, ErrInternal, "failed to purchase pass")
	}
}

func (h *PassHandler) Renew(c *gin.Context) {
	var req renewRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		Fail(c, http.StatusBadRequest, ErrInvalidRequest, "email is required")
		return
	}

	lookup, err := h.passService.RenewPass(c.Request.Context(), req.Email, req.UserID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrInternal, "failed to renew pass")
		return
	}
	if !lookup.Found() {
		Fail(c, http.StatusNotFound, ErrPassNotFound, "no pass to renew")
		return
	}
	Success(c, lookup)
}

// ApplyBenefit prices an item. Lookup failures price it without discount.
func (h *PassHandler) ApplyBenefit(c *gin.Context) {
	var req applyBenefitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, ErrInvalidRequest, "type and originalPrice are required")
		return
	}
	if !validBenefitType(req.Type) || *req.OriginalPrice < 0 {
		Fail(c, http.StatusBadRequest, ErrInvalidRequest, "invalid benefit item")
		return
	}

	item := entity.BenefitItem{Type: req.Type, OriginalPrice: *req.OriginalPrice}
	result, err := h.passService.ApplyPassBenefit(c.Request.Context(), req.Email, item)
	if err != nil {
		h.logger.Warn("Benefit lookup failed, answering full price", "error", err)
	}
	Success(c, result)
}

func (h *PassHandler) UseTurf(c *gin.Context) {
	h.useBenefit(c, h.passService.UseTurfBooking)
}

func (h *PassHandler) UseDining(c *gin.Context) {
	h.useBenefit(c, h.passService.UseDiningVoucher)
}

func (h *PassHandler) useBenefit(c *gin.Context, use func(ctx context.Context, email, phone string) (int, error)) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, ErrInvalidRequest, "invalid request body")
		return
	}

	remaining, err := use(c.Request.Context(), req.Email, req.Phone)
	switch {
	case err == nil:
		Success(c, usageResponse{Remaining: remaining})
	case errors.Is(err, usecase.ErrNoActivePass):
		Fail(c, http.StatusNotFound, ErrNoActivePass, err.Error())
	case errors.Is(err, usecase.ErrBenefitExhausted):
		Fail(c, http.StatusConflict, ErrBenefitExhausted, err.Error())
	default:
		Fail(c, http.StatusInternalServerError, ErrInternal, "failed to record usage")
	}
}

func (h *PassHandler) Cleanup(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, ErrInvalidRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		Fail(c, http.StatusBadRequest, ErrInvalidRequest, usecase.ErrNoIdentity.Error())
		return
	}

	deleted, err := h.passService.CleanupDuplicatePasses(c.Request.Context(), req.Email, req.Phone)
	if err != nil {
		FailWithData(c, http.StatusInternalServerError, ErrInternal, "cleanup incomplete", cleanupResponse{Deleted: deleted})
		return
	}
	Success(c, cleanupResponse{Deleted: deleted})
}

func (h *PassHandler) RunReminders(c *gin.Context) {
	report, err := h.reminders.Run(c.Request.Context())
	if err != nil {
		FailWithData(c, http.StatusInternalServerError, ErrInternal, "reminder run failed", report)
		return
	}
	Success(c, report)
}

func identityFromQuery(c *gin.Context) (string, string) {
	return c.Query("email"), c.Query("phone")
}

func validBenefitType(t entity.BenefitType) bool {
	switch t {
	case entity.BenefitTypeEvent, entity.BenefitTypeDining, entity.BenefitTypePlay:
		return true
	}
	return false
}
