package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gigworks/billing-service/internal/http/middleware"
	"github.com/gigworks/billing-service/internal/money"
	"github.com/gigworks/billing-service/internal/service"
)

type Handler struct {
	ledger  *service.LedgerService
	reports *service.ReportService
	log     zerolog.Logger
}

func NewHandler(ledger *service.LedgerService, reports *service.ReportService, log zerolog.Logger) *Handler {
	return &Handler{ledger: ledger, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, profileMiddleware gin.HandlerFunc) {
	router.GET("/profiles", h.listClientProfiles)

	protected := router.Group("/")
	protected.Use(profileMiddleware)
	protected.GET("/profiles/:id", h.getProfile)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/jobs/unpaid", h.unpaidJobs)
	protected.POST("/jobs/:job_id/pay", h.payJob)
	protected.POST("/balances/deposit", h.deposit)

	admin := protected.Group("/admin")
	admin.GET("/best-profession", h.bestProfession)
	admin.GET("/best-clients", h.bestClients)
	admin.POST("/reports/export", h.exportExcel)
	admin.POST("/reports/export/pdf", h.exportPDF)
}

func (h *Handler) listClientProfiles(c *gin.Context) {
	profiles, err := h.ledger.ClientProfiles(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (h *Handler) getProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}

	profile, err := h.ledger.ProfileByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) listContracts(c *gin.Context) {
	acting, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	contracts, err := h.ledger.Contracts(c.Request.Context(), acting)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) getContract(c *gin.Context) {
	acting, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	contract, err := h.ledger.ContractByID(c.Request.Context(), acting, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) unpaidJobs(c *gin.Context) {
	acting, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	jobs, err := h.ledger.UnpaidJobs(c.Request.Context(), acting)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) payJob(c *gin.Context) {
	acting, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	if err := h.ledger.PayJob(c.Request.Context(), acting, jobID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paid"})
}

type depositRequest struct {
	Amount money.Amount `json:"amount"`
}

func (h *Handler) deposit(c *gin.Context) {
	acting, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	if err := h.ledger.Deposit(c.Request.Context(), acting, req.Amount); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deposited"})
}

func (h *Handler) bestProfession(c *gin.Context) {
	period, err := parsePeriod(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period"})
		return
	}

	best, err := h.reports.BestProfession(c.Request.Context(), period)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, best)
}

func (h *Handler) bestClients(c *gin.Context) {
	period, err := parsePeriod(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}

	clients, err := h.reports.BestClients(c.Request.Context(), period, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

type exportReportRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
	Limit int    `json:"limit"`
}

func (h *Handler) exportExcel(c *gin.Context) {
	req, period, ok := h.bindExportRequest(c)
	if !ok {
		return
	}

	file, err := h.reports.ExportExcel(c.Request.Context(), period, req.Limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	c.Data(http.StatusOK, contentType, file.Content)
}

func (h *Handler) exportPDF(c *gin.Context) {
	req, period, ok := h.bindExportRequest(c)
	if !ok {
		return
	}

	file, err := h.reports.ExportPDF(c.Request.Context(), period, req.Limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", file.Content)
}

func (h *Handler) bindExportRequest(c *gin.Context) (exportReportRequest, service.ReportPeriod, bool) {
	var req exportReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, service.ReportPeriod{}, false
	}

	period, err := parsePeriod(req.Start, req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period"})
		return req, service.ReportPeriod{}, false
	}
	if req.Limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return req, service.ReportPeriod{}, false
	}
	return req, period, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrDepositLimitExceeded),
		errors.Is(err, service.ErrJobAlreadyPaid),
		errors.Is(err, service.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrIntegrity):
		h.log.Error().Err(err).Msg("ledger integrity violation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parsePeriod(start, end string) (service.ReportPeriod, error) {
	startAt, err := parseDate(start)
	if err != nil {
		return service.ReportPeriod{}, err
	}
	endAt, err := parseDate(end)
	if err != nil {
		return service.ReportPeriod{}, err
	}
	return service.ReportPeriod{Start: startAt, End: endAt}, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidPeriod
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidPeriod
}
