package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kollab_agentic/backend/internal/connector"
	"github.com/kollab_agentic/backend/internal/ingest"
	"github.com/kollab_agentic/backend/internal/llm"
	"github.com/kollab_agentic/backend/internal/models"
	"github.com/kollab_agentic/backend/internal/pipeline"
	"github.com/kollab_agentic/backend/internal/store"
)

type Handler struct {
	Store         *store.Store
	Completer     llm.Completer
	Validator     *validator.Validate
	Logger        zerolog.Logger
	AdminKey      string
	ContextBudget int
}

type analyzeRequest struct {
	CompanyID string                  `json:"company_id" validate:"required"`
	TicketID  string                  `json:"ticket_id"`
	Query     string                  `json:"query"`
	Records   []models.FeedbackRecord `json:"records" validate:"required,min=1"`
	Save      *bool                   `json:"save"`
}

type connectorsRequest struct {
	CompanyID string                      `json:"company_id" validate:"required"`
	Query     string                      `json:"query"`
	Sources   map[string]connector.Source `json:"sources" validate:"required,min=1"`
	Save      *bool                       `json:"save"`
}

type statusRequest struct {
	CompanyID  string        `json:"company_id" validate:"required"`
	TicketID   string        `json:"ticket_id" validate:"required"`
	IssueIndex *int          `json:"issue_index" validate:"required"`
	Status     models.Status `json:"status" validate:"required"`
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Analyze feedback
// @Description Run the analysis pipeline over uploaded or inline feedback records
// @Tags analyze
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 422 {object} map[string]any
// @Router /api/analyze [post]
func (h *Handler) Analyze(c *gin.Context) {
	var (
		companyID string
		ticketID  string
		query     string
		records   []models.FeedbackRecord
		save      = true
	)

	if strings.Contains(c.GetHeader("Content-Type"), "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required", nil)
			return
		}
		companyID = strings.TrimSpace(c.PostForm("company_id"))
		if companyID == "" {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "company_id is required", nil)
			return
		}
		ticketID = strings.TrimSpace(c.PostForm("ticket_id"))
		query = c.PostForm("query")
		if c.PostForm("save") == "false" {
			save = false
		}

		f, err := fileHeader.Open()
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not open uploaded file", err.Error())
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read uploaded file", err.Error())
			return
		}
		records, err = ingest.Parse(fileHeader.Filename, data)
		if err != nil {
			writeError(c, http.StatusBadRequest, "FILE_PARSE_ERROR", "could not parse uploaded file", err.Error())
			return
		}
	} else {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body", err.Error())
			return
		}
		if err := h.Validator.Struct(req); err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", err.Error())
			return
		}
		companyID = req.CompanyID
		ticketID = req.TicketID
		query = req.Query
		records = req.Records
		if req.Save != nil {
			save = *req.Save
		}
	}

	h.runAnalysis(c, companyID, ticketID, query, records, save)
}

// @Summary Fetch and analyze connected sources
// @Tags connectors
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/connectors/fetch [post]
func (h *Handler) ConnectorsFetch(c *gin.Context) {
	var req connectorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", err.Error())
		return
	}

	records := connector.Fetch(req.Sources)
	save := true
	if req.Save != nil {
		save = *req.Save
	}
	h.runAnalysis(c, req.CompanyID, "", req.Query, records, save)
}

func (h *Handler) runAnalysis(c *gin.Context, companyID, ticketID, query string, records []models.FeedbackRecord, save bool) {
	processID := uuid.NewString()
	logger := h.Logger.With().Str("process_id", processID).Logger()

	p := &pipeline.Pipeline{
		Completer:     h.Completer,
		Observer:      pipeline.LogObserver{Logger: logger},
		Logger:        logger,
		ContextBudget: h.ContextBudget,
	}
	result, runErr := p.Run(c.Request.Context(), records, query, companyID, processID)
	if runErr != nil {
		writeError(c, http.StatusUnprocessableEntity, "ANALYSIS_FAILED", runErr.Reason, gin.H{"process_id": runErr.ProcessID})
		return
	}

	resp := gin.H{
		"process_id": processID,
		"company_id": companyID,
		"report":     result.Report,
		"saved":      false,
	}

	if save {
		ticket, err := h.Store.Save(c.Request.Context(), result.Report, companyID, ticketID, query, result.Metadata)
		if err != nil {
			// Storage failure does not void a completed analysis.
			logger.Error().Err(err).Msg("failed to save ticket")
		} else {
			resp["saved"] = true
			resp["ticket_id"] = ticket.TicketID
			resp["status"] = ticket.Status
		}
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List company tickets
// @Tags tickets
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/companies/{company_id}/tickets [get]
func (h *Handler) TicketsList(c *gin.Context) {
	companyID := c.Param("company_id")
	items, err := h.Store.List(c.Request.Context(), companyID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list tickets", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *Handler) TicketDetails(c *gin.Context) {
	ticket, err := h.Store.Get(c.Request.Context(), c.Param("company_id"), c.Param("ticket_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get ticket", err.Error())
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// @Summary Update issue status
// @Tags tickets
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/task-status [post]
func (h *Handler) TaskStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", err.Error())
		return
	}
	if !models.ValidStatus(req.Status) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "status must be one of new, processing, resolved", nil)
		return
	}

	overall, counts, err := h.Store.UpdateIssueStatus(c.Request.Context(), req.CompanyID, req.TicketID, *req.IssueIndex, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
		case errors.Is(err, store.ErrIndexOutOfRange):
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "issue_index out of range", nil)
		default:
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update status", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company_id":         req.CompanyID,
		"ticket_id":          req.TicketID,
		"overall_status":     overall,
		"task_status_counts": counts,
	})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
