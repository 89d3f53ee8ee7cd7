package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/service"
)

// maxUploadBytes caps contract uploads at 20 MB.
const maxUploadBytes = 20 << 20

type ReportHandler struct {
	manager  *service.JobManager
	settings *service.SettingsStore
}

func NewReportHandler(manager *service.JobManager, settings *service.SettingsStore) *ReportHandler {
	return &ReportHandler{
		manager:  manager,
		settings: settings,
	}
}

// Analyze handles contract file upload and starts analysis
func (h *ReportHandler) Analyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" && ext != ".docx" && ext != ".txt" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF, DOCX and TXT files are allowed"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds the 20MB limit"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds the 20MB limit"})
		return
	}

	// The request may override the configured sensitivity per upload.
	sensitivity := c.Query("sensitivity")
	if sensitivity == "" {
		sensitivity = c.PostForm("sensitivity")
	}
	if sensitivity == "" {
		sensitivity = h.settings.Get().RiskSensitivity
	}
	if !model.ValidSensitivity(sensitivity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sensitivity: must be low, medium or strict"})
		return
	}

	job := h.manager.StartAnalysis(header.Filename, data, sensitivity)

	c.JSON(http.StatusAccepted, gin.H{
		"id":        job.ID,
		"filename":  job.Filename,
		"status":    job.Status,
		"timestamp": job.Timestamp,
	})
}

// List returns summaries of all tracked jobs, most recent first
func (h *ReportHandler) List(c *gin.Context) {
	jobs := h.manager.Reports()

	result := make([]gin.H, len(jobs))
	for i, job := range jobs {
		entry := gin.H{
			"id":        job.ID,
			"filename":  job.Filename,
			"status":    job.Status,
			"timestamp": job.Timestamp,
		}
		if job.Status == model.StatusCompleted {
			entry["overall_risk"] = job.OverallRisk()
			entry["risky_clauses"] = job.RiskyClauseCount()
			entry["max_risk_score"] = job.MaxRiskScore()
		}
		if job.Status == model.StatusError {
			entry["error_msg"] = job.ErrorMsg
		}
		result[i] = entry
	}

	c.JSON(http.StatusOK, gin.H{"reports": result})
}

// Get returns a single full report
func (h *ReportHandler) Get(c *gin.Context) {
	job, err := h.manager.OpenReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// Delete removes one report, backend first
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.manager.DeleteReport(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to delete report: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report deleted"})
}

// Clear removes all reports
func (h *ReportHandler) Clear(c *gin.Context) {
	if err := h.manager.ClearReports(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to clear reports: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All reports deleted"})
}

// Stats returns the dashboard statistics
func (h *ReportHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.Stats(c.Request.Context()))
}

// Annotated streams the annotated copy of the report's original PDF
func (h *ReportHandler) Annotated(c *gin.Context) {
	data, filename, err := h.manager.AnnotatedReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) || errors.Is(err, service.ErrNoRetainedFile) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to annotate report: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="annotated_`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// File streams the retained original upload
func (h *ReportHandler) File(c *gin.Context) {
	job, err := h.manager.OpenReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	if job.File == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Original file not retained"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+job.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", job.File)
}

// Highlighted returns the contract text with risk markers around flagged
// clauses, for documents without a usable PDF rendering
func (h *ReportHandler) Highlighted(c *gin.Context) {
	text, err := h.manager.HighlightedText(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}
