package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/service"
)

type SettingsHandler struct {
	settings *service.SettingsStore
}

func NewSettingsHandler(settings *service.SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the current settings
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Get())
}

// Update replaces the settings object
func (h *SettingsHandler) Update(c *gin.Context) {
	var settings model.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !model.ValidSensitivity(settings.RiskSensitivity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sensitivity: must be low, medium or strict"})
		return
	}

	h.settings.Save(settings)

	c.JSON(http.StatusOK, settings)
}

// GoldenClauses returns the built-in clause library
func (h *SettingsHandler) GoldenClauses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"clauses": model.GoldenClauseLibrary()})
}
