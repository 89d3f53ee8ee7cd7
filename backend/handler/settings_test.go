package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/service"
)

func newSettingsHandler(t *testing.T) *SettingsHandler {
	t.Helper()
	disk, err := service.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return NewSettingsHandler(service.NewSettingsStore(disk))
}

func TestSettingsGetDefaults(t *testing.T) {
	handler := newSettingsHandler(t)

	router := gin.New()
	router.GET("/api/settings", handler.Get)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/settings", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var settings model.Settings
	json.Unmarshal(w.Body.Bytes(), &settings)
	if settings.RiskSensitivity != model.SensitivityMedium {
		t.Errorf("default sensitivity = %q, want medium", settings.RiskSensitivity)
	}
}

func TestSettingsUpdate(t *testing.T) {
	handler := newSettingsHandler(t)

	router := gin.New()
	router.GET("/api/settings", handler.Get)
	router.PUT("/api/settings", handler.Update)

	body := `{"risk_sensitivity":"strict","auto_flag":true,"risk_alerts":false,"default_industry":"finance","default_contract_type":"vendor","custom_library":true,"allow_suggestions":false}`
	req := httptest.NewRequest("PUT", "/api/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	// The update must be visible on the next read.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/settings", nil))

	var settings model.Settings
	json.Unmarshal(w.Body.Bytes(), &settings)
	if settings.RiskSensitivity != model.SensitivityStrict {
		t.Errorf("sensitivity = %q, want strict", settings.RiskSensitivity)
	}
	if settings.DefaultIndustry != "finance" {
		t.Errorf("default_industry = %q, want finance", settings.DefaultIndustry)
	}
}

func TestSettingsUpdateInvalidSensitivity(t *testing.T) {
	handler := newSettingsHandler(t)

	router := gin.New()
	router.PUT("/api/settings", handler.Update)

	req := httptest.NewRequest("PUT", "/api/settings", strings.NewReader(`{"risk_sensitivity":"extreme"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestGoldenClauses(t *testing.T) {
	handler := newSettingsHandler(t)

	router := gin.New()
	router.GET("/api/golden-clauses", handler.GoldenClauses)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/golden-clauses", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp struct {
		Clauses []model.GoldenClause `json:"clauses"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Clauses) == 0 {
		t.Fatal("expected a non-empty clause library")
	}
	for _, clause := range resp.Clauses {
		if clause.Type == "" || clause.Definition == "" {
			t.Errorf("incomplete clause entry: %+v", clause)
		}
	}
}
