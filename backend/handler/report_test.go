package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/config"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(t *testing.T, councilHandler http.Handler) (*ReportHandler, *service.JobStore) {
	t.Helper()
	server := httptest.NewServer(councilHandler)
	t.Cleanup(server.Close)

	store := service.NewJobStore(nil)
	council := service.NewCouncilService(&config.CouncilConfig{BaseURL: server.URL, TimeoutMinutes: 1})
	manager := service.NewJobManager(store, council, nil)

	disk, err := service.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return NewReportHandler(manager, service.NewSettingsStore(disk)), store
}

func newUploadRequest(t *testing.T, url, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest("POST", url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func completedJob(id, filename string) *model.AnalysisJob {
	return &model.AnalysisJob{
		ID:       id,
		Filename: filename,
		Status:   model.StatusCompleted,
		Results: []model.ClauseResult{
			{ClauseID: 1, ClauseText: "late payment penalty of 5%", RiskLevel: model.RiskHigh, FinalRiskScore: 8},
		},
		ContractText: "A late payment penalty of 5% applies to overdue invoices.",
		File:         []byte("%PDF-1.4 stub"),
		Timestamp:    time.Now(),
	}
}

func TestAnalyzeAccepted(t *testing.T) {
	handler, store := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(service.AnalysisReport{ID: "42", Filename: "contract.pdf"})
	}))

	router := gin.New()
	router.POST("/api/analyze", handler.Analyze)

	req := newUploadRequest(t, "/api/analyze?sensitivity=strict", "contract.pdf", []byte("%PDF-1.4"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusAccepted, w.Code, w.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != model.StatusAnalyzing {
		t.Errorf("status = %v, want analyzing", resp["status"])
	}
	id, _ := resp["id"].(string)
	if store.Get(id) == nil {
		t.Error("job should be tracked under the returned id")
	}
}

func TestAnalyzeNoFile(t *testing.T) {
	handler, _ := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	router := gin.New()
	router.POST("/api/analyze", handler.Analyze)

	req := httptest.NewRequest("POST", "/api/analyze", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestAnalyzeRejectsExtension(t *testing.T) {
	handler, _ := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	router := gin.New()
	router.POST("/api/analyze", handler.Analyze)

	req := newUploadRequest(t, "/api/analyze", "malware.exe", []byte("MZ"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestAnalyzeRejectsInvalidSensitivity(t *testing.T) {
	handler, _ := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	router := gin.New()
	router.POST("/api/analyze", handler.Analyze)

	req := newUploadRequest(t, "/api/analyze?sensitivity=extreme", "contract.pdf", []byte("%PDF-1.4"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestListReports(t *testing.T) {
	handler, store := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	store.Save(completedJob("srv-1", "a.pdf"))
	store.Save(&model.AnalysisJob{ID: "job-2", Filename: "b.pdf", Status: model.StatusAnalyzing, Timestamp: time.Now()})

	router := gin.New()
	router.GET("/api/reports", handler.List)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp struct {
		Reports []map[string]any `json:"reports"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Reports) != 2 {
		t.Fatalf("reports len = %d, want 2", len(resp.Reports))
	}
	for _, r := range resp.Reports {
		switch r["id"] {
		case "srv-1":
			if r["overall_risk"] != "high" {
				t.Errorf("overall_risk = %v, want high", r["overall_risk"])
			}
			if r["risky_clauses"] != float64(1) {
				t.Errorf("risky_clauses = %v, want 1", r["risky_clauses"])
			}
		case "job-2":
			if _, ok := r["overall_risk"]; ok {
				t.Error("analyzing jobs must not report an overall risk")
			}
		}
	}
}

func TestGetReport(t *testing.T) {
	handler, store := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	store.Save(completedJob("srv-1", "a.pdf"))

	router := gin.New()
	router.GET("/api/reports/:id", handler.Get)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports/srv-1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var job model.AnalysisJob
	json.Unmarshal(w.Body.Bytes(), &job)
	if job.ID != "srv-1" || len(job.Results) != 1 {
		t.Errorf("unexpected report payload: %+v", job)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for unknown report, got %d", http.StatusNotFound, w.Code)
	}
}

func TestDeleteReport(t *testing.T) {
	handler, store := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"deleted"}`))
	}))
	store.Save(completedJob("srv-1", "a.pdf"))

	router := gin.New()
	router.DELETE("/api/reports/:id", handler.Delete)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/reports/srv-1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if store.Get("srv-1") != nil {
		t.Error("report should be removed locally")
	}
}

func TestDeleteReportBackendRejected(t *testing.T) {
	handler, store := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	store.Save(completedJob("srv-1", "a.pdf"))

	router := gin.New()
	router.DELETE("/api/reports/:id", handler.Delete)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/reports/srv-1", nil))

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status %d, got %d", http.StatusBadGateway, w.Code)
	}
	if store.Get("srv-1") == nil {
		t.Error("a rejected delete must leave the report in place")
	}
}

func TestStats(t *testing.T) {
	handler, store := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	store.Save(completedJob("srv-1", "a.pdf"))

	router := gin.New()
	router.GET("/api/dashboard-stats", handler.Stats)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/dashboard-stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var stats model.DashboardStats
	json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.ContractsAnalyzed != 1 {
		t.Errorf("contracts_analyzed = %d, want 1", stats.ContractsAnalyzed)
	}
	if stats.RiskDistribution.High != 1 {
		t.Errorf("risk_distribution.high = %d, want 1", stats.RiskDistribution.High)
	}
}

func TestHighlighted(t *testing.T) {
	handler, store := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	store.Save(completedJob("srv-1", "a.pdf"))

	router := gin.New()
	router.GET("/api/reports/:id/highlighted", handler.Highlighted)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports/srv-1/highlighted", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["text"] == "" {
		t.Fatal("expected highlighted text")
	}
	if resp["text"] == "A late payment penalty of 5% applies to overdue invoices." {
		t.Error("expected highlight markers around the flagged clause")
	}
}

func TestAnnotatedNoRetainedFile(t *testing.T) {
	handler, store := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	job := completedJob("srv-1", "a.pdf")
	job.File = nil
	store.Save(job)

	router := gin.New()
	router.GET("/api/reports/:id/annotated", handler.Annotated)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports/srv-1/annotated", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestFileDownload(t *testing.T) {
	handler, store := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	store.Save(completedJob("srv-1", "a.pdf"))

	router := gin.New()
	router.GET("/api/reports/:id/file", handler.File)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports/srv-1/file", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.String() != "%PDF-1.4 stub" {
		t.Errorf("body = %q", w.Body.String())
	}
	if w.Header().Get("Content-Disposition") == "" {
		t.Error("expected Content-Disposition header")
	}
}
