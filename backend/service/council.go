package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/config"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
)

// CouncilService is the HTTP client for the external analysis backend. The
// backend does all the heavy lifting (clause extraction, risk scoring,
// correction generation); this client only moves bytes and decodes the
// snake_case report payloads.
type CouncilService struct {
	config     *config.CouncilConfig
	httpClient *http.Client
}

// AnalysisReport is a completed report as the backend serves it, either in
// full (results and contract text present) or as a list summary.
type AnalysisReport struct {
	ID           string               `json:"id"`
	Filename     string               `json:"filename"`
	Results      []model.ClauseResult `json:"results"`
	ContractText string               `json:"contract_text"`
	Timestamp    time.Time            `json:"timestamp"`
}

type councilError struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func NewCouncilService(cfg *config.CouncilConfig) *CouncilService {
	// Analysis legitimately runs for many minutes, so the client applies no
	// deadline of its own unless one is configured.
	client := &http.Client{}
	if cfg.TimeoutMinutes > 0 {
		client.Timeout = time.Duration(cfg.TimeoutMinutes) * time.Minute
	}
	return &CouncilService{
		config:     cfg,
		httpClient: client,
	}
}

// Analyze submits a contract file as a multipart upload and blocks until
// the backend returns the completed report. Analysis can take minutes.
func (s *CouncilService) Analyze(ctx context.Context, filename string, file []byte, sensitivity string) (*AnalysisReport, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/analyze?sensitivity=%s", s.config.BaseURL, url.QueryEscape(sensitivity))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var report AnalysisReport
	if err := s.do(req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// FetchStats retrieves the backend's aggregate dashboard numbers.
func (s *CouncilService) FetchStats(ctx context.Context) (*model.ServerStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.BaseURL+"/dashboard-stats", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var stats model.ServerStats
	if err := s.do(req, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// FetchReports retrieves the authoritative list of completed reports.
func (s *CouncilService) FetchReports(ctx context.Context) ([]*AnalysisReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.BaseURL+"/reports", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var reports []*AnalysisReport
	if err := s.do(req, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// FetchReport retrieves one full report including results and contract text.
func (s *CouncilService) FetchReport(ctx context.Context, id string) (*AnalysisReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.reportURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var report AnalysisReport
	if err := s.do(req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// FetchReportFile retrieves the original uploaded file, if the backend
// retained it.
func (s *CouncilService) FetchReportFile(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.reportURL(id)+"/file", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("council returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}
	return data, nil
}

// DeleteReport deletes one report on the backend.
func (s *CouncilService) DeleteReport(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.reportURL(id), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return s.do(req, nil)
}

// DeleteAllReports deletes every report on the backend.
func (s *CouncilService) DeleteAllReports(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.config.BaseURL+"/reports", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return s.do(req, nil)
}

func (s *CouncilService) reportURL(id string) string {
	return s.config.BaseURL + "/reports/" + url.PathEscape(id)
}

// do executes a request and decodes a JSON response into out when non-nil.
func (s *CouncilService) do(req *http.Request, out any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ce councilError
		if json.Unmarshal(body, &ce) == nil {
			if ce.Detail != "" {
				return fmt.Errorf("council error (status %d): %s", resp.StatusCode, ce.Detail)
			}
			if ce.Error != "" {
				return fmt.Errorf("council error (status %d): %s", resp.StatusCode, ce.Error)
			}
		}
		return fmt.Errorf("council returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}
	return nil
}
