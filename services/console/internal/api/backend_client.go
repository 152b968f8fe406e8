package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"jobconsole/common/telemetry"
	"jobconsole/services/console/internal/config"
	"jobconsole/services/console/internal/errors"
	"jobconsole/services/console/internal/models"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobconsole/console/api")

// maxErrorBody bounds how much of an error response is read looking for a message.
const maxErrorBody = 64 << 10

type BackendClient interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	ListJobs(ctx context.Context) ([]models.JobPosting, error)
	CreateJob(ctx context.Context, payload models.JobPayload) (*models.JobPosting, error)
	UpdateJob(ctx context.Context, id string, payload models.JobPayload) (*models.JobPosting, error)
	DeleteJob(ctx context.Context, id string) error
	UpdateJobStatus(ctx context.Context, id string, status models.Status) (*models.JobPosting, error)
	ResetPassword(ctx context.Context, req models.PasswordResetRequest) (*models.PasswordResetResponse, error)
}

type backendClient struct {
	client  *http.Client
	logger  *zap.Logger
	baseURL string
	token   string
}

func NewBackendClient(logger *zap.Logger, config *config.Config) BackendClient {
	return &backendClient{
		client: &http.Client{
			Timeout: config.APITimeout,
		},
		logger:  logger,
		baseURL: config.APIBaseURL + "/api",
		token:   config.APIToken,
	}
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *backendClient) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var out envelope[[]models.Department]
	if err := c.do(ctx, "ListDepartments", http.MethodGet, "/departments", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *backendClient) ListJobs(ctx context.Context) ([]models.JobPosting, error) {
	var out envelope[[]models.JobPosting]
	if err := c.do(ctx, "ListJobs", http.MethodGet, "/jobs", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *backendClient) CreateJob(ctx context.Context, payload models.JobPayload) (*models.JobPosting, error) {
	var out envelope[*models.JobPosting]
	if err := c.do(ctx, "CreateJob", http.MethodPost, "/jobs", payload, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, errors.Internal("create job response carried no record", nil)
	}
	return out.Data, nil
}

func (c *backendClient) UpdateJob(ctx context.Context, id string, payload models.JobPayload) (*models.JobPosting, error) {
	var out envelope[*models.JobPosting]
	if err := c.do(ctx, "UpdateJob", http.MethodPut, jobPath(id), payload, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, errors.Internal("update job response carried no record", nil)
	}
	return out.Data, nil
}

func (c *backendClient) DeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, "DeleteJob", http.MethodDelete, jobPath(id), nil, nil)
}

func (c *backendClient) UpdateJobStatus(ctx context.Context, id string, status models.Status) (*models.JobPosting, error) {
	var out envelope[*models.JobPosting]
	body := models.StatusUpdate{Status: status}
	if err := c.do(ctx, "UpdateJobStatus", http.MethodPut, jobPath(id)+"/status", body, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, errors.Internal("status update response carried no record", nil)
	}
	return out.Data, nil
}

// ResetPassword returns the backend's verdict. A non-2xx response that still
// carries a message is reported as success=false rather than as an error, so
// callers handle both the same way.
func (c *backendClient) ResetPassword(ctx context.Context, req models.PasswordResetRequest) (*models.PasswordResetResponse, error) {
	var out models.PasswordResetResponse
	err := c.do(ctx, "ResetPassword", http.MethodPost, "/auth/reset-password", req, &out)
	if err != nil {
		var de *errors.DomainError
		if stderrors.As(err, &de) && de.Status != 0 && de.Remote != "" {
			return &models.PasswordResetResponse{Success: false, Message: de.Remote}, nil
		}
		return nil, err
	}
	return &out, nil
}

func jobPath(id string) string {
	return "/jobs/" + url.PathEscape(id)
}

func (c *backendClient) do(ctx context.Context, op, method, path string, in, out any) error {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	endpoint := c.baseURL + path
	span.SetAttributes(
		telemetry.String("http.method", method),
		telemetry.String("http.url", endpoint),
	)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			span.RecordError(err)
			return errors.Internal("encoding request body", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("creating request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("failed to execute request",
			zap.String("op", op),
			zap.String("url", endpoint),
			zap.Error(err))
		return errors.Unavailable("executing request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := readErrorMessage(resp.Body)
		c.logger.Error("unexpected status code",
			zap.String("op", op),
			zap.String("url", endpoint),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", remote))
		derr := errors.FromResponse(resp.StatusCode, fmt.Sprintf("%s: unexpected status code %d", op, resp.StatusCode), remote)
		span.RecordError(derr)
		return derr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		c.logger.Error("failed to decode response", zap.String("op", op), zap.Error(err))
		return errors.Internal("decoding response", err)
	}

	c.logger.Debug("backend request succeeded",
		zap.String("op", op),
		zap.Int("status_code", resp.StatusCode))
	return nil
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
