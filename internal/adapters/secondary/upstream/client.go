// Package upstream performs the outbound GET requests made to third-party providers
// and classifies their failures into domain error codes.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/infrastructure/circuitbreaker"
)

// DefaultTimeout bounds every provider call.
const DefaultTimeout = 10 * time.Second

const (
	maxBodyBytes     = 4 << 20
	maxRecordedBytes = 2048
)

// errServerStatus marks 5xx responses so they count against the circuit breaker.
var errServerStatus = errors.New("upstream server error")

// Recorder receives the outcome of every provider call.
type Recorder interface {
	RecordUpstreamCall(ctx context.Context, provider string, code domain.ErrorCode, duration time.Duration)
}

// Config describes how to reach one provider.
type Config struct {
	// Provider is recorded in failure contexts, logs and spans.
	Provider string
	Timeout  time.Duration
	// Headers are sent with every request.
	Headers map[string]string

	HTTPClient *http.Client
	Breaker    *circuitbreaker.Breaker
	Recorder   Recorder
}

// Client issues GET requests to a single provider.
type Client struct {
	provider   string
	timeout    time.Duration
	headers    map[string]string
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
	recorder   Recorder
	logger     *zap.Logger
}

// NewClient creates a Client. A zero timeout means DefaultTimeout and a nil
// HTTPClient means http.DefaultClient.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		provider:   cfg.Provider,
		timeout:    timeout,
		headers:    cfg.Headers,
		httpClient: httpClient,
		breaker:    cfg.Breaker,
		recorder:   cfg.Recorder,
		logger:     logger,
	}
}

// Provider returns the provider name the client reports in failures.
func (c *Client) Provider() string {
	return c.provider
}

// response is the raw outcome of a completed HTTP exchange.
type response struct {
	status int
	body   []byte
}

// GetJSON sends GET endpoint?params and decodes a 2xx JSON body into T.
//
// Failures are classified as follows: transport errors, timeouts and open breakers
// yield CONNECTION_ERROR; 5xx yields API_UNAVAILABLE; any other non-2xx yields
// API_ERROR; an undecodable 2xx body yields UNEXPECTED_ERROR. For HTTP failures a
// "message" field in a JSON body replaces the default message.
func GetJSON[T any](ctx context.Context, c *Client, endpoint string, params url.Values) domain.Result[T] {
	ctx, span := otel.Tracer("upstream").Start(ctx, "Upstream.GetJSON")
	defer span.End()

	span.SetAttributes(
		attribute.String("upstream.provider", c.provider),
		attribute.String("upstream.endpoint", endpoint),
	)

	start := time.Now()
	result := getJSON[T](ctx, c, endpoint, params)

	if result.IsFailure() {
		span.SetStatus(codes.Error, result.ErrorCode().String())
	}

	if c.recorder != nil {
		c.recorder.RecordUpstreamCall(ctx, c.provider, result.ErrorCode(), time.Since(start))
	}

	return result
}

func getJSON[T any](ctx context.Context, c *Client, endpoint string, params url.Values) domain.Result[T] {
	target := endpoint

	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)

	if err != nil {
		c.logger.Error("failed to build provider request",
			zap.String("provider", c.provider),
			zap.String("endpoint", endpoint),
			zap.Error(err))

		return domain.FailureFromError[T](err, domain.ErrUnexpected, "")
	}

	req.Header.Set("Accept", "application/json")

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	var resp response

	call := func() error {
		var callErr error

		resp, callErr = c.do(req)

		if callErr != nil {
			return callErr
		}

		if resp.status >= http.StatusInternalServerError {
			return errServerStatus
		}

		return nil
	}

	if c.breaker != nil {
		err = c.breaker.Execute(ctx, endpoint, call)
	} else {
		err = call()
	}

	switch {
	case err == nil, errors.Is(err, errServerStatus):
	case circuitbreaker.IsRejected(err):
		return domain.Failure[T](
			domain.ErrConnection,
			fmt.Sprintf("The %s service is temporarily unreachable.", c.provider),
			c.context(nil),
		)
	default:
		c.logger.Error("provider connection failed",
			zap.String("provider", c.provider),
			zap.String("endpoint", endpoint),
			zap.Error(err))

		return domain.Failure[T](domain.ErrConnection, err.Error(), c.context(nil))
	}

	if resp.status < 200 || resp.status > 299 {
		return httpFailure[T](c, endpoint, resp)
	}

	var out T

	if err := json.Unmarshal(resp.body, &out); err != nil {
		c.logger.Error("failed to decode provider response",
			zap.String("provider", c.provider),
			zap.String("endpoint", endpoint),
			zap.Error(err))

		return domain.FailureFromError[T](err, domain.ErrUnexpected, "Failed to decode the external service response.")
	}

	return domain.Success(out)
}

func (c *Client) do(req *http.Request) (response, error) {
	httpResp, err := c.httpClient.Do(req)

	if err != nil {
		return response{}, err
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Debug("failed to close response body", zap.Error(err))
		}
	}(httpResp.Body)

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))

	if err != nil {
		return response{}, err
	}

	return response{status: httpResp.StatusCode, body: body}, nil
}

func httpFailure[T any](c *Client, endpoint string, resp response) domain.Result[T] {
	code := domain.ErrAPI

	if resp.status >= http.StatusInternalServerError {
		code = domain.ErrAPIUnavailable
	}

	var structured struct {
		Message string `json:"message"`
	}

	message := ""

	if err := json.Unmarshal(resp.body, &structured); err == nil {
		message = structured.Message
	}

	c.logger.Error("provider returned an error status",
		zap.String("provider", c.provider),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.status),
		zap.Stringer("error_code", code))

	return domain.Failure[T](code, message, c.context(map[string]any{
		domain.ContextAPIStatus:   resp.status,
		domain.ContextAPIResponse: truncate(resp.body),
	}))
}

func (c *Client) context(extra map[string]any) map[string]any {
	ctx := map[string]any{domain.ContextProvider: c.provider}

	for k, v := range extra {
		ctx[k] = v
	}

	return ctx
}

func truncate(body []byte) string {
	if len(body) > maxRecordedBytes {
		return string(body[:maxRecordedBytes])
	}

	return string(body)
}
