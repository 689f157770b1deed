// Package webhook posts analysis reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ccollicutt/tfanalyze/pkg/config"
	"github.com/ccollicutt/tfanalyze/pkg/logger"
	"github.com/ccollicutt/tfanalyze/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// UserAgent identifies webhook requests.
const UserAgent = "tfanalyze-webhook"

// maxResponseBody bounds how much of a response body is kept.
const maxResponseBody = 1024 * 1024

// Event names carried in the payload.
const (
	EventSlow     = "slow_resources"
	EventComplete = "analysis_complete"
)

// Payload is the JSON body of every webhook request.
type Payload struct {
	Event  string         `json:"event"`
	RunID  string         `json:"run_id"`
	SentAt time.Time      `json:"sent_at"`
	Report *output.Report `json:"report"`
}

// NewPayload wraps a report, choosing the event from its contents.
func NewPayload(report *output.Report) *Payload {
	event := EventComplete
	if report.HasSlow() {
		event = EventSlow
	}
	return &Payload{
		Event:  event,
		RunID:  report.Metadata.RunID,
		SentAt: time.Now().UTC(),
		Report: report,
	}
}

// Client sends analysis reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{}}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts the payload to one endpoint.
func (c *Client) Send(ctx context.Context, payload *Payload, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}
	fail := func(err error) *Response {
		resp.Error = err
		resp.Duration = time.Since(start)
		return resp
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fail(fmt.Errorf("failed to marshal payload: %w", err))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(body))
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(respBody)
	resp.Duration = time.Since(start)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}

// ShouldFire reports whether a webhook with the given trigger fires for report.
func ShouldFire(trigger config.WebhookTrigger, report *output.Report) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return report.HasSlow()
	}
}

// Result pairs a configured webhook with the outcome of sending to it.
type Result struct {
	Name     string
	URL      string
	Skipped  bool
	Response *Response
}

// Dispatcher sends a report to every configured webhook whose trigger matches.
type Dispatcher struct {
	client *Client
	hooks  []config.WebhookConfig
	log    *logger.Logger
}

// NewDispatcher creates a dispatcher for hooks.
func NewDispatcher(client *Client, hooks []config.WebhookConfig, log *logger.Logger) *Dispatcher {
	if client == nil {
		client = NewClient()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Dispatcher{client: client, hooks: hooks, log: log.WithComponent("webhook")}
}

// Dispatch sends report to each hook in order. It returns one Result per
// hook and never fails the run; errors are logged and recorded.
func (d *Dispatcher) Dispatch(ctx context.Context, report *output.Report) []Result {
	results := make([]Result, 0, len(d.hooks))
	payload := NewPayload(report)

	for _, hook := range d.hooks {
		name := hook.Name
		if name == "" {
			name = hook.URL
		}
		res := Result{Name: name, URL: hook.URL}

		if !ShouldFire(hook.Trigger, report) {
			res.Skipped = true
			d.log.Debug("webhook skipped", "name", name, "trigger", string(hook.Trigger))
			results = append(results, res)
			continue
		}

		res.Response = d.client.Send(ctx, payload, SendOptions{
			URL:     hook.URL,
			Token:   hook.Token,
			Timeout: hook.Timeout,
		})
		if res.Response.Success() {
			d.log.Info("webhook sent", "name", name, "status", res.Response.StatusCode,
				"duration", res.Response.Duration.String())
		} else {
			err := res.Response.Error
			if err == nil {
				err = fmt.Errorf("unexpected status %d", res.Response.StatusCode)
			}
			d.log.WithError(err).Warn("webhook failed", "name", name,
				"status", res.Response.StatusCode)
		}
		results = append(results, res)
	}

	return results
}
