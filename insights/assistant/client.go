package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/skywardair/customer-analytics/insights/domain"
)

// ErrAssistantUnavailable wraps any terminal failure of the external text
// service. It is surfaced to the user as a plain-text message scoped to the
// current query; the rest of the session stays usable.
var ErrAssistantUnavailable = errors.New("assistant service unavailable")

// PlanRequest is what the external planner receives: the question, the
// active filter state and the column catalog it may reference.
type PlanRequest struct {
	Question string         `json:"question"`
	Filters  domain.Filters `json:"filters"`
	Columns  []string       `json:"columns"`
}

// NarrateRequest carries the question and the full computed-operations JSON.
// The narrator must not perform arithmetic; every number it reports already
// exists in Results.
type NarrateRequest struct {
	Question string                 `json:"question"`
	Results  map[string]interface{} `json:"results"`
}

type narrateResponse struct {
	Text string `json:"text"`
}

// TextClient is the planning/narration boundary: free text in, either a
// proposed plan structure or prose out.
//
//go:generate mockery --name TextClient --output ./mocks
type TextClient interface {
	Plan(ctx context.Context, req PlanRequest) (interface{}, error)
	Narrate(ctx context.Context, req NarrateRequest) (string, error)
}

type restyClient struct {
	client *resty.Client
}

// NewTextClient returns a TextClient over HTTP with a request timeout and
// retry with backoff.
func NewTextClient(baseURL string) TextClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	return &restyClient{client: client}
}

func (c *restyClient) Plan(ctx context.Context, req PlanRequest) (interface{}, error) {
	var proposed interface{}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&proposed).
		Post("/v1/plan")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: plan returned status %d", ErrAssistantUnavailable, resp.StatusCode())
	}

	return proposed, nil
}

func (c *restyClient) Narrate(ctx context.Context, req NarrateRequest) (string, error) {
	var narrated narrateResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&narrated).
		Post("/v1/narrate")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("%w: narrate returned status %d", ErrAssistantUnavailable, resp.StatusCode())
	}

	return narrated.Text, nil
}
