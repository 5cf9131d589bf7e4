package cloudbeds

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 30 * time.Second

	// feedWindowPast and feedWindowFuture bound the reservation query so a
	// property with years of history does not return its full archive.
	feedWindowPast   = 24 * time.Hour
	feedWindowFuture = 365 * 24 * time.Hour
)

// PropertyInfo is the remote-side identity of a property, as reported by the
// OAuth metadata endpoint.
type PropertyInfo struct {
	RemoteID string
	Name     string
	Timezone string
}

type apiEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type reservationsResponse struct {
	apiEnvelope
	Data []map[string]any `json:"data"`
}

type metadataResponse struct {
	apiEnvelope
	Data map[string]any `json:"data"`
}

// Client talks to the remote reservation API. Authentication tokens are
// supplied per call; the caller owns credential loading and refresh.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a client against the configured API base URL. HTTP 429
// responses are retried up to three times with exponential backoff capped at
// 30s, honoring a Retry-After header when the API sends one.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(maxRetries).
		SetRetryMaxWaitTime(maxRetryDelay).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err == nil && resp.StatusCode() == http.StatusTooManyRequests
		}).
		SetRetryAfter(retryDelay)

	return &Client{http: httpClient, logger: logger}
}

// retryDelay computes the wait before the next attempt: the server's
// Retry-After hint when present, otherwise exponential backoff from 1s,
// both capped at 30s.
func retryDelay(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	if resp != nil {
		if hint := resp.Header().Get("Retry-After"); hint != "" {
			if secs, err := strconv.Atoi(hint); err == nil && secs > 0 {
				return minDelay(time.Duration(secs) * time.Second), nil
			}
		}
	}
	attempt := 1
	if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
		attempt = resp.Request.Attempt
	}
	return minDelay(baseRetryDelay * time.Duration(1<<(attempt-1))), nil
}

func minDelay(d time.Duration) time.Duration {
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// FetchReservations pulls the reservation window for a property, including
// guest details. The returned records are raw API maps; interpretation is
// the caller's concern.
func (c *Client) FetchReservations(ctx context.Context, token, propertyID string) ([]map[string]any, error) {
	const op = "fetch reservations"

	now := time.Now().UTC()
	var result reservationsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"propertyID":           propertyID,
			"includeGuestsDetails": "true",
			"checkOutFrom":         now.Add(-feedWindowPast).Format("2006-01-02"),
			"checkInTo":            now.Add(feedWindowFuture).Format("2006-01-02"),
		}).
		SetResult(&result).
		Get("/api/v1.2/getReservations")
	if err != nil {
		return nil, &RemoteError{Operation: op, Message: err.Error(), Err: err}
	}
	if err := checkResponse(op, resp, result.apiEnvelope); err != nil {
		return nil, err
	}

	c.logger.Debug("fetched reservations",
		zap.String("property_remote_id", propertyID),
		zap.Int("count", len(result.Data)),
	)
	return result.Data, nil
}

// FetchProperties queries the OAuth metadata endpoint, which describes the
// single property associated with the supplied token.
func (c *Client) FetchProperties(ctx context.Context, token string) ([]PropertyInfo, error) {
	const op = "fetch properties"

	var result metadataResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&result).
		Get("/api/v1.3/oauth/metadata")
	if err != nil {
		return nil, &RemoteError{Operation: op, Message: err.Error(), Err: err}
	}
	if err := checkResponse(op, resp, result.apiEnvelope); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, nil
	}

	return []PropertyInfo{{
		RemoteID: stringField(result.Data, "propertyID"),
		Name:     stringField(result.Data, "propertyName"),
		Timezone: stringField(result.Data, "propertyTimezone"),
	}}, nil
}

// checkResponse maps non-success responses to typed errors. A 429 that
// survived the retry budget surfaces as a RemoteError wrapping a
// RateLimitError so callers can still read the hint.
func checkResponse(op string, resp *resty.Response, env apiEnvelope) error {
	if resp.StatusCode() == http.StatusTooManyRequests {
		rle := &RateLimitError{RetryAfter: parseRetryAfter(resp.Header().Get("Retry-After"))}
		return &RemoteError{
			Operation: op,
			Status:    resp.StatusCode(),
			Message:   fmt.Sprintf("%s after %d retries", rle.Error(), maxRetries),
			Err:       rle,
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return &RemoteError{Operation: op, Status: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "API reported failure"
		}
		return &RemoteError{Operation: op, Status: resp.StatusCode(), Message: msg}
	}
	return nil
}

func parseRetryAfter(hint string) time.Duration {
	secs, err := strconv.Atoi(hint)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// ExtractPhoneLast4 returns the last four digits of a phone number, ignoring
// formatting characters. Numbers with fewer than four digits yield "".
func ExtractPhoneLast4(phone string) string {
	var digits []rune
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}
