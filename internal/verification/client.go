package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/domain"
)

var ErrUnexpectedStatus = errors.New("unexpected verification response status")

// Doer performs an HTTP request.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client asks the voter registration service whether an id number is registered.
type Client struct {
	baseURL string
	doer    Doer
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithDoer(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithDoer(baseURL string, doer Doer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
	}
}

// Verify returns the registration state for id. A 404 means not registered.
func (c *Client) Verify(ctx context.Context, id string) (domain.Verification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		return domain.Verification{}, fmt.Errorf("failed to create verification request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return domain.Verification{}, fmt.Errorf("failed to call verification service: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.Verification{Registered: false}, nil
	default:
		return domain.Verification{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var v domain.Verification
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return domain.Verification{}, fmt.Errorf("failed to decode verification response: %w", err)
	}

	return v, nil
}
