package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/imrishuroy/landing-checkout/internal/validation"
)

// OrderRequest is the JSON body sent to POST /api/orders.
type OrderRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Pin      string `json:"pin"`
	Qty      int    `json:"qty"`
}

// Receipt is the successful response of the intake endpoint.
type Receipt struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	TotalCents int       `json:"total_cents"`
}

// RejectedError carries the per-field messages of a 422 response.
type RejectedError struct {
	Fields validation.Errors
}

func (e *RejectedError) Error() string { return "order rejected: " + e.Fields.Error() }

// ServerError is any other non-200 response.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("order service returned %d: %s", e.Status, e.Message)
}

// Client talks to the order intake API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the API at baseURL. A nil hc uses a
// client with a 15 second timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type apiResponse struct {
	OK         bool              `json:"ok"`
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	TotalCents int               `json:"total_cents"`
	Errors     map[string]string `json:"errors"`
	Error      string            `json:"error"`
}

// CreateOrder submits req. A 422 is returned as *RejectedError and every
// other failure status as *ServerError.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Receipt, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, &ServerError{Status: resp.StatusCode, Message: "unreadable response"}
	}

	switch {
	case resp.StatusCode == http.StatusOK && out.OK:
		return &Receipt{ID: out.ID, CreatedAt: out.CreatedAt, TotalCents: out.TotalCents}, nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, &RejectedError{Fields: validation.Errors(out.Errors)}
	default:
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &ServerError{Status: resp.StatusCode, Message: msg}
	}
}

// RuleSet is the rule table and unit price published by the server.
type RuleSet struct {
	Rules          *validation.Rules
	UnitPriceCents int
}

// Rules fetches GET /api/checkout/rules.
func (c *Client) Rules(ctx context.Context) (*RuleSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/checkout/rules", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rules: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ServerError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rules, err := validation.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	var price struct {
		UnitPriceCents int `json:"unit_price_cents"`
	}
	if err := json.Unmarshal(data, &price); err != nil {
		return nil, fmt.Errorf("decode unit price: %w", err)
	}
	return &RuleSet{Rules: rules, UnitPriceCents: price.UnitPriceCents}, nil
}
