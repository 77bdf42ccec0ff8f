// Package client is the programmatic interface to the server used by
// the CLI. Protected calls go through the session gate: no token, no
// network round trip.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartbills/internal/core"
	"smartbills/internal/session"
)

var (
	// ErrUnauthenticated is returned before any network call when no
	// session is held, and after a call the server rejected with 401.
	ErrUnauthenticated = errors.New("unauthenticated, log in first")
	// ErrNotFound is returned for unknown subscription IDs.
	ErrNotFound = errors.New("subscription not found")
)

// Client talks to the REST API.
type Client struct {
	baseURL string
	http    *http.Client
	gate    *session.Gate
}

func New(baseURL string, gate *session.Gate) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		gate:    gate,
	}
}

// Gate exposes the session gate, for callers that need its state.
func (c *Client) Gate() *session.Gate {
	return c.gate
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Subscription is the wire shape shared by requests and responses.
type Subscription struct {
	ID       int64   `json:"id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
	DueDate  string  `json:"due_date"`
	Category string  `json:"category"`
	Schedule string  `json:"schedule"`
	Notes    string  `json:"notes,omitempty"`
}

// Summary mirrors the dashboard aggregate.
type Summary struct {
	Today        string             `json:"today"`
	TotalMonthly float64            `json:"total_monthly"`
	PerCategory  map[string]float64 `json:"per_category"`
	Upcoming     []Subscription     `json:"upcoming"`
}

// Budget mirrors the budget evaluation. UsagePercent is nil when the
// ceiling is zero but spending is not.
type Budget struct {
	TotalMonthly float64  `json:"total_monthly"`
	Ceiling      float64  `json:"ceiling"`
	UsagePercent *float64 `json:"usage_percent"`
	Remaining    float64  `json:"remaining"`
	Status       string   `json:"status"`
}

// ToCore converts the wire shape into the domain type.
func (s Subscription) ToCore() (core.Subscription, error) {
	due, err := core.ParseDate(s.DueDate)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("parse due date: %w", err)
	}
	return core.Subscription{
		ID:       s.ID,
		Name:     s.Name,
		Price:    s.Price,
		Currency: s.Currency,
		DueDate:  due,
		Category: s.Category,
		Schedule: core.Schedule(s.Schedule),
		Notes:    s.Notes,
	}, nil
}

// FromCore converts a domain subscription into the wire shape.
func FromCore(sub core.Subscription) Subscription {
	return Subscription{
		ID:       sub.ID,
		Name:     sub.Name,
		Price:    sub.Price,
		Currency: sub.Currency,
		DueDate:  sub.DueDate.String(),
		Category: sub.Category,
		Schedule: string(sub.Schedule),
		Notes:    sub.Notes,
	}
}

// Register creates an account and stores the issued session token.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/register", email, password)
}

// Login exchanges credentials for a session token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) error {
	resp, err := c.do(ctx, http.MethodPost, path, credentialsRequest{Email: email, Password: password}, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return responseError(resp)
	}

	var sess sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	return c.gate.Authenticate(sess.Token)
}

// Logout ends the server session and clears the gate. The gate is
// cleared even when the server call fails: the user asked to be logged
// out.
func (c *Client) Logout(ctx context.Context) error {
	if c.gate.State() == session.Anonymous {
		return nil
	}

	resp, err := c.do(ctx, http.MethodPost, "/logout", nil, true)
	clearErr := c.gate.Clear()
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusUnauthorized {
		return responseError(resp)
	}
	return clearErr
}

// GetAll returns the user's subscriptions.
func (c *Client) GetAll(ctx context.Context) ([]Subscription, error) {
	resp, err := c.do(ctx, http.MethodGet, "/subscriptions", nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var subs []Subscription
	if err := json.NewDecoder(resp.Body).Decode(&subs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	return subs, nil
}

// Create saves a new subscription.
func (c *Client) Create(ctx context.Context, sub Subscription) (Subscription, error) {
	resp, err := c.do(ctx, http.MethodPost, "/subscriptions", sub, true)
	if err != nil {
		return Subscription{}, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, http.StatusCreated); err != nil {
		return Subscription{}, err
	}

	var saved Subscription
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return Subscription{}, fmt.Errorf("decode subscription: %w", err)
	}
	return saved, nil
}

// Update replaces an existing subscription.
func (c *Client) Update(ctx context.Context, id int64, sub Subscription) (Subscription, error) {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/subscriptions/%d", id), sub, true)
	if err != nil {
		return Subscription{}, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, http.StatusOK); err != nil {
		return Subscription{}, err
	}

	var saved Subscription
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return Subscription{}, fmt.Errorf("decode subscription: %w", err)
	}
	return saved, nil
}

// Delete removes a subscription.
func (c *Client) Delete(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/subscriptions/%d", id), nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.checkStatus(resp, http.StatusNoContent)
}

// GetSummary returns the dashboard aggregate.
func (c *Client) GetSummary(ctx context.Context) (Summary, error) {
	resp, err := c.do(ctx, http.MethodGet, "/summary", nil, true)
	if err != nil {
		return Summary{}, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, http.StatusOK); err != nil {
		return Summary{}, err
	}

	var summary Summary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return Summary{}, fmt.Errorf("decode summary: %w", err)
	}
	return summary, nil
}

// GetBudget evaluates current spending against a ceiling.
func (c *Client) GetBudget(ctx context.Context, ceiling float64) (Budget, error) {
	path := fmt.Sprintf("/budget?ceiling=%g", ceiling)
	resp, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return Budget{}, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, http.StatusOK); err != nil {
		return Budget{}, err
	}

	var budget Budget
	if err := json.NewDecoder(resp.Body).Decode(&budget); err != nil {
		return Budget{}, fmt.Errorf("decode budget: %w", err)
	}
	return budget, nil
}

// ExportCSV streams the CSV export into w.
func (c *Client) ExportCSV(ctx context.Context, w io.Writer) error {
	return c.export(ctx, "/export/csv", w)
}

// ExportReport streams the plain-text report into w.
func (c *Client) ExportReport(ctx context.Context, w io.Writer) error {
	return c.export(ctx, "/export/report", w)
}

func (c *Client) export(ctx context.Context, path string, w io.Writer) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, http.StatusOK); err != nil {
		return err
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// do builds and sends one request. Protected requests fail fast when
// the gate is anonymous.
func (c *Client) do(ctx context.Context, method, path string, body any, protected bool) (*http.Response, error) {
	var token string
	if protected {
		t, ok := c.gate.Token()
		if !ok {
			return nil, ErrUnauthenticated
		}
		token = t
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// checkStatus maps unexpected statuses to errors. A 401 clears the
// gate: the stored token is no longer good.
func (c *Client) checkStatus(resp *http.Response, want int) error {
	if resp.StatusCode == want {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = c.gate.Clear()
		return ErrUnauthenticated
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return responseError(resp)
}

func responseError(resp *http.Response) error {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
