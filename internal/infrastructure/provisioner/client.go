package provisioner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/asfmarkets/intake-bot/internal/domain"
)

const (
	authHeader = "X-Auth"
	// Error/body excerpts recorded in results are bounded so ledger notes
	// and logs stay readable.
	maxErrLen = 400
)

// Client talks to the browser-automation service. Both endpoints drive a
// multi-step headless signup, so total timeouts are in the tens of seconds
// to minutes range; the MT4 flow is the longer of the two.
//
// No call ever returns a Go error for transport problems: a non-200 status,
// a timeout, or a connection failure is folded into the result with
// TransportOK=false and a bounded error description.
type Client struct {
	baseURL string
	secret  string

	demoHTTP *http.Client
	mt4HTTP  *http.Client
}

func New(baseURL, secret string, connectTimeout, demoTimeout, mt4Timeout time.Duration) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	}
	return &Client{
		baseURL:  baseURL,
		secret:   secret,
		demoHTTP: &http.Client{Transport: transport, Timeout: demoTimeout},
		mt4HTTP:  &http.Client{Transport: transport, Timeout: mt4Timeout},
	}
}

type demoPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
}

type mt4Payload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// wireResult is the union of both endpoints' 200 bodies, decoded once here
// at the gateway boundary.
type wireResult struct {
	OK             bool     `json:"ok"`
	LikelyCreated  bool     `json:"likely_created"`
	Note           string   `json:"note"`
	Error          string   `json:"error"`
	Phase          string   `json:"phase"`
	Screenshots    []string `json:"screenshots"`
	OutcomeExcerpt string   `json:"outcome_excerpt"`
	PageExcerpt    string   `json:"page_excerpt"`
	URL            string   `json:"url"`
	MT4Login       string   `json:"mt4_login"`
	MT4Server      string   `json:"mt4_server"`
}

func (c *Client) CreateDemo(ctx context.Context, name, email, password, phone, country string) domain.DemoResult {
	wire, transportErr, body := c.post(ctx, c.demoHTTP, "/create-demo", demoPayload{
		Name:     name,
		Email:    email,
		Password: password,
		Phone:    phone,
		Country:  country,
	})
	if transportErr != "" {
		return domain.DemoResult{Error: transportErr, Note: body}
	}
	return domain.DemoResult{
		TransportOK:    true,
		OK:             wire.OK,
		LikelyCreated:  wire.LikelyCreated,
		Note:           wire.Note,
		Error:          wire.Error,
		Phase:          wire.Phase,
		Screenshots:    wire.Screenshots,
		OutcomeExcerpt: wire.OutcomeExcerpt,
		PageExcerpt:    wire.PageExcerpt,
		URL:            wire.URL,
	}
}

func (c *Client) CreateMT4(ctx context.Context, email, password string) domain.MT4Result {
	wire, transportErr, body := c.post(ctx, c.mt4HTTP, "/create-mt4", mt4Payload{
		Email:    email,
		Password: password,
	})
	if transportErr != "" {
		return domain.MT4Result{Error: transportErr, Note: body}
	}
	return domain.MT4Result{
		TransportOK: true,
		OK:          wire.OK,
		Login:       wire.MT4Login,
		Server:      wire.MT4Server,
		Note:        wire.Note,
		Error:       wire.Error,
		Phase:       wire.Phase,
		Screenshots: wire.Screenshots,
	}
}

// post returns the decoded payload on 200, or a non-empty transportErr plus
// a truncated body excerpt on any failure.
func (c *Client) post(ctx context.Context, hc *http.Client, path string, payload any) (wireResult, string, string) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return wireResult{}, truncate("encode request: " + err.Error()), ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return wireResult{}, truncate("build request: " + err.Error()), ""
	}
	req.Header.Set(authHeader, c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return wireResult{}, truncate(err.Error()), ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrLen))
		return wireResult{}, fmt.Sprintf("HTTP %d", resp.StatusCode), truncate(string(body))
	}

	var wire wireResult
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return wireResult{}, truncate("decode response: " + err.Error()), ""
	}
	return wire, "", ""
}

func truncate(s string) string {
	if len(s) > maxErrLen {
		return s[:maxErrLen]
	}
	return s
}
