// Package checkout is the HTTP client for the hosted checkout
// provider. It creates payment sessions and returns the redirect URL
// the buyer completes the payment at.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/order"

	"github.com/google/go-querystring/query"
)

type Client struct {
	SessionURL string
	SecretKey  string
	Currency   string
	HTTP       *http.Client
}

func New(baseURL, sessionPath, secretKey, currency string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		SessionURL: baseURL + sessionPath,
		SecretKey:  secretKey,
		Currency:   currency,
		HTTP:       httpClient,
	}
}

type sessionForm struct {
	Mode              string `url:"mode"`
	Currency          string `url:"currency"`
	SuccessURL        string `url:"success_url"`
	CancelURL         string `url:"cancel_url"`
	ClientReferenceID string `url:"client_reference_id"`
}

type sessionResp struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateSession posts a form-encoded session create request, the wire
// format the provider expects.
func (c *Client) CreateSession(ctx context.Context, req order.SessionRequest) (order.Session, error) {
	form, err := query.Values(sessionForm{
		Mode:              "payment",
		Currency:          c.Currency,
		SuccessURL:        req.SuccessURL,
		CancelURL:         req.CancelURL,
		ClientReferenceID: req.OrderID,
	})
	if err != nil {
		return order.Session{}, fmt.Errorf("encode session form: %w", err)
	}

	for i, line := range req.Lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[name]", line.Name)
		form.Set(prefix+"[unit_amount]", strconv.FormatInt(line.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(line.Quantity))
	}

	httpReq, _ := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.SessionURL,
		strings.NewReader(form.Encode()),
	)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return order.Session{}, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode/100 != 2 {
		return order.Session{}, fmt.Errorf("provider %s: %s", resp.Status, string(raw))
	}

	var out sessionResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return order.Session{}, fmt.Errorf("decode session response: %w", err)
	}
	if out.URL == "" {
		return order.Session{}, fmt.Errorf("provider returned no redirect url")
	}

	return order.Session{ID: out.ID, URL: out.URL}, nil
}
