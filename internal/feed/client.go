// Package feed retrieves transactions from upstream financial
// institutions and aggregates them per user.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"finsync/internal/core"
)

// Institution identifies one upstream data source.
type Institution struct {
	Name     string // source tag, e.g. "kb_bank"
	BaseURL  string
	Path     string // transactions endpoint path
	Industry string // bank, card, invest
}

// response is the institution API envelope.
type response struct {
	RspCode string             `json:"rsp_code"`
	RspMsg  string             `json:"rsp_msg"`
	Data    []core.Transaction `json:"data"`
}

const rspCodeOK = "00000"

// Client fetches transactions from one institution's API.
type Client struct {
	inst Institution
	hc   *http.Client
}

// NewClient creates an institution client. A nil http.Client gets a
// default with a 10s timeout.
func NewClient(inst Institution, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{inst: inst, hc: hc}
}

// Transactions fetches the institution's transactions in [from, to].
// Every returned transaction is tagged with the institution name as its
// source.
func (c *Client) Transactions(ctx context.Context, from, to time.Time) ([]core.Transaction, error) {
	q := url.Values{}
	q.Set("from_date", from.Format(core.DateLayout))
	q.Set("to_date", to.Format(core.DateLayout))

	endpoint := c.inst.BaseURL + c.inst.Path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", c.inst.Name, err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s transactions: %w", c.inst.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s transactions: unexpected status %d", c.inst.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.inst.Name, err)
	}

	var envelope response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", c.inst.Name, err)
	}
	if envelope.RspCode != rspCodeOK {
		return nil, fmt.Errorf("%s responded %s: %s", c.inst.Name, envelope.RspCode, envelope.RspMsg)
	}

	txs := envelope.Data
	for i := range txs {
		txs[i].Source = c.inst.Name
	}
	return txs, nil
}

// Name returns the institution's source tag.
func (c *Client) Name() string {
	return c.inst.Name
}
