// Package feed fetches the hosted model-portfolio document and normalizes
// it into target records.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"copytrade/internal/rebalance"
)

type Client struct {
	url        string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feed error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, url string) *Client {
	return &Client{
		url:        strings.TrimSpace(url),
		httpClient: httpClient,
	}
}

// rawDocument mirrors the upstream payload. All numeric fields are
// fixed-point integers; see descale below for the divisor contract.
type rawDocument struct {
	Data struct {
		RecordItems []rawRecord `json:"record_items"`
	} `json:"data"`
}

type rawRecord struct {
	StockCode          string `json:"stock_code"`
	TotalRatio         int64  `json:"total_ratio"`
	PositionRatio      int64  `json:"position_ratio"`
	CostPrice          int64  `json:"cost_price"`
	CurrentPrice       int64  `json:"current_price"`
	ProfitAndLossRatio int64  `json:"profit_and_loss_ratio"`
}

// Fetch downloads the portfolio document and returns targets keyed by stock
// code, plus the raw body for archiving. Records without a stock code are
// skipped; missing numeric fields decode as zero.
func (c *Client) Fetch(ctx context.Context) (map[string]rebalance.Target, []byte, error) {
	if c == nil || c.url == "" {
		return nil, nil, fmt.Errorf("feed url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	records, err := decodeTargets(body)
	if err != nil {
		return nil, body, err
	}
	return records, body, nil
}

func decodeTargets(body []byte) (map[string]rebalance.Target, error) {
	var doc rawDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("malformed feed document: %w", err)
	}
	records := make(map[string]rebalance.Target, len(doc.Data.RecordItems))
	for _, item := range doc.Data.RecordItems {
		code := strings.TrimSpace(item.StockCode)
		if code == "" {
			continue
		}
		records[code] = descale(code, item)
	}
	return records, nil
}

// descale applies the upstream fixed-point divisors: ratios are stored
// scaled by 1e7, prices by 1e9. These divisors are a contract with the feed
// format and must not change.
func descale(code string, item rawRecord) rebalance.Target {
	return rebalance.Target{
		Code:            code,
		TotalRatio:      ratioFromFixed(item.TotalRatio),
		PositionRatio:   ratioFromFixed(item.PositionRatio),
		CostPrice:       priceFromFixed(item.CostPrice),
		CurrentPrice:    priceFromFixed(item.CurrentPrice),
		ProfitLossRatio: ratioFromFixed(item.ProfitAndLossRatio),
	}
}
