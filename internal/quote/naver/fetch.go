package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"stockwatch/internal/quote"
	"stockwatch/internal/quote/extract"
)

// Fetch retrieves the item page for code and extracts a snapshot from it.
// Failures are classified into quote.Error kinds; no retries happen here —
// retry policy belongs to the caller.
func (c *Client) Fetch(ctx context.Context, code string) (quote.Snapshot, error) {
	body, err := c.FetchDocument(ctx, code)
	if err != nil {
		return quote.Snapshot{}, err
	}

	res, err := extract.Extract(string(body))
	if err != nil {
		return quote.Snapshot{}, &quote.Error{Code: code, Kind: quote.KindParse, Err: err}
	}

	return quote.Snapshot{
		Code:       code,
		Price:      res.Price,
		Change:     res.Change,
		ChangeRate: res.ChangeRate,
		FetchedAt:  c.now().UTC(),
	}, nil
}

// FetchDocument retrieves the raw item page body for code without parsing it.
func (c *Client) FetchDocument(ctx context.Context, code string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.itemURL(code), http.NoBody)
	if err != nil {
		return nil, &quote.Error{Code: code, Kind: quote.KindNetwork, Err: fmt.Errorf("creating request: %w", err)}
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &quote.Error{Code: code, Kind: quote.KindNetwork, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &quote.Error{
			Code: code,
			Kind: quote.KindHTTP,
			Err:  fmt.Errorf("GET %s -> %d", c.itemURL(code), res.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, &quote.Error{Code: code, Kind: quote.KindNetwork, Err: fmt.Errorf("reading body: %w", err)}
	}
	return body, nil
}
