package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/invoice_reconcile/reconcile"
)

const (
	erpInvoicesPath       = "/invoices"
	erpPurchaseOrdersPath = "/purchase-orders"
	erpMaxPages           = 200
)

// ERPClient pulls invoices and purchase orders from an ERP REST API that pages
// with a next_cursor token.
type ERPClient struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	limiter   *time.Ticker
}

// NewERPClientFromEnv configures the client from ERP_API_BASE_URL, ERP_API_KEY,
// ERP_API_KEY_HEADER and ERP_RATE_LIMIT_PER_MIN.
func NewERPClientFromEnv() (*ERPClient, error) {
	rateLimitPerMin := int64(60)
	if v := strings.TrimSpace(os.Getenv("ERP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	return NewERPClient(
		os.Getenv("ERP_API_BASE_URL"),
		os.Getenv("ERP_API_KEY"),
		os.Getenv("ERP_API_KEY_HEADER"),
		time.Minute/time.Duration(rateLimitPerMin),
	)
}

func NewERPClient(baseURL, apiKey, apiKeyHeader string, interval time.Duration) (*ERPClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("erp base url is empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("erp api key is empty")
	}
	apiKeyHeader = strings.TrimSpace(apiKeyHeader)
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &ERPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   time.NewTicker(interval),
	}, nil
}

// Close stops the rate limiter.
func (c *ERPClient) Close() {
	c.limiter.Stop()
}

type erpListResponse struct {
	Data       []json.RawMessage `json:"data"`
	Items      []json.RawMessage `json:"items"`
	NextCursor string            `json:"next_cursor"`
	HasMore    *bool             `json:"has_more"`
}

// Load fetches both collections. params (e.g. batch, from, to) are forwarded to
// both list endpoints.
func (c *ERPClient) Load(ctx context.Context, params url.Values) (*Batch, error) {
	invoices, err := c.listAll(ctx, erpInvoicesPath, params)
	if err != nil {
		return nil, fmt.Errorf("erp invoices: %w", err)
	}
	purchaseOrders, err := c.listAll(ctx, erpPurchaseOrdersPath, params)
	if err != nil {
		return nil, fmt.Errorf("erp purchase orders: %w", err)
	}
	return &Batch{Invoices: invoices, PurchaseOrders: purchaseOrders}, nil
}

func (c *ERPClient) listAll(ctx context.Context, path string, params url.Values) ([]reconcile.Record, error) {
	out := make([]reconcile.Record, 0)
	query := url.Values{}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}

	for page := 0; page < erpMaxPages; page++ {
		resp, err := c.getList(ctx, path, query)
		if err != nil {
			return nil, err
		}
		items := resp.Data
		if len(items) == 0 {
			items = resp.Items
		}
		for _, raw := range items {
			rec, err := decodeRecord(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}

		more := resp.NextCursor != ""
		if resp.HasMore != nil {
			more = more && *resp.HasMore
		}
		if !more {
			return out, nil
		}
		query.Set("cursor", resp.NextCursor)
	}
	return nil, fmt.Errorf("%s: more than %d pages", path, erpMaxPages)
}

func (c *ERPClient) getList(ctx context.Context, path string, params url.Values) (erpListResponse, error) {
	select {
	case <-ctx.Done():
		return erpListResponse{}, ctx.Err()
	case <-c.limiter.C:
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return erpListResponse{}, err
	}
	req.Header.Set(c.apiKeyHdr, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return erpListResponse{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return erpListResponse{}, fmt.Errorf("erp api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed erpListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return erpListResponse{}, err
	}
	return parsed, nil
}

func decodeRecord(raw json.RawMessage) (reconcile.Record, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var rec reconcile.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("invalid erp record: %w", err)
	}
	if rec == nil {
		return nil, errors.New("invalid erp record: null")
	}
	return rec, nil
}
