// Package api is the gateway to the remote goods/orders service: it
// builds authenticated URLs, runs the HTTP calls, classifies failures
// and hands list responses to the normalizer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// KeyStore is where the API key lives between sessions.
type KeyStore interface {
	APIKey() (string, error)
	SetAPIKey(key string) error
}

type Client struct {
	host   string
	prefix string
	defKey string
	keys   KeyStore
	httpc  *http.Client
}

func NewClient(host, prefix, defaultKey string, keys KeyStore) *Client {
	return &Client{
		host:   strings.TrimRight(host, "/"),
		prefix: prefix,
		defKey: defaultKey,
		keys:   keys,
		httpc:  &http.Client{Timeout: 30 * time.Second},
	}
}

// apiKey reads the persisted key; an empty or unreadable store is healed
// by persisting the default key so every session is authenticated.
func (c *Client) apiKey() string {
	key, err := c.keys.APIKey()
	key = strings.TrimSpace(key)
	if err == nil && key != "" {
		return key
	}
	_ = c.keys.SetAPIKey(c.defKey)
	return c.defKey
}

// buildURL attaches the api key plus the given params, trimming values
// and dropping empty ones.
func (c *Client) buildURL(path string, query map[string]string) string {
	v := url.Values{}
	v.Set("api_key", c.apiKey())
	for k, raw := range query {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		v.Set(k, s)
	}
	return c.host + c.prefix + path + "?" + v.Encode()
}

// do runs one call. On 2xx the body is decoded into out when given; on
// any other status the body is mined for a readable message. A body that
// is not JSON is kept as plain text for the message extraction.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return &TransportError{Err: err, CertRelated: certRelated(err)}
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var parsed any
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &parsed); err != nil {
				parsed = string(raw)
			}
		}
		return &StatusError{
			Status:  res.StatusCode,
			Message: extractMessage(parsed, res.StatusCode),
			Body:    parsed,
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Goods lists one catalog page, normalized.
func (c *Client) Goods(ctx context.Context, q GoodsQuery) (GoodsPage, error) {
	query := map[string]string{
		"query":      q.Query,
		"sort_order": q.Sort,
	}
	if q.Page > 0 {
		query["page"] = strconv.Itoa(q.Page)
	}
	if q.PerPage > 0 {
		query["per_page"] = strconv.Itoa(q.PerPage)
	}

	var body any
	if err := c.do(ctx, http.MethodGet, "/goods", query, nil, &body); err != nil {
		return GoodsPage{}, err
	}
	return NormalizeGoodsList(body), nil
}

// GoodByID fetches one good, normalized with its raw record attached.
func (c *Client) GoodByID(ctx context.Context, id int64) (Good, error) {
	var m map[string]any
	if err := c.do(ctx, http.MethodGet, "/goods/"+strconv.FormatInt(id, 10), nil, nil, &m); err != nil {
		return Good{}, err
	}
	return NormalizeGood(m), nil
}

// Orders lists the orders belonging to the current key.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) OrderByID(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := c.do(ctx, http.MethodGet, "/orders/"+strconv.FormatInt(id, 10), nil, nil, &o)
	return o, err
}

func (c *Client) CreateOrder(ctx context.Context, p OrderPayload) (Order, error) {
	var o Order
	err := c.do(ctx, http.MethodPost, "/orders", nil, p, &o)
	return o, err
}

func (c *Client) UpdateOrder(ctx context.Context, id int64, p OrderPayload) (Order, error) {
	var o Order
	err := c.do(ctx, http.MethodPut, "/orders/"+strconv.FormatInt(id, 10), nil, p, &o)
	return o, err
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+strconv.FormatInt(id, 10), nil, nil, nil)
}
