// Package client is the consumer side of the asset API: an HTTP client and
// the Store that caches the collection for presentation code.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ejjays/assets-management/apperrors"
	"github.com/ejjays/assets-management/models"
)

// API is the CRUD surface the Store talks to.
type API interface {
	List(ctx context.Context) ([]models.Asset, error)
	Create(ctx context.Context, draft models.AssetDraft) (models.Asset, error)
	Update(ctx context.Context, id string, patch models.AssetPatch) error
	Delete(ctx context.Context, id string) error
}

// APIError is a non-2xx answer. errors.Is matches the apperrors kind that
// corresponds to StatusCode.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("asset api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("asset api: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return apperrors.FromStatus(e.StatusCode) }

// HTTPClient implements API over the JSON wire contract.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

var _ API = (*HTTPClient)(nil)

func (c *HTTPClient) List(ctx context.Context) ([]models.Asset, error) {
	var assets []models.Asset
	if err := c.do(ctx, http.MethodGet, "/assets", nil, &assets); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	return assets, nil
}

func (c *HTTPClient) Create(ctx context.Context, draft models.AssetDraft) (models.Asset, error) {
	var a models.Asset
	if err := c.do(ctx, http.MethodPost, "/assets", draft, &a); err != nil {
		return models.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	return a, nil
}

type updateBody struct {
	ID string `json:"id"`
	models.AssetPatch
}

func (c *HTTPClient) Update(ctx context.Context, id string, patch models.AssetPatch) error {
	if err := c.do(ctx, http.MethodPut, "/assets", updateBody{ID: id, AssetPatch: patch}, nil); err != nil {
		return fmt.Errorf("update asset %s: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/assets?id="+url.QueryEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
