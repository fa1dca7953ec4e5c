// Package remote implements collection.Repository against the HTTP collection
// API served by another instance of this service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weather-acquisition-go/internal/domain/collection"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

type Config struct {
	// BaseURL is the collection endpoint, e.g. http://host:8080/api/datasources.
	BaseURL string
	// Timeout applies when Client is nil. Defaults to 30s.
	Timeout time.Duration
	Client  *http.Client
}

// Repository proxies every operation to a fixed collection endpoint. Each call
// issues exactly one request, except DeleteByID which reads before deleting.
type Repository[T any, PT collection.Identity[T]] struct {
	client  *http.Client
	baseURL string
}

type pageResponse[T any] struct {
	Items          []T `json:"items"`
	TotalItemCount int `json:"totalItemCount"`
	PageIndex      int `json:"pageIndex"`
	PageSize       int `json:"pageSize"`
	TotalPageCount int `json:"totalPageCount"`
}

func New[T any, PT collection.Identity[T]](cfg Config) (*Repository[T, PT], error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("remote: BaseURL is required")
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Repository[T, PT]{client: client, baseURL: baseURL}, nil
}

func (r *Repository[T, PT]) BaseURL() string {
	return r.baseURL
}

func (r *Repository[T, PT]) ContainsID(ctx context.Context, id int) (bool, error) {
	return r.exists(ctx, http.MethodGet, "exist/id/"+strconv.Itoa(id), nil)
}

func (r *Repository[T, PT]) Contains(ctx context.Context, item *T) (bool, error) {
	if item == nil {
		return false, fmt.Errorf("remote contains: %w", collection.ErrNilItem)
	}
	return r.exists(ctx, http.MethodPost, "exist", item)
}

func (r *Repository[T, PT]) GetCount(ctx context.Context) (int, error) {
	var count int
	if _, err := r.send(ctx, http.MethodGet, "count", nil, &count, false); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository[T, PT]) GetAll(ctx context.Context) ([]T, error) {
	var items []T
	if _, err := r.send(ctx, http.MethodGet, "", nil, &items, false); err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

func (r *Repository[T, PT]) Get(ctx context.Context, skip, count int) ([]T, error) {
	if count <= 0 {
		return []T{}, nil
	}
	path := fmt.Sprintf("items[%d:%d]", collection.ClampSkip(skip), count)
	return r.list(ctx, path)
}

func (r *Repository[T, PT]) GetFirsts(ctx context.Context, count int) ([]T, error) {
	if count <= 0 {
		return []T{}, nil
	}
	return r.list(ctx, fmt.Sprintf("firsts[%d]", count))
}

func (r *Repository[T, PT]) GetLasts(ctx context.Context, count int) ([]T, error) {
	if count <= 0 {
		return []T{}, nil
	}
	return r.list(ctx, fmt.Sprintf("lasts[%d]", count))
}

func (r *Repository[T, PT]) GetPage(ctx context.Context, pageIndex, pageSize int) (collection.Page[T], error) {
	if pageIndex < 0 {
		pageIndex = 0
	}

	var resp pageResponse[T]
	found, err := r.send(ctx, http.MethodGet, fmt.Sprintf("page[%d/%d]", pageIndex, pageSize), nil, &resp, true)
	if err != nil {
		return collection.Page[T]{}, err
	}
	if !found {
		return collection.NewPage[T](nil, 0, pageIndex, pageSize), nil
	}

	return collection.Page[T]{
		Items:          nonNil(resp.Items),
		TotalItemCount: resp.TotalItemCount,
		PageIndex:      resp.PageIndex,
		PageSize:       resp.PageSize,
		TotalPageCount: resp.TotalPageCount,
	}, nil
}

// GetByID answers a 404 with a default value rather than nil. Use
// collection.IsAbsent to test the result.
func (r *Repository[T, PT]) GetByID(ctx context.Context, id int) (*T, error) {
	item := new(T)
	found, err := r.send(ctx, http.MethodGet, strconv.Itoa(id), nil, item, true)
	if err != nil {
		return nil, err
	}
	if !found {
		return new(T), nil
	}
	return item, nil
}

func (r *Repository[T, PT]) Add(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, fmt.Errorf("remote add: %w", collection.ErrNilItem)
	}
	return r.write(ctx, http.MethodPost, item)
}

func (r *Repository[T, PT]) Update(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, fmt.Errorf("remote update: %w", collection.ErrNilItem)
	}
	return r.write(ctx, http.MethodPut, item)
}

func (r *Repository[T, PT]) Delete(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, fmt.Errorf("remote delete: %w", collection.ErrNilItem)
	}

	deleted := new(T)
	found, err := r.send(ctx, http.MethodDelete, "", item, deleted, true)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return deleted, nil
}

func (r *Repository[T, PT]) DeleteByID(ctx context.Context, id int) (*T, error) {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if collection.IsAbsent[T, PT](item) {
		return nil, nil
	}
	return r.Delete(ctx, item)
}

func (r *Repository[T, PT]) Remove(ctx context.Context, item *T) (*T, error) {
	return r.Delete(ctx, item)
}

func (r *Repository[T, PT]) RemoveByID(ctx context.Context, id int) (*T, error) {
	return r.DeleteByID(ctx, id)
}

func (r *Repository[T, PT]) list(ctx context.Context, path string) ([]T, error) {
	var items []T
	if _, err := r.send(ctx, http.MethodGet, path, nil, &items, true); err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

func (r *Repository[T, PT]) exists(ctx context.Context, method, path string, body any) (bool, error) {
	return r.send(ctx, method, path, body, nil, true)
}

func (r *Repository[T, PT]) write(ctx context.Context, method string, item *T) (*T, error) {
	out := new(T)
	if _, err := r.send(ctx, method, "", item, out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// send performs one request. It reports false without error for a 404 when
// notFoundOK is set; every other non-2xx status becomes a *StatusError.
func (r *Repository[T, PT]) send(ctx context.Context, method, path string, body, out any, notFoundOK bool) (bool, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("remote %s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.url(path), reader)
	if err != nil {
		return false, fmt.Errorf("remote %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("remote %s %s: %w", method, path, ctxErr)
		}
		return false, fmt.Errorf("remote %s %s: %w", method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound && notFoundOK:
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, newStatusError(method, path, resp)
	}

	if out == nil {
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("remote %s %s: decode response: %w", method, path, err)
	}
	return true, nil
}

func (r *Repository[T, PT]) url(path string) string {
	if path == "" {
		return r.baseURL
	}
	return r.baseURL + "/" + path
}

func newStatusError(method, path string, resp *http.Response) *StatusError {
	statusErr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}

	var envelope errorEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&envelope); err == nil {
		statusErr.Code = envelope.Error.Code
		statusErr.Message = envelope.Error.Message
	}
	return statusErr
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
