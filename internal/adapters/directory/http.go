// internal/adapters/directory/http.go
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/pkg/logger"
)

var (
	_ ports.BranchDirectory = (*BranchClient)(nil)
	_ ports.Catalog         = (*CatalogClient)(nil)
)

// StatusError is returned when a collaborator answers with an unexpected status
type StatusError struct {
	Service string
	Status  int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Service, e.Status)
}

type client struct {
	service    string
	baseURL    string
	http       *http.Client
	maxRetries uint64
	logger     *slog.Logger
}

func newClient(service, baseURL string, timeout time.Duration, logger *slog.Logger) client {
	return client{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		maxRetries: 2,
		logger:     logger.With(slog.String("component", service)),
	}
}

// do sends the request, retrying transport errors and 5xx responses.
// handle is called with the final response and decides the outcome.
func (c client) do(ctx context.Context, build func() (*http.Request, error), handle func(*http.Response) error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 50 * time.Millisecond
	exp.MaxInterval = 500 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.maxRetries), ctx)

	op := func() error {
		req, err := build()
		if err != nil {
			return backoff.Permanent(err)
		}
		if id := logger.RequestID(ctx); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()

		if resp.StatusCode >= 500 {
			return &StatusError{Service: c.service, Status: resp.StatusCode}
		}
		if err := handle(resp); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "collaborator call failed, retrying",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", wait))
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return fmt.Errorf("%s request failed: %w", c.service, err)
	}
	return nil
}

// BranchClient asks the organization service whether a branch exists
type BranchClient struct {
	client
}

// NewBranchClient creates a branch directory backed by GET {baseURL}/branches/{id}
func NewBranchClient(baseURL string, timeout time.Duration, logger *slog.Logger) *BranchClient {
	return &BranchClient{client: newClient("branch_directory", baseURL, timeout, logger)}
}

// BranchExists returns true on 200 and false on 404
func (c *BranchClient) BranchExists(ctx context.Context, branchID string) (bool, error) {
	var exists bool
	err := c.do(ctx,
		func() (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet,
				c.baseURL+"/branches/"+url.PathEscape(branchID), nil)
		},
		func(resp *http.Response) error {
			switch resp.StatusCode {
			case http.StatusOK:
				exists = true
				return nil
			case http.StatusNotFound:
				exists = false
				return nil
			default:
				return &StatusError{Service: c.service, Status: resp.StatusCode}
			}
		})
	if err != nil {
		return false, err
	}
	return exists, nil
}

// CatalogClient resolves item references against the catalog service
type CatalogClient struct {
	client
}

// NewCatalogClient creates a catalog backed by POST {baseURL}/items/lookup
func NewCatalogClient(baseURL string, timeout time.Duration, logger *slog.Logger) *CatalogClient {
	return &CatalogClient{client: newClient("catalog", baseURL, timeout, logger)}
}

type lookupRequest struct {
	Items []domain.ItemRef `json:"items"`
}

type lookupResponse struct {
	Missing []domain.ItemRef `json:"missing"`
}

// MissingItems returns the refs the catalog reports as unknown
func (c *CatalogClient) MissingItems(ctx context.Context, refs []domain.ItemRef) ([]domain.ItemRef, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(lookupRequest{Items: refs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode lookup: %w", err)
	}

	var out lookupResponse
	err = c.do(ctx,
		func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/items/lookup", bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			return req, nil
		},
		func(resp *http.Response) error {
			if resp.StatusCode != http.StatusOK {
				return &StatusError{Service: c.service, Status: resp.StatusCode}
			}
			return json.NewDecoder(resp.Body).Decode(&out)
		})
	if err != nil {
		return nil, err
	}
	return out.Missing, nil
}
