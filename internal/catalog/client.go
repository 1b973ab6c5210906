package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/folio-sh/folio/internal/domain"
)

const (
	defaultTimeout  = 30 * time.Second
	userAgent       = "Folio/1.0"
	defaultPageSize = 24

	// Detail and tag responses change rarely; cache them briefly.
	// Batch by-id lookups are deliberately never cached: cart hydration
	// must always reflect the current catalog.
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// TokenSource supplies the bearer token attached to catalog requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client implements domain.Catalog against the storefront REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
	auth       TokenSource
	logger     *slog.Logger
}

// NewClient creates a new storefront API client.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		cache:   gocache.New(cacheTTL, cacheCleanup),
		logger:  logger,
	}
}

// SetTokenSource attaches a signed-in session to catalog requests.
// Browsing and cart hydration stay fully functional without one.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.auth = ts
}

// doRequest performs a rate-limited GET and maps transport and status
// failures onto domain sentinel errors.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	if c.auth != nil {
		token, err := c.auth.Token(ctx)
		if err != nil {
			// The catalog is browsable anonymously; a broken session must
			// not take browsing down with it
			c.logger.Warn("token refresh failed, sending request anonymously", "error", err)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("catalog request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("catalog request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		c.logger.Error("catalog request error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

// GetBooks returns a page of books, optionally filtered by tag slug.
// Returns (items, totalSize, error).
func (c *Client) GetBooks(ctx context.Context, tag string, page, pageSize int) ([]domain.Book, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(pageSize))
	if tag != "" {
		query.Set("tag", tag)
	}

	body, err := c.doRequest(ctx, "/api/books", query)
	if err != nil {
		return nil, 0, err
	}

	var resp bookListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse book list: %w", err)
	}

	return mapBooks(resp.Data), resp.Total, nil
}

// GetBook returns a single book by id.
func (c *Client) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	cacheKey := "book:" + strconv.FormatInt(id, 10)
	if cached, ok := c.cache.Get(cacheKey); ok {
		book := cached.(domain.Book)
		return &book, nil
	}

	body, err := c.doRequest(ctx, fmt.Sprintf("/api/books/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var dto bookDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse book: %w", err)
	}

	book := mapBook(dto)
	c.cache.Set(cacheKey, book, gocache.DefaultExpiration)
	return &book, nil
}

// GetBooksByIDs returns the books matching ids in a single batched
// request. Missing ids are simply absent from the result.
func (c *Client) GetBooksByIDs(ctx context.Context, ids []int64) ([]domain.Book, error) {
	if len(ids) == 0 {
		return []domain.Book{}, nil
	}

	query := url.Values{}
	query.Set("ids", joinIDs(ids))

	body, err := c.doRequest(ctx, "/api/books/batch", query)
	if err != nil {
		return nil, err
	}

	var resp bookListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse book batch: %w", err)
	}

	return mapBooks(resp.Data), nil
}

// GetPacks returns all book packs.
func (c *Client) GetPacks(ctx context.Context) ([]domain.Pack, error) {
	body, err := c.doRequest(ctx, "/api/packs", nil)
	if err != nil {
		return nil, err
	}

	var resp packListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse pack list: %w", err)
	}

	return mapPacks(resp.Data), nil
}

// GetPack returns a single pack by id with contained books populated.
func (c *Client) GetPack(ctx context.Context, id int64) (*domain.Pack, error) {
	cacheKey := "pack:" + strconv.FormatInt(id, 10)
	if cached, ok := c.cache.Get(cacheKey); ok {
		pack := cached.(domain.Pack)
		return &pack, nil
	}

	body, err := c.doRequest(ctx, fmt.Sprintf("/api/packs/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var dto packDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse pack: %w", err)
	}

	pack := mapPack(dto)
	c.cache.Set(cacheKey, pack, gocache.DefaultExpiration)
	return &pack, nil
}

// GetPacksByIDs returns the packs matching ids in a single batched
// request, with the same absence semantics as GetBooksByIDs.
func (c *Client) GetPacksByIDs(ctx context.Context, ids []int64) ([]domain.Pack, error) {
	if len(ids) == 0 {
		return []domain.Pack{}, nil
	}

	query := url.Values{}
	query.Set("ids", joinIDs(ids))

	body, err := c.doRequest(ctx, "/api/packs/batch", query)
	if err != nil {
		return nil, err
	}

	var resp packListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse pack batch: %w", err)
	}

	return mapPacks(resp.Data), nil
}

// GetTags returns all browsable tags.
func (c *Client) GetTags(ctx context.Context) ([]domain.Tag, error) {
	if cached, ok := c.cache.Get("tags"); ok {
		return cached.([]domain.Tag), nil
	}

	body, err := c.doRequest(ctx, "/api/tags", nil)
	if err != nil {
		return nil, err
	}

	var resp tagListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse tag list: %w", err)
	}

	tags := mapTags(resp.Data)
	c.cache.Set("tags", tags, gocache.DefaultExpiration)
	return tags, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
