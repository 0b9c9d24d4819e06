// Package openalex is a rate-limited client for the OpenAlex REST API.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/scholarboard/hix/internal/history"
	"github.com/scholarboard/hix/internal/researcher"
)

const (
	// BaseURL is the OpenAlex API base URL.
	BaseURL = "https://api.openalex.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultRateLimit stays just under the documented 10 requests per second.
	DefaultRateLimit = 9.0

	// WorksPerPage is the maximum page size OpenAlex allows.
	WorksPerPage = 200

	// DefaultAuthorsPerPage is the page size used by institution sync.
	DefaultAuthorsPerPage = 100

	// workFields limits work payloads to what history reconstruction needs.
	workFields = "id,publication_year,cited_by_count,counts_by_year"

	idPrefix = "https://openalex.org/"
)

// Client is a rate-limited HTTP client for OpenAlex. The limiter belongs to
// the client, so every request made through one Client shares one budget.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithMailto sets the contact address sent with every request, which puts
// the client in OpenAlex's polite pool.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// WithRateLimit sets the request budget in requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new OpenAlex client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    BaseURL,
		userAgent:  "hix",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.mailto != "" && !strings.Contains(c.userAgent, "mailto:") {
		c.userAgent = fmt.Sprintf("%s (mailto:%s)", c.userAgent, c.mailto)
	}
	return c
}

// NormalizeID strips the https://openalex.org/ prefix, so both
// "https://openalex.org/A5023888391" and "A5023888391" yield the bare ID.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		id = id[strings.LastIndex(id, "/")+1:]
	}
	return id
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, path string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		text := strings.TrimSpace(string(msg))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: text, Path: path}
	}
	return nil
}

// get performs one throttled GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, path); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrInvalidResponse, path, err)
	}
	return nil
}

// FetchWorks returns the works of an author with their per-year citation
// breakdown. Pages are drained until the cursor runs out or
// history.MaxWorks works have been collected; the result never exceeds
// that ceiling.
func (c *Client) FetchWorks(ctx context.Context, authorID string) ([]researcher.Work, error) {
	id := NormalizeID(authorID)
	var works []researcher.Work

	cursor := "*"
	for cursor != "" {
		params := url.Values{}
		params.Set("filter", "author.id:"+id)
		params.Set("per_page", strconv.Itoa(WorksPerPage))
		params.Set("cursor", cursor)
		params.Set("select", workFields)

		var page worksResponse
		if err := c.get(ctx, "/works", params, &page); err != nil {
			return nil, fmt.Errorf("fetching works for %s: %w", id, err)
		}

		for _, w := range page.Results {
			works = append(works, toWork(w))
		}
		if len(works) >= history.MaxWorks || len(page.Results) == 0 {
			break
		}

		cursor = ""
		if page.Meta.NextCursor != nil {
			cursor = *page.Meta.NextCursor
		}
	}

	return history.Cap(works), nil
}

// FetchAuthors returns one page of authors whose last known institution
// has the given ROR ID. Pass "*" as cursor for the first page; an empty
// NextCursor marks the last page.
func (c *Client) FetchAuthors(ctx context.Context, rorID, cursor string, perPage int) (*AuthorsPage, error) {
	if perPage <= 0 {
		perPage = DefaultAuthorsPerPage
	}
	if cursor == "" {
		cursor = "*"
	}

	params := url.Values{}
	params.Set("filter", "last_known_institutions.ror:"+rorID)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("cursor", cursor)

	var resp authorsResponse
	if err := c.get(ctx, "/authors", params, &resp); err != nil {
		return nil, fmt.Errorf("fetching authors for %s: %w", rorID, err)
	}

	page := &AuthorsPage{Authors: resp.Results, Count: resp.Meta.Count}
	if resp.Meta.NextCursor != nil && len(resp.Results) > 0 {
		page.NextCursor = *resp.Meta.NextCursor
	}
	return page, nil
}

// InstitutionCount returns how many last known institutions OpenAlex lists
// for an author.
func (c *Client) InstitutionCount(ctx context.Context, authorID string) (int, error) {
	id := NormalizeID(authorID)
	var a Author
	if err := c.get(ctx, "/authors/"+url.PathEscape(id), nil, &a); err != nil {
		return 0, fmt.Errorf("fetching author %s: %w", id, err)
	}
	return len(a.LastKnownInstitutions), nil
}

func toWork(w work) researcher.Work {
	out := researcher.Work{
		ID:           NormalizeID(w.ID),
		CitedByCount: w.CitedByCount,
	}
	if w.PublicationYear != nil {
		out.PublicationYear = *w.PublicationYear
	}
	if len(w.CountsByYear) > 0 {
		out.CitationsByYear = make([]researcher.YearCitations, 0, len(w.CountsByYear))
		for _, y := range w.CountsByYear {
			out.CitationsByYear = append(out.CitationsByYear, researcher.YearCitations{
				Year:      y.Year,
				Citations: y.CitedByCount,
			})
		}
	}
	return out
}
