package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/driverperks/catalog/app/cache"
)

const (
	tokenCacheKey   = "search:bearer_token"
	tokenTTLSlack   = 60 * time.Second
	maxAttempts     = 2
	debugBodyLimit  = 500
	defaultItemRate = 5 // upstream requests per second
)

// Client executes searches against the external marketplace API. One
// instance is shared process-wide; it owns the pooled transport, the
// client-side rate limiter, and the cached bearer token.
type Client struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	tokens       cache.Store
	baseURL      string
	authURL      string
	clientID     string
	clientSecret string
	userAgent    string
}

type ClientOptions struct {
	BaseURL           string
	AuthURL           string
	ClientID          string
	ClientSecret      string
	UserAgent         string
	RequestsPerSecond float64
}

func NewClient(tokens cache.Store, opts ClientOptions) *Client {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultItemRate
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 5 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   20 * time.Second,
		},
		limiter:      rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		tokens:       tokens,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		authURL:      opts.AuthURL,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		userAgent:    opts.UserAgent,
	}
}

// Search runs one upstream search call for the rule set. Upstream and
// transport failures never surface as errors: the result is an empty
// page carrying a diagnostic payload, and callers that care inspect it.
func (c *Client) Search(ctx context.Context, req Request) *Result {
	plan, debug := buildPlan(req)
	if debug != nil {
		return emptyResult(req.Page, debug)
	}

	if c.clientID == "" || c.clientSecret == "" {
		return emptyResult(req.Page, &Debug{Reason: "missing upstream credentials"})
	}

	status, body, err := c.do(ctx, c.baseURL+"/search?"+plan.params.Encode())
	if err != nil {
		slog.Warn("Upstream search failed", "error", err, "params", plan.params.Encode())
		return emptyResult(req.Page, &Debug{
			Reason: err.Error(),
			Status: status,
			Body:   truncateBody(body),
			Params: flattenParams(plan.params),
		})
	}

	var wire wireSearchResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		slog.Warn("Upstream search returned unparseable body", "error", err)
		return emptyResult(req.Page, &Debug{
			Reason: fmt.Sprintf("invalid response body: %v", err),
			Status: status,
			Body:   truncateBody(body),
			Params: flattenParams(plan.params),
		})
	}

	items := make([]Item, 0, len(wire.Items))
	for _, wi := range wire.Items {
		items = append(items, wi.normalize())
	}
	fetched := len(items)

	items = PostFilter(items, &req.RuleSet)
	if req.PageSize > 0 && len(items) > req.PageSize {
		items = items[:req.PageSize]
	}

	return &Result{
		Items:   items,
		Total:   wire.Total,
		Page:    req.Page,
		HasMore: plan.offset+fetched < wire.Total,
	}
}

// GetItem fetches full detail for a single item, used for pinned-item
// price enrichment and the item detail route.
func (c *Client) GetItem(ctx context.Context, id string) (*Item, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("missing upstream credentials")
	}
	if id == "" {
		return nil, fmt.Errorf("empty item id")
	}

	_, body, err := c.do(ctx, c.baseURL+"/items/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item %s: %w", id, err)
	}

	var wi wireItem
	if err := json.Unmarshal(body, &wi); err != nil {
		return nil, fmt.Errorf("failed to parse item %s: %w", id, err)
	}

	item := wi.normalize()
	return &item, nil
}

// do executes a GET with the shared pool, the rate limiter, and bounded
// retries with exponential backoff on rate-limit and server errors.
func (c *Client) do(ctx context.Context, rawURL string) (int, []byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to obtain bearer token: %w", err)
	}

	var lastStatus int
	var lastBody []byte

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := 500 * time.Millisecond << uint(attempt-1)
			select {
			case <-ctx.Done():
				return lastStatus, lastBody, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return lastStatus, lastBody, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastStatus, lastBody = 0, nil
			if attempt == maxAttempts-1 {
				return 0, nil, fmt.Errorf("request failed: %w", err)
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", readErr)
		}

		lastStatus, lastBody = resp.StatusCode, body

		if resp.StatusCode == http.StatusOK {
			return resp.StatusCode, body, nil
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			continue // retryable
		}
		return resp.StatusCode, body, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return lastStatus, lastBody, fmt.Errorf("HTTP error after %d attempts: %d", maxAttempts, lastStatus)
}

// token returns the cached client-credentials bearer token, fetching a
// fresh one when the cache misses. The cache TTL trails the token's own
// lifetime so a cached token is never served stale.
func (c *Client) token(ctx context.Context) (string, error) {
	if cached, err := c.tokens.Get(ctx, tokenCacheKey); err == nil && cached != "" {
		return cached, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, truncateBody(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty token")
	}

	ttl := time.Duration(payload.ExpiresIn)*time.Second - tokenTTLSlack
	if ttl < time.Minute {
		ttl = time.Minute
	}
	if err := c.tokens.Set(ctx, tokenCacheKey, payload.AccessToken, ttl); err != nil {
		slog.Warn("Failed to cache bearer token", "error", err)
	}

	return payload.AccessToken, nil
}

func truncateBody(body []byte) string {
	if len(body) <= debugBodyLimit {
		return string(body)
	}
	return string(body[:debugBodyLimit]) + "..."
}

func flattenParams(params url.Values) map[string]string {
	out := make(map[string]string, len(params))
	for k := range params {
		out[k] = params.Get(k)
	}
	return out
}

// wire shapes

type wireSearchResponse struct {
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	Items  []wireItem `json:"item_summaries"`
}

type wireItem struct {
	ItemID        string   `json:"item_id"`
	Title         string   `json:"title"`
	Brand         string   `json:"brand"`
	Condition     string   `json:"condition"`
	CategoryID    string   `json:"category_id"`
	WebURL        string   `json:"item_web_url"`
	BuyingOptions []string `json:"buying_options"`
	Availability  string   `json:"availability"`
	Price         struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
	Image struct {
		URL string `json:"image_url"`
	} `json:"image"`
	Seller struct {
		FeedbackScore      int    `json:"feedback_score"`
		PositivePercentage string `json:"feedback_percentage"`
	} `json:"seller"`
	Shipping struct {
		Free            bool `json:"free"`
		MaxHandlingDays *int `json:"max_handling_days"`
	} `json:"shipping"`
}

func (w wireItem) normalize() Item {
	item := Item{
		ID:                  w.ItemID,
		Title:               w.Title,
		Brand:               w.Brand,
		Condition:           w.Condition,
		CategoryID:          w.CategoryID,
		ItemURL:             w.WebURL,
		ImageURL:            w.Image.URL,
		Currency:            w.Price.Currency,
		SellerFeedbackScore: w.Seller.FeedbackScore,
		FreeShipping:        w.Shipping.Free,
		HandlingDays:        w.Shipping.MaxHandlingDays,
		InStock:             w.Availability == "" || strings.EqualFold(w.Availability, "IN_STOCK"),
	}

	if w.Price.Value != "" {
		if v, err := strconv.ParseFloat(w.Price.Value, 64); err == nil {
			item.Price = &v
		}
	}
	if w.Seller.PositivePercentage != "" {
		if v, err := strconv.ParseFloat(w.Seller.PositivePercentage, 64); err == nil {
			item.SellerPositivePercent = v
		}
	}
	for _, opt := range w.BuyingOptions {
		if strings.EqualFold(opt, "FIXED_PRICE") {
			item.BuyItNow = true
		}
	}

	return item
}
