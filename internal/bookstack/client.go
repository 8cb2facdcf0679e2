// Package bookstack is a minimal client for the BookStack HTTP API, covering
// the book/chapter/page/user surface the sync tool needs.
package bookstack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// BookStack caps count at 500; use it for exact-name lookups so the
	// match is found in one request.
	findCount = 500

	defaultPageSize    = 100
	defaultMaxAttempts = 5
	defaultBaseDelay   = 500 * time.Millisecond
)

type ClientOptions struct {
	BaseURL     string
	TokenID     string
	TokenSecret string
	HTTPClient  *http.Client
	UserAgent   string
	MaxAttempts int
	BaseDelay   time.Duration
	PageSize    int
}

type Client struct {
	baseURL     string
	auth        string
	httpClient  *http.Client
	userAgent   string
	maxAttempts int
	baseDelay   time.Duration
	pageSize    int
}

func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = "booksync/1.0"
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		baseURL:     baseURL,
		auth:        "Token " + strings.TrimSpace(opts.TokenID) + ":" + strings.TrimSpace(opts.TokenSecret),
		httpClient:  httpClient,
		userAgent:   userAgent,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		pageSize:    pageSize,
	}
}

// FindBook returns the book whose name matches exactly, or nil when no such
// book exists. The API only offers a like-filter, so candidates are narrowed
// server-side and matched exactly here.
func (c *Client) FindBook(ctx context.Context, name string) (*Book, error) {
	params := url.Values{}
	params.Set("filter[name:like]", name)
	params.Set("count", strconv.Itoa(findCount))
	var out struct {
		Data []Book `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/books", params, nil, &out); err != nil {
		return nil, err
	}
	for i := range out.Data {
		if out.Data[i].Name == name {
			return &out.Data[i], nil
		}
	}
	return nil, nil
}

// FindChapter returns the chapter with the exact name inside the book, or
// nil when absent.
func (c *Client) FindChapter(ctx context.Context, bookID int, name string) (*Chapter, error) {
	params := url.Values{}
	params.Set("filter[book_id]", strconv.Itoa(bookID))
	params.Set("filter[name:like]", name)
	params.Set("count", strconv.Itoa(findCount))
	var out struct {
		Data []Chapter `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/chapters", params, nil, &out); err != nil {
		return nil, err
	}
	for i := range out.Data {
		if out.Data[i].Name == name && out.Data[i].BookID == bookID {
			return &out.Data[i], nil
		}
	}
	return nil, nil
}

func (c *Client) CreateChapter(ctx context.Context, req ChapterCreate) (*Chapter, error) {
	var out Chapter
	if err := c.doJSON(ctx, http.MethodPost, "/api/chapters", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateChapter(ctx context.Context, id int, req ChapterUpdate) (*Chapter, error) {
	var out Chapter
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/chapters/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListChapters returns every chapter of the book, sorted by priority then
// case-insensitive name.
func (c *Client) ListChapters(ctx context.Context, bookID int) ([]Chapter, error) {
	params := url.Values{}
	params.Set("filter[book_id]", strconv.Itoa(bookID))
	var chapters []Chapter
	for page := 1; ; page++ {
		p := clone(params)
		p.Set("count", strconv.Itoa(c.pageSize))
		p.Set("page", strconv.Itoa(page))
		var out struct {
			Data []Chapter `json:"data"`
		}
		if err := c.doJSON(ctx, http.MethodGet, "/api/chapters", p, nil, &out); err != nil {
			return nil, err
		}
		chapters = append(chapters, out.Data...)
		if len(out.Data) < c.pageSize {
			break
		}
	}
	sort.Slice(chapters, func(i, j int) bool {
		return siblingLess(chapters[i].Priority, chapters[i].Name, chapters[j].Priority, chapters[j].Name)
	})
	return chapters, nil
}

// FindPage returns the page with the exact name in the given scope: the book
// root when chapterID is zero, otherwise the chapter. Returns nil when
// absent.
func (c *Client) FindPage(ctx context.Context, bookID, chapterID int, name string) (*Page, error) {
	params := url.Values{}
	params.Set("filter[book_id]", strconv.Itoa(bookID))
	params.Set("filter[name:like]", name)
	params.Set("count", strconv.Itoa(findCount))
	if chapterID != 0 {
		params.Set("filter[chapter_id]", strconv.Itoa(chapterID))
	}
	var out struct {
		Data []Page `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/pages", params, nil, &out); err != nil {
		return nil, err
	}
	for i := range out.Data {
		p := &out.Data[i]
		if p.Name == name && p.BookID == bookID && p.ChapterID == chapterID {
			return p, nil
		}
	}
	return nil, nil
}

// GetPage fetches the full page, including markdown and/or html content.
func (c *Client) GetPage(ctx context.Context, id int) (*Page, error) {
	var out Page
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/pages/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePage(ctx context.Context, req PageCreate) (*Page, error) {
	var out Page
	if err := c.doJSON(ctx, http.MethodPost, "/api/pages", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePage(ctx context.Context, id int, req PageUpdate) (*Page, error) {
	var out Page
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/pages/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBookPages returns every page of the book (root and chapter pages),
// sorted by priority then case-insensitive name.
func (c *Client) ListBookPages(ctx context.Context, bookID int) ([]Page, error) {
	params := url.Values{}
	params.Set("filter[book_id]", strconv.Itoa(bookID))
	return c.listPages(ctx, params)
}

// ListChapterPages returns every page of the chapter in sibling order.
func (c *Client) ListChapterPages(ctx context.Context, chapterID int) ([]Page, error) {
	params := url.Values{}
	params.Set("filter[chapter_id]", strconv.Itoa(chapterID))
	return c.listPages(ctx, params)
}

func (c *Client) listPages(ctx context.Context, params url.Values) ([]Page, error) {
	var pages []Page
	for page := 1; ; page++ {
		p := clone(params)
		p.Set("count", strconv.Itoa(c.pageSize))
		p.Set("page", strconv.Itoa(page))
		var out struct {
			Data []Page `json:"data"`
		}
		if err := c.doJSON(ctx, http.MethodGet, "/api/pages", p, nil, &out); err != nil {
			return nil, err
		}
		pages = append(pages, out.Data...)
		if len(out.Data) < c.pageSize {
			break
		}
	}
	sort.Slice(pages, func(i, j int) bool {
		return siblingLess(pages[i].Priority, pages[i].Name, pages[j].Priority, pages[j].Name)
	})
	return pages, nil
}

// EachPage walks every page of the book using offset pagination, calling fn
// with the listing record (no content fields). Stops on the first error.
func (c *Client) EachPage(ctx context.Context, bookID int, fn func(Page) error) error {
	offset := 0
	for {
		params := url.Values{}
		params.Set("filter[book_id]", strconv.Itoa(bookID))
		params.Set("count", strconv.Itoa(c.pageSize))
		params.Set("offset", strconv.Itoa(offset))
		var out struct {
			Data []Page `json:"data"`
		}
		if err := c.doJSON(ctx, http.MethodGet, "/api/pages", params, nil, &out); err != nil {
			return err
		}
		if len(out.Data) == 0 {
			return nil
		}
		for _, p := range out.Data {
			if err := fn(p); err != nil {
				return err
			}
		}
		offset += len(out.Data)
		if len(out.Data) < c.pageSize {
			return nil
		}
	}
}

// ListUsers returns all users with their roles. Some BookStack versions omit
// roles from the listing; those users are enriched with a per-user fetch.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("count", strconv.Itoa(c.pageSize))
		params.Set("page", strconv.Itoa(page))
		params.Set("include", "roles")
		var out struct {
			Data []User `json:"data"`
		}
		if err := c.doJSON(ctx, http.MethodGet, "/api/users", params, nil, &out); err != nil {
			return nil, err
		}
		users = append(users, out.Data...)
		if len(out.Data) < c.pageSize {
			break
		}
	}
	for i := range users {
		if len(users[i].Roles) > 0 {
			continue
		}
		var detail User
		if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", users[i].ID), nil, nil, &detail); err != nil {
			return nil, err
		}
		users[i].Roles = detail.Roles
	}
	return users, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, params url.Values, body, out any) error {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}
	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	for attempt := 1; ; attempt++ {
		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", c.auth)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			if out == nil || len(bytes.TrimSpace(payload)) == 0 {
				return nil
			}
			return json.Unmarshal(payload, out)
		}

		apiErr := &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
		}
		if !apiErr.Transient() || attempt >= c.maxAttempts {
			return apiErr
		}
		if err := waitWithContext(ctx, c.baseDelay*time.Duration(attempt)); err != nil {
			return err
		}
	}
}

func siblingLess(aPriority *int, aName string, bPriority *int, bName string) bool {
	ap, bp := priorityOrZero(aPriority), priorityOrZero(bPriority)
	if ap != bp {
		return ap < bp
	}
	return strings.ToLower(aName) < strings.ToLower(bName)
}

func priorityOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func clone(params url.Values) url.Values {
	out := url.Values{}
	for key, values := range params {
		for _, value := range values {
			out.Add(key, value)
		}
	}
	return out
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
