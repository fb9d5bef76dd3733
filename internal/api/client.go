package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Backend is everything rowfinder asks of the server. *Client implements it;
// tests substitute fakes.
type Backend interface {
	ListFiles(ctx context.Context) ([]File, error)
	SelectFile(ctx context.Context, id FileID) (SelectResult, error)
	DeleteFile(ctx context.Context, id FileID) error
	ActiveColumns(ctx context.Context) (ColumnsInfo, error)
	Upload(ctx context.Context, path string) (UploadResult, error)
	UploadProgress(ctx context.Context) (Progress, error)
	Search(ctx context.Context, req SearchRequest) (SearchPage, error)
	Suggestions(ctx context.Context, query string) ([]Suggestion, error)
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

// Client talks to the rowfinder backend HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	upload    *http.Client
	userAgent string
}

// Options tunes a Client. Zero values fall back to defaults.
type Options struct {
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	Version        string
	Transport      http.RoundTripper
}

const (
	defaultAPIURL         = "127.0.0.1:8000"
	defaultRequestTimeout = 30 * time.Second
	defaultUploadTimeout  = 10 * time.Minute
	maxErrorBody          = 64 << 10
)

// NewClient builds a Client for apiURL ("host:port" or a full URL).
func NewClient(apiURL string, opts Options) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	reqTimeout := opts.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = defaultRequestTimeout
	}
	upTimeout := opts.UploadTimeout
	if upTimeout <= 0 {
		upTimeout = defaultUploadTimeout
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: reqTimeout, Transport: opts.Transport},
		upload:    &http.Client{Timeout: upTimeout, Transport: opts.Transport},
		userAgent: "rowfinder/" + version,
	}, nil
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListFiles fetches every uploaded file, newest first as sent by the server.
func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, err := c.do(ctx, c.http, http.MethodGet, &url.URL{Path: "/api/files/"}, nil, "")
	if err != nil {
		return nil, err
	}
	files := gjson.GetBytes(body, "files")
	if !files.IsArray() {
		return nil, fmt.Errorf("list files: %w", ErrInvalidResponse)
	}
	out := make([]File, 0, len(files.Array()))
	for _, f := range files.Array() {
		out = append(out, parseFile(f))
	}
	return out, nil
}

// SelectFile makes id the server's active file and returns its columns.
func (c *Client) SelectFile(ctx context.Context, id FileID) (SelectResult, error) {
	if c == nil {
		return SelectResult{}, fmt.Errorf("client is nil")
	}
	payload, err := json.Marshal(map[string]FileID{"file_id": id})
	if err != nil {
		return SelectResult{}, fmt.Errorf("encode request: %w", err)
	}
	body, err := c.do(ctx, c.http, http.MethodPost, &url.URL{Path: "/api/files/select/"}, bytes.NewReader(payload), "application/json")
	if err != nil {
		return SelectResult{}, err
	}
	parsed := gjson.ParseBytes(body)
	res := SelectResult{Filename: parsed.Get("filename").String()}
	res.Columns, res.RawColumns = parseColumns(parsed.Get("columns"))
	return res, nil
}

// DeleteFile removes a file and its rows.
func (c *Client) DeleteFile(ctx context.Context, id FileID) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	trimmed := strings.TrimSpace(string(id))
	if trimmed == "" {
		return fmt.Errorf("file id required")
	}
	rel := &url.URL{Path: "/api/files/" + url.PathEscape(trimmed) + "/"}
	_, err := c.do(ctx, c.http, http.MethodDelete, rel, nil, "")
	return err
}

// ActiveColumns returns the columns of the server's active file, or of the
// upload currently in flight.
func (c *Client) ActiveColumns(ctx context.Context) (ColumnsInfo, error) {
	if c == nil {
		return ColumnsInfo{}, fmt.Errorf("client is nil")
	}
	body, err := c.do(ctx, c.http, http.MethodGet, &url.URL{Path: "/api/columns/"}, nil, "")
	if err != nil {
		return ColumnsInfo{}, err
	}
	parsed := gjson.ParseBytes(body)
	info := ColumnsInfo{CurrentFile: parsed.Get("current_file").String()}
	info.Columns, info.RawColumns = parseColumns(parsed.Get("columns"))
	return info, nil
}

// Upload streams the file at path as multipart field "file".
func (c *Client) Upload(ctx context.Context, path string) (UploadResult, error) {
	if c == nil {
		return UploadResult{}, fmt.Errorf("client is nil")
	}
	file, err := os.Open(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("open upload: %w", err)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		defer func() { _ = file.Close() }()
		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(writer.Close())
	}()

	body, err := c.do(ctx, c.upload, http.MethodPost, &url.URL{Path: "/api/upload/"}, pr, writer.FormDataContentType())
	// Unblocks the writer goroutine if the request ended before draining the pipe.
	_ = pr.Close()
	if err != nil {
		return UploadResult{}, err
	}
	parsed := gjson.ParseBytes(body)
	res := UploadResult{
		FileID:        FileID(parsed.Get("file_id").String()),
		RowsProcessed: parsed.Get("total_rows_processed").Int(),
		Message:       parsed.Get("message").String(),
	}
	res.Columns, _ = parseColumns(parsed.Get("columns"))
	return res, nil
}

// UploadProgress fetches the server's upload progress tracker.
func (c *Client) UploadProgress(ctx context.Context) (Progress, error) {
	if c == nil {
		return Progress{}, fmt.Errorf("client is nil")
	}
	body, err := c.do(ctx, c.http, http.MethodGet, &url.URL{Path: "/api/upload-progress/"}, nil, "")
	if err != nil {
		return Progress{}, err
	}
	return parseProgress(gjson.ParseBytes(body)), nil
}

// Search runs one page of a search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchPage, error) {
	if c == nil {
		return SearchPage{}, fmt.Errorf("client is nil")
	}
	if req.Value == "" {
		req.Value = strings.Join(req.Terms, ",")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return SearchPage{}, fmt.Errorf("encode request: %w", err)
	}
	body, err := c.do(ctx, c.http, http.MethodPost, &url.URL{Path: "/api/search/"}, bytes.NewReader(payload), "application/json")
	if err != nil {
		return SearchPage{}, err
	}
	parsed := gjson.ParseBytes(body)
	page := SearchPage{
		TotalCount: parsed.Get("total_count").Int(),
		Page:       int(parsed.Get("page").Int()),
		TotalPages: int(parsed.Get("total_pages").Int()),
	}
	for _, r := range arrayOf(parsed.Get("results")) {
		if row := parseRow(r); len(row) > 0 {
			page.Results = append(page.Results, row)
		}
	}
	if page.Page <= 0 {
		page.Page = max(req.Page, 1)
	}
	return page, nil
}

// Suggestions returns autocomplete candidates for query.
func (c *Client) Suggestions(ctx context.Context, query string) ([]Suggestion, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("q", query)
	rel := &url.URL{Path: "/api/suggestions/", RawQuery: values.Encode()}
	body, err := c.do(ctx, c.http, http.MethodGet, rel, nil, "")
	if err != nil {
		return nil, err
	}
	var out []Suggestion
	for _, s := range arrayOf(gjson.GetBytes(body, "suggestions")) {
		if sug, ok := parseSuggestion(s); ok {
			out = append(out, sug)
		}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method string, rel *url.URL, body io.Reader, contentType string) ([]byte, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Status: resp.StatusCode, Path: rel.Path}
		if msg := gjson.GetBytes(raw, "error"); msg.Exists() && msg.Type == gjson.String {
			apiErr.Message = msg.String()
		}
		return nil, apiErr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return raw, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("decode response: invalid json from %s", rel.Path)
	}
	return raw, nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
