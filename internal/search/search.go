// Package search validates queries, dispatches them to the backend and keeps
// the last successful query so pagination can replay it.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/notify"
	"github.com/rowfinder/rowfinder/internal/pager"
)

// DefaultPageSize is used when the coordinator is given a non-positive size.
const DefaultPageSize = 20

// ValidationError is a precondition failure caught before any request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrNoFile    = &ValidationError{Message: "Please select a file before searching."}
	ErrNoTerms   = &ValidationError{Message: "Please enter a search term."}
	ErrNoFields  = &ValidationError{Message: "Please select at least one column to search."}
	ErrNoQuery   = &ValidationError{Message: "Run a search before changing pages."}
	ErrStale     = errors.New("search response superseded")
	noResultsMsg = "No results found for your search."
)

// Searcher is the slice of the backend the coordinator needs.
type Searcher interface {
	Search(ctx context.Context, req api.SearchRequest) (api.SearchPage, error)
}

// Selection exposes the selected file.
type Selection interface {
	SelectedFileID() api.FileID
}

// Query is the replayable part of a search; the page is supplied per call.
type Query struct {
	Terms  []string
	Fields []string
}

func (q Query) clone() Query {
	return Query{
		Terms:  append([]string(nil), q.Terms...),
		Fields: append([]string(nil), q.Fields...),
	}
}

// Outcome is everything the view needs after a successful search.
type Outcome struct {
	Page       api.SearchPage
	Params     Query
	FileID     api.FileID
	Pagination []pager.Control
	Banner     notify.Banner
}

// Empty reports whether the page carried no rows.
func (o Outcome) Empty() bool {
	return len(o.Page.Results) == 0
}

// SplitTerms splits comma-separated text into trimmed, non-empty terms.
func SplitTerms(text string) []string {
	var terms []string
	for _, part := range strings.Split(text, ",") {
		if t := strings.TrimSpace(part); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Coordinator runs searches. It is safe for concurrent use; only the newest
// dispatch may deliver an outcome.
type Coordinator struct {
	backend   Searcher
	selection Selection
	pageSize  int

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	current *Query
}

// NewCoordinator builds a Coordinator.
func NewCoordinator(backend Searcher, selection Selection, pageSize int) *Coordinator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Coordinator{backend: backend, selection: selection, pageSize: pageSize}
}

// Current returns the last successful query.
func (c *Coordinator) Current() (Query, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Query{}, false
	}
	return c.current.clone(), true
}

// Reset forgets the replayable query and invalidates in-flight searches.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.current = nil
}

// Validate checks the preconditions in order: file, terms, fields.
func (c *Coordinator) Validate(text string, fields []string) (Query, api.FileID, error) {
	fileID := c.selection.SelectedFileID()
	if fileID == "" {
		return Query{}, "", ErrNoFile
	}
	terms := SplitTerms(text)
	if len(terms) == 0 {
		return Query{}, "", ErrNoTerms
	}
	var cleaned []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	if len(cleaned) == 0 {
		return Query{}, "", ErrNoFields
	}
	return Query{Terms: terms, Fields: cleaned}, fileID, nil
}

// Search validates text and fields and loads page 1.
func (c *Coordinator) Search(ctx context.Context, text string, fields []string) (Outcome, error) {
	return c.SearchPage(ctx, text, fields, 1)
}

// SearchPage is Search starting at page instead of 1.
func (c *Coordinator) SearchPage(ctx context.Context, text string, fields []string, page int) (Outcome, error) {
	q, fileID, err := c.Validate(text, fields)
	if err != nil {
		return Outcome{}, err
	}
	return c.dispatch(ctx, q, fileID, max(page, 1))
}

// GoToPage replays the last successful query for page.
func (c *Coordinator) GoToPage(ctx context.Context, page int) (Outcome, error) {
	q, ok := c.Current()
	if !ok {
		return Outcome{}, ErrNoQuery
	}
	fileID := c.selection.SelectedFileID()
	if fileID == "" {
		return Outcome{}, ErrNoFile
	}
	return c.dispatch(ctx, q, fileID, max(page, 1))
}

func (c *Coordinator) dispatch(ctx context.Context, q Query, fileID api.FileID, page int) (Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.mu.Unlock()

	res, err := c.backend.Search(ctx, api.SearchRequest{
		Terms:    q.Terms,
		Fields:   q.Fields,
		Page:     page,
		PageSize: c.pageSize,
		FileID:   fileID,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq || c.selection.SelectedFileID() != fileID {
		return Outcome{}, ErrStale
	}
	c.cancel = nil
	if err != nil {
		return Outcome{}, fmt.Errorf("search: %w", err)
	}

	stored := q.clone()
	c.current = &stored

	out := Outcome{
		Page:       res,
		Params:     q.clone(),
		FileID:     fileID,
		Pagination: pager.Build(res.Page, res.TotalPages),
	}
	if out.Empty() {
		out.Banner = notify.InfoBanner(noResultsMsg)
	}
	return out, nil
}

// ErrorBanner converts a search error into the banner shown in the results
// area. Validation errors become warnings; stale responses produce nothing.
func ErrorBanner(err error) notify.Banner {
	var vErr *ValidationError
	switch {
	case err == nil, errors.Is(err, ErrStale):
		return notify.Banner{}
	case errors.As(err, &vErr):
		return notify.WarningBanner(vErr.Message)
	default:
		cause := errors.Unwrap(err)
		if cause == nil {
			cause = err
		}
		return notify.ErrorBanner("Error performing search: " + api.Message(cause))
	}
}
