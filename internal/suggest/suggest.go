// Package suggest fetches autocomplete candidates for the query input and
// tracks keyboard navigation through them.
package suggest

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/patrickmn/go-cache"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/format"
)

const (
	// MinQueryLen is the shortest text worth asking the backend about.
	MinQueryLen = 2
	// DefaultDelay is the idle time before a lookup fires.
	DefaultDelay = 300 * time.Millisecond

	cacheTTL     = time.Minute
	cacheCleanup = 5 * time.Minute
)

// DueMsg is delivered when a debounce timer fires.
type DueMsg struct {
	Seq uint64
}

// Debouncer hands out sequence-tagged ticks; only the newest tick is due.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	seq   uint64
}

// NewDebouncer builds a Debouncer with delay (DefaultDelay when <= 0).
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Bump invalidates pending ticks and returns the new sequence.
func (d *Debouncer) Bump() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	return d.seq
}

// Due reports whether seq is still the newest.
func (d *Debouncer) Due(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return seq == d.seq
}

// Cancel invalidates any pending tick.
func (d *Debouncer) Cancel() {
	d.Bump()
}

// Tick bumps the sequence and returns a command that delivers DueMsg after
// the delay.
func (d *Debouncer) Tick() tea.Cmd {
	seq := d.Bump()
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return DueMsg{Seq: seq}
	})
}

// Fetcher is the slice of the API used for suggestions.
type Fetcher interface {
	Suggestions(ctx context.Context, query string) ([]api.Suggestion, error)
}

// Source looks suggestions up, caching answers per query.
type Source struct {
	fetcher Fetcher
	cache   *cache.Cache
}

// NewSource builds a Source whose answers are cached for a minute.
func NewSource(fetcher Fetcher) *Source {
	return &Source{fetcher: fetcher, cache: cache.New(cacheTTL, cacheCleanup)}
}

// Eligible reports whether text is long enough to look up.
func Eligible(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinQueryLen
}

// Lookup returns suggestions for text. Text shorter than MinQueryLen returns
// nothing without a request.
func (s *Source) Lookup(ctx context.Context, text string) ([]api.Suggestion, error) {
	q := strings.TrimSpace(text)
	if !Eligible(q) {
		return nil, nil
	}
	key := strings.ToLower(q)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]api.Suggestion), nil
	}
	res, err := s.fetcher.Suggestions(ctx, q)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, res)
	return res, nil
}

// Flush drops cached answers, e.g. after an upload or delete.
func (s *Source) Flush() {
	s.cache.Flush()
}

// Item is a rendered suggestion.
type Item struct {
	Suggestion api.Suggestion
	Parts      []format.Segment
}

// List is the visible suggestion dropdown. The zero value is hidden.
type List struct {
	items    []Item
	selected int
	visible  bool
}

// Show replaces the items for query. An empty result hides the list.
func (l *List) Show(query string, sugs []api.Suggestion) {
	l.items = make([]Item, 0, len(sugs))
	for _, s := range sugs {
		l.items = append(l.items, Item{Suggestion: s, Parts: format.HighlightFirst(s.Value, query)})
	}
	l.selected = -1
	l.visible = len(l.items) > 0
}

// Visible reports whether the list is shown.
func (l *List) Visible() bool {
	return l.visible && len(l.items) > 0
}

// Items returns the rendered items.
func (l *List) Items() []Item {
	return l.items
}

// Index returns the marked item or -1.
func (l *List) Index() int {
	if !l.Visible() {
		return -1
	}
	return l.selected
}

// Down moves the marker down, stopping at the last item.
func (l *List) Down() {
	if !l.Visible() {
		return
	}
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// Up moves the marker up, stopping at the first item. With nothing marked it
// does nothing.
func (l *List) Up() {
	if !l.Visible() {
		return
	}
	if l.selected > 0 {
		l.selected--
	}
}

// Enter commits the marked value and hides the list. ok is false when nothing
// is marked, leaving the list as it was.
func (l *List) Enter() (value string, ok bool) {
	if !l.Visible() || l.selected < 0 {
		return "", false
	}
	value = l.items[l.selected].Suggestion.Value
	l.Hide()
	return value, true
}

// Escape hides the list without committing.
func (l *List) Escape() {
	l.Hide()
}

// Hide closes the list and clears the marker.
func (l *List) Hide() {
	l.visible = false
	l.selected = -1
}

// Clear hides the list and forgets its items.
func (l *List) Clear() {
	l.Hide()
	l.items = nil
}
