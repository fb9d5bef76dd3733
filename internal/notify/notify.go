// Package notify tracks transient toast notifications and the inline banner
// shown in the results area.
package notify

import (
	"sync"
	"time"
)

// Level classifies a notification.
type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

const (
	// DefaultTTL is how long a toast stays visible.
	DefaultTTL = 5 * time.Second
	// MaxVisible caps the number of toasts kept at once.
	MaxVisible = 4
)

// Toast is one notification.
type Toast struct {
	ID      int
	Level   Level
	Message string
	Created time.Time
	Expires time.Time
}

// Center holds active toasts. The zero value is ready to use.
type Center struct {
	mu     sync.Mutex
	toasts []Toast
	nextID int
	ttl    time.Duration
	now    func() time.Time
}

// NewCenter returns a center whose toasts live for ttl (DefaultTTL when <= 0).
func NewCenter(ttl time.Duration) *Center {
	return &Center{ttl: ttl}
}

// Push adds a toast and returns it. The oldest toast is dropped when more
// than MaxVisible would be shown.
func (c *Center) Push(level Level, message string) Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	c.nextID++
	toast := Toast{
		ID:      c.nextID,
		Level:   level,
		Message: message,
		Created: now,
		Expires: now.Add(c.lifetime()),
	}
	c.toasts = append(c.toasts, toast)
	if over := len(c.toasts) - MaxVisible; over > 0 {
		c.toasts = append([]Toast(nil), c.toasts[over:]...)
	}
	return toast
}

// Expire drops toasts whose lifetime ended at or before now and reports
// whether anything changed.
func (c *Center) Expire(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.toasts[:0]
	for _, t := range c.toasts {
		if now.Before(t.Expires) {
			kept = append(kept, t)
		}
	}
	changed := len(kept) != len(c.toasts)
	c.toasts = kept
	return changed
}

// Active returns a copy of the visible toasts, oldest first.
func (c *Center) Active() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.toasts) == 0 {
		return nil
	}
	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

func (c *Center) lifetime() time.Duration {
	if c.ttl <= 0 {
		return DefaultTTL
	}
	return c.ttl
}

func (c *Center) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// Banner is the inline message rendered in place of results.
type Banner struct {
	Level   Level
	Message string
}

// IsZero reports whether the banner has nothing to show.
func (b Banner) IsZero() bool {
	return b.Message == ""
}

// ErrorBanner builds an error banner.
func ErrorBanner(msg string) Banner { return Banner{Level: Error, Message: msg} }

// WarningBanner builds a warning banner.
func WarningBanner(msg string) Banner { return Banner{Level: Warning, Message: msg} }

// InfoBanner builds an info banner.
func InfoBanner(msg string) Banner { return Banner{Level: Info, Message: msg} }
