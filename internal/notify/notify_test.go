package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func TestCenter_PushAndExpire(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now, clock := fixedClock(base)
	c := NewCenter(0)
	c.now = clock

	first := c.Push(Success, "File selected successfully")
	assert.Equal(t, base.Add(DefaultTTL), first.Expires)

	*now = base.Add(2 * time.Second)
	c.Push(Error, "Error loading file list")

	require.Len(t, c.Active(), 2)

	assert.False(t, c.Expire(base.Add(4*time.Second)))
	assert.True(t, c.Expire(base.Add(5*time.Second)))

	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Error loading file list", active[0].Message)

	assert.True(t, c.Expire(base.Add(7*time.Second)))
	assert.Nil(t, c.Active())
}

func TestCenter_CapsVisibleToasts(t *testing.T) {
	c := NewCenter(time.Minute)
	for i := 0; i < 6; i++ {
		c.Push(Info, fmt.Sprintf("toast %d", i))
	}
	active := c.Active()
	require.Len(t, active, MaxVisible)
	assert.Equal(t, "toast 2", active[0].Message)
	assert.Equal(t, "toast 5", active[MaxVisible-1].Message)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "error", Error.String())
}

func TestBanner(t *testing.T) {
	assert.True(t, Banner{}.IsZero())
	b := ErrorBanner("Error performing search: boom")
	assert.False(t, b.IsZero())
	assert.Equal(t, Error, b.Level)
	assert.Equal(t, Warning, WarningBanner("x").Level)
	assert.Equal(t, Info, InfoBanner("x").Level)
}
