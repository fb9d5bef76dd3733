package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(controls []Control) []Kind {
	out := make([]Kind, len(controls))
	for i, c := range controls {
		out[i] = c.Kind
	}
	return out
}

func pages(controls []Control) []int {
	var out []int
	for _, c := range controls {
		if c.Kind == Page {
			out = append(out, c.Target)
		}
	}
	return out
}

func TestBuild_NothingForSinglePage(t *testing.T) {
	assert.Nil(t, Build(1, 1))
	assert.Nil(t, Build(1, 0))
	assert.Nil(t, Build(3, -2))
}

func TestBuild_CentredWindowWithBothEllipses(t *testing.T) {
	controls := Build(7, 12)

	assert.Equal(t,
		[]Kind{Previous, Page, Ellipsis, Page, Page, Page, Page, Page, Ellipsis, Page, Next},
		kinds(controls))
	assert.Equal(t, []int{1, 5, 6, 7, 8, 9, 12}, pages(controls))

	prev, next := controls[0], controls[len(controls)-1]
	assert.False(t, prev.Disabled)
	assert.Equal(t, 6, prev.Target)
	assert.False(t, next.Disabled)
	assert.Equal(t, 8, next.Target)

	for _, c := range controls {
		if c.Kind == Page {
			assert.Equal(t, c.Target == 7, c.Current, "page %d", c.Target)
		}
	}
}

func TestBuild_FirstPage(t *testing.T) {
	controls := Build(1, 12)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 12}, pages(controls))
	assert.True(t, controls[0].Disabled)
	assert.False(t, controls[len(controls)-1].Disabled)
	assert.Equal(t, []Kind{Previous, Page, Page, Page, Page, Page, Ellipsis, Page, Next}, kinds(controls))
}

func TestBuild_LastPage(t *testing.T) {
	controls := Build(12, 12)
	assert.Equal(t, []int{1, 8, 9, 10, 11, 12}, pages(controls))
	assert.False(t, controls[0].Disabled)
	assert.True(t, controls[len(controls)-1].Disabled)
	assert.Equal(t, []Kind{Previous, Page, Ellipsis, Page, Page, Page, Page, Page, Next}, kinds(controls))
}

func TestBuild_NoEllipsisWhenWindowTouchesNeighbour(t *testing.T) {
	// Window 2..6 follows page 1 directly.
	controls := Build(4, 7)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, pages(controls))
	for _, c := range controls {
		assert.NotEqual(t, Ellipsis, c.Kind)
	}
}

func TestBuild_SmallTotals(t *testing.T) {
	controls := Build(2, 3)
	assert.Equal(t, []int{1, 2, 3}, pages(controls))
	assert.Equal(t, []Kind{Previous, Page, Page, Page, Next}, kinds(controls))
}

func TestBuild_ClampsCurrent(t *testing.T) {
	controls := Build(40, 5)
	require.NotEmpty(t, controls)
	assert.True(t, controls[len(controls)-1].Disabled)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, pages(controls))
}

func TestControl_LabelAndSelectable(t *testing.T) {
	assert.Equal(t, "3", Control{Kind: Page, Target: 3}.Label())
	assert.Equal(t, "…", Control{Kind: Ellipsis}.Label())
	assert.Equal(t, "‹ Prev", Control{Kind: Previous}.Label())
	assert.Equal(t, "Next ›", Control{Kind: Next}.Label())

	assert.True(t, Control{Kind: Page, Target: 2}.Selectable())
	assert.False(t, Control{Kind: Page, Target: 2, Current: true}.Selectable())
	assert.False(t, Control{Kind: Ellipsis}.Selectable())
	assert.False(t, Control{Kind: Next, Disabled: true}.Selectable())
}
