package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacing(t *testing.T) {
	src := Box{X: 100, Y: 100, W: 50, H: 50}

	tests := []struct {
		name   string
		target Box
		want   Side
	}{
		{"left", Box{X: 0, Y: 100, W: 50, H: 50}, Side{Left: true}},
		{"right", Box{X: 200, Y: 100, W: 50, H: 50}, Side{Right: true}},
		{"top", Box{X: 100, Y: 0, W: 50, H: 50}, Side{Top: true}},
		{"bottom", Box{X: 100, Y: 200, W: 50, H: 50}, Side{Bottom: true}},
		{"overlap", Box{X: 120, Y: 120, W: 50, H: 50}, Side{}},
		{"touching edges are not strictly apart", Box{X: 150, Y: 150, W: 10, H: 10}, Side{}},
		{"top left", Box{X: 0, Y: 0, W: 10, H: 10}, Side{Left: true, Top: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Facing(src, tt.target))
		})
	}
}

func TestReference(t *testing.T) {
	src := Box{X: 100, Y: 100, W: 50, H: 50}

	assert.Equal(t, Point{X: 50, Y: 100}, Reference(src, Box{X: 0, Y: 100, W: 50, H: 50}))
	assert.Equal(t, Point{X: 200, Y: 100}, Reference(src, Box{X: 200, Y: 100, W: 50, H: 50}))
	assert.Equal(t, Point{X: 100, Y: 50}, Reference(src, Box{X: 100, Y: 0, W: 50, H: 50}))
	assert.Equal(t, Point{X: 100, Y: 200}, Reference(src, Box{X: 100, Y: 200, W: 50, H: 50}))
	// overlap on both axes falls through to the faced box's own origin
	assert.Equal(t, Point{X: 120, Y: 120}, Reference(src, Box{X: 120, Y: 120, W: 50, H: 50}))
}

func TestSelectAnchor(t *testing.T) {
	strip := StripAnchors(30)
	require.Len(t, strip, 31)

	t.Run("owner above the bar picks the point under it", func(t *testing.T) {
		bar := Box{X: 0, Y: 200, W: 300, H: 20}
		owner := Box{X: 100, Y: 100, W: 10, H: 10}
		assert.Equal(t, 10, SelectAnchor(bar, owner, strip))
	})

	t.Run("owner far right picks the rightmost point", func(t *testing.T) {
		bar := Box{X: 0, Y: 0, W: 100, H: 20}
		owner := Box{X: 500, Y: 0, W: 10, H: 10}
		assert.Equal(t, 30, SelectAnchor(bar, owner, strip))
	})

	t.Run("nothing left of the reference falls back to the first anchor", func(t *testing.T) {
		bar := Box{X: 200, Y: 200, W: 300, H: 20}
		owner := Box{X: 0, Y: 0, W: 50, H: 50}
		assert.Equal(t, 0, SelectAnchor(bar, owner, strip))
	})

	t.Run("empty candidate list", func(t *testing.T) {
		assert.Equal(t, -1, SelectAnchor(Box{}, Box{}, nil))
	})

	t.Run("ties keep the first minimum", func(t *testing.T) {
		anchors := []Anchor{{X: 0, Y: 0}, {X: 0, Y: 1}}
		src := Box{X: 0, Y: 0, W: 10, H: 10}
		// reference (20, 5) is equidistant from both candidates
		target := Box{X: 20, Y: 5, W: 1, H: 1}
		assert.Equal(t, 0, SelectAnchor(src, target, anchors))
	})
}

func TestSelectAnchorNeverPicksRightOfReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	strip := StripAnchors(30)
	box := func() Box {
		return Box{
			X: rng.Float64() * 1000, Y: rng.Float64() * 1000,
			W: 1 + rng.Float64()*300, H: 1 + rng.Float64()*100,
		}
	}

	for i := 0; i < 2000; i++ {
		src, target := box(), box()
		ref := Reference(src, target)

		eligible := false
		for _, a := range strip {
			if src.At(a).X <= ref.X {
				eligible = true
				break
			}
		}

		got := SelectAnchor(src, target, strip)
		if !eligible {
			assert.Equal(t, 0, got, "fallback must be index 0")
			continue
		}
		assert.LessOrEqual(t, src.At(strip[got]).X, ref.X, "src=%+v target=%+v", src, target)
	}
}

func TestStripAnchors(t *testing.T) {
	a := StripAnchors(4)
	require.Len(t, a, 5)
	assert.Equal(t, Anchor{X: 0, Y: 0.5, DX: 0, DY: -1}, a[0])
	assert.Equal(t, Anchor{X: 0.5, Y: 0.5, DX: 0, DY: -1}, a[2])
	assert.Equal(t, Anchor{X: 1, Y: 0.5, DX: 0, DY: -1}, a[4])

	assert.Len(t, StripAnchors(0), 1)
}

func TestBoxAt(t *testing.T) {
	b := Box{X: 10, Y: 20, W: 100, H: 40}
	assert.Equal(t, Point{X: 60, Y: 60}, b.At(BottomCenter))
	assert.InDelta(t, 5.0, Distance(Point{}, Point{X: 3, Y: 4}), 1e-9)
}
