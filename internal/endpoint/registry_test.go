package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/json-to-terraform/connector/internal/geometry"
	"github.com/json-to-terraform/connector/internal/logger"
	"github.com/json-to-terraform/connector/internal/surface"
)

const network = "network"

func newRegistry(t *testing.T) (*surface.Surface, *Registry) {
	t.Helper()
	s := surface.New(surface.DefaultOptions())
	opts := DefaultOptions()
	opts.Logger = logger.Discard()
	r := New(s, opts)

	_, err := s.Mount("c1-holder", "", geometry.Box{X: 100, Y: 50, W: 200, H: 10})
	require.NoError(t, err)
	require.NoError(t, r.PrepareEndpoints("c1", "c1-holder"))

	for i, id := range []string{"n1", "n2", "n3"} {
		el := surface.ElementID(id + "-el")
		_, err := s.Mount(el, "", geometry.Box{X: float64(i) * 400, Y: 300, W: 300, H: 20})
		require.NoError(t, err)
		require.NoError(t, r.AddResourceEndpoint(el, id, network))
	}
	return s, r
}

func ids(eps []*surface.Endpoint) []string {
	out := make([]string, len(eps))
	for i, ep := range eps {
		out[i] = ep.ID
	}
	return out
}

func TestUpdateEndpoints_Cardinality(t *testing.T) {
	_, r := newRegistry(t)

	r.UpdateEndpoints([]string{"n1", "n2", "n3"}, "c1", network, nil)
	created := ids(r.Endpoints("c1", network))
	require.Len(t, created, 3)

	r.UpdateEndpoints([]string{"n1"}, "c1", network, nil)
	remaining := r.Endpoints("c1", network)
	require.Len(t, remaining, 1)
	assert.Contains(t, created, remaining[0].ID, "shrinking never creates a new endpoint")

	assert.Equal(t, []string{"n1"}, r.Desired("c1", network))
	assert.Empty(t, r.Endpoints("c1", "volume"))
}

func TestUpdateEndpoints_EqualCountIsNoop(t *testing.T) {
	s, r := newRegistry(t)
	r.UpdateEndpoints([]string{"n1", "n2"}, "c1", network, nil)
	before := s.Stats().Mutations

	r.UpdateEndpoints([]string{"n2", "n3"}, "c1", network, map[string]string{"n3": "x"})
	assert.Equal(t, before, s.Stats().Mutations)
	assert.Equal(t, []string{"n2", "n3"}, r.Desired("c1", network), "desired list is recorded anyway")
	assert.Equal(t, "x", r.MetadataFor("c1", network, "n3"))
}

func TestUpdateEndpoints_ShrinkKeepsBoundEndpoints(t *testing.T) {
	s, r := newRegistry(t)
	r.UpdateEndpoints([]string{"n1", "n2", "n3"}, "c1", network, nil)

	// bind the endpoint farthest from the origin
	eps := r.Endpoints("c1", network)
	bound := eps[2]
	_, err := s.Connect(surface.ConnectParams{Source: bound, Target: r.AttachPoint("n3")})
	require.NoError(t, err)

	r.UpdateEndpoints([]string{"n3"}, "c1", network, nil)
	remaining := r.Endpoints("c1", network)
	require.Len(t, remaining, 1)
	assert.Same(t, bound, remaining[0])

	// nothing free: shrinking to zero keeps the bound endpoint
	r.UpdateEndpoints(nil, "c1", network, nil)
	assert.Len(t, r.Endpoints("c1", network), 1)
}

func TestUpdateEndpoints_RemovesNearestToOriginFirst(t *testing.T) {
	s, r := newRegistry(t)
	r.UpdateEndpoints([]string{"n1", "n2", "n3"}, "c1", network, nil)
	eps := r.Endpoints("c1", network)

	r.UpdateEndpoints([]string{"n1", "n2"}, "c1", network, nil)
	remaining := ids(r.Endpoints("c1", network))
	assert.Equal(t, []string{eps[1].ID, eps[2].ID}, remaining)

	// survivors are laid out again from the left edge of the holder
	first := s.Element(r.Endpoints("c1", network)[0].Element())
	assert.Equal(t, 100.0, first.Box.X)
}

func TestUpdateEndpoints_LayoutAndOptions(t *testing.T) {
	s, r := newRegistry(t)
	r.UpdateEndpoints([]string{"n1", "n2"}, "c1", network, nil)
	r.UpdateEndpoints([]string{"v1"}, "c1", "volume", nil)

	var xs []float64
	for _, el := range s.Children("c1-holder") {
		xs = append(xs, el.Box.X)
	}
	assert.Equal(t, []float64{100, 114, 128}, xs)

	ep := r.Endpoints("c1", network)[0]
	opts := ep.Options()
	assert.Equal(t, 1, opts.MaxConnections)
	assert.True(t, opts.IsSource)
	assert.True(t, opts.IsTarget)
	assert.True(t, opts.Enabled)
	assert.False(t, opts.DeleteOnDetach)
	assert.Len(t, opts.ConnectorOverlays, 2)
}

func TestUpdateEndpoints_WithoutHolderDoesNotPanic(t *testing.T) {
	_, r := newRegistry(t)

	r.UpdateEndpoints([]string{"n1"}, "ghost", network, map[string]string{"n1": "meta"})
	assert.Empty(t, r.Endpoints("ghost", network))
	assert.Equal(t, []string{"n1"}, r.Desired("ghost", network))
	assert.Equal(t, map[string]string{"n1": "meta"}, r.Metadata("ghost", network))

	assert.ErrorIs(t, r.PrepareEndpoints("ghost", "nope"), ErrUnknownHolder)
}

func TestFreeEndpoints(t *testing.T) {
	s, r := newRegistry(t)
	r.UpdateEndpoints([]string{"n1", "n2"}, "c1", network, nil)
	eps := r.Endpoints("c1", network)

	_, err := s.Connect(surface.ConnectParams{Source: eps[0], Target: r.AttachPoint("n1")})
	require.NoError(t, err)
	free := r.FreeEndpoints("c1", network, true)
	require.Len(t, free, 1)
	assert.Same(t, eps[1], free[0])

	require.NoError(t, s.SetVisible("c1-holder", false))
	assert.Empty(t, r.FreeEndpoints("c1", network, true))
	assert.Len(t, r.FreeEndpoints("c1", network, false), 1)
}

func TestResolve(t *testing.T) {
	s, r := newRegistry(t)
	r.UpdateEndpoints([]string{"n1"}, "c1", network, nil)
	r.UpdateEndpoints([]string{"v1"}, "c1", "volume", nil)
	anchor := r.Endpoints("c1", network)[0].Element()
	volAnchor := r.Endpoints("c1", "volume")[0].Element()

	p, ok := r.Resolve(anchor, "n2-el", "")
	require.True(t, ok)
	assert.Equal(t, Pair{OwnerID: "c1", ResourceID: "n2", ResourceType: network}, p)

	p, ok = r.Resolve("n2-el", anchor, network)
	require.True(t, ok, "either order resolves")
	assert.Equal(t, "n2", p.ResourceID)

	_, ok = r.Resolve(anchor, "n2-el", "volume")
	assert.False(t, ok)
	_, ok = r.Resolve(volAnchor, "n2-el", "")
	assert.False(t, ok, "a volume anchor never links to a network")
	_, ok = r.Resolve("n1-el", "n2-el", "")
	assert.False(t, ok)
	_, ok = r.Resolve(anchor, "unknown", "")
	assert.False(t, ok)

	_, err := s.Mount("plain", "", geometry.Box{})
	require.NoError(t, err)
	_, ok = r.Resolve(anchor, "plain", "")
	assert.False(t, ok, "elements without a binding resolve to no link")
}

func TestResourceEndpointLifecycle(t *testing.T) {
	s, r := newRegistry(t)
	r.UpdateEndpoints([]string{"n1"}, "c1", network, nil)
	ep := r.Endpoints("c1", network)[0]
	_, err := s.Connect(surface.ConnectParams{Source: ep, Target: r.AttachPoint("n1")})
	require.NoError(t, err)

	attach := r.AttachPoint("n1")
	require.NotNil(t, attach)
	assert.Equal(t, surface.Unbounded, attach.Options().MaxConnections)
	assert.Len(t, attach.Options().Anchors, 31)

	r.RemoveResourceEndpoint("n1-el")
	assert.Nil(t, r.AttachPoint("n1"))
	assert.Empty(t, s.Connections())
	assert.False(t, ep.IsFull())
	_, ok := r.Binding("n1-el")
	assert.False(t, ok)

	r.RemoveResourceEndpoint("n1-el")
	r.RemoveResourceEndpoint(ep.Element())
	assert.Len(t, r.Endpoints("c1", network), 1, "owner anchors are not resource endpoints")

	require.NoError(t, r.AddResourceEndpoint("n1-el", "n1", network))
	assert.NotNil(t, r.AttachPoint("n1"))
	assert.Error(t, r.AddResourceEndpoint("missing", "n9", network))
}

func TestSetReadOnly(t *testing.T) {
	_, r := newRegistry(t)
	r.UpdateEndpoints([]string{"n1"}, "c1", network, nil)

	r.SetReadOnly(true)
	assert.True(t, r.ReadOnly())
	assert.False(t, r.Endpoints("c1", network)[0].Enabled())
	assert.False(t, r.AttachPoint("n1").Enabled())

	r.UpdateEndpoints([]string{"n1", "n2"}, "c1", network, nil)
	added := r.Endpoints("c1", network)[1]
	assert.False(t, added.Enabled())
	assert.Len(t, added.Options().ConnectorOverlays, 2, "affordances are kept and hidden per connection")

	r.SetReadOnly(false)
	assert.True(t, added.Enabled())
}

func TestOwners(t *testing.T) {
	_, r := newRegistry(t)
	r.UpdateEndpoints(nil, "c0", network, nil)
	assert.Equal(t, []string{"c0", "c1"}, r.Owners())
}
