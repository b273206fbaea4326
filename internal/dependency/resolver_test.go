package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/json-to-terraform/connector/internal/diagram"
)

func TestResolve(t *testing.T) {
	ordered, tiers, err := Resolve(
		[]string{"c", "b", "a"},
		[]Edge{{From: "a", To: "b"}, {From: "b", To: "c"}, {From: "a", To: "c"}, {From: "x", To: "a"}, {From: "c", To: "c"}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ordered)
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, tiers)
}

func TestResolve_Cycle(t *testing.T) {
	_, _, err := Resolve([]string{"a", "b"}, []Edge{{From: "a", To: "b"}, {From: "b", To: "a"}})
	assert.ErrorIs(t, err, ErrCycle)

	ordered, tiers, err := Resolve(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, ordered)
	assert.Nil(t, tiers)
}

func TestOrder_ResourcesBeforeOwners(t *testing.T) {
	s := &diagram.Snapshot{
		Owners:    []diagram.Owner{{ID: "web"}, {ID: "db"}, {ID: "idle"}},
		Resources: []diagram.Resource{{ID: "n1", Type: "network"}, {ID: "v1", Type: "volume"}},
		Links: []diagram.Link{
			{Owner: "web", Resource: "n1"},
			{Owner: "db", Resource: "n1"},
			{Owner: "db", Resource: "v1"},
		},
	}
	ordered, tiers, err := Order(s)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"idle", "n1", "v1"}, {"db", "web"}}, tiers)
	assert.Equal(t, []string{"idle", "n1", "v1", "db", "web"}, ordered)
}
