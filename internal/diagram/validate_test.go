package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/json-to-terraform/connector/internal/linkdiff"
)

func sample() *Snapshot {
	return &Snapshot{
		Metadata: Metadata{Version: "1.0", Name: "shop"},
		Owners:   []Owner{{ID: "c1"}, {ID: "c2"}},
		Resources: []Resource{
			{ID: "n1", Type: "network"},
			{ID: "n2", Type: "network"},
			{ID: "v1", Type: "volume"},
		},
		Links: []Link{
			{Owner: "c1", Resource: "n1"},
			{Owner: "c1", Resource: "n2", Type: "network"},
			{Owner: "c2", Resource: "v1", MountPath: "/data"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	s := sample()
	assert.Empty(t, Validate(s))
	assert.Equal(t, "network", s.Links[0].Type, "link type is inferred from the resource")
	assert.Equal(t, "volume", s.Links[2].Type)
	assert.NotNil(t, s.Owners[0].Properties)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Snapshot)
		message string
	}{
		{"missing version", func(s *Snapshot) { s.Metadata.Version = "" }, "metadata.version is required"},
		{"duplicate id across kinds", func(s *Snapshot) { s.Owners[1].ID = "n1" }, "duplicate node id: n1"},
		{"empty owner id", func(s *Snapshot) { s.Owners = append(s.Owners, Owner{}) }, "owner at index 2 has empty id"},
		{"resource without type", func(s *Snapshot) { s.Resources[0].Type = "" }, "resource.type is required"},
		{"unknown owner", func(s *Snapshot) { s.Links[0].Owner = "c9" }, `references unknown owner "c9"`},
		{"unknown resource", func(s *Snapshot) { s.Links[0].Resource = "n9" }, `references unknown resource "n9"`},
		{"type mismatch", func(s *Snapshot) { s.Links[0].Type = "volume" }, `but the resource is a "network"`},
		{"duplicate link", func(s *Snapshot) { s.Links = append(s.Links, Link{Owner: "c1", Resource: "n1"}) }, "duplicate link c1 -> n1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sample()
			tt.mutate(s)
			errs := Validate(s)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Message, tt.message)
			assert.Equal(t, "error", errs[0].Severity)
		})
	}

	assert.Len(t, Validate(nil), 1)
}

func TestSnapshotQueries(t *testing.T) {
	s := sample()
	require.Empty(t, Validate(s))

	assert.Equal(t, []string{"network", "volume"}, s.ResourceTypes())
	assert.Equal(t, []string{"n1", "n2"}, s.ResourcesOfType("network"))
	assert.Equal(t, linkdiff.Links{"c1": {"n1", "n2"}, "c2": {}}, s.LinksByOwner("network"))
	assert.Equal(t, map[string]map[string]string{"c2": {"v1": "/data"}}, s.MetadataByOwner("volume"))
	assert.Len(t, s.LinksOf("c1", "network"), 2)
	assert.Equal(t, "c2", s.OwnerByID("c2").ID)
	assert.Nil(t, s.OwnerByID("n1"))
	assert.Equal(t, "volume", s.ResourceByID("v1").Type)
}

func TestGetters(t *testing.T) {
	p := map[string]any{
		"driver":   "bridge",
		"internal": true,
		"labels":   map[string]any{"team": "web", "n": 1},
	}
	assert.Equal(t, "bridge", GetStr(p, "driver"))
	assert.Equal(t, "", GetStr(p, "internal"))
	assert.True(t, GetBool(p, "internal"))
	assert.False(t, GetBool(nil, "internal"))
	assert.Equal(t, map[string]string{"team": "web"}, GetStrMap(p, "labels"))
	assert.Nil(t, GetStrMap(p, "missing"))
}
