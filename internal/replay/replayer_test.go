package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/json-to-terraform/connector/internal/config"
	_ "github.com/json-to-terraform/connector/internal/handler" // register handlers
	"github.com/json-to-terraform/connector/internal/logger"
	"github.com/json-to-terraform/connector/internal/result"
)

const canvas = `
canvas:
  metadata: {version: "1.0", name: shop}
  owners:
    - {id: web, image: "nginx:1.27", box: {x: 0, y: 0, w: 200, h: 10}}
    - {id: db, image: "postgres:16", box: {x: 300, y: 0, w: 200, h: 10}}
  resources:
    - {id: front, type: network, box: {x: 0, y: 200, w: 300, h: 20}}
    - {id: back, type: network, box: {x: 400, y: 200, w: 300, h: 20}}
    - {id: pgdata, type: volume, box: {x: 400, y: 300, w: 300, h: 20}}
  links:
    - {owner: web, resource: front}
    - {owner: web, resource: back}
    - {owner: db, resource: back}
    - {owner: db, resource: pgdata, mount_path: /var/lib/postgresql/data}
`

func run(t *testing.T, opts Options, steps string) *result.RunResult {
	t.Helper()
	s, err := Parse([]byte(canvas + steps))
	require.NoError(t, err)
	opts.Logger = logger.Discard()
	out, err := New(opts, nil).Run(s)
	require.NoError(t, err)
	return out
}

func kinds(out *result.RunResult) []result.NotificationKind {
	var ks []result.NotificationKind
	for _, n := range out.Notifications {
		ks = append(ks, n.Kind)
	}
	return ks
}

func TestRun_InitialCanvas(t *testing.T) {
	out := run(t, DefaultOptions(), "steps: []\n")
	require.True(t, out.Success, "%v", out.Errors)

	assert.Equal(t, map[string][]string{"web": {"back", "front"}, "db": {"back"}}, out.Links["network"])
	assert.Equal(t, map[string][]string{"db": {"pgdata"}}, out.Links["volume"])
	assert.Len(t, out.Reports, 2)
	assert.Empty(t, out.Notifications)
	assert.Zero(t, out.Ticks)
	assert.Contains(t, string(out.TerraformFiles["main.tf"]), "/var/lib/postgresql/data")
}

func TestRun_UserGestures(t *testing.T) {
	out := run(t, DefaultOptions(), `
steps:
  - {op: connect, owner: db, resource: front}
  - {op: connect, owner: web, resource: pgdata}
  - {op: edit_value, owner: db, resource: pgdata, value: /srv/pg}
  - {op: delete_click, owner: web, resource: back}
`)
	require.True(t, out.Success, "%v", out.Errors)

	assert.Equal(t, []result.NotificationKind{
		result.KindConnect, result.KindConnect, result.KindValueChanged, result.KindDisconnect,
	}, kinds(out))
	assert.Equal(t, map[string][]string{"web": {"front"}, "db": {"back", "front"}}, out.Links["network"])
	assert.Equal(t, map[string][]string{"db": {"pgdata"}, "web": {"pgdata"}}, out.Links["volume"])
	assert.Positive(t, out.Ticks)

	main := string(out.TerraformFiles["main.tf"])
	assert.Contains(t, main, "/srv/pg")
	assert.Contains(t, main, "/container/project/path", "user-drawn volume links start with the placeholder")
}

func TestRun_MoveIsReportedOnce(t *testing.T) {
	out := run(t, DefaultOptions(), `
steps:
  - {op: move, owner: web, resource: front, to_owner: db}
  - {op: move, owner: db, resource: back, to_resource: front}
`)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0].Message, "link is already drawn")

	out = run(t, DefaultOptions(), `
steps:
  - {op: move, owner: web, resource: front, to_owner: db}
`)
	require.True(t, out.Success, "%v", out.Errors)
	require.Equal(t, []result.NotificationKind{result.KindMoved}, kinds(out))
	n := out.Notifications[0]
	assert.Equal(t, "db", n.NewOwnerID)
	assert.Equal(t, "front", n.NewResourceID)
	assert.Equal(t, 1, out.Swallowed)
	assert.Equal(t, map[string][]string{"web": {"back"}, "db": {"back", "front"}}, out.Links["network"])
}

func TestRun_SetLinks(t *testing.T) {
	out := run(t, DefaultOptions(), `
steps:
  - op: set_links
    type: volume
    links: {web: [pgdata], db: []}
    metadata: {web: {pgdata: /cache}}
`)
	require.True(t, out.Success, "%v", out.Errors)
	assert.Equal(t, map[string][]string{"web": {"pgdata"}}, out.Links["volume"])
	assert.Empty(t, out.Notifications, "state layer changes are not echoed back")
	assert.Contains(t, string(out.TerraformFiles["main.tf"]), "/cache")
}

func TestRun_UnmountAndRemount(t *testing.T) {
	out := run(t, DefaultOptions(), `
steps:
  - {op: unmount_resource, resource: back}
`)
	require.True(t, out.Success, "%v", out.Errors)
	assert.Equal(t, map[string][]string{"web": {"front"}}, out.Links["network"])
	assert.Empty(t, out.Notifications)

	var warned bool
	for _, rep := range out.Reports {
		warned = warned || len(rep.Warnings) > 0
	}
	assert.True(t, warned, "links to an unmounted resource are reported")

	out = run(t, DefaultOptions(), `
steps:
  - {op: unmount_resource, resource: back}
  - {op: mount_resource, resource: back}
  - {op: mount_resource, resource: cache, type: volume, box: {x: 800, y: 300, w: 100, h: 20}}
  - {op: connect, owner: web, resource: cache}
  - {op: layout, resource: front, box: {x: 0, y: 500, w: 300, h: 20}}
`)
	require.True(t, out.Success, "%v", out.Errors)
	assert.Equal(t, map[string][]string{"web": {"back", "front"}, "db": {"back"}}, out.Links["network"])
	assert.Equal(t, map[string][]string{"db": {"pgdata"}, "web": {"cache"}}, out.Links["volume"])
}

func TestRun_ReadOnlyRejectsGestures(t *testing.T) {
	out := run(t, DefaultOptions(), `
steps:
  - {op: read_only, enabled: true}
  - {op: delete_click, owner: web, resource: front}
  - {op: connect, owner: db, resource: front}
`)
	assert.False(t, out.Success)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0].Message, "endpoint is disabled")
	assert.Equal(t, map[string][]string{"web": {"back", "front"}, "db": {"back"}}, out.Links["network"])
	assert.Nil(t, out.TerraformFiles)
}

func runReplayer(t *testing.T, opts Options, steps string) (*Replayer, *result.RunResult) {
	t.Helper()
	s, err := Parse([]byte(canvas + steps))
	require.NoError(t, err)
	opts.Logger = logger.Discard()
	opts.EmitHCL = false
	r := New(opts, nil)
	out, err := r.Run(s)
	require.NoError(t, err)
	require.True(t, out.Success, "%v", out.Errors)
	return r, out
}

func anchorCount(r *Replayer, owner, resourceType string) int {
	return len(r.Reconciler().Endpoints().Endpoints(owner, resourceType))
}

func TestRun_LinkedCapacity(t *testing.T) {
	r, _ := runReplayer(t, DefaultOptions(), "steps: []\n")
	assert.Equal(t, 2, anchorCount(r, "web", "network"))
	assert.Equal(t, 1, anchorCount(r, "db", "network"))
	assert.Zero(t, anchorCount(r, "web", "volume"))

	r, out := runReplayer(t, DefaultOptions(), `
steps:
  - {op: move, owner: web, resource: front, to_owner: db}
  - {op: connect, owner: web, resource: pgdata}
  - {op: disconnect, owner: web, resource: back}
`)
	assert.Equal(t, map[string][]string{"db": {"back", "front"}}, out.Links["network"])
	assert.Zero(t, anchorCount(r, "web", "network"), "anchors follow the linked count")
	assert.Equal(t, 2, anchorCount(r, "db", "network"))
	assert.Equal(t, 1, anchorCount(r, "web", "volume"))
}

func TestRun_LinkedCapacityReleasesRejectedSpare(t *testing.T) {
	s, err := Parse([]byte(canvas + `
steps:
  - {op: read_only, enabled: true}
  - {op: connect, owner: db, resource: front}
`))
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Logger = logger.Discard()
	r := New(opts, nil)
	out, err := r.Run(s)
	require.NoError(t, err)

	assert.False(t, out.Success)
	assert.Equal(t, 1, anchorCount(r, "db", "network"), "the spare anchor is taken back")
}

func TestRun_AvailableCapacity(t *testing.T) {
	opts := DefaultOptions()
	opts.Capacity = CapacityAvailable
	r, out := runReplayer(t, opts, `
steps:
  - {op: connect, owner: db, resource: front}
`)
	assert.Equal(t, map[string][]string{"web": {"back", "front"}, "db": {"back", "front"}}, out.Links["network"])
	assert.Equal(t, 2, anchorCount(r, "db", "network"))
	assert.Equal(t, 1, anchorCount(r, "web", "volume"))
}

func TestRun_StepErrors(t *testing.T) {
	tests := []struct {
		name string
		step string
		want string
	}{
		{"unknown op", "{op: fly}", "unknown op"},
		{"not drawn", "{op: disconnect, owner: db, resource: front}", "link is not drawn"},
		{"unknown resource", "{op: connect, owner: db, resource: nope}", "unknown owner or resource"},
		{"set links without type", "{op: set_links}", "missing argument"},
		{"layout without box", "{op: layout, owner: web}", "missing argument"},
		{"unmount twice", "{op: unmount_resource, resource: nope}", "resource is not mounted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, DefaultOptions(), "steps:\n  - "+tt.step+"\n")
			assert.False(t, out.Success)
			require.NotEmpty(t, out.Errors)
			assert.Equal(t, "step_error", out.Errors[0].Type)
			assert.Contains(t, out.Errors[0].Message, tt.want)
		})
	}
}

func TestRun_InvalidCanvas(t *testing.T) {
	s, err := Parse([]byte(`
canvas:
  metadata: {version: "1.0"}
  owners: [{id: web, image: nginx}]
  resources: [{id: s1, type: secret}]
`))
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Logger = logger.Discard()
	out, err := New(opts, nil).Run(s)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Errors[0].Message, "unsupported resource type: secret")
	assert.Nil(t, New(opts, nil).Reconciler())
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(`{"canvas": {"metadata": {"version": "1.0"}}, "steps": [{"op": "tick", "count": 2}]}`))
	require.NoError(t, err)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, OpTick, s.Steps[0].Op)
	assert.Equal(t, 2, s.Steps[0].Count)

	_, err = Parse([]byte("steps:\n  - {owner: web}\n"))
	assert.ErrorContains(t, err, "step 0 has no op")
	_, err = Parse([]byte("steps: ["))
	assert.Error(t, err)
	_, err = LoadFile("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Replay.Capacity = "available"
	cfg.Canvas.AnchorGap = 8
	cfg.Volume.Placeholder = "/mnt"

	opts := FromConfig(cfg)
	assert.Equal(t, CapacityAvailable, opts.Capacity)
	assert.Equal(t, 8.0, opts.Endpoints.Layout.Gap)
	assert.Equal(t, "/mnt", opts.Placeholder)
	assert.Equal(t, 30, opts.Endpoints.AnchorSegments)
}
