package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const script = `{
  "canvas": {
    "metadata": {"version": "1.0", "name": "shop"},
    "owners": [{"id": "db", "image": "postgres:16", "box": {"x": 0, "y": 0, "w": 200, "h": 10}}],
    "resources": [{"id": "pgdata", "type": "volume", "box": {"x": 0, "y": 200, "w": 300, "h": 20}}],
    "links": [{"owner": "db", "resource": "pgdata", "mount_path": "/var/lib/postgresql/data"}]
  },
  "steps": []
}`

func decode(t *testing.T, resp APIGatewayResponse) LambdaResponse {
	t.Helper()
	var out LambdaResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	assert.Equal(t, resp.StatusCode, out.StatusCode)
	return out
}

func TestHandler_Success(t *testing.T) {
	resp, err := handler(context.Background(), LambdaEvent{
		Body:     base64.StdEncoding.EncodeToString([]byte(script)),
		IsBase64: true,
	})
	require.NoError(t, err)
	out := decode(t, resp)

	assert.Equal(t, 200, out.StatusCode)
	assert.True(t, out.Success)
	assert.Equal(t, []string{"pgdata"}, out.Links["volume"]["db"])
	require.Contains(t, out.Files, "main.tf")
	main, err := base64.StdEncoding.DecodeString(out.Files["main.tf"])
	require.NoError(t, err)
	assert.Contains(t, string(main), "/var/lib/postgresql/data")
}

func TestHandler_NoHCL(t *testing.T) {
	off := false
	resp, err := handler(context.Background(), LambdaEvent{Body: script, EmitHCL: &off})
	require.NoError(t, err)
	out := decode(t, resp)
	assert.True(t, out.Success)
	assert.Empty(t, out.Files)
}

func TestHandler_BadInput(t *testing.T) {
	resp, err := handler(context.Background(), LambdaEvent{Body: "%%%", IsBase64: true})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	resp, err = handler(context.Background(), LambdaEvent{Body: script, Capacity: "all"})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandler_InvalidCanvas(t *testing.T) {
	bad := `{"canvas": {"metadata": {"version": "1.0"}, "links": [{"owner": "x", "resource": "y"}]}}`
	resp, err := handler(context.Background(), LambdaEvent{Body: bad})
	require.NoError(t, err)
	out := decode(t, resp)
	assert.Equal(t, 422, out.StatusCode)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Errors)
}
