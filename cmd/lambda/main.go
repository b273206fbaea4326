package main

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"

	_ "github.com/json-to-terraform/connector/internal/handler" // register handlers
	"github.com/json-to-terraform/connector/internal/replay"
	"github.com/json-to-terraform/connector/internal/result"
)

// LambdaEvent carries a replay script and its run options.
type LambdaEvent struct {
	Body     string `json:"body"` // replay script, YAML or JSON (base64 if isBase64)
	IsBase64 bool   `json:"isBase64,omitempty"`
	EmitHCL  *bool  `json:"emitHcl,omitempty"`
	Capacity string `json:"capacity,omitempty"`
	ReadOnly bool   `json:"readOnly,omitempty"`
}

// LambdaResponse is the outcome of one replay, serialized into the response body.
type LambdaResponse struct {
	StatusCode    int                            `json:"statusCode"`
	Success       bool                           `json:"success"`
	Links         map[string]map[string][]string `json:"links,omitempty"`
	Notifications []result.Notification          `json:"notifications,omitempty"`
	Errors        []result.Error                 `json:"errors,omitempty"`
	Warnings      []result.Warning               `json:"warnings,omitempty"`
	Files         map[string]string              `json:"files,omitempty"` // filename -> content (base64)
}

// APIGatewayResponse is a proxy integration response whose body is the JSON LambdaResponse.
type APIGatewayResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

func handler(ctx context.Context, event LambdaEvent) (APIGatewayResponse, error) {
	out := LambdaResponse{StatusCode: 200}

	body := event.Body
	if event.IsBase64 {
		dec, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return fail(400, "invalid_input", "invalid base64 body: "+err.Error()), nil
		}
		body = string(dec)
	}

	script, err := replay.Parse([]byte(body))
	if err != nil {
		return fail(400, "invalid_script", err.Error()), nil
	}

	opts := replay.DefaultOptions()
	if event.EmitHCL != nil {
		opts.EmitHCL = *event.EmitHCL
	}
	switch c := replay.Capacity(event.Capacity); c {
	case "":
	case replay.CapacityAvailable, replay.CapacityLinked:
		opts.Capacity = c
	default:
		return fail(400, "invalid_input", "unknown capacity: "+event.Capacity), nil
	}
	opts.ReadOnly = event.ReadOnly

	res, err := replay.New(opts, nil).Run(script)
	if err != nil {
		return fail(500, "replay_error", err.Error()), nil
	}

	out.Success = res.Success
	out.Links = res.Links
	out.Notifications = res.Notifications
	out.Errors = res.Errors
	out.Warnings = res.Warnings
	if res.Success && len(res.TerraformFiles) > 0 {
		out.Files = make(map[string]string)
		for name, content := range res.TerraformFiles {
			out.Files[name] = base64.StdEncoding.EncodeToString(content)
		}
	}
	if !res.Success {
		out.StatusCode = 422
	}
	return wrap(out), nil
}

func fail(status int, errType, msg string) APIGatewayResponse {
	return wrap(LambdaResponse{
		StatusCode: status,
		Errors:     []result.Error{{Type: errType, Severity: "error", Message: msg}},
	})
}

func wrap(out LambdaResponse) APIGatewayResponse {
	bodyBytes, _ := json.Marshal(out)
	return APIGatewayResponse{
		StatusCode: out.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(bodyBytes),
	}
}

func main() {
	lambda.Start(handler)
}
