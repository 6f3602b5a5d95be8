package relay

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// HandleLambda serves an API Gateway HTTP API (payload v2) event with the same
// routing and responses as Routes. Relay failures are returned as responses, never
// as Go errors, so the function invocation itself always succeeds.
func (r *Relay) HandleLambda(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}
	method := strings.ToUpper(req.RequestContext.HTTP.Method)

	if path != ServiceRequestPath || method != http.MethodPost {
		r.logger.Warn().Str("path", path).Str("method", method).Msg("invalid endpoint or method")
		return textResponse(http.StatusNotFound, msgNotFound), nil
	}

	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			r.logger.Info().Err(err).Msg("malformed base64 request body")
		}
		body = string(decoded)
	}

	parsed, err := decodeServiceRequest(strings.NewReader(body))
	if err != nil {
		r.logger.Info().Err(err).Msg("malformed service request body")
	}

	_, err = r.Submit(ctx, parsed.MachineID)
	return textResponse(StatusFor(err)), nil
}

func textResponse(status int, body string) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       body,
	}
}
