package youtube

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// upstreamStatus extracts the HTTP status and raw body of a failed SDK call.
// Transport errors carry no status and map to 502.
func upstreamStatus(err error) (int, string) {
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		body := apiErr.Body
		if body == "" {
			body = apiErr.Message
		}
		return apiErr.Code, body
	}
	return http.StatusBadGateway, err.Error()
}

// rawBody re-encodes a decoded SDK response for diagnostics.
func rawBody(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
