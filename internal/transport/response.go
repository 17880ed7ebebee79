package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/nfdtools/dropaudit/pkg/errors"
	"github.com/nfdtools/dropaudit/pkg/logging"
)

// DecodeResponse reads and decodes a JSON response into target. A non-2xx
// status becomes an APIError carrying the body as its message; a decode
// failure becomes a ParseError.
func DecodeResponse(service string, resp *http.Response, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &errors.APIError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", service+" response", err)
	}

	return nil
}
