// Package registry implements the NFD name-registry segment source.
// It speaks the public v2/search API and maps its records onto audit
// segments.
package registry

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/nfdtools/dropaudit/internal/transport"
	"github.com/nfdtools/dropaudit/pkg/audit"
	"github.com/nfdtools/dropaudit/pkg/errors"
)

// DefaultBaseURL is the public NFD API.
const DefaultBaseURL = "https://api.nf.domains/nfd"

const service = "registry"

// Client fetches segment pages from the registry search endpoint.
// It implements audit.SegmentSource.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// NewClient creates a registry client. An empty baseURL selects the public
// API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		transport: transport.New(""),
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// searchResponse is the v2/search payload. Fields the audit does not use
// are omitted.
type searchResponse struct {
	NFDs  []nfdRecord `json:"nfds"`
	Total int         `json:"total"`
}

type nfdRecord struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
	AppID int64  `json:"appID"`
}

// Page fetches one page of segments under parentAppID, newest first, and
// returns the server-reported total.
func (c *Client) Page(ctx context.Context, parentAppID string, limit, offset int) ([]audit.Segment, int, error) {
	query := url.Values{}
	query.Set("parentAppID", parentAppID)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	query.Set("sort", "createdDesc")
	query.Set("view", "brief")

	endpoint := c.baseURL + "/v2/search?" + query.Encode()
	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, 0, errors.WrapAPI(service, 0, err)
	}

	var payload searchResponse
	if err := transport.DecodeResponse(service, resp, &payload); err != nil {
		return nil, 0, err
	}

	segments := make([]audit.Segment, 0, len(payload.NFDs))
	for _, record := range payload.NFDs {
		segments = append(segments, audit.Segment{
			Name:  record.Name,
			Owner: record.Owner,
			AppID: record.AppID,
		})
	}
	return segments, payload.Total, nil
}
