package overlay

import (
	"context"
	"fmt"

	"github.com/pscheid92/wincounter/internal/apiclient"
	"github.com/pscheid92/wincounter/internal/jsonmerge"
	"github.com/pscheid92/wincounter/internal/platform/correlation"
)

// HTTPFetcher reads records from GET <base>/api/data/<id>. Non-2xx responses
// are errors.
type HTTPFetcher struct {
	client *apiclient.Client
	// correlationID tags every poll so the server logs can be matched to one viewer.
	correlationID string
}

func NewHTTPFetcher(client *apiclient.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client, correlationID: correlation.NewID()}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, sessionID string) (jsonmerge.Value, error) {
	if _, ok := correlation.ID(ctx); !ok {
		ctx = correlation.WithID(ctx, f.correlationID)
	}

	state, err := f.client.GetSession(ctx, sessionID)
	if err != nil {
		return jsonmerge.Value{}, fmt.Errorf("failed to fetch session %s: %w", sessionID, err)
	}
	return state, nil
}
