package rawi

import (
	"context"
	"fmt"

	"github.com/gate-platform/rawi/internal/domain/document"
	"github.com/gate-platform/rawi/internal/domain/search/mode"
	"github.com/gate-platform/rawi/internal/domain/search/request"
	"github.com/gate-platform/rawi/internal/domain/search/result"
)

// SearchOptions tunes a single search call. A nil options value means
// enhanced mode with the default result size.
type SearchOptions struct {
	// Mode selects the retrieval strategy. Empty means ModeEnhanced.
	Mode SearchMode
	// Size caps the number of results. Zero means the server default.
	Size int
}

// Search runs a query against the corpus and returns the matched segments.
// The response reports the mode that actually served the query; semantic
// requests downgrade to enhanced when no embedder is available.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) (SearchResponse, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	req, err := request.New(query, mode.Mode(opts.Mode), opts.Size)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	resp, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	return fromSearchResponse(resp), nil
}

func fromSearchResponse(resp result.Response) SearchResponse {
	out := SearchResponse{
		Results:  make([]SearchResult, 0, len(resp.Results)),
		ModeUsed: SearchMode(resp.ModeUsed),
		Total:    resp.Total,
	}
	for i := range resp.Results {
		r := &resp.Results[i]
		sr := SearchResult{
			ID:        r.ID(),
			Score:     r.Score(),
			Text:      r.Text(),
			Start:     r.Start(),
			End:       r.End(),
			VideoLink: r.VideoLink(),
		}
		if r.VideoLink() != "" {
			sr.TimedLink = document.TimedLink(r.VideoLink(), int(r.Start()))
		}
		out.Results = append(out.Results, sr)
	}
	return out
}
