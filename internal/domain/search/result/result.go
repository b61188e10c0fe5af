package result

import "github.com/gate-platform/rawi/internal/domain/search/mode"

// Result is a single search hit. The score is the backend relevance score
// verbatim; scores are mode-specific and not comparable across modes.
type Result struct {
	id        string
	score     float64
	text      string
	start     float64
	end       float64
	videoLink string
}

// New creates a search result.
func New(id string, score float64, text string, start, end float64, videoLink string) Result {
	return Result{id: id, score: score, text: text, start: start, end: end, videoLink: videoLink}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Score returns the backend relevance score.
func (r *Result) Score() float64 { return r.score }

// Text returns the segment text.
func (r *Result) Text() string { return r.text }

// Start returns the segment start offset in seconds.
func (r *Result) Start() float64 { return r.start }

// End returns the segment end offset in seconds.
func (r *Result) End() float64 { return r.end }

// VideoLink returns the source video URL.
func (r *Result) VideoLink() string { return r.videoLink }

// Response is an ordered result set together with the strategy that actually
// produced it. ModeUsed differs from the requested mode when the engine
// downgraded; the downgrade is always reported, never hidden.
type Response struct {
	Results  []Result
	ModeUsed mode.Mode
	Total    int
}
