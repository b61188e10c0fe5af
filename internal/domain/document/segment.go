// Package document models transcribed lecture segments, the unit the corpus
// stores and search returns.
package document

import (
	"fmt"
	"strings"
)

// Segment is one transcribed lecture segment. The embedding fields are only
// set after the indexing pipeline has processed the segment; Normalized and
// Vector are always written together so the stored vector is guaranteed to be
// computed from the stored normalized text.
type Segment struct {
	id         string
	text       string
	normalized string
	vector     []float32
	model      string
	start      float64
	end        float64
	videoLink  string
}

// New creates a segment as read from the source corpus, without embedding.
func New(id, text string, start, end float64, videoLink string) Segment {
	return Segment{id: id, text: text, start: start, end: end, videoLink: videoLink}
}

// Reconstruct rebuilds a fully-populated segment from storage.
func Reconstruct(
	id, text, normalized string, vector []float32, model string,
	start, end float64, videoLink string,
) Segment {
	return Segment{
		id: id, text: text, normalized: normalized, vector: vector, model: model,
		start: start, end: end, videoLink: videoLink,
	}
}

// WithEmbedding returns a copy carrying normalized text, its vector, and the
// model identifier that produced it. The three travel together; storing a
// vector without the text it was computed from breaks reproducibility.
func (s Segment) WithEmbedding(normalized string, vector []float32, model string) Segment {
	s.normalized = normalized
	s.vector = vector
	s.model = model
	return s
}

// ID returns the segment identifier.
func (s *Segment) ID() string { return s.id }

// Text returns the raw transcribed text.
func (s *Segment) Text() string { return s.text }

// Normalized returns the canonical text the vector was computed from.
func (s *Segment) Normalized() string { return s.normalized }

// Vector returns the embedding vector, nil before indexing.
func (s *Segment) Vector() []float32 { return s.vector }

// Model returns the identifier of the model that produced the vector.
func (s *Segment) Model() string { return s.model }

// Start returns the segment start offset in seconds.
func (s *Segment) Start() float64 { return s.start }

// End returns the segment end offset in seconds.
func (s *Segment) End() float64 { return s.end }

// VideoLink returns the source video URL.
func (s *Segment) VideoLink() string { return s.videoLink }

// FormatTime renders a second offset as MM:SS for display.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		return "00:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60%60, total%60)
}

// TimedLink builds a YouTube URL that starts playback at the given offset.
// Handles watch?v= and youtu.be forms; anything else is treated as a bare
// video id.
func TimedLink(videoLink string, startSeconds int) string {
	id := videoID(videoLink)
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds", id, startSeconds)
}

func videoID(videoLink string) string {
	if _, after, ok := strings.Cut(videoLink, "watch?v="); ok {
		id, _, _ := strings.Cut(after, "&")
		return id
	}
	if _, after, ok := strings.Cut(videoLink, "youtu.be/"); ok {
		id, _, _ := strings.Cut(after, "?")
		return id
	}
	return videoLink
}
