package document

import "testing"

func TestWithEmbedding(t *testing.T) {
	s := New("seg-1", "صلاة الفجر", 10, 25, "https://youtu.be/abc")
	if s.Vector() != nil || s.Normalized() != "" {
		t.Fatal("new segment must have no embedding")
	}

	emb := s.WithEmbedding("صلاه الفجر", []float32{0.1, 0.2}, "gate-arabert-v1-doc")
	if emb.Normalized() != "صلاه الفجر" {
		t.Errorf("Normalized = %q", emb.Normalized())
	}
	if len(emb.Vector()) != 2 {
		t.Errorf("Vector len = %d", len(emb.Vector()))
	}
	if emb.Model() != "gate-arabert-v1-doc" {
		t.Errorf("Model = %q", emb.Model())
	}
	// value semantics: the original is untouched
	if s.Vector() != nil {
		t.Error("WithEmbedding mutated the receiver")
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{9.7, "00:09"},
		{65, "01:05"},
		{3599, "59:59"},
		{3725, "02:05"}, // minutes wrap at the hour
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimedLink(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{
			"https://www.youtube.com/watch?v=abc123&list=PL1",
			"https://www.youtube.com/watch?v=abc123&t=90s",
		},
		{
			"https://youtu.be/xyz789?si=44",
			"https://www.youtube.com/watch?v=xyz789&t=90s",
		},
		{
			"plainid",
			"https://www.youtube.com/watch?v=plainid&t=90s",
		},
	}
	for _, tt := range tests {
		if got := TimedLink(tt.link, 90); got != tt.want {
			t.Errorf("TimedLink(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}
