package result

import "testing"

func TestNew(t *testing.T) {
	r := New("doc-1", 0.93, "أحكام صلاة الفجر", 12.5, 44, "https://youtu.be/abc123")

	if r.ID() != "doc-1" {
		t.Errorf("ID = %q", r.ID())
	}
	if r.Score() != 0.93 {
		t.Errorf("Score = %v", r.Score())
	}
	if r.Text() != "أحكام صلاة الفجر" {
		t.Errorf("Text = %q", r.Text())
	}
	if r.Start() != 12.5 || r.End() != 44 {
		t.Errorf("Start/End = %v/%v", r.Start(), r.End())
	}
	if r.VideoLink() != "https://youtu.be/abc123" {
		t.Errorf("VideoLink = %q", r.VideoLink())
	}
}
