package playback

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// recording stands in for a small media file; each byte is its own offset
// so a served slice shows exactly where a seek landed.
var recording = []byte("0123456789abcdef")

func serveRange(t *testing.T, header string) (string, []byte, error) {
	t.Helper()
	size := int64(len(recording))
	r, err := ParseRange(header, size)
	if err != nil || r == nil {
		return "", nil, err
	}

	body, err := io.ReadAll(io.NewSectionReader(bytes.NewReader(recording), r.Start, r.ContentLength()))
	if err != nil {
		t.Fatalf("read section: %v", err)
	}
	return r.ContentRange(size), body, nil
}

func TestParseRange_SeeksIntoRecording(t *testing.T) {
	tests := []struct {
		header       string
		contentRange string
		body         string
	}{
		{"bytes=0-3", "bytes 0-3/16", "0123"},
		{"bytes=8-", "bytes 8-15/16", "89abcdef"},
		{"bytes=-4", "bytes 12-15/16", "cdef"},
		{"bytes=15-15", "bytes 15-15/16", "f"},
		{"bytes=10-99", "bytes 10-15/16", "abcdef"},
		{"bytes=-64", "bytes 0-15/16", "0123456789abcdef"},
		{"bytes=4-5,9-10", "bytes 4-5/16", "45"},
		{" bytes=6-7 ", "bytes 6-7/16", "67"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			contentRange, body, err := serveRange(t, tt.header)
			if err != nil {
				t.Fatalf("ParseRange(%q) error: %v", tt.header, err)
			}
			if contentRange != tt.contentRange {
				t.Errorf("Content-Range = %q, want %q", contentRange, tt.contentRange)
			}
			if string(body) != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestParseRange_NoHeaderServesWholeFile(t *testing.T) {
	r, err := ParseRange("   ", int64(len(recording)))
	if err != nil || r != nil {
		t.Fatalf("ParseRange(blank) = %v, %v; want nil, nil", r, err)
	}
}

func TestParseRange_Rejects(t *testing.T) {
	unsatisfiable := []string{"bytes=16-", "bytes=20-30", "bytes=9-2"}
	for _, header := range unsatisfiable {
		if _, err := ParseRange(header, int64(len(recording))); !errors.Is(err, ErrUnsatisfiable) {
			t.Errorf("ParseRange(%q) error = %v, want ErrUnsatisfiable", header, err)
		}
	}
	if _, err := ParseRange("bytes=-1", 0); !errors.Is(err, ErrUnsatisfiable) {
		t.Errorf("suffix of empty recording: error = %v, want ErrUnsatisfiable", err)
	}

	malformed := []string{"0-3", "frames=0-3", "bytes=x-3", "bytes=0-y", "bytes=-0", "bytes=7", "bytes=-3-"}
	for _, header := range malformed {
		if _, err := ParseRange(header, int64(len(recording))); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("ParseRange(%q) error = %v, want ErrInvalidRange", header, err)
		}
	}
}
