package adapter

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestParsePostedDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 22, 30, 0, 0, time.UTC)
	day := func(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		in   string
		want time.Time
	}{
		{"", day(3, 15)},
		{"Just posted", day(3, 15)},
		{"Today", day(3, 15)},
		{"5h ago", day(3, 15)},
		{"45m ago", day(3, 15)},
		{"3d ago", day(3, 12)},
		{"Posted 5 days ago", day(3, 10)},
		{"30+ days ago", day(2, 13)},
		{"2 weeks ago", day(3, 1)},
		{"1mo ago", day(2, 13)},
		{"Yesterday", day(3, 14)},
		{"2026-01-05", day(1, 5)},
		{"2026-01-05T23:10:00Z", day(1, 5)},
		{"sometime", day(3, 15)},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := parsePostedDate(tc.in, now); !got.Equal(tc.want) {
				t.Errorf("parsePostedDate(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo world", 5); got != "héllo" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}

func TestExtractText(t *testing.T) {
	in := "&lt;p&gt;Hello&lt;/p&gt;<ul><li>one</li><li>two</li></ul>"
	if got := extractText(in); got != "Hello one two" {
		t.Errorf("extractText = %q", got)
	}
}

func TestResolveURL(t *testing.T) {
	if got := resolveURL("https://www.seek.com.au", "/job/1?ref=x"); got != "https://www.seek.com.au/job/1?ref=x" {
		t.Errorf("resolveURL = %q", got)
	}
	if got := resolveURL("https://a.example", "https://b.example/x"); got != "https://b.example/x" {
		t.Errorf("resolveURL = %q", got)
	}
	if got := resolveURL("https://a.example", ""); got != "" {
		t.Errorf("resolveURL = %q", got)
	}
}

func TestReadBody_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("<p>compressed</p>"))
	zw.Close()

	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"gzip"}},
		Body:   io.NopCloser(&buf),
	}
	r, err := readBody(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()
	got, _ := io.ReadAll(r)
	if string(got) != "<p>compressed</p>" {
		t.Errorf("body = %q", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("120"); got != 120*time.Second {
		t.Errorf("parseRetryAfter = %v", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Errorf("parseRetryAfter = %v", got)
	}
}
