package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/waxwing/internal/review"
)

func sampleReviews() []review.Review {
	return []review.Review{
		{
			Artist:       "Artist A",
			Album:        "Album B",
			YearReleased: 2020,
			Rating:       7.5,
			SmallText:    review.NotAvailable,
			Review:       "Body text.",
			Reviewer:     "Jane Doe",
			Genre:        "Electronic",
			Label:        review.NotAvailable,
			Reviewed:     review.NotAvailable,
			AlbumArtURL:  review.NotAvailable,
		},
		{
			Artist:       "Artist C",
			Album:        "Album D",
			YearReleased: 1999,
			Rating:       9.1,
			SmallText:    "A dek line",
			Review:       "More body text.",
			Reviewer:     review.NotAvailable,
			Genre:        "Rock",
			Label:        "Indie",
			Reviewed:     review.NotAvailable,
			AlbumArtURL:  "https://img/two.jpg 300w",
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"jsonl", FormatJSONL, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
		{"JSON", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWrite_JSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sampleReviews()); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	var decoded []review.Review
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(decoded))
	}
	if decoded[0] != sampleReviews()[0] {
		t.Errorf("decoded review mismatch:\ngot  %+v\nwant %+v", decoded[0], sampleReviews()[0])
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("JSON output should end with a newline")
	}
}

func TestWrite_JSONL_OneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSONL, sampleReviews()); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for i, line := range lines {
		var rec review.Review
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestWrite_YAML_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, sampleReviews()); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	var decoded []review.Review
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Label != "Indie" {
		t.Errorf("decoded YAML mismatch: %+v", decoded)
	}
}

func TestWrite_EmptySlice(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatJSONL, FormatYAML} {
		var buf bytes.Buffer
		if err := Write(&buf, format, nil); err != nil {
			t.Errorf("Write(%s, nil): %v", format, err)
		}
	}
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Format("csv"), sampleReviews()); err == nil {
		t.Error("expected error for unsupported format")
	}
}
