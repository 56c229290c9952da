// Package output serializes harvested reviews for export.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/waxwing/internal/review"
)

// Format represents export format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatJSONL, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Write serializes reviews to w in the given format.
func Write(w io.Writer, format Format, reviews []review.Review) error {
	bw := bufio.NewWriter(w)

	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(reviews, "", "  ")
		if err != nil {
			return err
		}
		if _, err := bw.Write(out); err != nil {
			return err
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}

	case FormatJSONL:
		enc := json.NewEncoder(bw)
		for _, rec := range reviews {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}

	case FormatYAML:
		enc := yaml.NewEncoder(bw)
		enc.SetIndent(2)
		if err := enc.Encode(reviews); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}

	return bw.Flush()
}
