// Package secrets keeps prompts that carry credentials from being forwarded
// to third-party model providers.
package secrets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vaseyai/reprompter/internal/config"
	"github.com/vaseyai/reprompter/internal/filter"
)

// Detection represents a detected secret in text.
type Detection struct {
	PatternName string // e.g. "AWS Access Key"
	Start       int    // byte offset
	End         int    // byte offset
}

// Scanner scans text for secrets using pre-compiled regex patterns.
type Scanner struct {
	patterns []Pattern
	cfg      config.SecretsFilterConfig
}

// NewScanner creates a scanner with the default secret patterns.
func NewScanner(cfg config.SecretsFilterConfig) *Scanner {
	return &Scanner{patterns: DefaultPatterns(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "secrets" }
func (s *Scanner) Enabled() bool { return s.cfg.Enabled }

// Scan checks a single text string for secrets and returns all detections.
func (s *Scanner) Scan(text string) []Detection {
	var detections []Detection
	for _, p := range s.patterns {
		locs := p.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			detections = append(detections, Detection{
				PatternName: p.Name,
				Start:       loc[0],
				End:         loc[1],
			})
		}
	}
	return detections
}

// ScanRequest implements filter.Filter. The message names the kinds of
// secret found, never the matched text.
func (s *Scanner) ScanRequest(_ context.Context, in *filter.Input) filter.Result {
	detections := s.Scan(in.Prompt)
	if len(detections) == 0 {
		return filter.Result{Action: filter.ActionPass, FilterName: s.Name()}
	}

	seen := make(map[string]bool)
	var kinds []string
	for _, d := range detections {
		if !seen[d.PatternName] {
			seen[d.PatternName] = true
			kinds = append(kinds, d.PatternName)
		}
	}
	sort.Strings(kinds)

	return filter.Result{
		Action:     filter.ActionBlock,
		FilterName: s.Name(),
		Message: fmt.Sprintf("Prompt appears to contain a secret (%s). Remove it and try again.",
			strings.Join(kinds, ", ")),
		Detections: len(detections),
	}
}
