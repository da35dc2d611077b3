package injection

import (
	"context"
	"fmt"

	"github.com/vaseyai/reprompter/internal/config"
	"github.com/vaseyai/reprompter/internal/filter"
)

// Detection records a matched injection pattern.
type Detection struct {
	RuleName string
	Severity float64
	Category string
	Start    int
	End      int
}

// Scanner scans prompts for attempts to override the enhancer's instructions.
type Scanner struct {
	rules []Rule
	cfg   config.InjectionFilterConfig
}

// NewScanner creates a prompt injection scanner.
func NewScanner(cfg config.InjectionFilterConfig) *Scanner {
	return &Scanner{rules: DefaultRules(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "injection" }
func (s *Scanner) Enabled() bool { return s.cfg.Enabled }

// Scan checks a single text string and returns all detections and the max
// severity score.
func (s *Scanner) Scan(text string) ([]Detection, float64) {
	var detections []Detection
	maxScore := 0.0
	for _, r := range s.rules {
		locs := r.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			detections = append(detections, Detection{
				RuleName: r.Name,
				Severity: r.Severity,
				Category: r.Category,
				Start:    loc[0],
				End:      loc[1],
			})
			if r.Severity > maxScore {
				maxScore = r.Severity
			}
		}
	}
	return detections, maxScore
}

// ScanRequest implements filter.Filter.
func (s *Scanner) ScanRequest(_ context.Context, in *filter.Input) filter.Result {
	detections, score := s.Scan(in.Prompt)

	if score >= s.cfg.BlockThreshold {
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: s.Name(),
			Message:    fmt.Sprintf("Request blocked: prompt injection detected (score %.2f)", score),
			Detections: len(detections),
			Score:      score,
		}
	}
	if score >= s.cfg.FlagThreshold {
		return filter.Result{
			Action:     filter.ActionFlag,
			FilterName: s.Name(),
			Detections: len(detections),
			Score:      score,
		}
	}
	return filter.Result{Action: filter.ActionPass, FilterName: s.Name(), Score: score}
}
