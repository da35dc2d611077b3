package filter

import (
	"context"
	"unicode/utf8"

	"github.com/vaseyai/reprompter/internal/types"
)

// Action represents the filter decision.
type Action string

const (
	ActionPass  Action = "pass"
	ActionFlag  Action = "flag"
	ActionBlock Action = "block"
)

// Result is returned by each filter.
type Result struct {
	Action     Action
	FilterName string
	Message    string
	Detections int
	Score      float64
}

// Input is what the filters inspect: a validated request and the provider
// its target model resolves to.
type Input struct {
	Prompt      string
	Mode        types.Mode
	TargetModel string
	Provider    types.Provider
	HasImage    bool
}

// NewInput builds the filter view of a validated request.
func NewInput(req *types.EnhanceRequest, provider types.Provider) *Input {
	return &Input{
		Prompt:      req.Prompt,
		Mode:        req.Mode,
		TargetModel: req.TargetModel,
		Provider:    provider,
		HasImage:    req.Image != nil,
	}
}

// PromptLength counts characters, matching the validator's limit.
func (in *Input) PromptLength() int {
	return utf8.RuneCountInString(in.Prompt)
}

// Filter is the interface all content filters implement.
type Filter interface {
	Name() string
	Enabled() bool
	ScanRequest(ctx context.Context, in *Input) Result
}

// Chain runs filters in order, stopping on the first Block.
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from the given filters. Nil entries are
// skipped.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{}
	for _, f := range filters {
		if f != nil {
			c.filters = append(c.filters, f)
		}
	}
	return c
}

// Run executes all enabled filters in order. Returns all results and a pointer
// to the first blocking result (nil if no filter blocked).
func (c *Chain) Run(ctx context.Context, in *Input) ([]Result, *Result) {
	if c == nil {
		return nil, nil
	}
	var results []Result
	for _, f := range c.filters {
		if !f.Enabled() {
			continue
		}
		r := f.ScanRequest(ctx, in)
		results = append(results, r)
		if r.Action == ActionBlock {
			return results, &r
		}
	}
	return results, nil
}
