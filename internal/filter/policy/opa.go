package policy

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/rs/zerolog"

	"github.com/vaseyai/reprompter/internal/config"
	"github.com/vaseyai/reprompter/internal/filter"
)

// Query evaluated against every request. Policies live in package
// reprompter.policy and define allow (bool) and reason (string).
const Query = "[data.reprompter.policy.allow, data.reprompter.policy.reason]"

// PolicyInput is the data sent to OPA for evaluation.
type PolicyInput struct {
	Request PolicyReq  `json:"request"`
	Time    PolicyTime `json:"time"`
}

type PolicyReq struct {
	Mode         string `json:"mode"`
	TargetModel  string `json:"target_model"`
	Provider     string `json:"provider"`
	HasImage     bool   `json:"has_image"`
	PromptLength int    `json:"prompt_length"`
}

type PolicyTime struct {
	Hour int    `json:"hour"`
	Day  string `json:"day"`
}

// Evaluator implements filter.Filter using OPA.
type Evaluator struct {
	mu       sync.RWMutex
	prepared *rego.PreparedEvalQuery
	cfg      config.PolicyFilterConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEvaluator creates a policy evaluator. Call Load() to compile policies.
func NewEvaluator(cfg config.PolicyFilterConfig, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		cfg:    cfg,
		logger: logger.With().Str("component", "policy").Logger(),
		now:    time.Now,
	}
}

func (e *Evaluator) Name() string  { return "policy" }
func (e *Evaluator) Enabled() bool { return e.cfg.Enabled }

// Load compiles Rego modules from the bundle path. On failure the previously
// loaded policies stay in effect.
func (e *Evaluator) Load(ctx context.Context) error {
	modules, err := LoadRegoFiles(e.cfg.BundlePath)
	if err != nil {
		return fmt.Errorf("load rego files: %w", err)
	}
	if len(modules) == 0 {
		e.logger.Warn().Str("path", e.cfg.BundlePath).Msg("no rego files found")
		return nil
	}
	if err := e.LoadFromModules(ctx, modules); err != nil {
		return err
	}
	e.logger.Info().Int("modules", len(modules)).Msg("opa policies loaded")
	return nil
}

// LoadFromModules compiles policies from provided module sources.
func (e *Evaluator) LoadFromModules(ctx context.Context, modules map[string]string) error {
	opts := []func(*rego.Rego){rego.Query(Query)}
	for name, src := range modules {
		opts = append(opts, rego.Module(name, src))
	}

	prepared, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return fmt.Errorf("prepare rego: %w", err)
	}

	e.mu.Lock()
	e.prepared = &prepared
	e.mu.Unlock()
	return nil
}

// Watch recompiles the bundle whenever a .rego file in it changes, until
// ctx is done.
func (e *Evaluator) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(e.cfg.BundlePath); err != nil {
		watcher.Close()
		return fmt.Errorf("watch policy dir %s: %w", e.cfg.BundlePath, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".rego" {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					e.logger.Info().Str("file", event.Name).Msg("policy file changed, reloading")
					if err := e.Load(ctx); err != nil {
						e.logger.Error().Err(err).Msg("failed to reload policies")
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				e.logger.Error().Err(err).Msg("fsnotify error")
			}
		}
	}()

	return nil
}

// Evaluate runs the policy against the given input. With no policies loaded
// it denies.
func (e *Evaluator) Evaluate(ctx context.Context, input PolicyInput) (bool, string, error) {
	e.mu.RLock()
	prepared := e.prepared
	e.mu.RUnlock()

	if prepared == nil {
		return false, "no policies loaded", nil
	}

	timeout := e.cfg.EvaluationTimeout
	if timeout == 0 {
		timeout = 100 * time.Millisecond
	}

	evalCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := prepared.Eval(evalCtx, rego.EvalInput(input))
	if err != nil {
		return false, "", fmt.Errorf("policy evaluation: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, "no policy result", nil
	}

	// Result is [allow, reason]
	arr, ok := results[0].Expressions[0].Value.([]interface{})
	if !ok || len(arr) < 2 {
		return false, "unexpected policy result format", nil
	}

	allowed, _ := arr[0].(bool)
	reason, _ := arr[1].(string)

	return allowed, reason, nil
}

// ScanRequest implements filter.Filter. Evaluation errors block.
func (e *Evaluator) ScanRequest(ctx context.Context, in *filter.Input) filter.Result {
	now := e.now().UTC()
	input := PolicyInput{
		Request: PolicyReq{
			Mode:         string(in.Mode),
			TargetModel:  in.TargetModel,
			Provider:     string(in.Provider),
			HasImage:     in.HasImage,
			PromptLength: in.PromptLength(),
		},
		Time: PolicyTime{
			Hour: now.Hour(),
			Day:  now.Weekday().String(),
		},
	}

	allowed, reason, err := e.Evaluate(ctx, input)
	if err != nil {
		e.logger.Error().Err(err).Msg("policy evaluation failed")
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: e.Name(),
			Message:    "Request denied by policy: evaluation failed",
		}
	}

	if !allowed {
		msg := "Request denied by policy"
		if reason != "" {
			msg += ": " + reason
		}
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: e.Name(),
			Message:    msg,
		}
	}

	return filter.Result{Action: filter.ActionPass, FilterName: e.Name()}
}
