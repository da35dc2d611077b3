package router

import (
	"fmt"

	"github.com/vaseyai/reprompter/internal/types"
)

// ConfigError means no credential path exists for the resolved provider.
// Its message names the credential class, never a value, and is safe to
// return to clients.
type ConfigError struct {
	Provider types.Provider
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("Server configuration error: missing %s credentials. Set provider API key or enable AI Gateway.", e.Provider)
}

// UpstreamError reports that every attempted path failed. The last attempt
// is authoritative and is what Unwrap returns.
type UpstreamError struct {
	Attempts []Attempt
}

func (e *UpstreamError) Error() string {
	if len(e.Attempts) == 0 {
		return "enhancement failed"
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("enhancement failed via %s: %v", last.Path, last.Err)
}

func (e *UpstreamError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}
