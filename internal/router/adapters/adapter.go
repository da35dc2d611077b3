package adapters

import (
	"context"
	"errors"

	"github.com/vaseyai/reprompter/internal/types"
)

// DefaultMaxTokens caps completion length for direct provider calls.
const DefaultMaxTokens = 2048

// Call is the normalized input every adapter translates into its own
// request shape.
type Call struct {
	// Model is the upstream model identifier in the adapter's own naming.
	Model  string
	System string
	User   string
	Image  *types.Image
}

// Adapter sends one completion to one upstream transport and returns the
// first text block of the reply. A reply without text yields "" and no
// error. Adapters never retry.
type Adapter interface {
	Name() string
	Complete(ctx context.Context, call Call) (string, error)
}

// ErrMissingCredential is returned when an adapter has no credential to
// authenticate with. Its message is safe to show to clients.
var ErrMissingCredential = errors.New("provider credentials are not configured")

// ErrEmptyCompletion marks an upstream reply that carried no text. Adapters
// never return it; the router does, so an empty reply can trigger fallback.
var ErrEmptyCompletion = errors.New("upstream returned no text")
