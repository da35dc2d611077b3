package gateway

import (
	"errors"

	"github.com/vaseyai/reprompter/internal/router"
	"github.com/vaseyai/reprompter/internal/router/adapters"
)

// safeErrors may be shown to clients verbatim. Everything else from an
// upstream is replaced by the generic failure message.
var safeErrors = []error{
	adapters.ErrMissingCredential,
}

// clientMessage maps a routing failure to the text returned to the client.
func clientMessage(err error) string {
	var cfgErr *router.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Error()
	}
	for _, safe := range safeErrors {
		if errors.Is(err, safe) {
			return safe.Error()
		}
	}
	return msgEnhancementError
}
