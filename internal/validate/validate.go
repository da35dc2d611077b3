// Package validate checks raw enhancement requests before any upstream work.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vaseyai/reprompter/internal/catalog"
	"github.com/vaseyai/reprompter/internal/media"
	"github.com/vaseyai/reprompter/internal/types"
)

// Limits are the size caps applied by Request.
type Limits struct {
	MaxPromptLength int
	MaxImageBytes   int64
}

// ValidationError carries a message that is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func reject(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Request validates a decoded JSON body and returns the normalized request.
// Checks run in a fixed order and the first failure is returned; the image
// is decoded here so later layers never see the raw data reference.
func Request(raw map[string]any, reg catalog.Registry, limits Limits) (*types.EnhanceRequest, error) {
	prompt, ok := raw["prompt"].(string)
	if !ok || strings.TrimSpace(prompt) == "" {
		return nil, reject("missing or invalid prompt")
	}
	if utf8.RuneCountInString(prompt) > limits.MaxPromptLength {
		return nil, reject("prompt exceeds maximum length of %d characters", limits.MaxPromptLength)
	}

	modeStr, _ := raw["mode"].(string)
	mode, ok := types.ParseMode(modeStr)
	if !ok {
		return nil, reject("invalid mode; must be one of: %s", joinModes(types.Modes()))
	}

	target, _ := raw["targetModel"].(string)
	if _, ok := reg.Model(target); !ok {
		return nil, reject("invalid target model; must be one of: %s", strings.Join(reg.ModelIDs(), ", "))
	}

	img, err := image(raw["image"], limits.MaxImageBytes)
	if err != nil {
		return nil, err
	}

	return &types.EnhanceRequest{
		Prompt:      prompt,
		Image:       img,
		Mode:        mode,
		TargetModel: target,
	}, nil
}

func image(v any, maxBytes int64) (*types.Image, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, reject("image must be a data reference with an image prefix")
	}
	_, payload, err := media.ParseDataURL(s)
	if err != nil {
		return nil, reject("image must be a data reference with an image prefix")
	}
	if media.EstimateDecodedSize(payload) > maxBytes {
		return nil, reject("image exceeds maximum size of %s", formatMB(maxBytes))
	}
	img, err := media.Decode(s)
	if err != nil {
		if errors.Is(err, media.ErrInvalidBase64) {
			return nil, reject("image data is not valid base64")
		}
		return nil, reject("image must be a data reference with an image prefix")
	}
	return img, nil
}

func joinModes(modes []types.Mode) string {
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}

func formatMB(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/mb)
}
