package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaseyai/reprompter/internal/catalog"
	"github.com/vaseyai/reprompter/internal/config"
	"github.com/vaseyai/reprompter/internal/filter"
	"github.com/vaseyai/reprompter/internal/httputil"
	"github.com/vaseyai/reprompter/internal/prompt"
	"github.com/vaseyai/reprompter/internal/router"
	"github.com/vaseyai/reprompter/internal/telemetry"
	"github.com/vaseyai/reprompter/internal/types"
	"github.com/vaseyai/reprompter/internal/validate"
)

const (
	msgInvalidJSON      = "invalid JSON body"
	msgBodyTooLarge     = "request body too large"
	msgEnhancementError = "Enhancement failed. Please try again."
)

// Options holds the dependencies of the HTTP handlers.
type Options struct {
	Router       *router.Router
	Catalog      catalog.Registry
	Limits       validate.Limits
	MaxBodyBytes int64
	FilterChain  *filter.Chain
	Metrics      *telemetry.Metrics
	Version      string
}

// Handler holds dependencies for the HTTP handlers.
type Handler struct {
	router      *router.Router
	catalog     catalog.Registry
	limits      validate.Limits
	maxBody     int64
	filterChain *filter.Chain
	metrics     *telemetry.Metrics
	version     string
}

func NewHandler(opts Options) *Handler {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	defaults := config.DefaultConfig().Limits
	if opts.Limits.MaxPromptLength <= 0 {
		opts.Limits.MaxPromptLength = defaults.MaxPromptLength
	}
	if opts.Limits.MaxImageBytes <= 0 {
		opts.Limits.MaxImageBytes = defaults.MaxImageBytes
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaults.MaxBodyBytes
	}
	return &Handler{
		router:      opts.Router,
		catalog:     opts.Catalog,
		limits:      opts.Limits,
		maxBody:     opts.MaxBodyBytes,
		filterChain: opts.FilterChain,
		metrics:     opts.Metrics,
		version:     opts.Version,
	}
}

// Enhance handles POST /api/enhance. Method and body shape are checked
// before anything touches credentials.
func (h *Handler) Enhance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteMethodNotAllowed(w, http.MethodPost)
		return
	}

	logger := zerolog.Ctx(r.Context())
	receivedAt := time.Now()

	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		httputil.WriteBadRequestError(w, msgInvalidJSON)
		return
	}
	defer r.Body.Close()

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		httputil.WriteBadRequestError(w, msgInvalidJSON)
		return
	}

	req, err := validate.Request(raw, h.catalog, h.limits)
	if err != nil {
		var vErr *validate.ValidationError
		if errors.As(err, &vErr) {
			h.metrics.RecordRequest(telemetry.RequestLabels{
				Mode:   h.knownMode(raw),
				Model:  h.knownModel(raw),
				Status: strconv.Itoa(http.StatusBadRequest),
			})
			httputil.WriteBadRequestError(w, vErr.Message)
			return
		}
		logger.Error().Err(err).Msg("request validation failed unexpectedly")
		httputil.WriteInternalError(w, msgEnhancementError)
		return
	}

	model, _ := h.catalog.Model(req.TargetModel)
	mode, _ := h.catalog.Mode(req.Mode)
	labels := telemetry.RequestLabels{Mode: string(req.Mode), Model: req.TargetModel}

	if blocked := h.runFilters(r, req, model.Provider); blocked != nil {
		logger.Warn().
			Str("filter", blocked.FilterName).
			Int("detections", blocked.Detections).
			Float64("score", blocked.Score).
			Msg("request blocked by filter")
		labels.Status = strconv.Itoa(http.StatusBadRequest)
		h.metrics.RecordRequest(labels)
		httputil.WriteBadRequestError(w, blocked.Message)
		return
	}

	res, err := h.router.Enhance(r.Context(), router.Route{
		Model:  model,
		System: prompt.Build(model, mode),
		User:   req.Prompt,
		Image:  req.Image,
	})
	duration := time.Since(receivedAt)
	labels.Path = string(res.Path)
	labels.DurationMs = float64(duration.Milliseconds())

	if err != nil {
		for _, att := range res.Attempts {
			logger.Error().Err(att.Err).
				Str("path", string(att.Path)).
				Str("provider", string(model.Provider)).
				Dur("attempt_duration", att.Duration).
				Msg("upstream attempt failed")
		}
		if len(res.Attempts) == 0 {
			logger.Error().Err(err).Str("provider", string(model.Provider)).Msg("enhancement not routable")
		}
		labels.Status = strconv.Itoa(http.StatusInternalServerError)
		h.metrics.RecordRequest(labels)
		httputil.WriteInternalError(w, clientMessage(err))
		return
	}

	logger.Info().
		Str("mode", string(req.Mode)).
		Str("target_model", req.TargetModel).
		Str("provider", string(model.Provider)).
		Str("path", string(res.Path)).
		Int("attempts", len(res.Attempts)).
		Bool("has_image", req.Image != nil).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("enhancement completed")

	labels.Status = strconv.Itoa(http.StatusOK)
	h.metrics.RecordRequest(labels)
	httputil.WriteJSON(w, http.StatusOK, types.EnhanceResponse{EnhancedPrompt: res.Text})
}

// runFilters runs the content filter chain and returns the blocking result,
// if any. Flags are counted and logged but do not stop the request.
func (h *Handler) runFilters(r *http.Request, req *types.EnhanceRequest, provider types.Provider) *filter.Result {
	results, blocked := h.filterChain.Run(r.Context(), filter.NewInput(req, provider))
	for _, fr := range results {
		if fr.Action == filter.ActionFlag {
			h.metrics.RecordFilterAction(fr.FilterName, string(fr.Action))
			zerolog.Ctx(r.Context()).Info().
				Str("filter", fr.FilterName).
				Float64("score", fr.Score).
				Msg("request flagged by filter")
		}
	}
	if blocked != nil {
		h.metrics.RecordFilterAction(blocked.FilterName, string(blocked.Action))
	}
	return blocked
}

// ListModels handles GET /api/models.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	models := make([]types.ModelInfo, 0)
	for _, id := range h.catalog.ModelIDs() {
		m, _ := h.catalog.Model(id)
		models = append(models, types.ModelInfo{
			ID:       m.ID,
			Name:     m.DisplayName,
			Provider: m.Provider,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, modelListResponse{Models: models})
}

// ListModes handles GET /api/modes.
func (h *Handler) ListModes(w http.ResponseWriter, r *http.Request) {
	modes := make([]types.ModeInfo, 0)
	for _, m := range h.catalog.Modes() {
		modes = append(modes, types.ModeInfo{
			ID:          m.Mode,
			Name:        m.Name,
			Description: m.Description,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, modeListResponse{Modes: modes})
}

// Health handles GET /api/health. It reports which credential paths exist,
// never their values.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	providers := make([]string, 0)
	gateway := false
	if h.router != nil {
		gateway = h.router.GatewayEligible()
		for _, p := range h.router.Providers() {
			providers = append(providers, string(p))
		}
	}
	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   h.version,
		Gateway:   gateway,
		Providers: providers,
	})
}

type modelListResponse struct {
	Models []types.ModelInfo `json:"models"`
}

type modeListResponse struct {
	Modes []types.ModeInfo `json:"modes"`
}

type healthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Gateway   bool     `json:"gateway"`
	Providers []string `json:"providers"`
}

// knownMode and knownModel keep metric labels bounded: anything the
// catalog does not know is reported as "invalid".
func (h *Handler) knownMode(raw map[string]any) string {
	s, _ := raw["mode"].(string)
	if m, ok := types.ParseMode(s); ok {
		return string(m)
	}
	return "invalid"
}

func (h *Handler) knownModel(raw map[string]any) string {
	s, _ := raw["targetModel"].(string)
	if _, ok := h.catalog.Model(s); ok {
		return s
	}
	return "invalid"
}
