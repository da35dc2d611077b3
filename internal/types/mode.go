package types

// Mode is the enhancement strategy applied to the input prompt.
type Mode string

const (
	ModeEnhance Mode = "enhance"
	ModeExpand  Mode = "expand"
	ModeClarify Mode = "clarify"
	ModeRewrite Mode = "rewrite"
)

// Modes lists every mode in presentation order.
func Modes() []Mode {
	return []Mode{ModeEnhance, ModeExpand, ModeClarify, ModeRewrite}
}

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeEnhance, ModeExpand, ModeClarify, ModeRewrite:
		return Mode(s), true
	default:
		return "", false
	}
}

// Provider identifies an upstream LLM vendor family.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// Providers lists every provider family.
func Providers() []Provider {
	return []Provider{ProviderAnthropic, ProviderOpenAI, ProviderGoogle}
}

func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle:
		return Provider(s), true
	default:
		return "", false
	}
}
