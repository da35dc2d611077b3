package injection

import "regexp"

// Rule defines a prompt injection detection pattern.
type Rule struct {
	Name     string
	Regex    *regexp.Regexp
	Severity float64 // 0.0 to 1.0
	Category string  // "instruction_bypass", "role_override", "prompt_leak", "encoding_trick", "output_steering"
}

// DefaultRules returns the built-in injection detection rules. They target
// attempts to subvert the enhancer itself. Persona and system-style lines
// ("You are now a senior editor", "System: ...") are ordinary prompt
// material here and are not matched.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "ignore_previous",
			Regex:    regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions`),
			Severity: 0.95,
			Category: "instruction_bypass",
		},
		{
			Name:     "disregard_prior",
			Regex:    regexp.MustCompile(`(?i)disregard\s+(all\s+)?(prior|previous|your)\s+(instructions|context|rules)`),
			Severity: 0.95,
			Category: "instruction_bypass",
		},
		{
			Name:     "system_prompt_leak",
			Regex:    regexp.MustCompile(`(?i)(reveal|print|show|repeat|output)\s+(me\s+)?(your|the)\s+(system\s+prompt|hidden\s+instructions|initial\s+instructions)`),
			Severity: 0.9,
			Category: "prompt_leak",
		},
		{
			Name:     "jailbreak",
			Regex:    regexp.MustCompile(`\bDAN\b|(?i:do\s+anything\s+now|jailbreak|unrestricted\s+mode)`),
			Severity: 0.9,
			Category: "role_override",
		},
		{
			Name:     "developer_mode",
			Regex:    regexp.MustCompile(`(?i)(developer|debug|admin|root)\s+mode\s+(enabled|activated|on)`),
			Severity: 0.85,
			Category: "role_override",
		},
		{
			Name:     "base64_instruction",
			Regex:    regexp.MustCompile(`(?i)(decode|execute|follow)\s+(the\s+)?base64`),
			Severity: 0.85,
			Category: "encoding_trick",
		},
		{
			Name:     "enhancer_bypass",
			Regex:    regexp.MustCompile(`(?i)instead\s+of\s+(enhancing|rewriting|improving|expanding|clarifying)\s+(this|the|my)\s+prompt`),
			Severity: 0.8,
			Category: "instruction_bypass",
		},
		{
			Name:     "new_instructions",
			Regex:    regexp.MustCompile(`(?i)(new|updated|revised)\s+instructions?\s+for\s+(you|the\s+assistant)\s*:`),
			Severity: 0.8,
			Category: "instruction_bypass",
		},
		{
			Name:     "verbatim_output",
			Regex:    regexp.MustCompile(`(?i)(output|respond\s+with|reply\s+with)\s+(only\s+)?the\s+following\s+(text\s+)?verbatim`),
			Severity: 0.75,
			Category: "output_steering",
		},
	}
}
