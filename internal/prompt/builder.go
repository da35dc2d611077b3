// Package prompt builds the system instruction sent to the upstream model.
package prompt

import (
	"strings"

	"github.com/vaseyai/reprompter/internal/catalog"
	"github.com/vaseyai/reprompter/internal/types"
)

// OutputRule closes every system prompt.
const OutputRule = "Return ONLY the transformed prompt text. Do not add a preamble, commentary, explanations or surrounding quotes. The output must be ready to paste directly into "

var strategies = map[types.Provider]string{
	types.ProviderAnthropic: `Target model strategy (Anthropic Claude family):
- Organize the prompt with XML tags such as <context>, <task>, <constraints> and <output_format>.
- State the role and the goal explicitly at the top.
- Put long reference material before the instructions that use it.
- Ask for step-by-step reasoning only when the task benefits from it.`,
	types.ProviderOpenAI: `Target model strategy (OpenAI GPT family):
- Use Markdown headings and bullet lists to structure the prompt.
- Open with a clear persona ("You are ...") suited to the task.
- Spell out the expected output format, length and tone.
- Include a short example when the desired output has a specific shape.`,
	types.ProviderGoogle: `Target model strategy (Google Gemini family):
- Frame the prompt multimodal-first: when images or other media are involved, say how they should be used before the text instructions.
- Keep instructions direct and place the core question at the end.
- Use clear section labels and concise bullet points.
- Specify the output format explicitly.`,
}

// Build returns the system instruction for the given target model and mode.
// The result depends only on its arguments.
func Build(model catalog.ModelConfig, mode catalog.ModeConfig) string {
	var b strings.Builder

	b.WriteString("You are a world-class prompt engineer. You transform prompts so they get the best possible results from ")
	b.WriteString(model.DisplayName)
	b.WriteString(".\n\n")

	b.WriteString("Mode: ")
	b.WriteString(mode.Name)
	b.WriteString("\n")
	b.WriteString(mode.Description)
	b.WriteString("\n\n")

	if s, ok := strategies[model.Provider]; ok {
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	b.WriteString("If the user attaches an image, use it as context for the prompt you write.\n\n")
	b.WriteString(OutputRule)
	b.WriteString(model.DisplayName)
	b.WriteString(".")
	return b.String()
}
