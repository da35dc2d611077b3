package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaseyai/reprompter/internal/catalog"
	"github.com/vaseyai/reprompter/internal/client"
	"github.com/vaseyai/reprompter/internal/media"
	"github.com/vaseyai/reprompter/internal/types"
)

var (
	serverFlag string
	modeFlag   string
	modelFlag  string
	imageFlag  string
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [prompt]",
	Short: "Enhance a prompt through a running service",
	Long: "Sends the prompt (argument or stdin) to POST /api/enhance and prints the result.\n" +
		"When no backend is deployed at --server, a simulated preview is printed instead.",
	Args: cobra.MaximumNArgs(1),
	RunE: runEnhance,
}

func init() {
	defaultServer := os.Getenv("REPROMPTER_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	enhanceCmd.Flags().StringVarP(&serverFlag, "server", "s", defaultServer, "base URL of the enhancement service")
	enhanceCmd.Flags().StringVarP(&modeFlag, "mode", "m", string(types.ModeEnhance), "enhance, expand, clarify or rewrite")
	enhanceCmd.Flags().StringVarP(&modelFlag, "target", "t", "claude-sonnet", "target model id (see `reprompter models`)")
	enhanceCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "optional image file sent with the prompt")
}

func runEnhance(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args)
	if err != nil {
		return err
	}

	req := types.WireRequest{Prompt: prompt, Mode: modeFlag, TargetModel: modelFlag}
	if imageFlag != "" {
		data, err := os.ReadFile(imageFlag)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		ref := media.EncodeDataURL(data)
		req.Image = &ref
	}

	out, err := client.New(serverFlag, nil).Enhance(cmd.Context(), req)
	if errors.Is(err, client.ErrPreviewMode) {
		out = preview(req)
	} else if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("no prompt given")
	}
	return prompt, nil
}

// preview renders the local simulation using catalog display names when
// the ids are known.
func preview(req types.WireRequest) string {
	cat := catalog.Default()
	modeName, modelName := req.Mode, req.TargetModel
	if m, ok := types.ParseMode(req.Mode); ok {
		if mc, ok := cat.Mode(m); ok {
			modeName = mc.Name
		}
	}
	if mc, ok := cat.Model(req.TargetModel); ok {
		modelName = mc.DisplayName
	}
	return client.PreviewResponse(modeName, modelName, req.Prompt)
}
