// Command reprompter runs the prompt enhancement service and offers a
// command-line client for it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vaseyai/reprompter/internal/config"
)

var version = "dev"

var configFlag string

var rootCmd = &cobra.Command{
	Use:           "reprompter",
	Short:         "Rewrite prompts for a chosen target model",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is normal outside development.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to YAML config (default: configs/reprompter.yaml if present)")
	rootCmd.AddCommand(serveCmd, enhanceCmd, modelsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file (if any) and the environment, then
// resolves credentials from SSM when parameter names are configured.
func loadConfig(ctx context.Context) (*config.Config, error) {
	path := configFlag
	if path == "" {
		found, err := config.FindFile("configs/reprompter.yaml", "reprompter.yaml")
		if err != nil && !errors.Is(err, config.ErrNoConfigFile) {
			return nil, err
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cfg.SSM.Enabled() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		if err := config.ResolveSSM(ctx, ssm.NewFromConfig(awsCfg), cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
