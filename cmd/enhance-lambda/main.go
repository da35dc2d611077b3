// Package main provides a Lambda entry point for the enhancement API behind
// an API Gateway HTTP API (payload v2).
//
// Missing provider and gateway credentials are read from SSM Parameter
// Store at cold start, using the SSM_*_PARAM environment variables.
package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/vaseyai/reprompter/internal/config"
	"github.com/vaseyai/reprompter/internal/server"
	"github.com/vaseyai/reprompter/internal/telemetry"
)

var version = "dev"

var handler http.Handler

func init() {
	ctx := context.Background()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger := telemetry.SetupLogger(cfg.Telemetry)

	if cfg.SSM.Enabled() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load AWS config")
		}
		if err := config.ResolveSSM(ctx, ssm.NewFromConfig(awsCfg), cfg); err != nil {
			logger.Fatal().Err(err).Msg("Failed to resolve credentials from SSM")
		}
	}

	app, err := server.Build(ctx, cfg, logger, server.BuildOptions{Version: version})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build service")
	}
	handler = app.Handler
	logger.Info().Msg("Enhancement handler initialized")
}

func main() {
	adapter := httpadapter.NewV2(handler)
	lambda.Start(adapter.ProxyWithContext)
}
