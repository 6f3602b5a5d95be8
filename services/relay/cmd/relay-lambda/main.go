// Package main runs the relay as an AWS Lambda function behind an API Gateway HTTP API.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"washrelay/services/relay/internal/app"
	"washrelay/services/relay/internal/config"
)

func main() {
	ctx := context.Background()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("build relay")
	}

	lambda.Start(a.Relay.HandleLambda)
}
