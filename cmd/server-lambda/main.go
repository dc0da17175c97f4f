package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"chazz/app"
	"chazz/app/config"
)

var ginLambda *ginadapter.GinLambda

// init runs once per Lambda container (cold start)
func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	// CloudWatch wants one JSON object per line.
	cfg.Logs.Style = "json"
	logger := app.NewLogger(cfg.Logs, nil)
	gin.SetMode(gin.ReleaseMode)

	if !cfg.DB.Enabled() || cfg.QueueURL == "" {
		logger.Fatal().Msg("POSTGRES_URL and QUEUE_URL are required under Lambda")
	}
	ctx := context.Background()
	store := app.MustInitDB(ctx, cfg.DB, logger)
	client, err := app.NewSQSClient(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("SQS client")
	}

	h := app.NewHandlers(cfg, store, app.NewSQSQueue(client, cfg.QueueURL), logger)
	go h.ExpireGames(ctx)
	ginLambda = ginadapter.New(app.NewRouter(h))
}

// Handler is the Lambda entrypoint for API Gateway REST/HTTP API (proxy integration)
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
