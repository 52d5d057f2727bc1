package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/jornathano/dashboard/internal/config"
	"github.com/jornathano/dashboard/internal/logging"
	"github.com/jornathano/dashboard/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	logger, err := logging.New(cfg.LogLevel, "json", os.Stdout)
	if err != nil {
		log.WithError(err).Fatal("failed to build logger")
	}

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open database")
	}

	gin.SetMode(cfg.GinMode)
	adapter := ginadapter.New(routes.NewRouter(cfg, db, logger))

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
