package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/ogulcanaydogan/aws-spend-reporter/internal/config"
	"github.com/ogulcanaydogan/aws-spend-reporter/internal/job"
)

func main() {
	cfg, err := config.Load(os.Getenv("SPEND_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}

	logger := job.NewLogger(cfg.Logging)
	h := &handler{cfg: cfg, logger: logger}
	lambda.Start(h.handle)
}

type handler struct {
	cfg    *config.Config
	logger *slog.Logger
}

// handle runs one report. The scheduled event payload carries nothing the
// report needs.
func (h *handler) handle(ctx context.Context, _ json.RawMessage) error {
	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("request_id", lc.AwsRequestID)
	}

	c, err := job.Build(ctx, h.cfg, nil, logger)
	if err != nil {
		logger.Error("build job", "error", err)
		return err
	}
	defer c.Close()

	res, err := c.Job.Run(ctx, job.Options{})
	if err != nil {
		logger.Error("run failed", "error", err)
		return err
	}

	logger.Info("report sent", "run_id", res.Run.ID, "notified", res.Run.Notified)
	return nil
}
