package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/satriahrh/linksense/internal/config"
	"github.com/satriahrh/linksense/usecase"
)

func summarizeAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one url argument is required")
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load(logger)
	if err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(context.Background(), logger)

	summaries := usecase.NewSummaryService(deps.summarizer, deps.batches, deps.creds, cfg.Batch.TTL, logger)
	batch, err := summaries.Run(ctx, c.Args().Slice(), c.String("style"), c.String("language"))
	if err != nil {
		return err
	}

	outDir := c.String("out")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	for i := range batch.Results {
		result := &batch.Results[i]
		text := result.ExportText()

		if outDir == "" {
			if i > 0 {
				fmt.Println()
			}
			fmt.Println(text)
			continue
		}

		path := filepath.Join(outDir, result.ExportFilename())
		if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("%s (%d%% reading time saved)\n", path, result.EfficiencyGain())
	}
	return nil
}
