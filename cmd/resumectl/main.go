package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"resume-rag/internal/app"
	"resume-rag/internal/config"
	"resume-rag/internal/ingest"
	"resume-rag/internal/rag"
	"resume-rag/internal/service"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "resumectl",
		Usage: "Ingest markdown resumes and rank them against a query",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Rank resumes against a query and summarize the best matches",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Free-text description of the wanted candidate",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of resumes to summarize (0 uses TOP_K_SUMMARIZE)",
					},
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "Print the reranked candidates and stage latencies",
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Chunk, embed and store every markdown resume in a directory",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory of .md resumes (defaults to MARKDOWN_DIR)",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print statistics about the stored corpus",
				Action: statsCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Logs go to stderr so results on stdout stay pipeable.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}

func openApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.Open(cfg)
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	corpus, model, err := a.LoadCorpus(ctx)
	if err != nil {
		return err
	}
	engine, err := a.NewEngine(ctx, corpus, model)
	if err != nil {
		return err
	}

	svc := service.NewSearchService(engine, a.EngineOptions())
	resp, err := svc.Search(ctx, rag.SearchRequest{
		Query:         c.String("query"),
		TopKSummarize: c.Int("top-k"),
		Debug:         c.Bool("debug"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResults(c.App.Writer, resp)
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	dir := c.String("dir")
	if dir == "" {
		dir = a.Config.MarkdownDir
	}

	pipeline, err := a.NewIngestPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	report, err := pipeline.IngestDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printReport(c.App.Writer, dir, report)

	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d resumes failed to ingest", len(report.Failed), report.Files)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	corpus, model, err := a.LoadCorpus(ctx)
	if err != nil {
		return err
	}

	printStats(c.App.Writer, ingest.Stats(corpus, model))
	return nil
}
