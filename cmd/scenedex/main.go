// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/scenedex"
	"github.com/poiesic/scenedex/ai"
	"github.com/poiesic/scenedex/api"
	"github.com/poiesic/scenedex/ingestion"
	"github.com/poiesic/scenedex/search"
)

func main() {
	app := &cli.App{
		Name:   "scenedex",
		Usage:  "Semantic search over video by visual content and speech",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags: append(systemFlags(),
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP listen port",
						Value:   8000,
					},
					&cli.StringFlag{
						Name:  "uploads-dir",
						Usage: "Directory uploaded videos are saved to",
						Value: "uploads",
					},
					&cli.StringFlag{
						Name:  "frames-dir",
						Usage: "Directory frame previews are written to and served from",
						Value: "frames",
					},
					&cli.Float64Flag{
						Name:  "frame-interval",
						Usage: "Default frame sampling interval in seconds",
						Value: 1.0,
					},
				),
			},
			{
				Name:      "ingest",
				Usage:     "Index a video file",
				ArgsUsage: "<video-path>",
				Action:    ingestCommand,
				Flags: append(systemFlags(),
					&cli.Float64Flag{
						Name:  "frame-interval",
						Usage: "Frame sampling interval in seconds",
						Value: 1.0,
					},
					&cli.StringFlag{
						Name:  "frames-dir",
						Usage: "Directory frame previews are written to",
						Value: "frames",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the indexed video",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(systemFlags(),
					&cli.Float64Flag{
						Name:  "visual-weight",
						Usage: "Weight of the visual modality",
						Value: 1.0,
					},
					&cli.Float64Flag{
						Name:  "text-weight",
						Usage: "Weight of the transcript modality",
						Value: 1.0,
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print intermediate per-modality hits",
					},
				),
			},
			{
				Name:   "reset",
				Usage:  "Clear the index, evidence, and frame previews",
				Action: resetCommand,
				Flags: append(systemFlags(),
					&cli.StringFlag{
						Name:  "frames-dir",
						Usage: "Directory frame previews are written to",
						Value: "frames",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func systemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB index directory",
			Value:   "scenedex_db",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Sentence embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Sentence embedding model name",
		},
		&cli.StringFlag{
			Name:  "clip-host",
			Usage: "CLIP embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "clip-model",
			Usage: "CLIP embedding model name",
		},
		&cli.StringFlag{
			Name:  "whisper-host",
			Usage: "Transcription service base URL",
		},
		&cli.StringFlag{
			Name:  "whisper-model",
			Usage: "Transcription model name",
		},
	}
}

func openSystem(c *cli.Context) (*scenedex.System, error) {
	var configOpts []ai.ConfigOption
	if v := c.String("embedding-host"); v != "" {
		configOpts = append(configOpts, ai.WithEmbeddingHost(v))
	}
	if v := c.String("embedding-model"); v != "" {
		configOpts = append(configOpts, ai.WithEmbeddingModel(v))
	}
	if v := c.String("clip-host"); v != "" {
		configOpts = append(configOpts, ai.WithClipHost(v))
	}
	if v := c.String("clip-model"); v != "" {
		configOpts = append(configOpts, ai.WithClipModel(v))
	}

	aiConfig := ai.NewConfig(configOpts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return scenedex.NewSystem(c.String("db"),
		scenedex.WithAIConfig(aiConfig),
		scenedex.WithTranscription(c.String("whisper-host"), c.String("whisper-model")),
	)
}

func serveCommand(c *cli.Context) error {
	// Optional .env for the service endpoints and port.
	_ = godotenv.Load()

	sys, err := openSystem(c)
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer sys.Close()

	pipeline, err := sys.NewIngestionPipeline(
		ingestion.WithFramesDir(c.String("frames-dir")),
	)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	searcher, err := sys.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	server := api.NewServer(api.ServerConfig{
		Port:            c.Int("port"),
		Jobs:            sys.JobRepository(),
		Pipeline:        pipeline,
		Searcher:        searcher,
		UploadsDir:      c.String("uploads-dir"),
		FramesDir:       c.String("frames-dir"),
		DefaultInterval: c.Float64("frame-interval"),
		Logger:          slog.Default(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one video path argument")
	}
	videoPath := c.Args().First()

	sys, err := openSystem(c)
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer sys.Close()

	pipeline, err := sys.NewIngestionPipeline(
		ingestion.WithFramesDir(c.String("frames-dir")),
	)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	if err := pipeline.Run(context.Background(), videoPath, c.Float64("frame-interval")); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Indexed %s\n", videoPath)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected a query argument")
	}
	query := strings.Join(c.Args().Slice(), " ")

	sys, err := openSystem(c)
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer sys.Close()

	searcher, err := sys.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	opts := search.DefaultQueryOptions()
	opts.WeightVisual = c.Float64("visual-weight")
	opts.WeightText = c.Float64("text-weight")
	if c.Bool("verbose") {
		opts.Monitor = &printMonitor{}
	}

	results, err := searcher.SearchWithOptions(context.Background(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d scenes\n", len(results))
	for i, scene := range results {
		fmt.Printf("%d: t=%.1fs [%.3f] (%s) %s %q\n",
			i, scene.Timestamp, scene.Score, scene.MatchType,
			scene.PreviewPath, scene.TranscriptSnippet)
	}
	return nil
}

func resetCommand(c *cli.Context) error {
	sys, err := openSystem(c)
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer sys.Close()

	pipeline, err := sys.NewIngestionPipeline(
		ingestion.WithFramesDir(c.String("frames-dir")),
	)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	if err := pipeline.Reset(context.Background()); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	fmt.Println("Index cleared")
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
