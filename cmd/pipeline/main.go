package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/cache"
	"github.com/crisiswatch/crisiswatch/internal/db"
	"github.com/crisiswatch/crisiswatch/internal/geo"
	"github.com/crisiswatch/crisiswatch/internal/pipeline"
	"github.com/crisiswatch/crisiswatch/internal/reddit"
	"github.com/crisiswatch/crisiswatch/internal/twitter"
	"github.com/crisiswatch/crisiswatch/pkg/config"
	"github.com/crisiswatch/crisiswatch/pkg/logging"
	"github.com/crisiswatch/crisiswatch/pkg/telemetry"
)

var (
	platformFlag  string
	outputDirFlag string
	dataDirFlag   string
)

var rootCmd = &cobra.Command{
	Use:           "pipeline",
	Short:         "Run the crisis-detection pipeline",
	Long:          "Extracts crisis-related posts, classifies their risk, geocodes mentioned locations, and writes maps and reports.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&platformFlag, "platform", "all", "platform to process: twitter, reddit or all")
	rootCmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "override the output directory for maps and reports")
	rootCmd.Flags().StringVar(&dataDirFlag, "data-dir", "", "override the directory for CSV snapshots")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if outputDirFlag != "" {
		cfg.Output.OutputDir = outputDirFlag
	}
	if dataDirFlag != "" {
		cfg.Output.DataDir = dataDirFlag
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting crisis-detection pipeline",
		zap.String("platform", platformFlag))

	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	if err := scaffoldDirs(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		DataDir:   cfg.Output.DataDir,
		OutputDir: cfg.Output.OutputDir,
	}

	if cfg.Database.Enabled {
		database, err := db.New(&cfg.Database, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		repo := db.NewRepository(database.DB)
		opts.Runs = db.NewRunRepository(repo)
		opts.Posts = db.NewPostRepository(repo)
	}

	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		// Redis only accelerates geocoding across runs, keep going
		logger.Warn("Redis unavailable, continuing without cross-run cache", zap.Error(err))
	}
	defer redisCache.Close()

	opts.Resolver = geo.NewResolver(geo.NewNominatim(), &cfg.Geocoder, redisCache)

	extractors, err := buildExtractors(cfg, logger)
	if err != nil {
		return err
	}

	summaries, err := pipeline.New(opts).RunAll(ctx, extractors)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	for _, s := range summaries {
		fmt.Printf("%s: %d posts analyzed, %d located, %d high risk\n",
			s.Platform, s.TotalPosts, s.LocatedPosts, s.RiskCounts["high"])
	}
	return nil
}

// scaffoldDirs creates the artifact directory tree up front so a run
// fails fast on an unwritable location.
func scaffoldDirs(cfg *config.Config) error {
	dirs := []string{
		filepath.Join(cfg.Output.DataDir, "raw"),
		filepath.Join(cfg.Output.DataDir, "processed"),
		filepath.Join(cfg.Output.OutputDir, "maps"),
		filepath.Join(cfg.Output.OutputDir, "reports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// buildExtractors creates the extractor for each requested platform.
// A platform with missing credentials is reported and skipped; it is an
// error only if nothing is left to run.
func buildExtractors(cfg *config.Config, logger *zap.Logger) ([]pipeline.Extractor, error) {
	wantTwitter := platformFlag == "all" || platformFlag == "twitter"
	wantReddit := platformFlag == "all" || platformFlag == "reddit"
	if !wantTwitter && !wantReddit {
		return nil, fmt.Errorf("unknown platform %q: must be twitter, reddit or all", platformFlag)
	}

	var extractors []pipeline.Extractor
	if wantTwitter {
		client, err := twitter.New(&cfg.Twitter, &cfg.RateLimit)
		if err != nil {
			logger.Warn("Skipping Twitter", zap.Error(err))
		} else {
			extractors = append(extractors, client)
		}
	}
	if wantReddit {
		client, err := reddit.New(&cfg.Reddit)
		if err != nil {
			logger.Warn("Skipping Reddit", zap.Error(err))
		} else {
			extractors = append(extractors, client)
		}
	}

	if len(extractors) == 0 {
		return nil, fmt.Errorf("no platform has usable credentials")
	}
	return extractors, nil
}
