package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rhysr01/jobping/internal/ingest"
	"github.com/rhysr01/jobping/internal/logger"
	"github.com/rhysr01/jobping/internal/scheduler"
	"github.com/rhysr01/jobping/internal/source"
	"github.com/rhysr01/jobping/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultIntervalHours = 6

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch postings from all configured sources and store them",
	Run: func(cmd *cobra.Command, _ []string) {
		runIngest(cmd)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolP("schedule", "s", false, "keep running and re-ingest on an interval")
	ingestCmd.Flags().Int("interval", 0, "override the ingest interval in hours")
}

func runIngest(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobping ingest", zap.String("version", version))

	if config == nil {
		logger.Fatal("config is required")
	}
	if len(config.Sources) == 0 {
		logger.Fatal("at least one source is required under the sources key")
	}
	if config.DatabaseURL == "" {
		logger.Fatal("database url is required",
			zap.String("hint", "set DATABASE_URL or the 'database-url' key in the configuration file"),
		)
	}

	pool, err := store.NewPostgresPool(ctx, config.DatabaseURL)
	if err != nil {
		logger.Fatal("connecting to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("ensuring schema", zap.Error(err))
	}

	adapters, err := buildAdapters(config, logger)
	if err != nil {
		logger.Fatal("building source adapters", zap.Error(err))
	}

	pipeline := ingest.New(adapters, store.NewJobStore(pool, logger), logger)
	if config.Ingest != nil {
		pipeline.SetMaxPages(config.Ingest.MaxPages)
	}

	schedule, _ := cmd.Flags().GetBool("schedule")
	if !schedule {
		snapshots := pipeline.Run(ctx)
		pretty, _ := json.MarshalIndent(snapshots, "", "  ")
		logger.Info(fmt.Sprintf("ingest report: \n%s", pretty))
		return
	}

	interval := defaultIntervalHours
	if config.Ingest != nil && config.Ingest.IntervalHours > 0 {
		interval = config.Ingest.IntervalHours
	}
	if flagInterval, err := cmd.Flags().GetInt("interval"); err == nil && flagInterval > 0 {
		interval = flagInterval
	}

	sched := scheduler.New(pipeline, interval, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("starting scheduler", zap.Error(err))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	sched.Stop()
}

// buildAdapters maps the configured sources to their adapters.
func buildAdapters(config *Config, logger *zap.Logger) ([]source.Adapter, error) {
	adapters := make([]source.Adapter, 0, len(config.Sources))
	for _, src := range config.Sources {
		if src == nil {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(src.Provider)) {
		case "greenhouse":
			gh := source.NewGreenhouse(logger, src.Board, src.Company)
			if config.UserAgent != "" {
				gh.SetUserAgent(config.UserAgent)
			}
			adapters = append(adapters, gh)
		case "lever":
			lv := source.NewLever(logger, src.Board, src.Company)
			if config.UserAgent != "" {
				lv.SetUserAgent(config.UserAgent)
			}
			adapters = append(adapters, lv)
		default:
			return nil, fmt.Errorf("unsupported source provider: %s", src.Provider)
		}
	}
	if len(adapters) == 0 {
		return nil, errors.New("no usable sources configured")
	}
	return adapters, nil
}
