package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rhysr01/jobping/internal/ai"
	"github.com/rhysr01/jobping/internal/ai/gemini"
	"github.com/rhysr01/jobping/internal/cache"
	"github.com/rhysr01/jobping/internal/job"
	"github.com/rhysr01/jobping/internal/logger"
	"github.com/rhysr01/jobping/internal/match"
	"github.com/rhysr01/jobping/internal/secrets"
	"github.com/rhysr01/jobping/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptDone           = "Done"
	PromptShowReasons    = "Show match reasons"
	PromptReportBySource = "Report by source"
	PromptDropJob        = "Drop a job from the report"
	PromptJobsToFile     = "Dump jobs to file"
	PromptMatchesToFile  = "Dump matches to file"
	PromptBack           = "back"

	defaultRunMarkerTTL  = 24 * time.Hour
	defaultGeminiTimeout = 60 * time.Second
	defaultMaxLogLength  = 2048
	defaultGeminiRetries = 3
)

var errExit = errors.New("exit requested")

var matchPrompt = promptui.Select{
	Label: "Matches ready. What next?",
	Items: []string{PromptDone, PromptShowReasons, PromptReportBySource, PromptDropJob, PromptJobsToFile, PromptMatchesToFile},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Run a matching pass for one user and persist the results",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("email", "", "user email, also the idempotency key")
	matchCmd.Flags().String("tier", match.TierFree, "subscription tier (free or premium_pending)")
	matchCmd.Flags().StringSlice("cities", nil, "target cities")
	matchCmd.Flags().StringSlice("career-paths", nil, "career paths in priority order")
	matchCmd.Flags().StringSlice("languages", nil, "languages the user speaks")
	matchCmd.Flags().StringSlice("skills", nil, "skills to weigh in scoring")
	matchCmd.Flags().String("work-env", "", "preferred work environment (remote, hybrid, office)")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation after matching")

	matchCmd.MarkFlagRequired("email")
}

func runMatch(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobping match", zap.String("version", version))

	if config == nil {
		logger.Fatal("config is required")
	}
	if config.DatabaseURL == "" {
		logger.Fatal("database url is required",
			zap.String("hint", "set DATABASE_URL or the 'database-url' key in the configuration file"),
		)
	}

	prefs := prefsFromFlags(cmd)

	pool, err := store.NewPostgresPool(ctx, config.DatabaseURL)
	if err != nil {
		logger.Fatal("connecting to postgres", zap.Error(err))
	}
	defer pool.Close()

	var marker match.RunMarker
	if config.RedisURL != "" {
		c, err := cache.New(ctx, config.RedisURL, defaultRunMarkerTTL)
		if err != nil {
			logger.Fatal("connecting to redis", zap.Error(err))
		}
		defer c.Close()
		marker = c
	} else {
		logger.Warn("no redis url configured, running without the distributed run guard")
	}

	scorer, err := newAIScorer(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("ai scoring unavailable, deterministic fallback only", zap.Error(err))
	}

	orchestrator := match.NewOrchestrator(
		store.NewJobStore(pool, logger),
		store.NewMatchStore(pool),
		marker,
		scorer,
		logger,
	)

	outcome, err := orchestrator.Run(ctx, prefs)
	if err != nil {
		if errors.Is(err, match.ErrNoJobsAvailable) {
			logger.Info("exiting", zap.String("reason", "no jobs available for matching"))
			return
		}
		logger.Fatal("matching failed", zap.Error(err))
	}

	logger.Info("matching finished",
		zap.String("user", prefs.Email),
		zap.String("method", outcome.Method),
		zap.Int("count", outcome.Count),
	)

	if outcome.Method == ai.MethodIdempotent || len(outcome.Matches) == 0 {
		return
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if autoApprove {
		return
	}

	for {
		_, action, err := matchPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleMatchAction(action, logger, outcome); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleMatchAction(action string, logger *zap.Logger, outcome *match.Outcome) error {
	switch action {
	case PromptDone:
		return errExit
	case PromptShowReasons:
		for _, m := range outcome.Matches {
			fields := []zap.Field{
				zap.String("job_hash", m.JobHash),
				zap.Float64("score", m.Score),
				zap.String("reason", m.Reason),
			}
			if j := outcome.Jobs.FindByHash(m.JobHash); j != nil {
				fields = append(fields,
					zap.String("title", j.Title),
					zap.String("company", j.Company),
				)
			}
			logger.Info("match", fields...)
		}
		return nil
	case PromptDropJob:
		return dropJob(logger, outcome)
	case PromptReportBySource:
		pretty, _ := json.MarshalIndent(outcome.Jobs.ReportBySource(), "", "  ")
		logger.Info(string(pretty), zap.Int("jobs count", outcome.Jobs.Len()))
		return nil
	case PromptJobsToFile:
		filename, err := outcome.Jobs.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump jobs to file: %w", err)
		}
		logger.Info("dumping jobs to file", zap.String("filename", filename))
		return nil
	case PromptMatchesToFile:
		filename, err := dumpMatches(outcome.Matches)
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// dropJob removes a job from the review report. Persisted matches are not
// touched; only the report surfaces shrink.
func dropJob(logger *zap.Logger, outcome *match.Outcome) error {
	for {
		if outcome.Jobs.Len() == 0 {
			return nil
		}

		items := make([]string, 0, outcome.Jobs.Len())
		for _, j := range outcome.Jobs.Items {
			items = append(items, fmt.Sprintf("%s %s / %s", j.Hash, j.Title, j.Company))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job to drop and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		hash := strings.Split(selected, " ")[0]
		if removed := outcome.Jobs.Exclude([]string{hash}); len(removed) == 0 {
			return fmt.Errorf("there is no such job hash %s", hash)
		}

		kept := outcome.Matches[:0]
		for _, m := range outcome.Matches {
			if m.JobHash != hash {
				kept = append(kept, m)
			}
		}
		outcome.Matches = kept

		logger.Info("dropped job from report", zap.String("job_hash", hash))
	}
}

func dumpMatches(matches []*job.Match) (string, error) {
	f, err := os.CreateTemp(os.TempDir(), app+"-matches-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func prefsFromFlags(cmd *cobra.Command) *job.UserPreferences {
	email, _ := cmd.Flags().GetString("email")
	tier, _ := cmd.Flags().GetString("tier")
	cities, _ := cmd.Flags().GetStringSlice("cities")
	paths, _ := cmd.Flags().GetStringSlice("career-paths")
	languages, _ := cmd.Flags().GetStringSlice("languages")
	skills, _ := cmd.Flags().GetStringSlice("skills")
	workEnv, _ := cmd.Flags().GetString("work-env")

	return &job.UserPreferences{
		Email:           strings.TrimSpace(email),
		Tier:            strings.TrimSpace(tier),
		TargetCities:    cities,
		CareerPaths:     paths,
		Languages:       languages,
		Skills:          skills,
		WorkEnvironment: strings.TrimSpace(workEnv),
	}
}

func newAIScorer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Scorer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai scoring is enabled")
	}

	apiKeyFile := cfg.Gemini.APIKeyFile
	if apiKeyFile == "" {
		apiKeyFile = viper.GetString("ai.gemini.api-key-file")
	}
	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: apiKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	retries := cfg.Gemini.MaxRetries
	if retries <= 0 {
		retries = defaultGeminiRetries
	}

	genLogger := logger.WithScoringFields(log, "gemini", cfg.Gemini.Model, ai.MethodAI).
		With(zap.Int("ai_retry_attempts", retries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, retries, genLogger)
	if err != nil {
		return nil, err
	}

	timeout := defaultGeminiTimeout
	if cfg.Gemini.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second
	}
	maxLogLength := cfg.Gemini.MaxLogLength
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return gemini.NewScorer(generator, timeout, maxLogLength, genLogger), nil
}
