// Command pipeline is the CLI entrypoint: load configuration, wire every
// package built under internal/, and run one coordinator invocation for
// the configured (platform, role, location, target_count) query.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"jobpipe/internal/browser"
	"jobpipe/internal/config"
	"jobpipe/internal/controller"
	"jobpipe/internal/harvester"
	"jobpipe/internal/logging"
	"jobpipe/internal/pipeline"
	"jobpipe/internal/role"
	"jobpipe/internal/skills"
	"jobpipe/internal/store"
	"jobpipe/internal/validator"
	"jobpipe/internal/workerpool"
	"jobpipe/pkg/models"
	"jobpipe/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional; defaults apply if absent)")
	platform := flag.String("platform", "", "override pipeline.platform")
	inputRole := flag.String("role", "", "override pipeline.input_role")
	location := flag.String("location", "", "override pipeline.location")
	targetCount := flag.Int("target-count", 0, "override pipeline.target_count (0 keeps config value)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobpipe: config: %v\n", err)
		os.Exit(1)
	}
	if *platform != "" {
		cfg.Pipeline.Platform = *platform
	}
	if *inputRole != "" {
		cfg.Pipeline.InputRole = *inputRole
	}
	if *location != "" {
		cfg.Pipeline.Location = *location
	}
	if *targetCount != 0 {
		cfg.Pipeline.TargetCount = *targetCount
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "jobpipe: logging init: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseLogging() //nolint:errcheck

	runLogger := newDomainLogger(cfg)
	runID := utils.GenerateRunID()
	appLog := logging.LogWithRunID(runID)
	appLog.Info("jobpipe: starting run", map[string]interface{}{
		"platform":     cfg.Pipeline.Platform,
		"input_role":   cfg.Pipeline.InputRole,
		"target_count": cfg.Pipeline.TargetCount,
	})

	summary, err := run(cfg, runLogger)
	if err != nil {
		appLog.Error("jobpipe: run failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	appLog.Info("jobpipe: run finished", map[string]interface{}{
		"outcome":    string(summary.Outcome),
		"scraped_ok": summary.ScrapedOK,
		"failed":     summary.Failed,
	})
	appendSessionLog(cfg, runID, summary)
}

// newDomainLogger builds the logrus instance handed to the domain
// packages (controller/workerpool/harvester/browser/pipeline),
// separate from the ambient internal/logging facade those packages never
// import. Both consume cfg.Logging so they stay in sync on level/format.
func newDomainLogger(cfg *config.Config) *logrus.Logger {
	l := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		l.SetLevel(lvl)
	}
	if cfg.Logging.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}

func run(cfg *config.Config, logger *logrus.Logger) (models.SessionSummary, error) {
	platform := utils.Platform(cfg.Pipeline.Platform)
	if !utils.IsValidPlatform(platform) {
		return models.SessionSummary{}, fmt.Errorf("jobpipe: unsupported platform %q", cfg.Pipeline.Platform)
	}

	st, err := store.Open(cfg.Store.DBPath, cfg.Store.MaxOpenConns)
	if err != nil {
		return models.SessionSummary{}, fmt.Errorf("jobpipe: open store: %w", err)
	}
	defer st.Close() //nolint:errcheck

	vocab, err := skills.LoadVocabulary(cfg.Vocabulary.SkillsPath)
	if err != nil {
		return models.SessionSummary{}, fmt.Errorf("jobpipe: load skills vocabulary: %w", err)
	}

	normalizer, err := role.Load(cfg.Vocabulary.RolesPath)
	if err != nil {
		return models.SessionSummary{}, fmt.Errorf("jobpipe: load role vocabulary: %w", err)
	}

	var proxyDescriptor *browser.ProxyDescriptor
	if cfg.Browser.Proxy.Enabled {
		resolver := browser.NewProxyResolver(browser.ProxyOptions{
			Enabled:  cfg.Browser.Proxy.Enabled,
			Endpoint: cfg.Browser.Proxy.Endpoint,
			APIKey:   cfg.Browser.Proxy.APIKey,
			Timeout:  cfg.Browser.Proxy.Timeout,
		})
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Browser.Proxy.Timeout)
		proxyDescriptor, err = resolver.Resolve(ctx)
		cancel()
		if err != nil {
			logger.WithError(err).Warn("jobpipe: proxy resolution failed, continuing unproxied")
			proxyDescriptor = nil
		}
	}

	browserMgr := browser.NewManager(browser.Options{
		Headless:    cfg.Browser.Headless,
		StealthMode: cfg.Browser.StealthMode,
		UserAgent:   cfg.Browser.UserAgent,
		StorePath:   cfg.Browser.StorePath,
		Proxy:       proxyDescriptor,
	}, logger)
	defer browserMgr.Close() //nolint:errcheck

	ctrl := controller.New(controller.Options{
		MinConcurrency:            cfg.Pipeline.MinConcurrency,
		MaxConcurrency:            cfg.Pipeline.MaxConcurrency,
		InitialConcurrency:        cfg.Pipeline.InitialConcurrency,
		MinDelay:                  1.0,
		MaxDelay:                  cfg.Pipeline.MaxDelaySeconds,
		InitialDelay:              cfg.Pipeline.InitialDelaySeconds,
		JitterRange:               cfg.Pipeline.JitterRangeSeconds,
		EvaluateEveryN:            10,
		EvaluateEveryT:            30 * time.Second,
		BreakerRateLimitThreshold: cfg.Pipeline.BreakerRateLimitThreshold,
		BreakerOpenFor:            cfg.Pipeline.BreakerOpenSeconds,
	}, logger)

	dedupCache := harvester.NewDedupCache(harvester.DedupCacheOptions{
		Enabled:  cfg.Redis.Enabled,
		Addr:     redisAddr(cfg.Redis.URL),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
		TTL:      cfg.Redis.TTL,
	}, logger)
	if dedupCache != nil {
		defer dedupCache.Close() //nolint:errcheck
	}

	poolCfg := workerpool.DefaultConfig()
	poolCfg.NavTimeout = time.Duration(cfg.Pipeline.NavTimeoutSeconds) * time.Second
	poolCfg.TaskGrace = cfg.Browser.NavigationGraceS
	poolCfg.MaxRetries = cfg.Pipeline.MaxRetries
	poolCfg.BackoffBase = time.Duration(cfg.Pipeline.BackoffBaseSeconds * float64(time.Second))
	poolCfg.MaxHardConcurrency = cfg.Pipeline.MaxConcurrency
	poolCfg.ValidatorOptions = validator.Options{
		MinDescriptionChars:       cfg.Pipeline.MinDescriptionChars,
		MinDescriptionWords:       cfg.Pipeline.MinDescriptionWords,
		EnglishIndicatorThreshold: cfg.Pipeline.EnglishIndicatorThreshold,
		MaxSkills:                 cfg.Pipeline.MaxSkills,
	}

	pool := workerpool.New(poolCfg, workerpool.BrowserOpener{Manager: browserMgr}, st, ctrl, vocab, logger)

	h := harvester.New(
		harvester.BrowserListingOpener{Manager: browserMgr},
		st,
		normalizer,
		harvester.DefaultOptions(),
		logger,
		dedupCache,
	)

	coordinator := pipeline.New(st, h, pool, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return coordinator.Run(ctx, models.Query{
		Platform:    platform,
		InputRole:   cfg.Pipeline.InputRole,
		Location:    cfg.Pipeline.Location,
		TargetCount: cfg.Pipeline.TargetCount,
	})
}

// redisAddr strips a redis:// scheme down to the host:port form
// redis.Options.Addr expects; returns rawURL unchanged if it already is one.
func redisAddr(rawURL string) string {
	for _, prefix := range []string{"redis://", "rediss://"} {
		if len(rawURL) > len(prefix) && rawURL[:len(prefix)] == prefix {
			return rawURL[len(prefix):]
		}
	}
	return rawURL
}

// appendSessionLog appends one JSON line per run to pipeline.session_log_path,
// when configured, so a sequence of invocations can be audited after the fact.
func appendSessionLog(cfg *config.Config, runID string, summary models.SessionSummary) {
	if cfg.Pipeline.SessionLogPath == "" {
		return
	}

	f, err := os.OpenFile(cfg.Pipeline.SessionLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logging.GetGlobalLogger().Warn("jobpipe: could not open session log", map[string]interface{}{"error": err.Error()})
		return
	}
	defer f.Close() //nolint:errcheck

	record := struct {
		RunID string `json:"run_id"`
		models.SessionSummary
	}{RunID: runID, SessionSummary: summary}

	line, err := json.Marshal(record)
	if err != nil {
		return
	}
	line = append(line, '\n')
	_, _ = f.Write(line)
}
