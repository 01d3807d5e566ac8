package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobscout/internal/ai"
	"github.com/amishk599/jobscout/internal/config"
	"github.com/amishk599/jobscout/internal/crawler"
	"github.com/amishk599/jobscout/internal/enrich"
	"github.com/amishk599/jobscout/internal/httpclient"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/notifier"
	"github.com/amishk599/jobscout/internal/ratelimit"
	"github.com/amishk599/jobscout/internal/retry"
	"github.com/amishk599/jobscout/internal/scheduler"
	"github.com/amishk599/jobscout/internal/service"
	"github.com/amishk599/jobscout/internal/store"
)

// Build assembles an App from configuration. Console progress goes to out.
// endpoints overrides the public site origins; the zero value targets the real sites.
func Build(cfg *config.Config, endpoints crawler.Endpoints, out io.Writer, logger *slog.Logger) (*App, error) {
	jobStore, err := store.Open(cfg.Storage.Driver, cfg.DataDir, cfg.Storage.SQLitePath)
	if err != nil {
		return nil, err
	}
	logger.Info("store opened", "driver", cfg.Storage.Driver, "data_dir", cfg.DataDir)

	client := httpclient.NewClient(nil, httpclient.Config{
		Timeout:    cfg.HTTP.Timeout,
		MaxRetries: cfg.HTTP.MaxRetries,
		Backoff:    retry.DefaultBackoff,
	}, logger)
	throttle := ratelimit.NewThrottle(0, throttleOverrides(cfg))
	registry := crawler.NewRegistry(client, throttle, endpoints, logger)

	n := setupNotifier(cfg, out, logger)
	jobs := service.NewJobService(service.NewRegistrySites(registry), jobStore, n, logger,
		service.WithSources(cfg.Crawl.Sources))
	enricher := enrich.NewEnricher(registry, jobStore, n, throttle, logger)
	chat := ai.NewChatSession(setupProvider(cfg.AI, logger), jobStore, nil, logger)

	a := New(jobs, enricher, chat, jobStore, n, logger)
	a.chatTimeout = cfg.AI.Timeout
	return a, nil
}

func throttleOverrides(cfg *config.Config) map[string]time.Duration {
	overrides := make(map[string]time.Duration, len(cfg.Crawl.PageDelay)+1)
	for key, d := range cfg.Crawl.PageDelay {
		overrides[key] = d
	}
	overrides[ratelimit.KeyEnrichment] = cfg.Enrichment.Delay
	return overrides
}

func setupNotifier(cfg *config.Config, out io.Writer, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		httpClient := &http.Client{Timeout: 30 * time.Second}
		return notifier.Multi{
			notifier.NewConsoleNotifier(out),
			notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger),
		}
	case "log":
		return notifier.NewLogNotifier(logger)
	default:
		return notifier.Multi{notifier.NewConsoleNotifier(out), notifier.NewLogNotifier(logger)}
	}
}

// setupProvider picks the chat backend. Streams are bounded by the caller's
// context, so the HTTP client has no timeout of its own.
func setupProvider(cfg config.AIConfig, logger *slog.Logger) ai.StreamProvider {
	httpClient := &http.Client{}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		logger.Info("using openai-compatible chat backend", "base_url", cfg.BaseURL, "model", cfg.Model)
		return ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Temperature, httpClient)
	default:
		if !cfg.Configured() {
			logger.Debug("ollama not configured, chat disabled")
			return ai.Unconfigured{}
		}
		logger.Info("using ollama chat backend", "base_url", cfg.BaseURL, "model", cfg.Model)
		return ai.NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.Temperature, httpClient)
	}
}

// RunCycle crawls every source with opts and, when enrich is set, loads the
// missing details afterwards.
func (a *App) RunCycle(ctx context.Context, opts model.CrawlOptions, enrich bool) error {
	if _, err := a.CrawlAll(ctx, opts); err != nil {
		return err
	}
	if !enrich {
		return nil
	}
	_, err := a.Enrich(ctx)
	return err
}

// Scheduler returns a scheduler that crawls every interval and, when
// configured, loads missing details after each crawl.
func (a *App) Scheduler(cfg *config.Config) *scheduler.Scheduler {
	opts := cfg.Crawl.Options()
	tasks := []scheduler.Task{{
		Name: "crawl",
		Run: func(ctx context.Context) error {
			_, err := a.CrawlAll(ctx, opts)
			return err
		},
	}}
	if cfg.Schedule.EnrichAfterCrawl {
		tasks = append(tasks, scheduler.Task{
			Name: "enrich",
			Run: func(ctx context.Context) error {
				_, err := a.Enrich(ctx)
				return err
			},
		})
	}
	return scheduler.NewScheduler(tasks, cfg.Schedule.Interval, cfg.Schedule.Pause, a.logger)
}

// SendTestNotification pushes a sample crawl summary through the configured notifier.
func (a *App) SendTestNotification() error {
	return notifier.SendTestMessage(a.notifier)
}
