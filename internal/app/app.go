package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"IntelDigest/internal/config"
	"IntelDigest/internal/feishu"
	"IntelDigest/internal/mail"
	"IntelDigest/internal/pipeline"
	"IntelDigest/internal/ports"
	"IntelDigest/internal/report"
	"IntelDigest/internal/source"
	"IntelDigest/internal/summarize"
)

// App wires configuration into the pipeline and its delivery boundaries.
type App struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	renderer ports.Renderer
	mailer   ports.Mailer
	notifier ports.Notifier
}

// New assembles the full object graph from configuration. Sources whose
// credentials are missing are still registered; they report themselves as
// failed categories at run time. Delivery boundaries without credentials are
// skipped entirely.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	httpClient := &http.Client{Timeout: 20 * time.Second}
	fetcher := source.NewFeedFetcher(httpClient)

	var quotes source.QuoteClient
	if cfg.Market.FinnhubAPIKey != "" {
		quotes = source.NewFinnhubQuotes(cfg.Market.FinnhubAPIKey)
	}

	maxItems := cfg.Pipeline.MaxItemsPerFeed
	srcLog := logger.With("component", "source")
	sources := []ports.Source{
		source.NewFiguresSource(cfg.Feeds.FigureMirrors, cfg.Feeds.FigurePages, fetcher, httpClient, srcLog),
		source.NewEnergySource(cfg.Feeds, fetcher, maxItems, srcLog),
		source.NewCommoditiesSource(cfg.Feeds, fetcher, maxItems, srcLog),
		source.NewAISource(cfg.Feeds, fetcher, httpClient, maxItems, srcLog),
		source.NewSpaceSource(cfg.Feeds, fetcher, maxItems, srcLog),
		source.NewFedSource(cfg.Feeds, fetcher, maxItems, srcLog),
		source.NewIndicesSource(cfg.Market.Indices, quotes, srcLog),
		source.NewMoversSource(cfg.Market, quotes, srcLog),
	}

	chain := summarize.NewChain(buildProviders(cfg.LLM), logger.With("component", "summarize"))
	logger.Info("summarization chain assembled", "providers", chain.Len())

	renderer, err := report.NewHTMLRenderer()
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	app := &App{
		cfg:      cfg,
		logger:   logger,
		renderer: renderer,
		pipeline: pipeline.New(pipeline.Deps{
			Sources:              sources,
			Chain:                chain,
			Logger:               logger.With("component", "pipeline"),
			FetchConcurrency:     cfg.Pipeline.FetchConcurrency,
			SummarizeConcurrency: cfg.Pipeline.SummarizeConcurrency,
			SourceTimeout:        cfg.Pipeline.SourceTimeout(),
		}),
	}

	if cfg.Mail.Configured() {
		app.mailer = mail.NewSMTPMailer(cfg.Mail, logger.With("component", "mail"))
	} else {
		logger.Warn("mail delivery not configured; digests will be logged only")
	}
	if cfg.Feishu.WebhookURL != "" {
		app.notifier = feishu.NewWebhookNotifier(cfg.Feishu.WebhookURL, httpClient, logger.With("component", "feishu"))
	}

	return app, nil
}

// buildProviders assembles the ordered fallback chain from whichever
// credentials are present: GitHub Models first, then OpenAI, then Anthropic.
func buildProviders(cfg config.LLMConfig) []ports.Provider {
	var providers []ports.Provider
	if cfg.GitHubToken != "" {
		providers = append(providers, summarize.NewGitHubModelsProvider(cfg.GitHubEndpoint, cfg.Model, cfg.GitHubToken))
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, summarize.NewOpenAIProvider(cfg.OpenAIAPIKey, ""))
	}
	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, summarize.NewAnthropicProvider(cfg.AnthropicAPIKey, ""))
	}
	return providers
}

// Run executes one digest cycle end to end: collect, summarize, render, and
// deliver. A run that collected nothing skips delivery and returns nil; only
// delivery failures with content in hand are errors.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Pipeline.RunTimeout())
	defer cancel()

	res := a.pipeline.Run(ctx)
	if !res.HasContent {
		a.logger.Warn("no content collected; skipping delivery")
		return nil
	}

	overview := a.pipeline.Overview(ctx, res)
	htmlBody, textBody, err := a.renderer.Render(res, overview)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	subject := fmt.Sprintf("Daily Intelligence Digest - %s", time.Now().UTC().Format("2006-01-02"))

	var delivered bool
	if a.mailer != nil {
		if err := a.mailer.Send(ctx, subject, htmlBody, textBody); err != nil {
			return fmt.Errorf("deliver digest: %w", err)
		}
		delivered = true
	}
	if a.notifier != nil {
		if err := a.notifier.PublishDigest(ctx, subject, textBody); err != nil {
			// Secondary channel; the mail already went out.
			a.logger.Error("feishu publish failed", "error", err)
		} else {
			delivered = true
		}
	}
	if !delivered {
		a.logger.Info("digest rendered with no delivery channel configured", "subject", subject)
	}
	return nil
}

// Start runs the pipeline on the configured cron schedule until the context
// is cancelled. Overlapping runs are prevented by cron's job-wrapper chain.
func (a *App) Start(ctx context.Context) error {
	spec := a.cfg.Scheduler.CronExpression
	if spec == "" {
		return fmt.Errorf("scheduler cron expression not configured")
	}

	c := cron.New(
		cron.WithLocation(a.cfg.Scheduler.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	_, err := c.AddFunc(spec, func() {
		if err := a.Run(ctx); err != nil {
			a.logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register cron job %q: %w", spec, err)
	}

	a.logger.Info("scheduler started", "cron", spec, "timezone", a.cfg.Scheduler.Location().String())
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	a.logger.Info("scheduler stopped")
	return nil
}
