package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "INTEL_DIGEST_CONFIG"

	smtpHostEnv      = "SMTP_HOST"
	smtpPortEnv      = "SMTP_PORT"
	smtpUserEnv      = "SMTP_USER"
	smtpPassEnv      = "SMTP_PASS"
	emailToEnv       = "EMAIL_TO"
	githubTokenEnv   = "GITHUB_TOKEN"
	openAIKeyEnv     = "OPENAI_API_KEY"
	anthropicKeyEnv  = "ANTHROPIC_API_KEY"
	finnhubKeyEnv    = "FINNHUB_API_KEY"
	feishuWebhookEnv = "FEISHU_WEBHOOK_URL"
	llmModelEnv      = "LLM_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Mail      MailConfig      `yaml:"mail"`
	Feishu    FeishuConfig    `yaml:"feishu"`
	LLM       LLMConfig       `yaml:"llm"`
	Market    MarketConfig    `yaml:"market"`
	Feeds     FeedsConfig     `yaml:"feeds"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when the daemon mode should run the pipeline.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// PipelineConfig bounds the orchestrator's concurrency and timeouts.
type PipelineConfig struct {
	FetchConcurrency     int `yaml:"fetchConcurrency"`
	SummarizeConcurrency int `yaml:"summarizeConcurrency"`
	SourceTimeoutSecs    int `yaml:"sourceTimeoutSecs"`
	RunTimeoutSecs       int `yaml:"runTimeoutSecs"`
	MaxItemsPerFeed      int `yaml:"maxItemsPerFeed"`
}

// SourceTimeout is the per-adapter call ceiling.
func (p PipelineConfig) SourceTimeout() time.Duration {
	return time.Duration(p.SourceTimeoutSecs) * time.Second
}

// RunTimeout is the whole-run aggregate ceiling.
func (p PipelineConfig) RunTimeout() time.Duration {
	return time.Duration(p.RunTimeoutSecs) * time.Second
}

// MailConfig wires authenticated SMTP delivery. Recipients accepts a
// comma-separated address list.
type MailConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Recipients string `yaml:"recipients"`
}

// RecipientList splits the configured recipients into individual addresses.
func (m MailConfig) RecipientList() []string {
	parts := strings.Split(m.Recipients, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if addr := strings.TrimSpace(p); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Configured reports whether delivery credentials are present at all.
func (m MailConfig) Configured() bool {
	return m.User != "" && m.Password != "" && len(m.RecipientList()) > 0
}

// FeishuConfig holds the optional group-chat webhook.
type FeishuConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
}

// LLMConfig carries credentials for the summarization provider chain. Any
// absent credential shrinks the chain; an empty config means immediate
// fallback to original text.
type LLMConfig struct {
	GitHubToken     string `yaml:"githubToken"`
	GitHubEndpoint  string `yaml:"githubEndpoint"`
	OpenAIAPIKey    string `yaml:"openaiApiKey"`
	AnthropicAPIKey string `yaml:"anthropicApiKey"`
	Model           string `yaml:"model"`
}

// IndexConfig names one tracked market index symbol.
type IndexConfig struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// MarketConfig wires the quote provider and the surge-stock scan.
type MarketConfig struct {
	FinnhubAPIKey  string        `yaml:"finnhubApiKey"`
	Indices        []IndexConfig `yaml:"indices"`
	Watchlist      []string      `yaml:"watchlist"`
	SurgeThreshold float64       `yaml:"surgeThreshold"`
}

// FeedsConfig lists the upstream feed URLs per category. Figure mirrors are
// redundant endpoints for the same account; the adapter accepts the first
// mirror that responds.
type FeedsConfig struct {
	FigureMirrors map[string][]string `yaml:"figureMirrors"`
	FigurePages   []string            `yaml:"figurePages"`
	Energy        []string            `yaml:"energy"`
	Gold          []string            `yaml:"gold"`
	Oil           []string            `yaml:"oil"`
	Military      []string            `yaml:"military"`
	AI            []string            `yaml:"ai"`
	Space         []string            `yaml:"space"`
	Fed           []string            `yaml:"fed"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Mail.Host = v
	}
	if v := os.Getenv(smtpPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Mail.Port = port
		}
	}
	if v := os.Getenv(smtpUserEnv); v != "" {
		c.Mail.User = v
	}
	if v := os.Getenv(smtpPassEnv); v != "" {
		c.Mail.Password = v
	}
	if v := os.Getenv(emailToEnv); v != "" {
		c.Mail.Recipients = v
	}
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.LLM.GitHubToken = v
	}
	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.LLM.OpenAIAPIKey = v
	}
	if v := os.Getenv(anthropicKeyEnv); v != "" {
		c.LLM.AnthropicAPIKey = v
	}
	if v := os.Getenv(finnhubKeyEnv); v != "" {
		c.Market.FinnhubAPIKey = v
	}
	if v := os.Getenv(feishuWebhookEnv); v != "" {
		c.Feishu.WebhookURL = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Pipeline.FetchConcurrency > 0 {
		base.Pipeline.FetchConcurrency = override.Pipeline.FetchConcurrency
	}
	if override.Pipeline.SummarizeConcurrency > 0 {
		base.Pipeline.SummarizeConcurrency = override.Pipeline.SummarizeConcurrency
	}
	if override.Pipeline.SourceTimeoutSecs > 0 {
		base.Pipeline.SourceTimeoutSecs = override.Pipeline.SourceTimeoutSecs
	}
	if override.Pipeline.RunTimeoutSecs > 0 {
		base.Pipeline.RunTimeoutSecs = override.Pipeline.RunTimeoutSecs
	}
	if override.Pipeline.MaxItemsPerFeed > 0 {
		base.Pipeline.MaxItemsPerFeed = override.Pipeline.MaxItemsPerFeed
	}

	if override.Mail.Host != "" {
		base.Mail.Host = override.Mail.Host
	}
	if override.Mail.Port != 0 {
		base.Mail.Port = override.Mail.Port
	}
	if override.Mail.User != "" {
		base.Mail.User = override.Mail.User
	}
	if override.Mail.Password != "" {
		base.Mail.Password = override.Mail.Password
	}
	if override.Mail.Recipients != "" {
		base.Mail.Recipients = override.Mail.Recipients
	}

	if override.Feishu.WebhookURL != "" {
		base.Feishu.WebhookURL = override.Feishu.WebhookURL
	}

	if override.LLM.GitHubToken != "" {
		base.LLM.GitHubToken = override.LLM.GitHubToken
	}
	if override.LLM.GitHubEndpoint != "" {
		base.LLM.GitHubEndpoint = override.LLM.GitHubEndpoint
	}
	if override.LLM.OpenAIAPIKey != "" {
		base.LLM.OpenAIAPIKey = override.LLM.OpenAIAPIKey
	}
	if override.LLM.AnthropicAPIKey != "" {
		base.LLM.AnthropicAPIKey = override.LLM.AnthropicAPIKey
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}

	if override.Market.FinnhubAPIKey != "" {
		base.Market.FinnhubAPIKey = override.Market.FinnhubAPIKey
	}
	if len(override.Market.Indices) > 0 {
		base.Market.Indices = override.Market.Indices
	}
	if len(override.Market.Watchlist) > 0 {
		base.Market.Watchlist = override.Market.Watchlist
	}
	if override.Market.SurgeThreshold > 0 {
		base.Market.SurgeThreshold = override.Market.SurgeThreshold
	}

	if len(override.Feeds.FigureMirrors) > 0 {
		base.Feeds.FigureMirrors = override.Feeds.FigureMirrors
	}
	if len(override.Feeds.FigurePages) > 0 {
		base.Feeds.FigurePages = override.Feeds.FigurePages
	}
	if len(override.Feeds.Energy) > 0 {
		base.Feeds.Energy = override.Feeds.Energy
	}
	if len(override.Feeds.Gold) > 0 {
		base.Feeds.Gold = override.Feeds.Gold
	}
	if len(override.Feeds.Oil) > 0 {
		base.Feeds.Oil = override.Feeds.Oil
	}
	if len(override.Feeds.Military) > 0 {
		base.Feeds.Military = override.Feeds.Military
	}
	if len(override.Feeds.AI) > 0 {
		base.Feeds.AI = override.Feeds.AI
	}
	if len(override.Feeds.Space) > 0 {
		base.Feeds.Space = override.Feeds.Space
	}
	if len(override.Feeds.Fed) > 0 {
		base.Feeds.Fed = override.Feeds.Fed
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Pipeline: PipelineConfig{
			FetchConcurrency:     4,
			SummarizeConcurrency: 3,
			SourceTimeoutSecs:    60,
			RunTimeoutSecs:       600,
			MaxItemsPerFeed:      20,
		},
		Mail: MailConfig{Host: "smtp.gmail.com", Port: 587},
		LLM: LLMConfig{
			GitHubEndpoint: "https://models.inference.ai.azure.com/chat/completions",
			Model:          "gpt-4o-mini",
		},
		Market: MarketConfig{
			Indices: []IndexConfig{
				{Name: "S&P 500", Symbol: "SPY"},
				{Name: "NASDAQ 100", Symbol: "QQQ"},
				{Name: "Dow Jones", Symbol: "DIA"},
			},
			Watchlist: []string{
				"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA",
				"AVGO", "JPM", "V", "UNH", "WMT", "MA", "HD", "NFLX",
				"CRM", "ADBE", "INTC", "COST", "CSCO", "PEP", "DIS",
			},
			SurgeThreshold: 7.0,
		},
		Feeds: FeedsConfig{
			FigureMirrors: map[string][]string{
				"elonmusk": {
					"https://nitter.net/elonmusk/rss",
					"https://nitter.pussthecat.org/elonmusk/rss",
				},
				"realDonaldTrump": {
					"https://nitter.net/realDonaldTrump/rss",
					"https://nitter.pussthecat.org/realDonaldTrump/rss",
				},
			},
			Energy: []string{
				"https://www.eia.gov/rss/todayinenergy.xml",
				"https://feeds.reuters.com/reuters/energy",
			},
			Gold: []string{
				"https://news.google.com/rss/search?q=gold+price+24h&hl=en-US&gl=US&ceid=US:en",
			},
			Oil: []string{
				"https://news.google.com/rss/search?q=crude+oil+24h&hl=en-US&gl=US&ceid=US:en",
			},
			Military: []string{
				"https://news.google.com/rss/search?q=military+defense+24h&hl=en-US&gl=US&ceid=US:en",
			},
			AI: []string{
				"https://techcrunch.com/tag/artificial-intelligence/feed/",
			},
			Space: []string{
				"https://spacenews.com/feed/",
				"https://feeds.reuters.com/reuters/aerospace",
			},
			Fed: []string{
				"https://www.federalreserve.gov/feeds/press_all.xml",
				"https://feeds.reuters.com/reuters/businessNews",
			},
		},
	}
}
