package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"seen.sqlite3" description:"Path to the seen-items SQLite database"`

	// Source configuration
	SourcesFile string `long:"sources-file" env:"SOURCES_FILE" default:"sources.yaml" description:"YAML file with feed URLs, keywords and brand hints"`

	// Delivery configuration
	SlackWebhook  string `long:"slack-webhook" env:"SLACK_WEBHOOK" description:"Slack incoming webhook URL (required)" required:"true"`
	NotifyTimeout int    `long:"notify-timeout" env:"NOTIFY_TIMEOUT" default:"20" description:"Webhook delivery timeout in seconds"`

	// Pipeline tunables
	FuzzyThreshold    int `long:"fuzzy-threshold" env:"FUZZY_THRESHOLD" default:"80" description:"Title similarity score (0-100) at or above which items are considered duplicates"`
	FingerprintPrefix int `long:"fingerprint-prefix" env:"FINGERPRINT_PREFIX" default:"4000" description:"Number of leading characters of article content to fingerprint"`
	RecencyDays       int `long:"recency-days" env:"RECENCY_DAYS" default:"2" description:"Discard entries with a known publish date older than this many days"`
	MaxItems          int `long:"max-items" env:"MAX_ITEMS" default:"15" description:"Maximum number of items per digest"`
	FetchTimeout      int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"20" description:"Article fetch timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"newsbrief/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Seoul" description:"Timezone for publish dates and the digest header"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	loc, err := time.LoadLocation(raw.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", raw.Timezone, err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		SourcesFile:       raw.SourcesFile,
		SlackWebhook:      raw.SlackWebhook,
		NotifyTimeout:     time.Duration(raw.NotifyTimeout) * time.Second,
		FuzzyThreshold:    raw.FuzzyThreshold,
		FingerprintPrefix: raw.FingerprintPrefix,
		RecencyDays:       raw.RecencyDays,
		MaxItems:          raw.MaxItems,
		FetchTimeout:      time.Duration(raw.FetchTimeout) * time.Second,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Location:          loc,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
