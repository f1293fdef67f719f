package cfg

import "time"

type Cfg struct {
	// Storage configuration
	DBPath string

	// Source configuration
	SourcesFile string

	// Delivery configuration
	SlackWebhook  string
	NotifyTimeout time.Duration

	// Pipeline tunables
	FuzzyThreshold    int
	FingerprintPrefix int
	RecencyDays       int
	MaxItems          int
	FetchTimeout      time.Duration

	// Application metadata
	UserAgent string
	Timezone  string
	Location  *time.Location
	Debug     bool
	Version   string
}
