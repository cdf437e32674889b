package configuration

import (
	"time"
)

type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Telegram      TelegramConfig      `yaml:"telegram"`
	Metering      MeteringConfig      `yaml:"metering"`
	Deduplication DeduplicationConfig `yaml:"deduplication"`
	Search        SearchConfig        `yaml:"search"`
	Throttler     ThrottlerConfig     `yaml:"throttler"`
	Features      FeaturesConfig      `yaml:"features"`
}

type ServiceConfig struct {
	MetricsPort int `yaml:"metrics_port"`
}

type DatabaseConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	DBName      string `yaml:"dbname"`
	SSLMode     string `yaml:"ssl_mode"`
	TimeZone    string `yaml:"time_zone"`
	ReplicaHost string `yaml:"replica_host"`
}

type RedisConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

type TelegramConfig struct {
	BotToken          string   `yaml:"bot_token"`
	APIEndpoint       string   `yaml:"api_endpoint"`
	PollerTimeout     int      `yaml:"poller_timeout"`
	AllowedUpdates    []string `yaml:"allowed_updates"`
	DiplomatChunkSize int      `yaml:"diplomat_chunk_size"`
}

type MeteringConfig struct {
	// Timezone used to decide when a usage day rolls over. Empty means the
	// process-local timezone.
	DayTimezone string `yaml:"day_timezone"`
}

type DeduplicationConfig struct {
	SimilarityThreshold float64       `yaml:"similarity_threshold"`
	DefaultLimit        int           `yaml:"default_limit"`
	RunTimeout          time.Duration `yaml:"run_timeout"`
	LockTTL             time.Duration `yaml:"lock_ttl"`
}

type SearchConfig struct {
	OpenAIToken    string        `yaml:"openai_token"`
	KeywordModel   string        `yaml:"keyword_model"`
	KeywordTimeout time.Duration `yaml:"keyword_timeout"`
	ResultLimit    int           `yaml:"result_limit"`
}

type ThrottlerConfig struct {
	Limit time.Duration `yaml:"limit"`
}

type FeaturesConfig struct {
	UnleashAPIURL     string `yaml:"unleash_api_url"`
	UnleashAppName    string `yaml:"unleash_app_name"`
	UnleashInstanceID string `yaml:"unleash_instance_id"`
	RefreshInterval   int    `yaml:"refresh_interval"`
}
