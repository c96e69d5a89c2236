package config

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
)

type Config struct {
	HTTPAddr        string        `hcl:"http_addr" env:"HTTP_ADDR" default:"127.0.0.1:8088"`
	RefreshInterval time.Duration `hcl:"refresh_interval" env:"REFRESH_INTERVAL" default:"5m"`
	DefaultCategory string        `hcl:"default_category" env:"DEFAULT_CATEGORY" default:"general"`
	RetentionCap    int           `hcl:"retention_cap" env:"RETENTION_CAP" default:"50"`

	Provider      string        `hcl:"provider" env:"PROVIDER" default:"openai"`
	Fallback      bool          `hcl:"fallback" env:"FALLBACK" default:"true"`
	BatchSize     int           `hcl:"batch_size" env:"BATCH_SIZE" default:"5"`
	AIBaseURL     string        `hcl:"ai_base_url" env:"AI_BASE_URL"`
	AIKey         string        `hcl:"ai_key" env:"AI_KEY"`
	AIModel       string        `hcl:"ai_model" env:"AI_MODEL" default:"gpt-3.5-turbo"`
	AITemperature float64       `hcl:"ai_temperature" env:"AI_TEMPERATURE" default:"0.8"`
	AITimeout     time.Duration `hcl:"ai_timeout" env:"AI_TIMEOUT" default:"2m"`

	RSSFeeds       []string      `hcl:"rss_feeds" env:"RSS_FEEDS"`
	RSSInsecure    bool          `hcl:"rss_insecure" env:"RSS_INSECURE"`
	FilterKeywords []string      `hcl:"filter_keywords" env:"FILTER_KEYWORDS"`
	TrendingWindow time.Duration `hcl:"trending_window" env:"TRENDING_WINDOW" default:"2h"`

	TelegramBotToken    string `hcl:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChannelID   int64  `hcl:"telegram_channel_id" env:"TELEGRAM_CHANNEL_ID"`
	TelegramAdminChatID int64  `hcl:"telegram_admin_chat_id" env:"TELEGRAM_ADMIN_CHAT_ID"`
}

var (
	cfg  Config
	once sync.Once
)

func Get() Config {
	once.Do(func() {
		loaded, err := Load(
			"./config.hcl",
			"./config.local.hcl",
			"$HOME/.config/newsfeed/config.hcl",
		)
		if err != nil {
			slog.Error("failed to load config", "err", err)
		}
		cfg = loaded
	})

	return cfg
}

// Load reads configuration from the given HCL files and NEWSFEED_* env
// variables on top of the defaults.
func Load(files ...string) (Config, error) {
	var c Config
	loader := aconfig.LoaderFor(&c, aconfig.Config{
		EnvPrefix: "NEWSFEED",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	err := loader.Load()
	return c, err
}
