// Package config loads harvester settings via Viper: built-in defaults, then
// an optional config file, then REVIEWS_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/amonks/reviews/metacritic"
	"github.com/amonks/reviews/request"
)

// Config captures every knob. The defaults reproduce a plain run in the
// current directory.
type Config struct {
	Listing   ListingConfig   `mapstructure:"listing"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Watermark WatermarkConfig `mapstructure:"watermark"`
	Output    OutputConfig    `mapstructure:"output"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Harvest   HarvestConfig   `mapstructure:"harvest"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ListingConfig points at the first listing page.
type ListingConfig struct {
	URL string `mapstructure:"url"`
}

// HTTPConfig controls outgoing requests. A zero timeout waits forever.
type HTTPConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type WatermarkConfig struct {
	Path string `mapstructure:"path"`
}

type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// ArchiveConfig locates the sqlite archive. An empty path disables it.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig enables replaying album pages from disk. An empty dir disables
// it.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// HarvestConfig tunes the driver.
type HarvestConfig struct {
	// Stop paginating after a page with nothing newer than the watermark.
	StopAtSeen bool `mapstructure:"stop_at_seen"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. path may be empty.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REVIEWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listing.url", metacritic.ListingURL)
	v.SetDefault("http.user_agent", request.DefaultUserAgent)
	v.SetDefault("http.timeout", time.Duration(0))
	v.SetDefault("watermark.path", "last_scraped_timestamp.txt")
	v.SetDefault("output.path", "metacritic_album_reviews.csv")
	v.SetDefault("archive.path", "reviews.db")
	v.SetDefault("cache.dir", "")
	v.SetDefault("harvest.stop_at_seen", false)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Listing.URL) == "" {
		return fmt.Errorf("listing.url must be set")
	}
	if strings.TrimSpace(c.HTTP.UserAgent) == "" {
		return fmt.Errorf("http.user_agent must be set")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must be >= 0")
	}
	if strings.TrimSpace(c.Watermark.Path) == "" {
		return fmt.Errorf("watermark.path must be set")
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("output.path must be set")
	}
	return nil
}
