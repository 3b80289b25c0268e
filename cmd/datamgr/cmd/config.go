package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config carries every externally supplied setting, loaded once at
// process start and passed down to component constructors.
type Config struct {
	AccountID        string `mapstructure:"r2_account_id"`
	AccessKey        string `mapstructure:"r2_access_key_id"`
	SecretKey        string `mapstructure:"r2_secret_access_key"`
	ProductionBucket string `mapstructure:"r2_production_bucket"`
	StagingBucket    string `mapstructure:"r2_staging_bucket"`
	ManifestPath     string `mapstructure:"manifest"`
	MaxDiffLines     int    `mapstructure:"max_diff_lines"`
	LogLevel         string `mapstructure:"loglevel"`
}

func newConfig() (*Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// validateR2 checks the settings any bucket-touching command needs.
func (c *Config) validateR2() error {
	var missing []string
	required := []struct {
		key string
		val string
	}{
		{"r2_account_id", c.AccountID},
		{"r2_access_key_id", c.AccessKey},
		{"r2_secret_access_key", c.SecretKey},
		{"r2_production_bucket", c.ProductionBucket},
		{"r2_staging_bucket", c.StagingBucket},
	}
	for _, r := range required {
		if r.val == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
