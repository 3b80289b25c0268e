package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("r2_account_id", "acct")
	viper.Set("r2_access_key_id", "key")
	viper.Set("r2_secret_access_key", "secret")
	viper.Set("r2_production_bucket", "prod")
	viper.Set("r2_staging_bucket", "staging")
	viper.Set("manifest", "data/manifest.json")
	viper.Set("max_diff_lines", 200)
	viper.Set("loglevel", "debug")

	c, err := newConfig()
	require.NoError(t, err)
	assert.Equal(t, "acct", c.AccountID)
	assert.Equal(t, "key", c.AccessKey)
	assert.Equal(t, "secret", c.SecretKey)
	assert.Equal(t, "prod", c.ProductionBucket)
	assert.Equal(t, "staging", c.StagingBucket)
	assert.Equal(t, "data/manifest.json", c.ManifestPath)
	assert.Equal(t, 200, c.MaxDiffLines)
	assert.Equal(t, "debug", c.LogLevel)
	assert.NoError(t, c.validateR2())
}

func TestValidateR2Missing(t *testing.T) {
	c := &Config{
		AccountID:        "acct",
		ProductionBucket: "prod",
	}
	err := c.validateR2()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "r2_access_key_id")
	assert.Contains(t, err.Error(), "r2_secret_access_key")
	assert.Contains(t, err.Error(), "r2_staging_bucket")
	assert.NotContains(t, err.Error(), "r2_account_id")
	assert.NotContains(t, err.Error(), "r2_production_bucket")
}
