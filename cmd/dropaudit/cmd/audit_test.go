package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfdtools/dropaudit/pkg/audit"
	"github.com/nfdtools/dropaudit/pkg/errors"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestBuildConfigDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := buildConfig()
	require.NoError(t, err)

	defaults := audit.DefaultConfig()
	assert.Equal(t, defaults.ParentAppID, cfg.ParentAppID)
	assert.Equal(t, defaults.AssetID, cfg.AssetID)
	assert.True(t, defaults.Rate.Equal(cfg.Rate))
}

func TestBuildConfigOverrides(t *testing.T) {
	resetViper(t)
	viper.Set("parent-app-id", "999")
	viper.Set("distributor", "OTHER_ADDR")
	viper.Set("asset-id", uint64(7))
	viper.Set("rate", "12.5")
	viper.Set("blacklist", []string{"X", "Y"})
	viper.Set("page-size", 50)
	viper.Set("nonqualifying-basis", "outstanding")

	cfg, err := buildConfig()
	require.NoError(t, err)

	assert.Equal(t, "999", cfg.ParentAppID)
	assert.Equal(t, "OTHER_ADDR", cfg.Distributor)
	assert.Equal(t, uint64(7), cfg.AssetID)
	assert.Equal(t, "12.5", cfg.Rate.String())
	assert.Equal(t, []string{"X", "Y"}, cfg.Blacklist)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, audit.BasisOutstanding, cfg.NonQualifyingBasis)
}

func TestBuildConfigBadRate(t *testing.T) {
	resetViper(t)
	viper.Set("rate", "not-a-number")

	_, err := buildConfig()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestBuildConfigInvalidBasis(t *testing.T) {
	resetViper(t)
	viper.Set("nonqualifying-basis", "everyone")

	_, err := buildConfig()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
