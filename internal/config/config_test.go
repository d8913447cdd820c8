package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.String("db-url", "", "")
	f.String("db-schema", "retention", "")
	f.Int("batch-size", 100, "")
	f.Bool("verbose", false, "")
	return f
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "retention", cfg.DBSchema)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.DBURL)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("RETENTION_IMPORT_DB_SCHEMA", "staging")
	t.Setenv("RETENTION_IMPORT_BATCH_SIZE", "25")

	cfg, err := Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.DBSchema)
	assert.Equal(t, 25, cfg.BatchSize)
}

func TestLoadFlagsWinOverEnv(t *testing.T) {
	t.Setenv("RETENTION_IMPORT_DB_SCHEMA", "staging")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--db-schema", "prod", "--verbose"}))

	cfg, err := Load(flags, nil)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.DBSchema)
	assert.True(t, cfg.Verbose)
}

func TestLoadUnchangedFlagsDoNotClobberEnv(t *testing.T) {
	t.Setenv("RETENTION_IMPORT_BATCH_SIZE", "50")

	flags := testFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(flags, nil)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.BatchSize)
}

func TestLoadDatabaseURLFallback(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://fallback/db")

	cfg, err := Load(nil, os.LookupEnv)
	require.NoError(t, err)
	assert.Equal(t, "postgres://fallback/db", cfg.DBURL)

	t.Setenv("RETENTION_IMPORT_DB_URL", "postgres://scoped/db")
	cfg, err = Load(nil, os.LookupEnv)
	require.NoError(t, err)
	assert.Equal(t, "postgres://scoped/db", cfg.DBURL, "the scoped variable wins")
}

func TestLoadRejectsNonPositiveBatchSize(t *testing.T) {
	t.Setenv("RETENTION_IMPORT_BATCH_SIZE", "0")

	_, err := Load(nil, nil)
	assert.ErrorContains(t, err, "batch size")
}
