package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdirToEmptyTemp(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, defaultDatabaseFile, cfg.DatabaseFile)
	require.Equal(t, "", cfg.LockedPath)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_TomlFileOverridesDefaults(t *testing.T) {
	dir := chdirToEmptyTemp(t)
	toml := "locked_path = \"/mnt/locked\"\nunlocked_path = \"/mnt/unlocked\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "krypta.toml"), []byte(toml), 0o644))

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "/mnt/locked", cfg.LockedPath)
	require.Equal(t, "/mnt/unlocked", cfg.UnlockedPath)
}

func TestLoad_EnvOverridesToml(t *testing.T) {
	dir := chdirToEmptyTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "krypta.toml"), []byte("locked_path = \"/from-toml\"\n"), 0o644))

	t.Setenv("VAULT_LOCKED_PATH", "/from-env")
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "/from-env", cfg.LockedPath)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	chdirToEmptyTemp(t)
	t.Setenv("VAULT_LOCKED_PATH", "/from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("locked-path", "", "")
	require.NoError(t, flags.Set("locked-path", "/from-flag"))

	cfg, err := Load(flags)
	require.NoError(t, err)
	require.Equal(t, "/from-flag", cfg.LockedPath)
}

func TestLoad_DatabaseFileEnvUnprefixed(t *testing.T) {
	chdirToEmptyTemp(t)
	t.Setenv("DATABASE_FILE", "/tmp/other.db")

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "/tmp/other.db", cfg.DatabaseFile)
}

func chdirToEmptyTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return dir
}
