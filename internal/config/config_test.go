package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv() map[string]string {
	return map[string]string{
		EnvBotToken:     "123:abc",
		EnvRPCURL:       "https://api.mainnet-beta.solana.com",
		EnvReferralLink: "https://solrebound.com/?ref=abc123",
		EnvAdminID:      "1001",
		EnvCMCAPIKey:    "cmc-key",
		EnvChannelName:  "@solchannel",
	}
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv_Valid(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(validEnv()))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, int64(1001), cfg.AdminID)
	assert.Equal(t, "@solchannel", cfg.ChannelName)
	assert.Equal(t, DefaultOpsAddr, cfg.OpsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 15*time.Minute, cfg.Tunables.Price.CacheTTL)
	assert.Empty(t, cfg.PostgresDSN)
}

func TestFromEnv_Missing(t *testing.T) {
	env := validEnv()
	delete(env, EnvBotToken)
	env[EnvCMCAPIKey] = "   "

	_, err := FromEnv(lookupFrom(env))
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{EnvBotToken, EnvCMCAPIKey}, cfgErr.Missing)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestFromEnv_AllMissing(t *testing.T) {
	_, err := FromEnv(lookupFrom(map[string]string{}))
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Missing, 6)
}

func TestFromEnv_InvalidAdminID(t *testing.T) {
	env := validEnv()
	env[EnvAdminID] = "@owner"

	_, err := FromEnv(lookupFrom(env))
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{EnvAdminID}, cfgErr.Invalid)
	assert.Empty(t, cfgErr.Missing)
}

func TestFromEnv_OpsAddrDisabled(t *testing.T) {
	env := validEnv()
	env[EnvOpsAddr] = ""

	cfg, err := FromEnv(lookupFrom(env))
	require.NoError(t, err)
	assert.Empty(t, cfg.OpsAddr)
}

func TestLoadTunables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
price:
  cache_ttl: 5m
  timeout: 3s
partner:
  stats_url: https://example.com/stats
bot:
  workers: 4
`), 0o600))

	tun, err := LoadTunables(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, tun.Price.CacheTTL)
	assert.Equal(t, 3*time.Second, tun.Price.Timeout)
	assert.Equal(t, "SOL", tun.Price.Symbol)
	assert.Equal(t, "https://example.com/stats", tun.Partner.StatsURL)
	assert.Equal(t, 4, tun.Bot.Workers)
	assert.Equal(t, 60, tun.Bot.PollTimeout)
}

func TestLoadTunables_Errors(t *testing.T) {
	_, err := LoadTunables(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("price: [unclosed"), 0o600))
	_, err = LoadTunables(path)
	assert.Error(t, err)
}

func TestLoad_EnvFile(t *testing.T) {
	for key := range validEnv() {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv(EnvChannelName, "@fromenv")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "BOT_TOKEN=123:abc\nRPC_URL=https://rpc.example\nPARTNER_REFERRAL_LINK=https://x.io/?ref=r\n" +
		"PARTNER_TELEGRAM_ID=7\nCMC_API_KEY=k\nCHANNEL_NAME=@fromfile\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(envFile, "")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, int64(7), cfg.AdminID)
	// Existing environment wins over the file.
	assert.Equal(t, "@fromenv", cfg.ChannelName)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	for key, v := range validEnv() {
		t.Setenv(key, v)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"), "")
	require.NoError(t, err)
	assert.Equal(t, "cmc-key", cfg.CMCAPIKey)
}
