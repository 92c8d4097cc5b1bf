package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Arena: ArenaConfig{
			Width:  1400,
			Height: 800,
			TickHz: 60,
		},
		Match: MatchConfig{
			Mode:            "ai",
			Difficulty:      "medium",
			Name:            "Player 1",
			P1Weapon:        "sword",
			P1Armor:         "light",
			P2Weapon:        "bow",
			P2Armor:         "heavy",
			RespawnMinTicks: 300,
			RespawnMaxTicks: 600,
		},
		Network: NetworkConfig{
			Host:           "0.0.0.0",
			Port:           5555,
			ConnectTimeout: 5 * time.Second,
			WriteTimeout:   100 * time.Millisecond,
			PollWindow:     time.Millisecond,
			MaxRecordBytes: 4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1400.0, cfg.Arena.Width)
	assert.Equal(t, 800.0, cfg.Arena.Height)
	assert.Equal(t, 60, cfg.Arena.TickHz)
	assert.Equal(t, 5555, cfg.Network.Port)
	assert.Equal(t, time.Millisecond, cfg.Network.PollWindow)
}

func TestNetworkAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:5555", cfg.Network.Addr())
}

func TestTickInterval(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, time.Second/60, cfg.Arena.TickInterval())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
arena:
  width: 1000
  height: 600
  tick_hz: 30
match:
  mode: versus
  difficulty: hard
  p1_weapon: axe
  p1_armor: heavy
network:
  host: 127.0.0.1
  port: 6001
  poll_window: 2ms
logging:
  level: debug
  format: console
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, cfg.Arena.Width)
	assert.Equal(t, 30, cfg.Arena.TickHz)
	assert.Equal(t, "versus", cfg.Match.Mode)
	assert.Equal(t, "axe", cfg.Match.P1Weapon)
	assert.Equal(t, "sword", cfg.Match.P2Weapon)
	assert.Equal(t, 6001, cfg.Network.Port)
	assert.Equal(t, 2*time.Millisecond, cfg.Network.PollWindow)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network:\n  port: 6001\n"), 0644))
	t.Setenv("ARENA_NETWORK_PORT", "7001")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Network.Port)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateMatchMode(t *testing.T) {
	for _, mode := range []string{"versus", "ai", "host", "join"} {
		cfg := validConfig()
		cfg.Match.Mode = mode
		assert.NoError(t, cfg.Validate(), "mode %q should be valid", mode)
	}
	cfg := validConfig()
	cfg.Match.Mode = "spectate"
	assert.Error(t, cfg.Validate())
}

func TestValidateDifficulty(t *testing.T) {
	cfg := validConfig()
	cfg.Match.Difficulty = "nightmare"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoadoutEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Match.P2Weapon = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Match.P1Armor = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRespawnRange(t *testing.T) {
	cfg := validConfig()
	cfg.Match.RespawnMinTicks = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Match.RespawnMinTicks = 700
	assert.Error(t, cfg.Validate())
}

func TestValidateArena(t *testing.T) {
	cfg := validConfig()
	cfg.Arena.Width = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Arena.TickHz = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateNetwork(t *testing.T) {
	cfg := validConfig()
	cfg.Network.PollWindow = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Network.MaxRecordBytes = 10
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Network.Port = 0
	cfg.Logging.Level = "trace"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network.port")
	assert.Contains(t, err.Error(), "logging.level")
}

// Property-based tests

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Network.Port = port
		err := cfg.Validate()
		if err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyInvalidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Generate ports outside valid range
		port := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.Network.Port = port
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}

func TestPropertyRespawnMaxNeverBelowMin(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		min := rapid.IntRange(1, 1000).Draw(t, "min")
		max := rapid.IntRange(0, min-1).Draw(t, "max")
		cfg := validConfig()
		cfg.Match.RespawnMinTicks = min
		cfg.Match.RespawnMaxTicks = max
		if cfg.Validate() == nil {
			t.Fatalf("respawn range [%d, %d] accepted", min, max)
		}
	})
}
