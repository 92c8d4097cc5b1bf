// Package config provides Viper-based configuration loading for the arena.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ArenaConfig holds the playfield and tick settings.
type ArenaConfig struct {
	// Width is the arena width in world units.
	Width float64 `mapstructure:"width"`
	// Height is the arena height in world units.
	Height float64 `mapstructure:"height"`
	// TickHz is the fixed simulation rate.
	TickHz int `mapstructure:"tick_hz"`
}

// TickInterval returns the duration of one simulation tick.
//
// Precondition: TickHz > 0.
func (a ArenaConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(a.TickHz)
}

// MatchConfig holds the match setup selected before play begins.
type MatchConfig struct {
	// Mode is one of "versus", "ai", "host", "join".
	Mode string `mapstructure:"mode"`
	// Difficulty is the AI tier: "easy", "medium", "hard".
	Difficulty string `mapstructure:"difficulty"`
	// Name is the local combatant's display name.
	Name     string `mapstructure:"name"`
	P1Weapon string `mapstructure:"p1_weapon"`
	P1Armor  string `mapstructure:"p1_armor"`
	// P2Weapon and P2Armor select the second player's loadout in versus
	// mode; the AI opponent draws its own.
	P2Weapon string `mapstructure:"p2_weapon"`
	P2Armor  string `mapstructure:"p2_armor"`
	// Seed seeds the match random source; 0 selects a crypto-backed source.
	Seed int64 `mapstructure:"seed"`
	// RespawnMinTicks and RespawnMaxTicks bound the pickup respawn threshold.
	RespawnMinTicks int `mapstructure:"respawn_min_ticks"`
	RespawnMaxTicks int `mapstructure:"respawn_max_ticks"`
}

// NetworkConfig holds the peer-to-peer transport settings.
type NetworkConfig struct {
	// Host is the bind address when hosting and the default peer address when joining.
	Host string `mapstructure:"host"`
	// Port is the fixed TCP port of the match.
	Port int `mapstructure:"port"`
	// ConnectTimeout bounds the join peer's dial.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// WriteTimeout bounds each fire-and-forget send.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PollWindow is the read deadline used for each non-blocking receive.
	PollWindow time.Duration `mapstructure:"poll_window"`
	// MaxRecordBytes caps a single newline-delimited record.
	MaxRecordBytes int `mapstructure:"max_record_bytes"`
}

// Addr returns the "host:port" address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (n NetworkConfig) Addr() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig points at optional weapon and armor YAML directories.
// Empty directories select the built-in tables.
type ContentConfig struct {
	WeaponsDir string `mapstructure:"weapons_dir"`
	ArmorDir   string `mapstructure:"armor_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Arena   ArenaConfig   `mapstructure:"arena"`
	Match   MatchConfig   `mapstructure:"match"`
	Network NetworkConfig `mapstructure:"network"`
	Logging LoggingConfig `mapstructure:"logging"`
	Content ContentConfig `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateArena(c.Arena); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateMatch(c.Match); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateNetwork(c.Network); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateArena(a ArenaConfig) error {
	var errs []string
	if a.Width <= 0 {
		errs = append(errs, fmt.Sprintf("arena.width must be > 0, got %v", a.Width))
	}
	if a.Height <= 0 {
		errs = append(errs, fmt.Sprintf("arena.height must be > 0, got %v", a.Height))
	}
	if a.TickHz < 1 || a.TickHz > 1000 {
		errs = append(errs, fmt.Sprintf("arena.tick_hz must be 1-1000, got %d", a.TickHz))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateMatch(m MatchConfig) error {
	var errs []string
	validModes := map[string]bool{"versus": true, "ai": true, "host": true, "join": true}
	if !validModes[m.Mode] {
		errs = append(errs, fmt.Sprintf("match.mode must be one of [versus, ai, host, join], got %q", m.Mode))
	}
	validTiers := map[string]bool{"easy": true, "medium": true, "hard": true}
	if !validTiers[m.Difficulty] {
		errs = append(errs, fmt.Sprintf("match.difficulty must be one of [easy, medium, hard], got %q", m.Difficulty))
	}
	if m.P1Weapon == "" || m.P2Weapon == "" {
		errs = append(errs, "match.p1_weapon and match.p2_weapon must not be empty")
	}
	if m.P1Armor == "" || m.P2Armor == "" {
		errs = append(errs, "match.p1_armor and match.p2_armor must not be empty")
	}
	if m.RespawnMinTicks < 1 {
		errs = append(errs, fmt.Sprintf("match.respawn_min_ticks must be >= 1, got %d", m.RespawnMinTicks))
	}
	if m.RespawnMaxTicks < m.RespawnMinTicks {
		errs = append(errs, "match.respawn_max_ticks must not be less than match.respawn_min_ticks")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateNetwork(n NetworkConfig) error {
	var errs []string
	if n.Port < 1 || n.Port > 65535 {
		errs = append(errs, fmt.Sprintf("network.port must be 1-65535, got %d", n.Port))
	}
	if n.ConnectTimeout < 0 {
		errs = append(errs, "network.connect_timeout must not be negative")
	}
	if n.WriteTimeout < 0 {
		errs = append(errs, "network.write_timeout must not be negative")
	}
	if n.PollWindow <= 0 {
		errs = append(errs, "network.poll_window must be > 0")
	}
	if n.MaxRecordBytes < 64 {
		errs = append(errs, fmt.Sprintf("network.max_record_bytes must be >= 64, got %d", n.MaxRecordBytes))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ARENA_ prefix
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by the defaults alone.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: defaults failed validation: " + err.Error())
	}
	return cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("arena.width", 1400)
	v.SetDefault("arena.height", 800)
	v.SetDefault("arena.tick_hz", 60)

	v.SetDefault("match.mode", "ai")
	v.SetDefault("match.difficulty", "medium")
	v.SetDefault("match.name", "Player 1")
	v.SetDefault("match.p1_weapon", "sword")
	v.SetDefault("match.p1_armor", "light")
	v.SetDefault("match.p2_weapon", "sword")
	v.SetDefault("match.p2_armor", "light")
	v.SetDefault("match.seed", 0)
	v.SetDefault("match.respawn_min_ticks", 300)
	v.SetDefault("match.respawn_max_ticks", 600)

	v.SetDefault("network.host", "0.0.0.0")
	v.SetDefault("network.port", 5555)
	v.SetDefault("network.connect_timeout", "5s")
	v.SetDefault("network.write_timeout", "100ms")
	v.SetDefault("network.poll_window", "1ms")
	v.SetDefault("network.max_record_bytes", 4096)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.weapons_dir", "")
	v.SetDefault("content.armor_dir", "")
}
