package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SimServer holds all configuration for the simulation server.
type SimServer struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Tick loop
	TickIntervalMs int `yaml:"tick_interval_ms"`

	// Content
	ContentDir string         `yaml:"content_dir"`
	Database   DatabaseConfig `yaml:"database"` // optional; empty host → YAML content

	// Gateway
	GatewayBind string `yaml:"gateway_bind"`
	GatewayPort int    `yaml:"gateway_port"`

	// Gameplay tuning
	Tuning Tuning `yaml:"tuning"`

	// Player
	Player PlayerConfig `yaml:"player"`
}

// Tuning groups the gameplay constants the source hardcoded; they are
// configuration here so balance changes need no rebuild.
type Tuning struct {
	// AttackHysteresis scales perception range for leaving ATTACKING state,
	// preventing state flicker at the boundary.
	AttackHysteresis float64 `yaml:"attack_hysteresis"`

	// AttackDamageDelay is the delay between attack start and damage
	// application, seconds.
	AttackDamageDelay float64 `yaml:"attack_damage_delay"`

	// Difficulty scales spawn zone activation radii.
	Difficulty float64 `yaml:"difficulty"`

	// CorpseCleanupDelay is how long a dead enemy lingers before removal,
	// seconds.
	CorpseCleanupDelay float64 `yaml:"corpse_cleanup_delay"`

	// PickupLifetime is how long dropped loot stays in the world, seconds.
	PickupLifetime float64 `yaml:"pickup_lifetime"`
}

// PlayerConfig seeds the player entity.
type PlayerConfig struct {
	Stats    map[string]float64 `yaml:"stats"` // lower-cased stat names
	Position Position           `yaml:"position"`
}

// Position is a YAML-friendly world point.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the optional
// content database.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// Enabled reports whether a content database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSimServer returns SimServer config with sensible defaults.
func DefaultSimServer() SimServer {
	return SimServer{
		LogLevel:       "info",
		TickIntervalMs: 50,
		ContentDir:     "content",
		GatewayBind:    "0.0.0.0",
		GatewayPort:    8080,
		Tuning: Tuning{
			AttackHysteresis:   1.2,
			AttackDamageDelay:  0.5,
			Difficulty:         1.0,
			CorpseCleanupDelay: 60,
			PickupLifetime:     300,
		},
		Player: PlayerConfig{
			Stats: map[string]float64{
				"speed":           5,
				"runspeed":        8,
				"damage":          10,
				"attackrange":     2.5,
				"perceptionrange": 0,
				"maxhealth":       100,
				"damagereduction": 0,
				"coldresistance":  0,
			},
		},
	}
}

// LoadSimServer loads simulation server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimServer(path string) (SimServer, error) {
	cfg := DefaultSimServer()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
