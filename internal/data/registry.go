package data

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Registry holds all static content tables for a session. Lookups return nil
// for unknown ids; callers log a warning and abort the operation, they never
// treat a missing definition as fatal.
type Registry struct {
	enemies   map[string]*EnemyDef
	abilities map[string]*AbilityDef
	items     map[string]*ItemDef
	zones     []*ZoneDef
}

// NewRegistry creates an empty content registry.
func NewRegistry() *Registry {
	return &Registry{
		enemies:   make(map[string]*EnemyDef),
		abilities: make(map[string]*AbilityDef),
		items:     make(map[string]*ItemDef),
	}
}

// Enemy returns the enemy definition for id, or nil.
func (r *Registry) Enemy(id string) *EnemyDef {
	return r.enemies[id]
}

// Ability returns the ability definition for id, or nil.
func (r *Registry) Ability(id string) *AbilityDef {
	return r.abilities[id]
}

// Item returns the item definition for id, or nil.
func (r *Registry) Item(id string) *ItemDef {
	return r.items[id]
}

// Zones returns all spawn zone definitions in load order.
func (r *Registry) Zones() []*ZoneDef {
	return r.zones
}

// AddEnemy registers an enemy definition (load path and tests).
func (r *Registry) AddEnemy(def *EnemyDef) {
	r.enemies[def.ID] = def
}

// AddAbility registers an ability definition after validation.
func (r *Registry) AddAbility(def *AbilityDef) error {
	if err := def.validate(); err != nil {
		return err
	}
	r.abilities[def.ID] = def
	return nil
}

// AddItem registers an item definition.
func (r *Registry) AddItem(def *ItemDef) {
	r.items[def.ID] = def
}

// AddZone registers a spawn zone definition.
func (r *Registry) AddZone(def *ZoneDef) {
	r.zones = append(r.zones, def)
}

// Counts returns table sizes for startup logging.
func (r *Registry) Counts() (enemies, abilities, items, zones int) {
	return len(r.enemies), len(r.abilities), len(r.items), len(r.zones)
}

// LoadDir populates the registry from YAML content files in dir:
// enemies.yaml, abilities.yaml, items.yaml, zones.yaml. Missing files are
// skipped so partial content sets load cleanly in tests and tools.
func (r *Registry) LoadDir(dir string) error {
	var enemies []*EnemyDef
	if err := loadYAML(filepath.Join(dir, "enemies.yaml"), &enemies); err != nil {
		return err
	}
	for _, def := range enemies {
		r.AddEnemy(def)
	}

	var abilities []*AbilityDef
	if err := loadYAML(filepath.Join(dir, "abilities.yaml"), &abilities); err != nil {
		return err
	}
	for _, def := range abilities {
		if err := r.AddAbility(def); err != nil {
			return fmt.Errorf("loading abilities: %w", err)
		}
	}

	var items []*ItemDef
	if err := loadYAML(filepath.Join(dir, "items.yaml"), &items); err != nil {
		return err
	}
	for _, def := range items {
		r.AddItem(def)
	}

	var zones []*ZoneDef
	if err := loadYAML(filepath.Join(dir, "zones.yaml"), &zones); err != nil {
		return err
	}
	for _, def := range zones {
		r.AddZone(def)
	}

	e, a, i, z := r.Counts()
	slog.Info("content loaded",
		"dir", dir,
		"enemies", e,
		"abilities", a,
		"items", i,
		"zones", z)
	return nil
}

// loadYAML unmarshals one content file into out. A missing file is not an
// error; a malformed file is.
func loadYAML(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading content file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing content file %s: %w", path, err)
	}
	return nil
}
