package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ashmelev/frostline/internal/data"
	"github.com/ashmelev/frostline/internal/model"
)

// ContentRepository loads enemy templates and spawn zones from Postgres.
// Ability and item tables stay in YAML; only the rows a live-ops team tunes
// between sessions live in the database.
type ContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository creates a content repository over a pool.
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

// LoadEnemies loads all enemy templates with their loot tables.
func (r *ContentRepository) LoadEnemies(ctx context.Context) ([]*data.EnemyDef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, speed, run_speed, damage, attack_range,
		       perception_range, max_health, damage_reduction, cold_resistance,
		       idle_min, idle_max, wander_radius,
		       wander_duration_min, wander_duration_max, attack_cooldown,
		       xp_reward, body_radius, body_height
		FROM enemy_templates
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading enemy templates: %w", err)
	}
	defer rows.Close()

	var defs []*data.EnemyDef
	for rows.Next() {
		var (
			def   data.EnemyDef
			stats = make(map[string]float64, 8)

			speed, runSpeed, damage, attackRange float64
			perceptionRange, maxHealth           float64
			damageReduction, coldResistance      float64
		)

		err := rows.Scan(
			&def.ID, &def.Name,
			&speed, &runSpeed, &damage, &attackRange,
			&perceptionRange, &maxHealth, &damageReduction, &coldResistance,
			&def.AI.IdleMin, &def.AI.IdleMax, &def.AI.WanderRadius,
			&def.AI.WanderDurationMin, &def.AI.WanderDurationMax, &def.AI.AttackCooldown,
			&def.XPReward, &def.BodyRadius, &def.BodyHeight,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning enemy template: %w", err)
		}

		stats["speed"] = speed
		stats["runspeed"] = runSpeed
		stats["damage"] = damage
		stats["attackrange"] = attackRange
		stats["perceptionrange"] = perceptionRange
		stats["maxhealth"] = maxHealth
		stats["damagereduction"] = damageReduction
		stats["coldresistance"] = coldResistance
		def.BaseStats = stats

		defs = append(defs, &def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating enemy templates: %w", err)
	}

	for _, def := range defs {
		loot, err := r.loadLoot(ctx, def.ID)
		if err != nil {
			return nil, err
		}
		def.Loot = loot
	}

	return defs, nil
}

// loadLoot loads the loot table of one enemy template.
func (r *ContentRepository) loadLoot(ctx context.Context, enemyID string) ([]model.LootEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT item_id, min_count, max_count, chance
		FROM loot_entries
		WHERE enemy_id = $1
		ORDER BY id`, enemyID)
	if err != nil {
		return nil, fmt.Errorf("loading loot for %q: %w", enemyID, err)
	}
	defer rows.Close()

	var entries []model.LootEntry
	for rows.Next() {
		var e model.LootEntry
		if err := rows.Scan(&e.ItemID, &e.MinCount, &e.MaxCount, &e.Chance); err != nil {
			return nil, fmt.Errorf("scanning loot entry for %q: %w", enemyID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating loot for %q: %w", enemyID, err)
	}
	return entries, nil
}

// LoadZones loads all spawn zones with their weighted spawn lists.
func (r *ContentRepository) LoadZones(ctx context.Context) ([]*data.ZoneDef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, center_x, center_y, center_z,
		       activation_radius, spawn_radius,
		       max_population, initial_spawn_count, respawn_delay
		FROM spawn_zones
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading spawn zones: %w", err)
	}
	defer rows.Close()

	var defs []*data.ZoneDef
	for rows.Next() {
		var def data.ZoneDef
		err := rows.Scan(
			&def.ID, &def.Center.X, &def.Center.Y, &def.Center.Z,
			&def.ActivationRadius, &def.SpawnRadius,
			&def.MaxPopulation, &def.InitialSpawnCount, &def.RespawnDelay,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning spawn zone: %w", err)
		}
		defs = append(defs, &def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn zones: %w", err)
	}

	for _, def := range defs {
		spawns, err := r.loadSpawnList(ctx, def.ID)
		if err != nil {
			return nil, err
		}
		def.SpawnList = spawns
	}

	return defs, nil
}

// loadSpawnList loads the weighted spawn rows of one zone.
func (r *ContentRepository) loadSpawnList(ctx context.Context, zoneID string) ([]data.WeightedSpawn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT enemy_id, weight
		FROM spawn_weights
		WHERE zone_id = $1
		ORDER BY id`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("loading spawn list for %q: %w", zoneID, err)
	}
	defer rows.Close()

	var spawns []data.WeightedSpawn
	for rows.Next() {
		var s data.WeightedSpawn
		if err := rows.Scan(&s.EnemyID, &s.Weight); err != nil {
			return nil, fmt.Errorf("scanning spawn weight for %q: %w", zoneID, err)
		}
		spawns = append(spawns, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn list for %q: %w", zoneID, err)
	}
	return spawns, nil
}

// Populate merges the database-backed tables into a content registry that
// already holds the YAML-sourced abilities and items.
func (r *ContentRepository) Populate(ctx context.Context, reg *data.Registry) error {
	enemies, err := r.LoadEnemies(ctx)
	if err != nil {
		return err
	}
	for _, def := range enemies {
		reg.AddEnemy(def)
	}

	zones, err := r.LoadZones(ctx)
	if err != nil {
		return err
	}
	for _, def := range zones {
		reg.AddZone(def)
	}

	return nil
}
