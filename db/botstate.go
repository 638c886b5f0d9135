package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	dbtx "gridbot/db/tx"
	"gridbot/models"
)

type PostgresBotStateRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for bot_moods table
var botMoodsColumns = []string{
	"id",
	"mood",
	"description",
	"intensity",
	"updated_at",
}

// Column names for bot_memories table
var botMemoriesColumns = []string{
	"id",
	"key",
	"value",
	"source",
	"created_at",
	"updated_at",
}

// Column names for bot_happenings table
var botHappeningsColumns = []string{
	"id",
	"content",
	"updated_at",
}

func NewPostgresBotStateRepository(db *sqlx.DB, schema string) *PostgresBotStateRepository {
	return &PostgresBotStateRepository{db: db, schema: schema}
}

func (r *PostgresBotStateRepository) CreateMood(ctx context.Context, mood *models.MoodState) error {
	db := dbtx.GetTransactional(ctx, r.db)
	query := fmt.Sprintf(`
		INSERT INTO %s.bot_moods (mood, description, intensity, updated_at)
		VALUES ($1, $2, $3, NOW())`,
		r.schema)

	_, err := db.ExecContext(ctx, query, mood.Mood, mood.Description, mood.Intensity)
	if err != nil {
		return fmt.Errorf("failed to create mood: %w", err)
	}

	return nil
}

func (r *PostgresBotStateRepository) GetLatestMood(ctx context.Context) (mo.Option[*models.MoodState], error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(botMoodsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.bot_moods
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`,
		columnsStr, r.schema)

	var mood models.MoodState
	err := db.GetContext(ctx, &mood, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.MoodState](), nil
		}
		return mo.None[*models.MoodState](), fmt.Errorf("failed to get latest mood: %w", err)
	}

	return mo.Some(&mood), nil
}

func (r *PostgresBotStateRepository) UpsertMemory(ctx context.Context, entry *models.MemoryEntry) error {
	db := dbtx.GetTransactional(ctx, r.db)
	query := fmt.Sprintf(`
		INSERT INTO %s.bot_memories (key, value, source, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, source = EXCLUDED.source, updated_at = NOW()`,
		r.schema)

	_, err := db.ExecContext(ctx, query, entry.Key, entry.Value, entry.Source)
	if err != nil {
		return fmt.Errorf("failed to upsert memory entry: %w", err)
	}

	return nil
}

func (r *PostgresBotStateRepository) GetAllMemories(ctx context.Context) ([]*models.MemoryEntry, error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(botMemoriesColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.bot_memories
		ORDER BY updated_at DESC`,
		columnsStr, r.schema)

	var memories []models.MemoryEntry
	err := db.SelectContext(ctx, &memories, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory entries: %w", err)
	}

	result := make([]*models.MemoryEntry, len(memories))
	for i := range memories {
		result[i] = &memories[i]
	}

	return result, nil
}

func (r *PostgresBotStateRepository) DeleteMemory(ctx context.Context, key string) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)
	query := fmt.Sprintf(`
		DELETE FROM %s.bot_memories
		WHERE key = $1`,
		r.schema)

	result, err := db.ExecContext(ctx, query, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete memory entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *PostgresBotStateRepository) CreateHappening(ctx context.Context, happening *models.RecentHappening) error {
	db := dbtx.GetTransactional(ctx, r.db)
	query := fmt.Sprintf(`
		INSERT INTO %s.bot_happenings (content, updated_at)
		VALUES ($1, NOW())`,
		r.schema)

	_, err := db.ExecContext(ctx, query, happening.Content)
	if err != nil {
		return fmt.Errorf("failed to create happening: %w", err)
	}

	return nil
}

func (r *PostgresBotStateRepository) GetLatestHappening(
	ctx context.Context,
) (mo.Option[*models.RecentHappening], error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(botHappeningsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.bot_happenings
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`,
		columnsStr, r.schema)

	var happening models.RecentHappening
	err := db.GetContext(ctx, &happening, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.RecentHappening](), nil
		}
		return mo.None[*models.RecentHappening](), fmt.Errorf("failed to get latest happening: %w", err)
	}

	return mo.Some(&happening), nil
}
