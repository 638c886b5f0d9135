package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	dbtx "gridbot/db/tx"
	"gridbot/models"
)

type PostgresMessagesRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for channel_messages table
var channelMessagesColumns = []string{
	"id",
	"channel_id",
	"author_name",
	"author_id",
	"content",
	"is_bot",
	"ts",
	"created_at",
}

func NewPostgresMessagesRepository(db *sqlx.DB, schema string) *PostgresMessagesRepository {
	return &PostgresMessagesRepository{db: db, schema: schema}
}

func (r *PostgresMessagesRepository) CreateChannelMessage(
	ctx context.Context,
	message *models.ChannelMessage,
) error {
	db := dbtx.GetTransactional(ctx, r.db)
	insertColumns := []string{
		"id",
		"channel_id",
		"author_name",
		"author_id",
		"content",
		"is_bot",
		"ts",
	}

	placeholders := make([]string, len(insertColumns))
	for i := range insertColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.channel_messages (%s, created_at)
		VALUES (%s, NOW())`,
		r.schema,
		strings.Join(insertColumns, ", "),
		strings.Join(placeholders, ", "))

	_, err := db.ExecContext(
		ctx,
		query,
		message.ID,
		message.ChannelID,
		message.AuthorName,
		message.AuthorID,
		message.Content,
		message.IsBot,
		message.Timestamp,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique violation
				return fmt.Errorf("channel message already exists")
			}
		}
		return fmt.Errorf("failed to create channel message: %w", err)
	}

	return nil
}

// GetRecentMessagesByChannel returns the newest limit messages of a
// channel in chronological order, optionally skipping bot-authored rows.
func (r *PostgresMessagesRepository) GetRecentMessagesByChannel(
	ctx context.Context,
	channelID string,
	limit int,
	excludeBot bool,
) ([]*models.ChannelMessage, error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(channelMessagesColumns, ", ")
	botFilter := ""
	if excludeBot {
		botFilter = "AND is_bot = FALSE"
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.channel_messages
		WHERE channel_id = $1 %s
		ORDER BY ts DESC, id DESC
		LIMIT $2`,
		columnsStr, r.schema, botFilter)

	var messages []models.ChannelMessage
	err := db.SelectContext(ctx, &messages, query, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent channel messages: %w", err)
	}

	// Reverse into oldest-first order and convert to slice of pointers
	result := make([]*models.ChannelMessage, len(messages))
	for i := range messages {
		result[len(messages)-1-i] = &messages[i]
	}

	return result, nil
}

func (r *PostgresMessagesRepository) GetMessageCountByChannel(
	ctx context.Context,
	channelID string,
) (int, error) {
	db := dbtx.GetTransactional(ctx, r.db)
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s.channel_messages
		WHERE channel_id = $1`,
		r.schema)

	var count int
	err := db.GetContext(ctx, &count, query, channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to get channel message count: %w", err)
	}

	return count, nil
}

// DeleteMessagesByChannel removes every message stored for a channel
func (r *PostgresMessagesRepository) DeleteMessagesByChannel(
	ctx context.Context,
	channelID string,
) error {
	db := dbtx.GetTransactional(ctx, r.db)
	query := fmt.Sprintf(`
		DELETE FROM %s.channel_messages
		WHERE channel_id = $1`,
		r.schema)

	_, err := db.ExecContext(ctx, query, channelID)
	if err != nil {
		return fmt.Errorf("failed to delete channel messages: %w", err)
	}

	return nil
}

// DeleteMessagesOlderThan removes messages whose timestamp predates the
// cutoff, across all channels. Returns the number of deleted rows.
func (r *PostgresMessagesRepository) DeleteMessagesOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	db := dbtx.GetTransactional(ctx, r.db)
	query := fmt.Sprintf(`
		DELETE FROM %s.channel_messages
		WHERE ts < $1`,
		r.schema)

	result, err := db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old channel messages: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
