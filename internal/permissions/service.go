// Package permissions stores reaction-permission records keyed by channel id.
package permissions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reactroom/reactroom/internal/db"
	"github.com/reactroom/reactroom/internal/youtube"
)

// handleSigil prefixes lookups by handle rather than channel id.
const handleSigil = "@"

const upsertSQL = `
INSERT INTO creator_permissions
    (channel_id, channel_title, custom_url,
     can_react_live, live_reaction_delay,
     can_upload_reaction, upload_reaction_delay)
VALUES ($1, $2, $3, $4::permission, $5, $6::permission, $7)
ON CONFLICT (channel_id) DO UPDATE SET
    channel_title = EXCLUDED.channel_title,
    custom_url = EXCLUDED.custom_url,
    can_react_live = EXCLUDED.can_react_live,
    live_reaction_delay = EXCLUDED.live_reaction_delay,
    can_upload_reaction = EXCLUDED.can_upload_reaction,
    upload_reaction_delay = EXCLUDED.upload_reaction_delay,
    last_updated_at = NOW()`

const selectColumns = `
SELECT channel_id, channel_title, custom_url,
       can_react_live::text, live_reaction_delay,
       can_upload_reaction::text, upload_reaction_delay,
       last_updated_at
FROM creator_permissions`

// Service is the permission record store backed by Postgres.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a permission store on the given pool.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "permissions")),
	}
}

// Upsert inserts or overwrites the record for the verified identity. The
// write is a single statement; concurrent writes for the same channel are
// serialized by the store, last commit wins.
func (s *Service) Upsert(ctx context.Context, identity youtube.ChannelIdentity, params UpsertParams) error {
	if s.pool == nil {
		return errors.New("permissions store not configured")
	}
	_, err := s.pool.Exec(ctx, upsertSQL,
		identity.ChannelID, identity.ChannelTitle, identity.CustomURL,
		params.CanReactLive.String(), params.LiveReactionDelay,
		params.CanUploadReaction.String(), params.UploadReactionDelay,
	)
	if err != nil {
		return fmt.Errorf("upsert permissions for %s: %w", identity.ChannelID, err)
	}
	return nil
}

// List returns every stored record in channel-id order.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	if s.pool == nil {
		return nil, errors.New("permissions store not configured")
	}
	rows, err := s.pool.Query(ctx, selectColumns+" ORDER BY channel_id")
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permissions row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return records, nil
}

// Get looks up one record. Keys starting with "@" match the stored handle
// case-insensitively (a leading "@" on the stored value is ignored too);
// any other key is an exact channel id.
func (s *Service) Get(ctx context.Context, key string) (Record, error) {
	if s.pool == nil {
		return Record{}, errors.New("permissions store not configured")
	}

	var row pgx.Row
	if handle, ok := strings.CutPrefix(key, handleSigil); ok {
		row = s.pool.QueryRow(ctx, selectColumns+`
WHERE LOWER(LTRIM(custom_url, '@')) = LOWER($1)
ORDER BY channel_id
LIMIT 1`, handle)
	} else {
		row = s.pool.QueryRow(ctx, selectColumns+" WHERE channel_id = $1", key)
	}

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get permissions for %q: %w", key, err)
	}
	return record, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		record      Record
		canReact    string
		canUpload   string
		liveDelay   pgtype.Text
		uploadDelay pgtype.Text
		updatedAt   pgtype.Timestamptz
	)
	err := row.Scan(
		&record.ChannelID, &record.ChannelTitle, &record.CustomURL,
		&canReact, &liveDelay,
		&canUpload, &uploadDelay,
		&updatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	if record.CanReactLive, err = ParseLevel(canReact); err != nil {
		return Record{}, err
	}
	if record.CanUploadReaction, err = ParseLevel(canUpload); err != nil {
		return Record{}, err
	}
	record.LiveReactionDelay = db.TextToPtr(liveDelay)
	record.UploadReactionDelay = db.TextToPtr(uploadDelay)
	record.LastUpdatedAt = db.TimeFromPg(updatedAt)
	return record, nil
}
