package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/storage"
)

func (s *Store) AddMedia(ctx context.Context, media models.Media) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media (id, owner_type, owner_id, kind, path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		media.ID, string(media.OwnerType), media.OwnerID, string(media.Kind), media.Path, formatTime(media.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert media: %w", err)
	}
	return nil
}

func (s *Store) GetMedia(ctx context.Context, id string) (models.Media, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_type, owner_id, kind, path, created_at
		FROM media WHERE id = ?`, id)

	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Media{}, fmt.Errorf("media %s: %w", id, storage.ErrNotFound)
	}
	return m, err
}

func (s *Store) GetMediaForOwner(ctx context.Context, ownerType constants.MediaOwnerType, ownerID string) ([]models.Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_type, owner_id, kind, path, created_at
		FROM media WHERE owner_type = ? AND owner_id = ?
		ORDER BY created_at, id`, string(ownerType), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func scanMedia(row scanner) (models.Media, error) {
	var m models.Media
	var ownerType, kind, createdAt string
	if err := row.Scan(&m.ID, &ownerType, &m.OwnerID, &kind, &m.Path, &createdAt); err != nil {
		return models.Media{}, err
	}
	m.OwnerType = constants.MediaOwnerType(ownerType)
	m.Kind = constants.MediaKind(kind)

	var err error
	if m.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Media{}, fmt.Errorf("media %s: %w", m.ID, err)
	}
	return m, nil
}

func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM media WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return expectRow(res, "media", id)
}
