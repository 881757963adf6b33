package postgres

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
		VALUES ($1, $2, $3, $4, $5, $6)`,
		media.ID, string(media.OwnerType), media.OwnerID, string(media.Kind), media.Path, media.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert media: %w", err)
	}
	return nil
}

func (s *Store) GetMedia(ctx context.Context, id string) (models.Media, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_type, owner_id, kind, path, created_at
		FROM media WHERE id = $1`, id)

	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Media{}, fmt.Errorf("media %s: %w", id, storage.ErrNotFound)
	}
	return m, err
}

func (s *Store) GetMediaForOwner(ctx context.Context, ownerType constants.MediaOwnerType, ownerID string) ([]models.Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_type, owner_id, kind, path, created_at
		FROM media WHERE owner_type = $1 AND owner_id = $2
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
	var ownerType, kind string
	if err := row.Scan(&m.ID, &ownerType, &m.OwnerID, &kind, &m.Path, &m.CreatedAt); err != nil {
		return models.Media{}, err
	}
	m.OwnerType = constants.MediaOwnerType(ownerType)
	m.Kind = constants.MediaKind(kind)
	return m, nil
}

func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM media WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return expectRow(res, "media", id)
}
