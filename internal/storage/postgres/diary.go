package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/storage"
)

const diaryColumns = "id, day, title, body, mood, created_at, updated_at, deleted_at"

func (s *Store) AddDiaryEntry(ctx context.Context, entry models.DiaryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diary_entries (id, day, title, body, mood, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Day, entry.Title, entry.Body, entry.Mood, entry.CreatedAt.UTC(), entry.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert diary entry: %w", err)
	}
	return nil
}

func (s *Store) GetDiaryEntry(ctx context.Context, id string) (models.DiaryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+diaryColumns+" FROM diary_entries WHERE id = $1 AND deleted_at IS NULL", id)

	entry, err := scanDiaryEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DiaryEntry{}, fmt.Errorf("diary entry %s: %w", id, storage.ErrNotFound)
	}
	return entry, err
}

func (s *Store) GetDiaryEntries(ctx context.Context, startDay, endDay string, includeDeleted bool) ([]models.DiaryEntry, error) {
	query := "SELECT " + diaryColumns + " FROM diary_entries WHERE 1=1"
	var args []any
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if startDay != "" {
		args = append(args, startDay)
		query += fmt.Sprintf(" AND day >= $%d", len(args))
	}
	if endDay != "" {
		args = append(args, endDay)
		query += fmt.Sprintf(" AND day <= $%d", len(args))
	}
	query += " ORDER BY day, created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DiaryEntry
	for rows.Next() {
		entry, err := scanDiaryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDiaryEntry(row scanner) (models.DiaryEntry, error) {
	var d models.DiaryEntry
	var deletedAt sql.NullTime
	if err := row.Scan(&d.ID, &d.Day, &d.Title, &d.Body, &d.Mood, &d.CreatedAt, &d.UpdatedAt, &deletedAt); err != nil {
		return models.DiaryEntry{}, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		d.DeletedAt = &t
	}
	return d, nil
}

func (s *Store) UpdateDiaryEntry(ctx context.Context, entry models.DiaryEntry) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE diary_entries SET day = $1, title = $2, body = $3, mood = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL`,
		entry.Day, entry.Title, entry.Body, entry.Mood, entry.UpdatedAt.UTC(), entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update diary entry: %w", err)
	}
	return expectRow(res, "diary entry", entry.ID)
}

func (s *Store) DeleteDiaryEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE diary_entries SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete diary entry: %w", err)
	}
	return expectRow(res, "diary entry", id)
}

func (s *Store) RestoreDiaryEntry(ctx context.Context, id string) error {
	var deletedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, "SELECT deleted_at FROM diary_entries WHERE id = $1", id).Scan(&deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("diary entry %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if !deletedAt.Valid {
		return fmt.Errorf("diary entry %s is not deleted", id)
	}

	_, err = s.db.ExecContext(ctx, "UPDATE diary_entries SET deleted_at = NULL WHERE id = $1", id)
	return err
}

func (s *Store) PurgeDeletedDiaryEntries(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM media WHERE owner_type = $1 AND owner_id IN (
			SELECT id FROM diary_entries WHERE deleted_at IS NOT NULL
		)`, string(constants.MediaOwnerDiary))
	if err != nil {
		return 0, fmt.Errorf("failed to purge diary media: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM diary_entries WHERE deleted_at IS NOT NULL")
	if err != nil {
		return 0, fmt.Errorf("failed to purge diary entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(n), tx.Commit()
}
