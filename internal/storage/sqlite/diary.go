package sqlite

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
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Day, entry.Title, entry.Body, entry.Mood,
		formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert diary entry: %w", err)
	}
	return nil
}

func (s *Store) GetDiaryEntry(ctx context.Context, id string) (models.DiaryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+diaryColumns+" FROM diary_entries WHERE id = ? AND deleted_at IS NULL", id)

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
		query += " AND day >= ?"
		args = append(args, startDay)
	}
	if endDay != "" {
		query += " AND day <= ?"
		args = append(args, endDay)
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

func scanDiaryEntry(row scanner) (models.DiaryEntry, error) {
	var d models.DiaryEntry
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&d.ID, &d.Day, &d.Title, &d.Body, &d.Mood, &createdAt, &updatedAt, &deletedAt); err != nil {
		return models.DiaryEntry{}, err
	}

	var err error
	if d.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.DiaryEntry{}, fmt.Errorf("diary entry %s: %w", d.ID, err)
	}
	if d.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.DiaryEntry{}, fmt.Errorf("diary entry %s: %w", d.ID, err)
	}
	if deletedAt.Valid {
		t, err := parseTime("deleted_at", deletedAt.String)
		if err != nil {
			return models.DiaryEntry{}, fmt.Errorf("diary entry %s: %w", d.ID, err)
		}
		d.DeletedAt = &t
	}
	return d, nil
}

func (s *Store) UpdateDiaryEntry(ctx context.Context, entry models.DiaryEntry) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE diary_entries SET day = ?, title = ?, body = ?, mood = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		entry.Day, entry.Title, entry.Body, entry.Mood, formatTime(entry.UpdatedAt), entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update diary entry: %w", err)
	}
	return expectRow(res, "diary entry", entry.ID)
}

func (s *Store) DeleteDiaryEntry(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx,
		"UPDATE diary_entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", now, id)
	if err != nil {
		return fmt.Errorf("failed to delete diary entry: %w", err)
	}
	return expectRow(res, "diary entry", id)
}

func (s *Store) RestoreDiaryEntry(ctx context.Context, id string) error {
	var deletedAt sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT deleted_at FROM diary_entries WHERE id = ?", id).Scan(&deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("diary entry %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if !deletedAt.Valid {
		return fmt.Errorf("diary entry %s is not deleted", id)
	}

	_, err = s.db.ExecContext(ctx, "UPDATE diary_entries SET deleted_at = NULL WHERE id = ?", id)
	return err
}

func (s *Store) PurgeDeletedDiaryEntries(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM media WHERE owner_type = ? AND owner_id IN (
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
