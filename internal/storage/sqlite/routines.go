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

func (s *Store) AddRoutine(ctx context.Context, routine models.Routine) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO routines (id, name, repeat_cycle, reminder_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		routine.ID, routine.Name, routine.RepeatCycle, routine.ReminderTime,
		formatTime(routine.CreatedAt), formatTime(routine.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert routine: %w", err)
	}

	if err := insertSubTasks(ctx, tx, routine); err != nil {
		return err
	}

	return tx.Commit()
}

func insertSubTasks(ctx context.Context, tx *sql.Tx, routine models.Routine) error {
	for _, st := range routine.SubTasks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sub_tasks (id, routine_id, position, title)
			VALUES (?, ?, ?, ?)`,
			st.ID, routine.ID, st.Position, st.Title)
		if err != nil {
			return fmt.Errorf("failed to insert sub-task %q: %w", st.Title, err)
		}
	}
	return nil
}

func (s *Store) GetRoutine(ctx context.Context, id string) (models.Routine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, repeat_cycle, reminder_time, created_at, updated_at
		FROM routines WHERE id = ?`, id)

	r, err := scanRoutine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Routine{}, fmt.Errorf("routine %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Routine{}, err
	}

	r.SubTasks, err = s.getSubTasks(ctx, r.ID)
	if err != nil {
		return models.Routine{}, err
	}
	return r, nil
}

func (s *Store) GetAllRoutines(ctx context.Context) ([]models.Routine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, repeat_cycle, reminder_time, created_at, updated_at
		FROM routines ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routines []models.Routine
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, err
		}
		routines = append(routines, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range routines {
		routines[i].SubTasks, err = s.getSubTasks(ctx, routines[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return routines, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoutine(row scanner) (models.Routine, error) {
	var r models.Routine
	var createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.Name, &r.RepeatCycle, &r.ReminderTime, &createdAt, &updatedAt); err != nil {
		return models.Routine{}, err
	}

	var err error
	if r.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Routine{}, fmt.Errorf("routine %s: %w", r.ID, err)
	}
	if r.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Routine{}, fmt.Errorf("routine %s: %w", r.ID, err)
	}
	return r, nil
}

func (s *Store) getSubTasks(ctx context.Context, routineID string) ([]models.SubTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, routine_id, position, title
		FROM sub_tasks WHERE routine_id = ? ORDER BY position`, routineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subTasks []models.SubTask
	for rows.Next() {
		var st models.SubTask
		if err := rows.Scan(&st.ID, &st.RoutineID, &st.Position, &st.Title); err != nil {
			return nil, err
		}
		subTasks = append(subTasks, st)
	}
	return subTasks, rows.Err()
}

func (s *Store) UpdateRoutine(ctx context.Context, routine models.Routine) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE routines SET name = ?, repeat_cycle = ?, reminder_time = ?, updated_at = ?
		WHERE id = ?`,
		routine.Name, routine.RepeatCycle, routine.ReminderTime, formatTime(routine.UpdatedAt), routine.ID)
	if err != nil {
		return fmt.Errorf("failed to update routine: %w", err)
	}
	if err := expectRow(res, "routine", routine.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM sub_tasks WHERE routine_id = ?", routine.ID); err != nil {
		return fmt.Errorf("failed to clear sub-tasks: %w", err)
	}
	if err := insertSubTasks(ctx, tx, routine); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) DeleteRoutine(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM sub_tasks WHERE routine_id = ?",
		"DELETE FROM routine_executions WHERE routine_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to delete routine rows: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM media WHERE owner_type = ? AND owner_id = ?", string(constants.MediaOwnerRoutine), id); err != nil {
		return fmt.Errorf("failed to delete routine media: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM routines WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	if err := expectRow(res, "routine", id); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) SaveExecution(ctx context.Context, exec models.Execution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routine_executions (id, routine_id, day, completed_sub_tasks, total_sub_tasks, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (routine_id, day) DO UPDATE SET
			completed_sub_tasks = excluded.completed_sub_tasks,
			total_sub_tasks = excluded.total_sub_tasks,
			note = excluded.note`,
		exec.ID, exec.RoutineID, exec.Day, exec.CompletedSubTasks, exec.TotalSubTasks, exec.Note, formatTime(exec.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}
	return nil
}

func (s *Store) GetExecution(ctx context.Context, routineID, day string) (models.Execution, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, routine_id, day, completed_sub_tasks, total_sub_tasks, note, created_at
		FROM routine_executions WHERE routine_id = ? AND day = ?`, routineID, day)

	e, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Execution{}, fmt.Errorf("execution %s on %s: %w", routineID, day, storage.ErrNotFound)
	}
	return e, err
}

func (s *Store) GetExecutions(ctx context.Context, routineID, startDay, endDay string) ([]models.Execution, error) {
	query := `
		SELECT id, routine_id, day, completed_sub_tasks, total_sub_tasks, note, created_at
		FROM routine_executions WHERE routine_id = ?`
	args := []any{routineID}
	if startDay != "" {
		query += " AND day >= ?"
		args = append(args, startDay)
	}
	if endDay != "" {
		query += " AND day <= ?"
		args = append(args, endDay)
	}
	query += " ORDER BY day"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var execs []models.Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		execs = append(execs, e)
	}
	return execs, rows.Err()
}

func scanExecution(row scanner) (models.Execution, error) {
	var e models.Execution
	var createdAt string
	if err := row.Scan(&e.ID, &e.RoutineID, &e.Day, &e.CompletedSubTasks, &e.TotalSubTasks, &e.Note, &createdAt); err != nil {
		return models.Execution{}, err
	}
	var err error
	if e.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Execution{}, fmt.Errorf("execution %s: %w", e.ID, err)
	}
	return e, nil
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
