package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pq "github.com/lib/pq"

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
		VALUES ($1, $2, $3, $4, $5, $6)`,
		routine.ID, routine.Name, routine.RepeatCycle, routine.ReminderTime,
		routine.CreatedAt.UTC(), routine.UpdatedAt.UTC())
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
			VALUES ($1, $2, $3, $4)`,
			st.ID, routine.ID, st.Position, st.Title)
		if err != nil {
			return fmt.Errorf("failed to insert sub-task %q: %w", st.Title, err)
		}
	}
	return nil
}

func (s *Store) GetRoutine(ctx context.Context, id string) (models.Routine, error) {
	var r models.Routine
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, repeat_cycle, reminder_time, created_at, updated_at
		FROM routines WHERE id = $1`, id).
		Scan(&r.ID, &r.Name, &r.RepeatCycle, &r.ReminderTime, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Routine{}, fmt.Errorf("routine %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Routine{}, err
	}

	subTasks, err := s.getSubTasks(ctx, []string{r.ID})
	if err != nil {
		return models.Routine{}, err
	}
	r.SubTasks = subTasks[r.ID]
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
	var ids []string
	for rows.Next() {
		var r models.Routine
		if err := rows.Scan(&r.ID, &r.Name, &r.RepeatCycle, &r.ReminderTime, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		routines = append(routines, r)
		ids = append(ids, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return routines, nil
	}

	subTasks, err := s.getSubTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range routines {
		routines[i].SubTasks = subTasks[routines[i].ID]
	}
	return routines, nil
}

// getSubTasks loads the sub-tasks of several routines in one query, keyed
// by routine ID.
func (s *Store) getSubTasks(ctx context.Context, routineIDs []string) (map[string][]models.SubTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, routine_id, position, title
		FROM sub_tasks WHERE routine_id = ANY($1)
		ORDER BY routine_id, position`, pq.Array(routineIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byRoutine := make(map[string][]models.SubTask)
	for rows.Next() {
		var st models.SubTask
		if err := rows.Scan(&st.ID, &st.RoutineID, &st.Position, &st.Title); err != nil {
			return nil, err
		}
		byRoutine[st.RoutineID] = append(byRoutine[st.RoutineID], st)
	}
	return byRoutine, rows.Err()
}

func (s *Store) UpdateRoutine(ctx context.Context, routine models.Routine) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE routines SET name = $1, repeat_cycle = $2, reminder_time = $3, updated_at = $4
		WHERE id = $5`,
		routine.Name, routine.RepeatCycle, routine.ReminderTime, routine.UpdatedAt.UTC(), routine.ID)
	if err != nil {
		return fmt.Errorf("failed to update routine: %w", err)
	}
	if err := expectRow(res, "routine", routine.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM sub_tasks WHERE routine_id = $1", routine.ID); err != nil {
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

	if _, err := tx.ExecContext(ctx, "DELETE FROM media WHERE owner_type = $1 AND owner_id = $2", string(constants.MediaOwnerRoutine), id); err != nil {
		return fmt.Errorf("failed to delete routine media: %w", err)
	}

	// sub_tasks and routine_executions go with the routine via ON DELETE CASCADE.
	res, err := tx.ExecContext(ctx, "DELETE FROM routines WHERE id = $1", id)
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
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (routine_id, day) DO UPDATE SET
			completed_sub_tasks = EXCLUDED.completed_sub_tasks,
			total_sub_tasks = EXCLUDED.total_sub_tasks,
			note = EXCLUDED.note`,
		exec.ID, exec.RoutineID, exec.Day, exec.CompletedSubTasks, exec.TotalSubTasks, exec.Note, exec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}
	return nil
}

func (s *Store) GetExecution(ctx context.Context, routineID, day string) (models.Execution, error) {
	var e models.Execution
	err := s.db.QueryRowContext(ctx, `
		SELECT id, routine_id, day, completed_sub_tasks, total_sub_tasks, note, created_at
		FROM routine_executions WHERE routine_id = $1 AND day = $2`, routineID, day).
		Scan(&e.ID, &e.RoutineID, &e.Day, &e.CompletedSubTasks, &e.TotalSubTasks, &e.Note, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Execution{}, fmt.Errorf("execution %s on %s: %w", routineID, day, storage.ErrNotFound)
	}
	return e, err
}

func (s *Store) GetExecutions(ctx context.Context, routineID, startDay, endDay string) ([]models.Execution, error) {
	query := `
		SELECT id, routine_id, day, completed_sub_tasks, total_sub_tasks, note, created_at
		FROM routine_executions WHERE routine_id = $1`
	args := []any{routineID}
	if startDay != "" {
		args = append(args, startDay)
		query += fmt.Sprintf(" AND day >= $%d", len(args))
	}
	if endDay != "" {
		args = append(args, endDay)
		query += fmt.Sprintf(" AND day <= $%d", len(args))
	}
	query += " ORDER BY day"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var execs []models.Execution
	for rows.Next() {
		var e models.Execution
		if err := rows.Scan(&e.ID, &e.RoutineID, &e.Day, &e.CompletedSubTasks, &e.TotalSubTasks, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		execs = append(execs, e)
	}
	return execs, rows.Err()
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
