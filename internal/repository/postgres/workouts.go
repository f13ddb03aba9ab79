package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/repository"
)

const workoutColumns = `w.id, w.split_id, w.name, w.sets, w.reps, w.weight, w.notes, w.created_at`

// CreateWorkout inserts a workout under workout.SplitID. Callers check split
// ownership first. workout.Weight is replaced with the stored, rounded value.
func (r *Repository) CreateWorkout(ctx context.Context, workout *domain.Workout) error {
	const query = `INSERT INTO workouts (split_id, name, sets, reps, weight, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, weight`
	err := r.db.QueryRow(ctx, query,
		workout.SplitID,
		workout.Name,
		workout.Sets,
		workout.Reps,
		workout.Weight,
		workout.Notes,
		workout.CreatedAt,
	).Scan(&workout.ID, &workout.Weight)
	if err != nil {
		if isForeignKeyViolation(err) {
			return oops.Code("WORKOUT_SPLIT_MISSING").With("split_id", workout.SplitID).Wrap(repository.ErrNotFound)
		}
		return oops.Code("WORKOUT_CREATE_FAILED").With("split_id", workout.SplitID).Wrap(err)
	}
	return nil
}

// ListWorkoutsForUser returns the workouts of splitID when userID owns the split.
// A split that is missing or foreign yields an empty list.
func (r *Repository) ListWorkoutsForUser(ctx context.Context, userID, splitID int64, opts domain.ListOptions) ([]domain.Workout, error) {
	const query = `SELECT ` + workoutColumns + `
		FROM workouts w
		INNER JOIN splits s ON s.id = w.split_id
		WHERE w.split_id = $1 AND s.user_id = $2 AND w.name ILIKE $3
		ORDER BY w.id
		LIMIT $4 OFFSET $5`
	rows, err := r.db.Query(ctx, query, splitID, userID, likePattern(opts.Search), limitArg(opts.Limit), opts.Offset)
	if err != nil {
		return nil, oops.Code("WORKOUT_LIST_FAILED").With("split_id", splitID).Wrap(err)
	}
	defer rows.Close()

	workouts := make([]domain.Workout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, oops.Code("WORKOUT_LIST_FAILED").With("split_id", splitID).Wrap(err)
		}
		workouts = append(workouts, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("WORKOUT_LIST_FAILED").With("split_id", splitID).Wrap(err)
	}
	return workouts, nil
}

// GetWorkoutForUser fetches one workout through the ownership chain.
func (r *Repository) GetWorkoutForUser(ctx context.Context, userID, splitID, workoutID int64) (*domain.Workout, error) {
	const query = `SELECT ` + workoutColumns + `
		FROM workouts w
		INNER JOIN splits s ON s.id = w.split_id
		WHERE w.id = $1 AND w.split_id = $2 AND s.user_id = $3`
	w, err := scanWorkout(r.db.QueryRow(ctx, query, workoutID, splitID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("WORKOUT_NOT_FOUND").
				With("workout_id", workoutID).
				With("split_id", splitID).
				Wrap(repository.ErrNotFound)
		}
		return nil, oops.Code("WORKOUT_GET_FAILED").With("workout_id", workoutID).Wrap(err)
	}
	return w, nil
}

// UpdateWorkout rewrites every mutable column of a workout userID owns and
// reads back the stored weight.
func (r *Repository) UpdateWorkout(ctx context.Context, userID int64, workout *domain.Workout) error {
	const query = `UPDATE workouts w
		SET name = $1, sets = $2, reps = $3, weight = $4, notes = $5
		FROM splits s
		WHERE w.id = $6 AND w.split_id = $7 AND s.id = w.split_id AND s.user_id = $8
		RETURNING w.weight`
	err := r.db.QueryRow(ctx, query,
		workout.Name,
		workout.Sets,
		workout.Reps,
		workout.Weight,
		workout.Notes,
		workout.ID,
		workout.SplitID,
		userID,
	).Scan(&workout.Weight)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return oops.Code("WORKOUT_NOT_FOUND").With("workout_id", workout.ID).Wrap(repository.ErrNotFound)
		}
		return oops.Code("WORKOUT_UPDATE_FAILED").With("workout_id", workout.ID).Wrap(err)
	}
	return nil
}

// DeleteWorkoutForUser removes one workout through the ownership chain.
func (r *Repository) DeleteWorkoutForUser(ctx context.Context, userID, splitID, workoutID int64) error {
	const query = `DELETE FROM workouts w
		USING splits s
		WHERE w.id = $1 AND w.split_id = $2 AND s.id = w.split_id AND s.user_id = $3`
	tag, err := r.db.Exec(ctx, query, workoutID, splitID, userID)
	if err != nil {
		return oops.Code("WORKOUT_DELETE_FAILED").With("workout_id", workoutID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("WORKOUT_NOT_FOUND").With("workout_id", workoutID).Wrap(repository.ErrNotFound)
	}
	return nil
}

func scanWorkout(row pgx.Row) (*domain.Workout, error) {
	var w domain.Workout
	if err := row.Scan(&w.ID, &w.SplitID, &w.Name, &w.Sets, &w.Reps, &w.Weight, &w.Notes, &w.CreatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
