package workout

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/repository"
	"github.com/liftsplit/liftsplit/internal/validation"
)

var (
	// ErrNameRequired is returned for a blank workout name.
	ErrNameRequired = errors.New("workout name is required")
	// ErrNegativeValue is returned when sets, reps or weight is below zero.
	ErrNegativeValue = errors.New("workout values must not be negative")
)

// CreateInput carries the attributes of a new workout.
type CreateInput struct {
	UserID  int64
	SplitID int64
	Name    string
	Sets    *int
	Reps    *int
	Weight  *float64
	Notes   *string
}

// Service manages workouts inside splits owned by the calling user.
type Service struct {
	store  repository.Transactor
	logger *slog.Logger
}

// New returns a workout service.
func New(store repository.Transactor, logger *slog.Logger) Service {
	return Service{store: store, logger: logger}
}

// Create adds a workout to one of the caller's splits.
func (s Service) Create(ctx context.Context, input CreateInput) (*domain.Workout, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.Join(validation.Field("name", "must not be blank"), ErrNameRequired)
	}
	if err := checkValues(input.Sets, input.Reps, input.Weight); err != nil {
		return nil, err
	}
	workout := &domain.Workout{
		SplitID:   input.SplitID,
		Name:      name,
		Sets:      input.Sets,
		Reps:      input.Reps,
		Weight:    input.Weight,
		Notes:     input.Notes,
		CreatedAt: time.Now().UTC(),
	}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetSplitForUser(ctx, input.UserID, input.SplitID); err != nil {
			return err
		}
		return tx.CreateWorkout(ctx, workout)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("workout created", "workout_id", workout.ID, "split_id", workout.SplitID, "user_id", input.UserID)
	return workout, nil
}

// List returns the workouts of one of the caller's splits. A split the caller
// does not own yields an empty list.
func (s Service) List(ctx context.Context, userID, splitID int64, opts domain.ListOptions) ([]domain.Workout, error) {
	var workouts []domain.Workout
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		workouts, err = tx.ListWorkoutsForUser(ctx, userID, splitID, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	return workouts, nil
}

// Get returns one workout if the caller owns its split.
func (s Service) Get(ctx context.Context, userID, splitID, workoutID int64) (*domain.Workout, error) {
	var workout *domain.Workout
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		workout, err = tx.GetWorkoutForUser(ctx, userID, splitID, workoutID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

// Update applies the supplied fields to a workout the caller owns.
func (s Service) Update(ctx context.Context, userID, splitID, workoutID int64, update domain.WorkoutUpdate) (*domain.Workout, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, errors.Join(validation.Field("name", "must not be blank"), ErrNameRequired)
		}
		update.Name = &name
	}
	if err := checkValues(update.Sets, update.Reps, update.Weight); err != nil {
		return nil, err
	}
	var updated *domain.Workout
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		workout, err := tx.GetWorkoutForUser(ctx, userID, splitID, workoutID)
		if err != nil {
			return err
		}
		if !update.Empty() {
			update.Apply(workout)
			if err := tx.UpdateWorkout(ctx, userID, workout); err != nil {
				return err
			}
		}
		updated = workout
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("workout updated", "workout_id", workoutID, "split_id", splitID, "user_id", userID)
	return updated, nil
}

// Delete removes a workout the caller owns.
func (s Service) Delete(ctx context.Context, userID, splitID, workoutID int64) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		return tx.DeleteWorkoutForUser(ctx, userID, splitID, workoutID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("workout deleted", "workout_id", workoutID, "split_id", splitID, "user_id", userID)
	return nil
}

func checkValues(sets, reps *int, weight *float64) error {
	var fields []validation.FieldError
	if sets != nil && *sets < 0 {
		fields = append(fields, validation.FieldError{Field: "sets", Message: "must be greater than or equal to 0"})
	}
	if reps != nil && *reps < 0 {
		fields = append(fields, validation.FieldError{Field: "reps", Message: "must be greater than or equal to 0"})
	}
	if weight != nil && *weight < 0 {
		fields = append(fields, validation.FieldError{Field: "weight", Message: "must be greater than or equal to 0"})
	}
	if len(fields) == 0 {
		return nil
	}
	return errors.Join(&validation.Error{Fields: fields}, ErrNegativeValue)
}
