package repository

import (
	"context"

	"github.com/liftsplit/liftsplit/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// SplitRepository persists splits. Every read and write is scoped to the owning user.
type SplitRepository interface {
	CreateSplit(ctx context.Context, split *domain.Split) error
	ListSplitsByUser(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Split, error)
	GetSplitForUser(ctx context.Context, userID, splitID int64) (*domain.Split, error)
	UpdateSplit(ctx context.Context, split *domain.Split) error
	DeleteSplitForUser(ctx context.Context, userID, splitID int64) error
}

// WorkoutRepository persists workouts. Ownership is resolved through the parent split.
type WorkoutRepository interface {
	CreateWorkout(ctx context.Context, workout *domain.Workout) error
	ListWorkoutsForUser(ctx context.Context, userID, splitID int64, opts domain.ListOptions) ([]domain.Workout, error)
	GetWorkoutForUser(ctx context.Context, userID, splitID, workoutID int64) (*domain.Workout, error)
	UpdateWorkout(ctx context.Context, userID int64, workout *domain.Workout) error
	DeleteWorkoutForUser(ctx context.Context, userID, splitID, workoutID int64) error
}

// Store groups the repositories available inside a transaction.
type Store interface {
	UserRepository
	SplitRepository
	WorkoutRepository
}

// Transactor runs fn inside one transaction, committing when fn returns nil and
// discarding every change otherwise.
type Transactor interface {
	WithTx(ctx context.Context, fn func(Store) error) error
}
