package split

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

// ErrNameRequired is returned when a split is created or renamed to a blank name.
var ErrNameRequired = errors.New("split name is required")

// CreateInput carries the attributes of a new split.
type CreateInput struct {
	UserID      int64
	Name        string
	Description *string
}

// Detail is a split together with its workouts.
type Detail struct {
	Split    domain.Split
	Workouts []domain.Workout
}

// Service manages splits owned by the calling user.
type Service struct {
	store  repository.Transactor
	logger *slog.Logger
}

// New returns a split service.
func New(store repository.Transactor, logger *slog.Logger) Service {
	return Service{store: store, logger: logger}
}

// Create persists a split owned by input.UserID.
func (s Service) Create(ctx context.Context, input CreateInput) (*domain.Split, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nameError()
	}
	split := &domain.Split{
		UserID:      input.UserID,
		Name:        name,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		return tx.CreateSplit(ctx, split)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("split created", "split_id", split.ID, "user_id", split.UserID)
	return split, nil
}

// List returns the caller's splits.
func (s Service) List(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Split, error) {
	var splits []domain.Split
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		splits, err = tx.ListSplitsByUser(ctx, userID, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	if splits == nil {
		splits = []domain.Split{}
	}
	return splits, nil
}

// Get returns one of the caller's splits with its workouts.
func (s Service) Get(ctx context.Context, userID, splitID int64) (*Detail, error) {
	var detail Detail
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		split, err := tx.GetSplitForUser(ctx, userID, splitID)
		if err != nil {
			return err
		}
		workouts, err := tx.ListWorkoutsForUser(ctx, userID, splitID, domain.ListOptions{})
		if err != nil {
			return err
		}
		detail.Split = *split
		detail.Workouts = workouts
		return nil
	})
	if err != nil {
		return nil, err
	}
	if detail.Workouts == nil {
		detail.Workouts = []domain.Workout{}
	}
	return &detail, nil
}

// Update applies the supplied fields to one of the caller's splits.
func (s Service) Update(ctx context.Context, userID, splitID int64, update domain.SplitUpdate) (*domain.Split, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, nameError()
		}
		update.Name = &name
	}
	var updated *domain.Split
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		split, err := tx.GetSplitForUser(ctx, userID, splitID)
		if err != nil {
			return err
		}
		if update.Empty() {
			updated = split
			return nil
		}
		update.Apply(split)
		if err := tx.UpdateSplit(ctx, split); err != nil {
			return err
		}
		updated = split
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("split updated", "split_id", updated.ID, "user_id", userID)
	return updated, nil
}

// Delete removes one of the caller's splits and its workouts.
func (s Service) Delete(ctx context.Context, userID, splitID int64) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		return tx.DeleteSplitForUser(ctx, userID, splitID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("split deleted", "split_id", splitID, "user_id", userID)
	return nil
}

func nameError() error {
	return errors.Join(validation.Field("name", "must not be blank"), ErrNameRequired)
}
