// Package repotest provides an in-memory repository.Store for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/repository"
)

// Store mirrors the Postgres schema in memory: unique usernames and emails,
// ownership filters and cascading deletes. WithTx works on a copy that only
// replaces the live state when the closure succeeds.
type Store struct {
	mu      sync.Mutex
	state   *state
	failErr error
}

var (
	_ repository.Store      = (*Store)(nil)
	_ repository.Transactor = (*Store)(nil)
)

// New returns an empty Store.
func New() *Store {
	return &Store{state: newState()}
}

// FailNextTx makes the next WithTx call return err without running its closure.
func (s *Store) FailNextTx(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// WithTx runs fn against a snapshot and commits it when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		err := s.failErr
		s.failErr = nil
		return err
	}
	snapshot := s.state.clone()
	if err := fn(&view{state: snapshot}); err != nil {
		return err
	}
	s.state = snapshot
	return nil
}

// SplitCount reports the number of stored splits.
func (s *Store) SplitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.splits)
}

// WorkoutCount reports the number of stored workouts.
func (s *Store) WorkoutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.workouts)
}

func (s *Store) locked(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{state: s.state})
}

// CreateUser stores user and assigns its ID.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.locked(func(v *view) error {
		return v.CreateUser(ctx, user)
	})
}

// GetUserByUsername looks a user up by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (u *domain.User, err error) {
	err = s.locked(func(v *view) error {
		u, err = v.GetUserByUsername(ctx, username)
		return err
	})
	return u, err
}

// GetUserByEmail looks a user up by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (u *domain.User, err error) {
	err = s.locked(func(v *view) error {
		u, err = v.GetUserByEmail(ctx, email)
		return err
	})
	return u, err
}

// GetUserByID looks a user up by ID.
func (s *Store) GetUserByID(ctx context.Context, id int64) (u *domain.User, err error) {
	err = s.locked(func(v *view) error {
		u, err = v.GetUserByID(ctx, id)
		return err
	})
	return u, err
}

// CreateSplit stores split and assigns its ID.
func (s *Store) CreateSplit(ctx context.Context, split *domain.Split) error {
	return s.locked(func(v *view) error {
		return v.CreateSplit(ctx, split)
	})
}

// ListSplitsByUser returns a page of the splits userID owns.
func (s *Store) ListSplitsByUser(ctx context.Context, userID int64, opts domain.ListOptions) (out []domain.Split, err error) {
	err = s.locked(func(v *view) error {
		out, err = v.ListSplitsByUser(ctx, userID, opts)
		return err
	})
	return out, err
}

// GetSplitForUser returns splitID if userID owns it.
func (s *Store) GetSplitForUser(ctx context.Context, userID, splitID int64) (out *domain.Split, err error) {
	err = s.locked(func(v *view) error {
		out, err = v.GetSplitForUser(ctx, userID, splitID)
		return err
	})
	return out, err
}

// UpdateSplit overwrites a stored split.
func (s *Store) UpdateSplit(ctx context.Context, split *domain.Split) error {
	return s.locked(func(v *view) error {
		return v.UpdateSplit(ctx, split)
	})
}

// DeleteSplitForUser removes splitID and its workouts if userID owns it.
func (s *Store) DeleteSplitForUser(ctx context.Context, userID, splitID int64) error {
	return s.locked(func(v *view) error {
		return v.DeleteSplitForUser(ctx, userID, splitID)
	})
}

// CreateWorkout stores workout and assigns its ID.
func (s *Store) CreateWorkout(ctx context.Context, workout *domain.Workout) error {
	return s.locked(func(v *view) error {
		return v.CreateWorkout(ctx, workout)
	})
}

// ListWorkoutsForUser returns a page of the workouts in splitID when userID owns it.
func (s *Store) ListWorkoutsForUser(ctx context.Context, userID, splitID int64, opts domain.ListOptions) (out []domain.Workout, err error) {
	err = s.locked(func(v *view) error {
		out, err = v.ListWorkoutsForUser(ctx, userID, splitID, opts)
		return err
	})
	return out, err
}

// GetWorkoutForUser returns workoutID through the ownership chain.
func (s *Store) GetWorkoutForUser(ctx context.Context, userID, splitID, workoutID int64) (out *domain.Workout, err error) {
	err = s.locked(func(v *view) error {
		out, err = v.GetWorkoutForUser(ctx, userID, splitID, workoutID)
		return err
	})
	return out, err
}

// UpdateWorkout overwrites a workout userID owns.
func (s *Store) UpdateWorkout(ctx context.Context, userID int64, workout *domain.Workout) error {
	return s.locked(func(v *view) error {
		return v.UpdateWorkout(ctx, userID, workout)
	})
}

// DeleteWorkoutForUser removes workoutID through the ownership chain.
func (s *Store) DeleteWorkoutForUser(ctx context.Context, userID, splitID, workoutID int64) error {
	return s.locked(func(v *view) error {
		return v.DeleteWorkoutForUser(ctx, userID, splitID, workoutID)
	})
}

type state struct {
	users       map[int64]domain.User
	splits      map[int64]domain.Split
	workouts    map[int64]domain.Workout
	nextUser    int64
	nextSplit   int64
	nextWorkout int64
}

func newState() *state {
	return &state{
		users:    make(map[int64]domain.User),
		splits:   make(map[int64]domain.Split),
		workouts: make(map[int64]domain.Workout),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.splits {
		c.splits[k] = v
	}
	for k, v := range st.workouts {
		c.workouts[k] = v
	}
	c.nextUser, c.nextSplit, c.nextWorkout = st.nextUser, st.nextSplit, st.nextWorkout
	return c
}

// view implements repository.Store over one state without locking.
type view struct {
	state *state
}

func (v *view) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(v)
}

func (v *view) CreateUser(ctx context.Context, user *domain.User) error {
	for _, existing := range v.state.users {
		if existing.Username == user.Username {
			return repository.ErrUsernameTaken
		}
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	v.state.nextUser++
	user.ID = v.state.nextUser
	v.state.users[user.ID] = *user
	return nil
}

func (v *view) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range v.state.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *view) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range v.state.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *view) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := v.state.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (v *view) CreateSplit(ctx context.Context, split *domain.Split) error {
	if _, ok := v.state.users[split.UserID]; !ok {
		return repository.ErrNotFound
	}
	v.state.nextSplit++
	split.ID = v.state.nextSplit
	v.state.splits[split.ID] = *split
	return nil
}

func (v *view) ListSplitsByUser(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Split, error) {
	out := make([]domain.Split, 0)
	for _, s := range v.state.splits {
		if s.UserID == userID && matches(s.Name, opts.Search) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, opts), nil
}

func (v *view) GetSplitForUser(ctx context.Context, userID, splitID int64) (*domain.Split, error) {
	s, ok := v.state.splits[splitID]
	if !ok || s.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (v *view) UpdateSplit(ctx context.Context, split *domain.Split) error {
	existing, ok := v.state.splits[split.ID]
	if !ok || existing.UserID != split.UserID {
		return repository.ErrNotFound
	}
	existing.Name = split.Name
	existing.Description = split.Description
	v.state.splits[split.ID] = existing
	return nil
}

func (v *view) DeleteSplitForUser(ctx context.Context, userID, splitID int64) error {
	s, ok := v.state.splits[splitID]
	if !ok || s.UserID != userID {
		return repository.ErrNotFound
	}
	delete(v.state.splits, splitID)
	for id, w := range v.state.workouts {
		if w.SplitID == splitID {
			delete(v.state.workouts, id)
		}
	}
	return nil
}

func (v *view) CreateWorkout(ctx context.Context, workout *domain.Workout) error {
	if _, ok := v.state.splits[workout.SplitID]; !ok {
		return repository.ErrNotFound
	}
	v.state.nextWorkout++
	workout.ID = v.state.nextWorkout
	v.state.workouts[workout.ID] = *workout
	return nil
}

func (v *view) ListWorkoutsForUser(ctx context.Context, userID, splitID int64, opts domain.ListOptions) ([]domain.Workout, error) {
	out := make([]domain.Workout, 0)
	if s, ok := v.state.splits[splitID]; !ok || s.UserID != userID {
		return out, nil
	}
	for _, w := range v.state.workouts {
		if w.SplitID == splitID && matches(w.Name, opts.Search) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, opts), nil
}

func (v *view) GetWorkoutForUser(ctx context.Context, userID, splitID, workoutID int64) (*domain.Workout, error) {
	w, ok := v.state.workouts[workoutID]
	if !ok || w.SplitID != splitID || !v.owns(userID, splitID) {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (v *view) UpdateWorkout(ctx context.Context, userID int64, workout *domain.Workout) error {
	existing, ok := v.state.workouts[workout.ID]
	if !ok || existing.SplitID != workout.SplitID || !v.owns(userID, workout.SplitID) {
		return repository.ErrNotFound
	}
	updated := *workout
	updated.CreatedAt = existing.CreatedAt
	v.state.workouts[workout.ID] = updated
	return nil
}

func (v *view) DeleteWorkoutForUser(ctx context.Context, userID, splitID, workoutID int64) error {
	w, ok := v.state.workouts[workoutID]
	if !ok || w.SplitID != splitID || !v.owns(userID, splitID) {
		return repository.ErrNotFound
	}
	delete(v.state.workouts, workoutID)
	return nil
}

func (v *view) owns(userID, splitID int64) bool {
	s, ok := v.state.splits[splitID]
	return ok && s.UserID == userID
}

func matches(name, search string) bool {
	search = strings.TrimSpace(search)
	return search == "" || strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

func page[T any](items []T, opts domain.ListOptions) []T {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return items[:0]
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
