package split

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/repository"
	"github.com/liftsplit/liftsplit/internal/repository/repotest"
	"github.com/liftsplit/liftsplit/internal/validation"
)

func newTestService(t *testing.T) (Service, *repotest.Store, int64, int64) {
	t.Helper()
	store := repotest.New()
	ctx := context.Background()
	owner := &domain.User{Username: "john", Email: "john@x.com", PasswordHash: []byte("hash"), CreatedAt: time.Now()}
	if err := store.CreateUser(ctx, owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	other := &domain.User{Username: "jane", Email: "jane@x.com", PasswordHash: []byte("hash"), CreatedAt: time.Now()}
	if err := store.CreateUser(ctx, other); err != nil {
		t.Fatalf("create other: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, log), store, owner.ID, other.ID
}

func TestCreateTrimsNameAndAssignsOwner(t *testing.T) {
	svc, _, owner, _ := newTestService(t)
	split, err := svc.Create(context.Background(), CreateInput{UserID: owner, Name: "  Push  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if split.ID != 1 || split.UserID != owner || split.Name != "Push" {
		t.Fatalf("unexpected split %+v", split)
	}
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc, store, owner, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateInput{UserID: owner, Name: "   "})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	var verr *validation.Error
	if !errors.As(err, &verr) || verr.Fields[0].Field != "name" {
		t.Fatalf("expected validation error on name, got %v", err)
	}
	if store.SplitCount() != 0 {
		t.Fatalf("expected nothing persisted")
	}
}

func TestGetEmbedsWorkoutsAndHidesForeignSplits(t *testing.T) {
	svc, store, owner, other := newTestService(t)
	ctx := context.Background()
	split, err := svc.Create(ctx, CreateInput{UserID: owner, Name: "Push"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sets := 4
	if err := store.CreateWorkout(ctx, &domain.Workout{SplitID: split.ID, Name: "Bench", Sets: &sets}); err != nil {
		t.Fatalf("CreateWorkout: %v", err)
	}

	detail, err := svc.Get(ctx, owner, split.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(detail.Workouts) != 1 || detail.Workouts[0].Name != "Bench" {
		t.Fatalf("expected one embedded workout, got %+v", detail.Workouts)
	}

	if _, err := svc.Get(ctx, other, split.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for non-owner, got %v", err)
	}
	if _, err := svc.Get(ctx, owner, 999); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for missing split, got %v", err)
	}
}

func TestListScopesToOwner(t *testing.T) {
	svc, _, owner, other := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"Push", "Pull", "Legs"} {
		if _, err := svc.Create(ctx, CreateInput{UserID: owner, Name: name}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	if _, err := svc.Create(ctx, CreateInput{UserID: other, Name: "Upper"}); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	splits, err := svc.List(ctx, owner, domain.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(splits) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(splits))
	}

	splits, err = svc.List(ctx, owner, domain.ListOptions{Search: "pu"})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if len(splits) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(splits))
	}

	splits, err = svc.List(ctx, owner, domain.ListOptions{Limit: 1, Offset: 2})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if len(splits) != 1 || splits[0].Name != "Legs" {
		t.Fatalf("unexpected page %+v", splits)
	}
}

func TestUpdateChangesOnlySuppliedFields(t *testing.T) {
	svc, _, owner, other := newTestService(t)
	ctx := context.Background()
	desc := "chest and triceps"
	split, err := svc.Create(ctx, CreateInput{UserID: owner, Name: "Push", Description: &desc})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Push Day"
	updated, err := svc.Update(ctx, owner, split.ID, domain.SplitUpdate{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Push Day" || updated.Description == nil || *updated.Description != desc {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if _, err := svc.Update(ctx, other, split.ID, domain.SplitUpdate{Name: &name}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for non-owner, got %v", err)
	}

	blank := " "
	if _, err := svc.Update(ctx, owner, split.ID, domain.SplitUpdate{Name: &blank}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}

	same, err := svc.Update(ctx, owner, split.ID, domain.SplitUpdate{})
	if err != nil {
		t.Fatalf("empty Update: %v", err)
	}
	if same.Name != "Push Day" {
		t.Fatalf("empty update changed split: %+v", same)
	}
}

func TestDeleteCascadesToWorkouts(t *testing.T) {
	svc, store, owner, other := newTestService(t)
	ctx := context.Background()
	split, err := svc.Create(ctx, CreateInput{UserID: owner, Name: "Push"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.CreateWorkout(ctx, &domain.Workout{SplitID: split.ID, Name: "Bench"}); err != nil {
		t.Fatalf("CreateWorkout: %v", err)
	}

	if err := svc.Delete(ctx, other, split.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for non-owner, got %v", err)
	}
	if err := svc.Delete(ctx, owner, split.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.SplitCount() != 0 || store.WorkoutCount() != 0 {
		t.Fatalf("expected cascade, have %d splits and %d workouts", store.SplitCount(), store.WorkoutCount())
	}
	workouts, err := store.ListWorkoutsForUser(ctx, owner, split.ID, domain.ListOptions{})
	if err != nil {
		t.Fatalf("ListWorkoutsForUser: %v", err)
	}
	if len(workouts) != 0 {
		t.Fatalf("expected no workouts after delete, got %d", len(workouts))
	}
}

func TestFailedTransactionPersistsNothing(t *testing.T) {
	svc, store, owner, _ := newTestService(t)
	boom := errors.New("boom")
	store.FailNextTx(boom)
	if _, err := svc.Create(context.Background(), CreateInput{UserID: owner, Name: "Push"}); !errors.Is(err, boom) {
		t.Fatalf("expected tx error, got %v", err)
	}
	if store.SplitCount() != 0 {
		t.Fatalf("expected no split persisted")
	}
}

func TestListRunsInsideTransaction(t *testing.T) {
	svc, store, owner, _ := newTestService(t)
	boom := errors.New("boom")
	store.FailNextTx(boom)
	if _, err := svc.List(context.Background(), owner, domain.ListOptions{}); !errors.Is(err, boom) {
		t.Fatalf("expected tx error, got %v", err)
	}
}
