package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpx "github.com/liftsplit/liftsplit/internal/http"
	"github.com/liftsplit/liftsplit/internal/repository/repotest"
	"github.com/liftsplit/liftsplit/internal/service/auth"
	"github.com/liftsplit/liftsplit/internal/service/split"
	"github.com/liftsplit/liftsplit/internal/service/workout"
	"github.com/liftsplit/liftsplit/internal/validation"
	jwtpkg "github.com/liftsplit/liftsplit/pkg/jwt"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repotest.New()
	signer, err := jwtpkg.NewSigner("client-test-secret", "HS256")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	router := httpx.NewRouter(
		log,
		auth.New(store, signer, time.Hour, log),
		split.New(store, log),
		workout.New(store, log),
		validation.MustNewValidator(),
		nil,
		nil,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	cli, err := New(srv.URL, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cli
}

func strPtr(v string) *string { return &v }

func TestClientRoundTrip(t *testing.T) {
	cli := newTestServer(t)
	ctx := context.Background()

	user, err := cli.Register(ctx, "john", "john@x.com", "pw123456")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := cli.Login(ctx, "john", "pw123456")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token.TokenType != "bearer" || token.AccessToken == "" {
		t.Fatalf("unexpected token %+v", token)
	}
	me, err := cli.Me(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.ID != user.ID {
		t.Fatalf("me returned %d, want %d", me.ID, user.ID)
	}

	created, err := cli.CreateSplit(ctx, token.AccessToken, SplitInput{Name: strPtr("Push")})
	if err != nil {
		t.Fatalf("CreateSplit: %v", err)
	}
	sets, weight := 4, 80.5
	w, err := cli.CreateWorkout(ctx, token.AccessToken, created.ID, WorkoutInput{Name: strPtr("Bench"), Sets: &sets, Weight: &weight})
	if err != nil {
		t.Fatalf("CreateWorkout: %v", err)
	}

	newWeight := 85.0
	updated, err := cli.UpdateWorkout(ctx, token.AccessToken, created.ID, w.ID, WorkoutInput{Weight: &newWeight})
	if err != nil {
		t.Fatalf("UpdateWorkout: %v", err)
	}
	if *updated.Weight != 85.0 || *updated.Sets != 4 {
		t.Fatalf("unexpected update %+v", updated)
	}

	detail, err := cli.GetSplit(ctx, token.AccessToken, created.ID)
	if err != nil {
		t.Fatalf("GetSplit: %v", err)
	}
	if len(detail.Workouts) != 1 {
		t.Fatalf("expected one workout, got %d", len(detail.Workouts))
	}

	splits, err := cli.ListSplits(ctx, token.AccessToken, ListOptions{Search: "pu"})
	if err != nil {
		t.Fatalf("ListSplits: %v", err)
	}
	if len(splits) != 1 {
		t.Fatalf("expected one split, got %d", len(splits))
	}

	if err := cli.DeleteSplit(ctx, token.AccessToken, created.ID); err != nil {
		t.Fatalf("DeleteSplit: %v", err)
	}
	workouts, err := cli.ListWorkouts(ctx, token.AccessToken, created.ID, ListOptions{})
	if err != nil {
		t.Fatalf("ListWorkouts: %v", err)
	}
	if len(workouts) != 0 {
		t.Fatalf("expected no workouts after delete, got %d", len(workouts))
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	cli := newTestServer(t)
	ctx := context.Background()

	_, err := cli.Login(ctx, "nobody", "pw123456")
	var apiErr APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}

	_, err = cli.Register(ctx, "john", "bad", "short")
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 APIError, got %v", err)
	}
	if len(apiErr.Fields) == 0 {
		t.Fatalf("expected field detail in %+v", apiErr)
	}

	_, err = cli.GetSplit(ctx, "", 1)
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %v", err)
	}
}

func TestListOptionsQuery(t *testing.T) {
	if got := (ListOptions{}).query(); got != "" {
		t.Fatalf("expected empty query, got %q", got)
	}
	if got := (ListOptions{Limit: 5, Skip: 10, Search: "push"}).query(); got != "?limit=5&search=push&skip=10" {
		t.Fatalf("unexpected query %q", got)
	}
}
