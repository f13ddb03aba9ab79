package httpx

import (
	"time"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/service/split"
)

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type splitResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type splitDetailResponse struct {
	splitResponse
	Workouts []workoutResponse `json:"workouts"`
}

type workoutResponse struct {
	ID        int64     `json:"id"`
	SplitID   int64     `json:"split_id"`
	Name      string    `json:"name"`
	Sets      *int      `json:"sets"`
	Reps      *int      `json:"reps"`
	Weight    *float64  `json:"weight"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

func newSplitResponse(s domain.Split) splitResponse {
	return splitResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}

func newSplitDetailResponse(d *split.Detail) splitDetailResponse {
	workouts := make([]workoutResponse, 0, len(d.Workouts))
	for _, w := range d.Workouts {
		workouts = append(workouts, newWorkoutResponse(w))
	}
	return splitDetailResponse{splitResponse: newSplitResponse(d.Split), Workouts: workouts}
}

func newWorkoutResponse(w domain.Workout) workoutResponse {
	return workoutResponse{
		ID:        w.ID,
		SplitID:   w.SplitID,
		Name:      w.Name,
		Sets:      w.Sets,
		Reps:      w.Reps,
		Weight:    w.Weight,
		Notes:     w.Notes,
		CreatedAt: w.CreatedAt,
	}
}
