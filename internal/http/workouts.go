package httpx

import (
	"net/http"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/service/workout"
	"github.com/liftsplit/liftsplit/internal/validation"
)

const workoutNotFound = "workout not found"

type workoutPayload struct {
	Name   *string  `json:"name"`
	Sets   *int     `json:"sets"`
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"weight"`
	Notes  *string  `json:"notes"`
}

func (r *Router) handleCreateWorkout(w http.ResponseWriter, req *http.Request) {
	splitID, err := pathID(req, "id")
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	body, err := readBody(w, req)
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	var payload workoutPayload
	if err := r.validator.Decode(validation.WorkoutCreate, body, &payload); err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	input := workout.CreateInput{
		UserID:  currentUser(req).ID,
		SplitID: splitID,
		Sets:    payload.Sets,
		Reps:    payload.Reps,
		Weight:  payload.Weight,
		Notes:   payload.Notes,
	}
	if payload.Name != nil {
		input.Name = *payload.Name
	}
	created, err := r.workouts.Create(req.Context(), input)
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, newWorkoutResponse(*created))
}

func (r *Router) handleListWorkouts(w http.ResponseWriter, req *http.Request) {
	splitID, err := pathID(req, "id")
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	opts, err := listOptions(req)
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	workouts, err := r.workouts.List(req.Context(), currentUser(req).ID, splitID, opts)
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	out := make([]workoutResponse, 0, len(workouts))
	for _, wk := range workouts {
		out = append(out, newWorkoutResponse(wk))
	}
	writeJSON(w, http.StatusOK, out)
}

func (r *Router) handleGetWorkout(w http.ResponseWriter, req *http.Request) {
	splitID, workoutID, ok := r.workoutPath(w, req)
	if !ok {
		return
	}
	wk, err := r.workouts.Get(req.Context(), currentUser(req).ID, splitID, workoutID)
	if err != nil {
		r.writeServiceError(w, req, err, workoutNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newWorkoutResponse(*wk))
}

func (r *Router) handleUpdateWorkout(w http.ResponseWriter, req *http.Request) {
	splitID, workoutID, ok := r.workoutPath(w, req)
	if !ok {
		return
	}
	body, err := readBody(w, req)
	if err != nil {
		r.writeServiceError(w, req, err, workoutNotFound)
		return
	}
	var payload workoutPayload
	if err := r.validator.Decode(validation.WorkoutUpdate, body, &payload); err != nil {
		r.writeServiceError(w, req, err, workoutNotFound)
		return
	}
	updated, err := r.workouts.Update(req.Context(), currentUser(req).ID, splitID, workoutID, domain.WorkoutUpdate{
		Name:   payload.Name,
		Sets:   payload.Sets,
		Reps:   payload.Reps,
		Weight: payload.Weight,
		Notes:  payload.Notes,
	})
	if err != nil {
		r.writeServiceError(w, req, err, workoutNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newWorkoutResponse(*updated))
}

func (r *Router) handleDeleteWorkout(w http.ResponseWriter, req *http.Request) {
	splitID, workoutID, ok := r.workoutPath(w, req)
	if !ok {
		return
	}
	if err := r.workouts.Delete(req.Context(), currentUser(req).ID, splitID, workoutID); err != nil {
		r.writeServiceError(w, req, err, workoutNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) workoutPath(w http.ResponseWriter, req *http.Request) (int64, int64, bool) {
	splitID, err := pathID(req, "id")
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return 0, 0, false
	}
	workoutID, err := pathID(req, "workout_id")
	if err != nil {
		r.writeServiceError(w, req, err, workoutNotFound)
		return 0, 0, false
	}
	return splitID, workoutID, true
}
