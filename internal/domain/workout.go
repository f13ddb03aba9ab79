package domain

import "time"

// Workout is a single exercise entry inside a split.
type Workout struct {
	ID        int64
	SplitID   int64
	Name      string
	Sets      *int
	Reps      *int
	Weight    *float64
	Notes     *string
	CreatedAt time.Time
}

// WorkoutUpdate lists the workout fields a caller supplied. Nil means unchanged.
type WorkoutUpdate struct {
	Name   *string
	Sets   *int
	Reps   *int
	Weight *float64
	Notes  *string
}

// Apply copies supplied fields onto w.
func (u WorkoutUpdate) Apply(w *Workout) {
	if u.Name != nil {
		w.Name = *u.Name
	}
	if u.Sets != nil {
		w.Sets = u.Sets
	}
	if u.Reps != nil {
		w.Reps = u.Reps
	}
	if u.Weight != nil {
		w.Weight = u.Weight
	}
	if u.Notes != nil {
		w.Notes = u.Notes
	}
}

// Empty reports whether no field was supplied.
func (u WorkoutUpdate) Empty() bool {
	return u.Name == nil && u.Sets == nil && u.Reps == nil && u.Weight == nil && u.Notes == nil
}
