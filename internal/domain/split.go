package domain

import "time"

// Split is a named grouping of exercises owned by a user.
type Split struct {
	ID          int64
	UserID      int64
	Name        string
	Description *string
	CreatedAt   time.Time
}

// SplitUpdate lists the split fields a caller supplied. Nil means unchanged.
type SplitUpdate struct {
	Name        *string
	Description *string
}

// Apply copies supplied fields onto s.
func (u SplitUpdate) Apply(s *Split) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Description != nil {
		s.Description = u.Description
	}
}

// Empty reports whether no field was supplied.
func (u SplitUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil
}
