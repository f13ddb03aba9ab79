package domain

// ListOptions narrows list queries. A zero Limit returns every row.
type ListOptions struct {
	Limit  int
	Offset int
	Search string
}
