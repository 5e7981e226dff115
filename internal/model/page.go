package model

// Page is one slice of a paginated listing. Count is the total number of
// matching items before pagination.
type Page[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}
