package riot

import (
	"errors"
	"fmt"
)

// ErrMatchNotFound reports that a match id the API listed moments ago no
// longer resolves upstream.
var ErrMatchNotFound = errors.New("riot: match not found")

// ErrAccountNotFound reports that a Riot ID does not resolve to an account.
var ErrAccountNotFound = errors.New("riot: account not found")

// APIError captures a non-2xx response that is not a recognized sentinel.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("riot api status %d: %s", e.Status, e.Body)
}
