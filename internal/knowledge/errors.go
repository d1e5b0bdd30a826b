package knowledge

import "errors"

var (
	ErrInvalidCell  = errors.New("cell out of board bounds")
	ErrInvalidCount = errors.New("mine count out of range")
)

// AssertionError marks a broken internal invariant. The engine panics
// with it instead of carrying on with a corrupt knowledge base: a wrong
// deduction presented as certain is worse than a crash.
type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}
