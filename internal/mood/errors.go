package mood

import (
	"errors"
	"fmt"
)

// Structural preconditions surface as explicit errors; data-quality problems
// inside a single conversation never do (they degrade to neutral output).

// ErrNoBaseline — deviation analysis or update requested before establishment.
var ErrNoBaseline = errors.New("no baseline established for subject")

// ErrNoMatchedPairs — validation with zero overlapping conversation ids.
var ErrNoMatchedPairs = errors.New("no matched algorithm/human pairs")

// InsufficientDataError — baseline establishment below the minimum sample size.
type InsufficientDataError struct {
	SubjectID string
	Got       int
	Need      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for subject %s: have %d scored conversations, need %d", e.SubjectID, e.Got, e.Need)
}

// InvalidCredentialsError — validator fails the experience/specialization gates.
type InvalidCredentialsError struct {
	ValidatorID string
	Reason      string
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("validator %s rejected: %s", e.ValidatorID, e.Reason)
}
