package dependent

import (
	"fmt"
	"time"
)

// Dependent is a child covered by the support order. Input only, never
// mutated by the pipeline.
type Dependent struct {
	Name string
	DOB  time.Time
}

// New validates and constructs a Dependent.
func New(name string, dob time.Time) (Dependent, error) {
	if name == "" {
		return Dependent{}, fmt.Errorf("invalid dependent: missing name")
	}
	if dob.IsZero() {
		return Dependent{}, fmt.Errorf("invalid dependent %q: missing date of birth", name)
	}
	return Dependent{Name: name, DOB: dob}, nil
}
