package sim

import (
	"fmt"
	"regexp"
)

// Named describes object that has a name.
type Named interface {
	Name() string
}

var nameRegexp = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)*$`)

// NameMustBeValid panics if the name is not a dot-separated list of
// identifiers, for example "MMU" or "MMU.TLB".
func NameMustBeValid(name string) {
	if !nameRegexp.MatchString(name) {
		panic(fmt.Sprintf("invalid name %q", name))
	}
}
