package flag

import (
	"fmt"
)

// Argslice is a repeatable string flag.
type Argslice []string

func (s *Argslice) String() string {
	return fmt.Sprintf("%v", *s)
}

func (s *Argslice) Set(v string) error {
	*s = append(*s, v)
	return nil
}
