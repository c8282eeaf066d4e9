// Package naming defines how hardware blocks are named.
package naming

import (
	"strconv"
	"strings"
)

// Named describes an object that has a name.
type Named interface {
	// Name returns the name of the object.
	Name() string
}

// NamedBase is a base implementation of Named.
type NamedBase struct {
	name string
}

// Name returns the name of the object.
func (b *NamedBase) Name() string {
	return b.name
}

// MakeNamedBase creates a new NamedBase
func MakeNamedBase(name string) NamedBase {
	NameMustBeValid(name)

	return NamedBase{name: name}
}

// NameMustBeValid panics if the name does not follow the naming convention.
// A name is a list of dot separated tokens. Each token starts with an upper
// case letter and may be followed by bracketed integer indices, for example
// `Board.Ctrl.Bank[2]`.
func NameMustBeValid(name string) {
	if name == "" {
		panic("name must not be empty")
	}

	for _, token := range strings.Split(name, ".") {
		tokenMustBeValid(name, token)
	}
}

func tokenMustBeValid(name, token string) {
	if token == "" {
		panic("name " + name + " contains an empty token")
	}

	if token[0] < 'A' || token[0] > 'Z' {
		panic("name token " + token + " must start with an upper case letter")
	}

	parts := strings.Split(token, "[")
	for _, p := range parts[1:] {
		if !strings.HasSuffix(p, "]") {
			panic("name " + name + " has unmatched brackets")
		}

		if _, err := strconv.Atoi(strings.TrimSuffix(p, "]")); err != nil {
			panic("name index must be integer in " + name)
		}
	}

	if strings.ContainsAny(parts[0], "]") {
		panic("name " + name + " has unmatched brackets")
	}
}
