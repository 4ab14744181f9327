package renderer

import "golang.org/x/exp/constraints"

// naturalAlignment is the alignment of every allocation in a parameter arena.
const naturalAlignment = 8

func alignUp[T constraints.Integer](v, align T) T {
	return (v + align - 1) &^ (align - 1)
}
