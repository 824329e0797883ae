// Package latent defines the discrete latent index vector explored by the
// widget.
//
// A [Vector] holds one small integer per latent dimension. The dimension
// count and the number of levels per dimension are fixed by the precomputed
// dataset: [Dims] dimensions, each taking values in [0, [Levels]).
package latent

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/matzehuels/latentscope/pkg/errors"
)

const (
	// Dims is the number of latent dimensions, one slider each.
	Dims = 5

	// Levels is the number of discrete values per dimension.
	Levels = 3
)

// Vector is a position in the discretized latent space.
type Vector []int

// Zero returns a vector with every coordinate set to 0.
func Zero() Vector { return make(Vector, Dims) }

// Random draws every coordinate uniformly from [0, Levels).
func Random(r *rand.Rand) Vector {
	v := make(Vector, Dims)
	for i := range v {
		v[i] = r.IntN(Levels)
	}
	return v
}

// Validate reports whether v has exactly Dims coordinates in [0, Levels).
func (v Vector) Validate() error {
	if len(v) != Dims {
		return errors.New(errors.ErrCodeInvalidVector, "expected %d coordinates, got %d", Dims, len(v))
	}
	for i, x := range v {
		if x < 0 || x >= Levels {
			return errors.New(errors.ErrCodeInvalidVector, "coordinate %d out of range [0, %d): %d", i, Levels, x)
		}
	}
	return nil
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Equal reports whether v and o hold the same coordinates.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// String formats v as comma-separated coordinates, e.g. "0,1,2,0,1".
func (v Vector) String() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

// Parse reads a comma-separated vector and validates it.
func Parse(s string) (Vector, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	v := make(Vector, 0, len(fields))
	for _, f := range fields {
		x, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVector, err, "parse coordinate %q", f)
		}
		v = append(v, x)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Clamp returns x limited to the valid coordinate range.
func Clamp(x int) int {
	return max(0, min(x, Levels-1))
}
