package latent

import (
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/latentscope/pkg/errors"
)

func TestRandomStaysInRange(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		v := Random(r)
		if len(v) != Dims {
			t.Fatalf("len = %d, want %d", len(v), Dims)
		}
		if err := v.Validate(); err != nil {
			t.Fatalf("Random produced invalid vector %v: %v", v, err)
		}
	}
}

func TestRandomCoversAllLevels(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		for _, x := range Random(r) {
			seen[x] = true
		}
	}
	for l := 0; l < Levels; l++ {
		if !seen[l] {
			t.Errorf("level %d never drawn", l)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		v       Vector
		wantErr bool
	}{
		{"zero", Zero(), false},
		{"max", Vector{2, 2, 2, 2, 2}, false},
		{"too short", Vector{0, 1}, true},
		{"too long", Vector{0, 0, 0, 0, 0, 0}, true},
		{"negative", Vector{0, -1, 0, 0, 0}, true},
		{"too large", Vector{0, 0, 3, 0, 0}, true},
		{"nil", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidVector) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidVector)
			}
		})
	}
}

func TestParse(t *testing.T) {
	v, err := Parse(" 0, 1,2,0 ,1 ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !v.Equal(Vector{0, 1, 2, 0, 1}) {
		t.Errorf("Parse = %v", v)
	}
	if v.String() != "0,1,2,0,1" {
		t.Errorf("String = %q", v.String())
	}

	for _, bad := range []string{"", "a,b,c,d,e", "0,1,2", "0,1,2,0,9"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	v := Vector{1, 1, 1, 1, 1}
	c := v.Clone()
	c[0] = 2
	if v[0] != 1 {
		t.Error("Clone shares backing array")
	}
	if Vector(nil).Clone() != nil {
		t.Error("Clone(nil) should be nil")
	}
}

func TestClamp(t *testing.T) {
	for in, want := range map[int]int{-3: 0, 0: 0, 1: 1, 2: 2, 5: 2} {
		if got := Clamp(in); got != want {
			t.Errorf("Clamp(%d) = %d, want %d", in, got, want)
		}
	}
}
