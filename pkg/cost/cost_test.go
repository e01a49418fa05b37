package cost

import "testing"

func TestAdd(t *testing.T) {
	a := Vector{1.5, 2.0, 0.7}
	b := Vector{1.3, 0.1, 0.3}
	want := Vector{2.8, 2.1, 1.0}

	got := Add(a, b)
	for i := range got {
		if diff := got[i] - want[i]; diff < -1e-9 || diff > 1e-9 {
			t.Errorf("Add(%v, %v)[%d] = %v, want %v", a, b, i, got[i], want[i])
		}
	}
}

func TestScalar(t *testing.T) {
	c := Vector{1.0, 2.0, 3.0}
	alpha := Preference{0, 1, 0}

	if got := Scalar(c, alpha); got != 2.0 {
		t.Errorf("Scalar(%v, %v) = %v, want 2.0", c, alpha, got)
	}
}

func TestPreferenceValid(t *testing.T) {
	tests := []struct {
		name string
		p    Preference
		want bool
	}{
		{"uniform", Uniform(), true},
		{"simplex corner", Preference{1, 0, 0}, true},
		{"negative component", Preference{-0.1, 0.6, 0.5}, false},
		{"does not sum to one", Preference{0.1, 0.1, 0.1}, false},
	}

	for _, tt := range tests {
		if got := tt.p.Valid(1e-9); got != tt.want {
			t.Errorf("%s: Valid() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
