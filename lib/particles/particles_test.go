package particles

import (
	"testing"

	"github.com/phil-mansfield/boxio/lib/amr"
	"github.com/phil-mansfield/boxio/lib/eq"
)

func TestPrepend(t *testing.T) {
	key := amr.FieldKey{Type: "DM", Name: "particle_mass"}
	p := New([]amr.FieldKey{key})
	if len(p[key]) != 0 || p[key] == nil {
		t.Fatalf("Expected an empty, non-nil array, got %v.", p[key])
	}

	p.Prepend(key, []float64{1, 2})
	p.Prepend(key, []float64{ })
	p.Prepend(key, []float64{3})
	p.Prepend(key, []float64{4, 5})

	exp := []float64{4, 5, 3, 1, 2}
	if !eq.Float64s(p[key], exp) {
		t.Errorf("Expected p[%s] = %v, got %v.", key, exp, p[key])
	}
	if p.Len(key) != len(exp) {
		t.Errorf("Expected p.Len(%s) = %d, got %d.", key, len(exp), p.Len(key))
	}
}

func TestResolve(t *testing.T) {
	unions := map[string][]string{ "all": []string{"DM", "stars"} }

	tests := []struct {
		ptype string
		kind RefKind
		types []string
	}{
		{"DM", Direct, []string{"DM"}},
		{"stars", Direct, []string{"stars"}},
		{"all", Union, []string{"DM", "stars"}},
		{"gas", Direct, []string{"gas"}},
	}

	for i := range tests {
		ref := Resolve(tests[i].ptype, unions)
		if ref.Kind != tests[i].kind {
			t.Errorf("%d) Expected kind %s, got %s.", i, tests[i].kind, ref.Kind)
		} else if !eq.Strings(ref.Types, tests[i].types) {
			t.Errorf("%d) Expected types %v, got %v.",
				i, tests[i].types, ref.Types)
		}
	}

	ref := Resolve("all", unions)
	ref.Types[0] = "gas"
	if unions["all"][0] != "DM" {
		t.Errorf("Resolve exposed the union table to modification.")
	}

	if ref := Resolve("DM", nil); ref.Kind != Direct {
		t.Errorf("Expected a nil union table to give Direct refs, got %s.",
			ref.Kind)
	}
}
