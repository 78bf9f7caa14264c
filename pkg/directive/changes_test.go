package directive

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTrackerReportsFirstAndChangedInputs(t *testing.T) {
	tr := NewTracker()

	got := tr.Track(map[string]any{InputModel: 1, InputName: "a"})
	want := Changes{
		InputModel: {Current: 1, FirstChange: true},
		InputName:  {Current: "a", FirstChange: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("first pass mismatch (-want +got):\n%s", diff)
	}

	if got := tr.Track(map[string]any{InputModel: 1, InputName: "a"}); len(got) != 0 {
		t.Fatalf("unchanged inputs must not be reported, got %v", got)
	}

	got = tr.Track(map[string]any{InputModel: 2, InputName: "a"})
	want = Changes{InputModel: {Previous: 1, Current: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("second pass mismatch (-want +got):\n%s", diff)
	}

	if got := tr.Track(map[string]any{InputModel: 2, InputName: "a", InputDisabled: math.NaN()}); len(got) != 1 {
		t.Fatalf("new input must be reported, got %v", got)
	}
	if got := tr.Track(map[string]any{InputModel: 2, InputName: "a", InputDisabled: math.NaN()}); len(got) != 0 {
		t.Fatalf("NaN must be identical to NaN, got %v", got)
	}
}

func TestIsPropertyUpdated(t *testing.T) {
	shared := map[string]any{"k": 1}
	cases := []struct {
		name      string
		changes   Changes
		viewModel any
		want      bool
	}{
		{"no model change", Changes{InputName: {Current: "x"}}, nil, false},
		{"first change", Changes{InputModel: {Current: "v", FirstChange: true}}, "v", true},
		{"equal primitive", Changes{InputModel: {Current: "v"}}, "v", false},
		{"different primitive", Changes{InputModel: {Current: "w"}}, "v", true},
		{"nan", Changes{InputModel: {Current: math.NaN()}}, math.NaN(), false},
		{"same map", Changes{InputModel: {Current: shared}}, shared, false},
		{"equal but distinct map", Changes{InputModel: {Current: map[string]any{"k": 1}}}, shared, true},
		{"type mismatch", Changes{InputModel: {Current: 1}}, 1.0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPropertyUpdated(tc.changes, tc.viewModel); got != tc.want {
				t.Fatalf("IsPropertyUpdated = %v, want %v", got, tc.want)
			}
		})
	}
}
