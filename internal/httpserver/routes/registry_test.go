package routes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGroupsAreSortedAndComplete(t *testing.T) {
	want := []string{"api", "ops", "probes"}
	if diff := cmp.Diff(want, Groups()); diff != "" {
		t.Errorf("route groups mismatch (-want +got):\n%s", diff)
	}
}
