package tui

import (
	"slices"
	"testing"

	"charm.land/bubbles/v2/key"
)

// TestKeyMapReorderModifier verifies reorder keys follow the configured modifier.
func TestKeyMapReorderModifier(t *testing.T) {
	cases := []struct {
		modifier string
		wantUp   []string
		wantDown []string
	}{
		{modifier: "", wantUp: []string{"alt+up", "alt+k"}, wantDown: []string{"alt+down", "alt+j"}},
		{modifier: "ctrl", wantUp: []string{"ctrl+up", "ctrl+k"}, wantDown: []string{"ctrl+down", "ctrl+j"}},
		{modifier: " Shift ", wantUp: []string{"shift+up", "shift+k"}, wantDown: []string{"shift+down", "shift+j"}},
		{modifier: "hyper", wantUp: []string{"alt+up", "alt+k"}, wantDown: []string{"alt+down", "alt+j"}},
	}
	for _, tc := range cases {
		k := newKeyMap()
		k.setReorderModifier(tc.modifier)
		if got := k.reorderUp.Keys(); !slices.Equal(got, tc.wantUp) {
			t.Fatalf("modifier %q up keys = %#v, want %#v", tc.modifier, got, tc.wantUp)
		}
		if got := k.reorderDown.Keys(); !slices.Equal(got, tc.wantDown) {
			t.Fatalf("modifier %q down keys = %#v, want %#v", tc.modifier, got, tc.wantDown)
		}
	}
}

// TestKeyMapHelpCoversEveryBinding verifies the full help lists all board bindings.
func TestKeyMapHelpCoversEveryBinding(t *testing.T) {
	k := newKeyMap()
	seen := map[string]bool{}
	for _, group := range k.FullHelp() {
		for _, binding := range group {
			seen[binding.Help().Desc] = true
		}
	}
	for _, binding := range []key.Binding{
		k.quit, k.reload, k.toggleHelp, k.pagePrev, k.pageNext, k.toolbarPrev, k.toolbarNext,
		k.columnLeft, k.columnRight, k.taskUp, k.taskDown, k.reorderUp, k.reorderDown,
		k.grab, k.cancel, k.openTask, k.copyID, k.nextProject,
	} {
		if !seen[binding.Help().Desc] {
			t.Fatalf("full help missing %q", binding.Help().Desc)
		}
	}
}
