package expand

import (
	"reflect"
	"testing"
)

var markers = Markers{
	"${foo}": {"exp_a", "exp_b"},
	"{{bar}}": {"exp_c", "exp_d", "exp_e"},
}

func TestExpand(t *testing.T) {
	paths := Expand("/static/foo_${foo}.png", markers)
	want := []string{
		"/static/foo_${foo}.png",
		"/static/foo_exp_a.png",
		"/static/foo_exp_b.png",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}

	paths = Expand("/static/bar_{{bar}}.js", markers)
	if len(paths) != 4 {
		t.Fatalf("expected 4 paths, got %v", paths)
	}
	for _, p := range []string{
		"/static/bar_{{bar}}.js",
		"/static/bar_exp_c.js",
		"/static/bar_exp_d.js",
		"/static/bar_exp_e.js",
	} {
		if !contains(paths, p) {
			t.Errorf("missing %s in %v", p, paths)
		}
	}
}

func TestExpandNoMarkerInPath(t *testing.T) {
	paths := Expand("/static/app.js", markers)
	if !reflect.DeepEqual(paths, []string{"/static/app.js"}) {
		t.Errorf("got %v", paths)
	}
}

func TestExpandIdentity(t *testing.T) {
	paths := Expand("/static/app_${foo}.js", nil)
	if !reflect.DeepEqual(paths, []string{"/static/app_${foo}.js"}) {
		t.Errorf("got %v", paths)
	}
}

func contains(paths []string, want string) bool {
	for _, p := range paths {
		if p == want {
			return true
		}
	}
	return false
}
