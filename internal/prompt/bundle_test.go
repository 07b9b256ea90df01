package prompt

import (
	"testing"
	"testing/fstest"
)

func TestBundleRender(t *testing.T) {
	fsys := fstest.MapFS{
		"p/greet.yml": {Data: []byte("system: static\nuser: \"Hi {name} {{ok}}\"\n")},
	}
	bundle, err := LoadBundle(fsys, "p", "greet", "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	system, err := bundle.Text("greet", "system")
	if err != nil || system != "static" {
		t.Fatalf("unexpected system: %q err=%v", system, err)
	}
	user, err := bundle.Render("greet", "user", map[string]string{"name": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != "Hi Ada {ok}" {
		t.Fatalf("unexpected user: %q", user)
	}
	if _, err := bundle.Text("greet", "missing"); err == nil {
		t.Fatalf("expected missing field error")
	}
	if _, err := bundle.Text("other", "user"); err == nil {
		t.Fatalf("expected missing prompt error")
	}
}

func TestLoadBundleEmptyDir(t *testing.T) {
	if _, err := LoadBundle(fstest.MapFS{}, "p", "x"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadBundleRequiresFields(t *testing.T) {
	fsys := fstest.MapFS{
		"p/ideas.yml": {Data: []byte("system: static\n")},
	}
	if _, err := LoadBundle(fsys, "p", "ideas", "system", "user"); err == nil {
		t.Fatalf("expected missing user field error")
	}
}

func TestNilBundle(t *testing.T) {
	var bundle *Bundle
	if _, err := bundle.Prompt("x"); err == nil {
		t.Fatalf("expected error")
	}
}
