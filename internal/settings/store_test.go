package settings

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

// exerciseStore checks the behavior every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Read(ctx, "extensions")
	if err != nil {
		t.Fatalf("Read(missing) error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("Read(missing) = %v, want empty non-nil map", got)
	}

	want := map[string]string{"seo": "on", "mailer": "off"}
	if err := s.Write(ctx, "extensions", want); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	got, err = s.Read(ctx, "extensions")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %v, want %v", got, want)
	}

	got["seo"] = "tampered"
	again, err := s.Read(ctx, "extensions")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if again["seo"] != "on" {
		t.Errorf("mutating a read result changed the store: %v", again)
	}

	if err := s.Write(ctx, "extensions", map[string]string{"seo": "off"}); err != nil {
		t.Fatalf("Write(replace) error: %v", err)
	}
	got, err = s.Read(ctx, "extensions")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]string{"seo": "off"}) {
		t.Errorf("Write should replace the whole map, got %v", got)
	}

	other, err := s.Read(ctx, "other_key")
	if err != nil {
		t.Fatalf("Read(other_key) error: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("settings keys leaked: %v", other)
	}

	if err := s.Write(ctx, "extensions", map[string]string{}); err != nil {
		t.Fatalf("Write(empty) error: %v", err)
	}
	got, err = s.Read(ctx, "extensions")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Read() after empty write = %v, want empty", got)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("Open(memory) error: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Open(memory) returned %T", s)
	}

	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err = Open(ctx, Config{Path: path})
	if err != nil {
		t.Fatalf("Open(default) error: %v", err)
	}
	if f, ok := s.(*File); !ok || f.Path() != path {
		t.Errorf("Open(default) returned %T, want *File at %s", s, path)
	}

	if _, err := Open(ctx, Config{Driver: "etcd"}); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Open(etcd) error = %v, want ErrUnknownDriver", err)
	}
	if _, err := Open(ctx, Config{Driver: DriverRedis}); err == nil {
		t.Error("Open(redis) without address should fail")
	}
	if _, err := Open(ctx, Config{Driver: DriverMySQL}); err == nil {
		t.Error("Open(mysql) without DSN should fail")
	}
}
