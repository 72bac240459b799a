package backend

import (
	"context"
	"testing"

	"bilancio/internal/config"
)

func TestBackendType_IsValid(t *testing.T) {
	tests := []struct {
		bt   BackendType
		want bool
	}{
		{SQLiteBackend, true},
		{MemoryBackend, true},
		{BackendType("sheets"), false},
		{BackendType(""), false},
	}

	for _, tt := range tests {
		if got := tt.bt.IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.bt, got, tt.want)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "./data/test.db",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend {
		t.Errorf("Type = %q, want sqlite", cfg.Type)
	}
	if cfg.SQLiteDBPath != "./data/test.db" {
		t.Errorf("SQLiteDBPath = %q", cfg.SQLiteDBPath)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Error("expected error for unknown backend type")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory config should validate: %v", err)
	}
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite config without db path should fail")
	}
}

func TestFactory_CreateMemoryBackend(t *testing.T) {
	f := NewFactory(nil)

	result, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.Backend == nil {
		t.Fatal("backend is nil")
	}
	if result.Cleanup != nil {
		t.Error("memory backend should not need cleanup")
	}

	cats, err := result.Backend.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) == 0 {
		t.Error("memory backend should come seeded with categories")
	}
}
