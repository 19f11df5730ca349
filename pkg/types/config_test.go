package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid file config",
			config: Config{Backend: "file", DataDir: "/tmp/data"},
		},
		{
			name:   "valid sqlite config",
			config: Config{Backend: "sqlite", DataDir: "/tmp/data"},
		},
		{
			name:   "valid badger config",
			config: Config{Backend: "badger", DataDir: "/tmp/data"},
		},
		{
			name:   "memory with empty DataDir is valid",
			config: Config{Backend: "memory", DataDir: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigPersistent(t *testing.T) {
	if (Config{Backend: BackendMemory}).Persistent() {
		t.Error("memory backend should not be persistent")
	}
	for _, b := range []string{BackendFile, BackendSQLite, BackendBadger} {
		if !(Config{Backend: b}).Persistent() {
			t.Errorf("%s backend should be persistent", b)
		}
	}
}
