package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tokenFile := filepath.Join(dir, "token")
	if err := os.WriteFile(tokenFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	t.Setenv("MATCH_TEST_TOKEN", " from-env ")

	tests := []struct {
		name      string
		src       Source
		expect    string
		errSubstr string
	}{
		{
			name:   "file wins",
			src:    Source{Name: "token", File: tokenFile, Value: "inline", Env: "MATCH_TEST_TOKEN"},
			expect: "from-file",
		},
		{
			name:   "value before env",
			src:    Source{Name: "token", Value: " inline ", Env: "MATCH_TEST_TOKEN"},
			expect: "inline",
		},
		{
			name:   "env",
			src:    Source{Name: "token", Env: "MATCH_TEST_TOKEN"},
			expect: "from-env",
		},
		{
			name:      "missing file",
			src:       Source{Name: "token", File: filepath.Join(dir, "nope")},
			errSubstr: "reading token from file",
		},
		{
			name:      "empty file",
			src:       Source{Name: "token", File: emptyFile},
			errSubstr: "is empty",
		},
		{
			name:      "unset env",
			src:       Source{Name: "token", Env: "MATCH_TEST_UNSET"},
			errSubstr: "MATCH_TEST_UNSET is empty",
		},
		{
			name:      "nothing configured",
			src:       Source{},
			errSubstr: "secret is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.errSubstr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
					t.Fatalf("expected error containing %q, got %v", tt.errSubstr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
