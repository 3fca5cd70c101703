package cli

import (
	"testing"
)

func TestArgsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"add without args", []string{"add"}},
		{"add without message", []string{"add", "Alice"}},
		{"show without id", []string{"show"}},
		{"show extra args", []string{"show", "1", "2"}},
		{"like without id", []string{"like"}},
		{"comment without text", []string{"comment", "1"}},
		{"comments without id", []string{"comments"}},
		{"pin without id", []string{"pin"}},
		{"priority without value", []string{"priority", "1"}},
		{"status without value", []string{"status", "1"}},
		{"remove without id", []string{"remove"}},
		{"key create without name", []string{"key", "create"}},
		{"key revoke without id", []string{"key", "revoke"}},
		{"list with args", []string{"list", "extra"}},
		{"logout with args", []string{"logout", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNonNumericIDRejectedBeforeNetwork(t *testing.T) {
	// Nothing listens here; an id error must come back before any request.
	t.Setenv("SB_SERVER_URL", "http://127.0.0.1:1")
	t.Setenv("HOME", t.TempDir())

	for _, args := range [][]string{
		{"show", "abc"},
		{"like", "0"},
		{"comments", "0"},
		{"pin", "x"},
		{"remove", "1.5"},
		{"priority", "abc", "high"},
		{"status", "abc", "new"},
	} {
		t.Run(args[0]+" "+args[1], func(t *testing.T) {
			_, err := executeCommand(args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := err.Error(); got != "invalid suggestion ID: "+args[1] {
				t.Errorf("error = %q, want invalid ID error", got)
			}
		})
	}
}

func TestModerationValueRejectedLocally(t *testing.T) {
	t.Setenv("SB_SERVER_URL", "http://127.0.0.1:1")
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"priority", []string{"priority", "1", "urgent"}, `invalid priority "urgent" (use high, normal, low or none)`},
		{"status", []string{"status", "1", "done"}, `invalid status "done" (use new, reviewed, resolved or rejected)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestKeyRevokeRejectsBadID(t *testing.T) {
	_, err := executeCommand("key", "revoke", "abc", "--db", t.TempDir()+"/keys.db")
	if err == nil {
		t.Fatal("expected error for non-numeric key ID")
	}
}

func TestAddValidatesLocally(t *testing.T) {
	t.Setenv("SB_SERVER_URL", "http://127.0.0.1:1")
	t.Setenv("HOME", t.TempDir())

	_, err := executeCommand("add", "   ", "fix the lights")
	if err == nil {
		t.Fatal("expected validation error for blank name")
	}
}
