package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--help"})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"docmerge", "Merge Operations:", "insert", "replace"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("dev")

	for _, args := range [][]string{{"--version"}, {"version"}} {
		cmd := newRootCmd()
		cmd.SetArgs(args)
		var buf bytes.Buffer
		cmd.SetOut(&buf)

		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute(%v) error = %v", args, err)
		}
		if got := strings.TrimSpace(buf.String()); got != "1.2.3" {
			t.Errorf("Execute(%v) output = %q, want 1.2.3", args, got)
		}
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"invalid-command"})
	var buf bytes.Buffer
	cmd.SetErr(&buf)
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestSetVersion(t *testing.T) {
	defer SetVersion("dev")

	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"normal version", "1.2.3", "1.2.3"},
		{"empty version keeps previous", "", "1.2.3"},
		{"dev version", "dev", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersion(tt.version)
			if got := newRootCmd().Version; got != tt.want {
				t.Errorf("SetVersion(%q) gives %q, want %q", tt.version, got, tt.want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()
	subcommands := []string{
		"import", "ls", "show", "rm", "locate", "insert", "replace",
		"serve", "config", "version", "completion",
	}

	for _, name := range subcommands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := root.Find([]string{name})
			if err != nil {
				t.Fatalf("Find(%q) error = %v", name, err)
			}
			if sub == nil || sub.Name() != name {
				t.Errorf("Find(%q) returned %v", name, sub)
			}
			if sub.GroupID == "" {
				t.Errorf("%s has no command group", name)
			}
		})
	}
}
