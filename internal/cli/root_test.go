package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/basher83/zammad-mcp/internal/version"
)

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	want := map[string]bool{
		"serve":   false,
		"auth":    false,
		"call":    false,
		"version": false,
	}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), version.Version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestAuthHasCredentialSubcommands(t *testing.T) {
	root := NewRootCmd()
	var auth *cobra.Command
	for _, c := range root.Commands() {
		if c.Name() == "auth" {
			auth = c
		}
	}
	if auth == nil {
		t.Fatal("auth command missing")
	}
	names := map[string]bool{}
	for _, c := range auth.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"set-token", "clear", "status"} {
		if !names[want] {
			t.Errorf("auth missing %q", want)
		}
	}
}
