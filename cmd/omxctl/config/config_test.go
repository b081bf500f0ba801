package config

import "testing"

func TestCmdShape(t *testing.T) {
	cmd := Cmd()
	if cmd.Use != "config" {
		t.Fatalf("unexpected use: %q", cmd.Use)
	}
	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"show", "add-path"} {
		if !names[want] {
			t.Fatalf("missing subcommand %q", want)
		}
	}
}
