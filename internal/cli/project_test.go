package cli

import (
	"testing"
)

func TestNewProjectCmd(t *testing.T) {
	cmd := newProjectCmd()

	if cmd.Use != "project" {
		t.Errorf("expected use 'project', got '%s'", cmd.Use)
	}

	if len(cmd.Aliases) == 0 || cmd.Aliases[0] != "proj" {
		t.Error("expected alias 'proj'")
	}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	expectedCommands := []string{"create", "get", "list", "delete", "update"}
	for _, expected := range expectedCommands {
		if !subcommands[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestProjectCreateCmd_Flags(t *testing.T) {
	cmd := newProjectCreateCmd()

	if cmd.Use != "create <id>" {
		t.Errorf("expected use 'create <id>', got '%s'", cmd.Use)
	}

	flags := []string{"label", "description"}
	for _, flagName := range flags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("expected --%s flag", flagName)
		}
	}
}

func TestProjectGetCmd_Flags(t *testing.T) {
	cmd := newProjectGetCmd()

	if cmd.Use != "get <id>" {
		t.Errorf("expected use 'get <id>', got '%s'", cmd.Use)
	}
	if cmd.Flags().Lookup("output") == nil {
		t.Error("expected --output flag")
	}
	if cmd.Flags().ShorthandLookup("o") == nil {
		t.Error("expected -o shorthand for --output")
	}
}

func TestProjectListCmd_Flags(t *testing.T) {
	cmd := newProjectListCmd()

	if cmd.Use != "list" {
		t.Errorf("expected use 'list', got '%s'", cmd.Use)
	}
	if len(cmd.Aliases) == 0 || cmd.Aliases[0] != "ls" {
		t.Error("expected alias 'ls'")
	}
	if cmd.Flags().Lookup("output") == nil {
		t.Error("expected --output flag")
	}
}

func TestProjectDeleteCmd(t *testing.T) {
	cmd := newProjectDeleteCmd()

	if cmd.Use != "delete <id>" {
		t.Errorf("expected use 'delete <id>', got '%s'", cmd.Use)
	}
	if len(cmd.Aliases) == 0 || cmd.Aliases[0] != "rm" {
		t.Error("expected alias 'rm'")
	}
}

func TestProjectUpdateCmd_Flags(t *testing.T) {
	cmd := newProjectUpdateCmd()

	if cmd.Use != "update <id>" {
		t.Errorf("expected use 'update <id>', got '%s'", cmd.Use)
	}

	flags := []string{"label", "description", "status"}
	for _, flagName := range flags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("expected --%s flag", flagName)
		}
	}
}
