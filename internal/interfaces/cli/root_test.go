package cli

import (
	"bytes"
	"testing"
)

func TestNewRootCommandStructure(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("NewRootCommand should return a command")
	}

	if cmd.Use != "deadlined" {
		t.Errorf("expected Use='deadlined', got %q", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short should not be empty")
	}
	if cmd.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestNewRootCommandSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	subNames := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subNames[sub.Name()] = true
	}

	for _, name := range []string{"serve", "migrate", "seed"} {
		if !subNames[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestNewRootCommandGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	if configFlag == nil {
		t.Fatal("config flag should exist")
	}
	if configFlag.Shorthand != "c" {
		t.Errorf("config flag shorthand should be 'c', got %q", configFlag.Shorthand)
	}

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	if levelFlag == nil {
		t.Fatal("log-level flag should exist")
	}
	if levelFlag.DefValue != "" {
		t.Errorf("log-level flag default should be empty, got %q", levelFlag.DefValue)
	}
}

func TestServeCommandMigrateFlag(t *testing.T) {
	cmd := NewRootCommand()

	serve, _, err := cmd.Find([]string{"serve"})
	if err != nil {
		t.Fatalf("finding serve command: %v", err)
	}

	migrateFlag := serve.Flags().Lookup("migrate")
	if migrateFlag == nil {
		t.Fatal("migrate flag should exist on serve")
	}
	if migrateFlag.DefValue != "false" {
		t.Errorf("migrate flag default should be 'false', got %q", migrateFlag.DefValue)
	}
}

func TestRootCommandHelp(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--help"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("help output should not be empty")
	}
}

func TestRootCommandUnknownSubcommand(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"nosuchcommand"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown subcommand")
	}
}
