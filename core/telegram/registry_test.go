package telegram

import (
	"testing"

	"github.com/m3rciful/hallbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "menu"})
	reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "stats", Access: commands.AdminOnly, Aliases: []string{"📊 Статистика"}})
	reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "no slash"})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "duplicate"})

	if len(reg.Commands()) != 2 {
		t.Fatalf("commands = %d, want 2", len(reg.Commands()))
	}
	if _, cmd, ok := reg.LookupCommand("start"); !ok || cmd.Description != "menu" {
		t.Fatalf("LookupCommand(start) = %+v %v", cmd, ok)
	}
	if key, _, ok := reg.LookupAlias("📊 Статистика"); !ok || key != "/stats" {
		t.Fatalf("LookupAlias = %q %v", key, ok)
	}
	if _, _, ok := reg.LookupAlias("stats"); ok {
		t.Fatal("plain text must not resolve as an alias")
	}

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "start" {
		t.Fatalf("visible commands = %+v", visible)
	}
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("ans", noop); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterCallback("ans", noop); err == nil {
		t.Fatal("duplicate callback accepted")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatal("empty key accepted")
	}
	if _, ok := reg.GetCallback("ans"); !ok {
		t.Fatal("callback not found")
	}
	if got := reg.ListCallbacks(); len(got) != 1 || got[0] != "ans" {
		t.Fatalf("ListCallbacks = %v", got)
	}
}
