package telegram

import (
	"testing"

	"github.com/m3rciful/adventbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/support", commands.Command{Handler: noop, Description: "support"})
	reg.RegisterCommand("/register", commands.Command{Handler: noop, Description: "register", Hidden: true})
	reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "stats", AdminOnly: true})
	reg.RegisterCommand("faq", commands.Command{Handler: noop, Description: "no slash"})
	reg.RegisterCommand("/empty", commands.Command{Handler: noop})

	if got := len(reg.Commands()); got != 3 {
		t.Fatalf("commands = %d, want 3", got)
	}
	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "support" {
		t.Fatalf("visible = %+v", visible)
	}

	cases := map[string]string{
		"/support":            "/support",
		"/support@advent_bot": "/support",
		"/register now":       "/register",
	}
	for text, want := range cases {
		key, _, ok := reg.LookupCommand(text)
		if !ok || key != want {
			t.Fatalf("lookup %q = %q,%v", text, key, ok)
		}
	}
	if _, _, ok := reg.LookupCommand("support"); ok {
		t.Fatal("plain text must not match a command")
	}
}

func TestRegistryTextTriggers(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterText("Отправить ответ", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterText("Отправить ответ", noop); err == nil {
		t.Fatal("duplicate trigger accepted")
	}
	if err := reg.RegisterText("  ", noop); err == nil {
		t.Fatal("blank trigger accepted")
	}
	if _, ok := reg.LookupText(" Отправить ответ "); !ok {
		t.Fatal("trigger not found")
	}
	if _, ok := reg.LookupText("отправить"); ok {
		t.Fatal("partial text matched")
	}
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("task", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCallback("task", noop); err == nil {
		t.Fatal("duplicate callback accepted")
	}
	if err := reg.RegisterCallback("back", nil); err == nil {
		t.Fatal("nil handler accepted")
	}
	if _, ok := reg.GetCallback("task"); !ok {
		t.Fatal("callback missing")
	}
	if got := reg.ListCallbacks(); len(got) != 1 || got[0] != "task" {
		t.Fatalf("callbacks = %v", got)
	}
	if reg.CallbackNotFound() == nil {
		t.Fatal("default not-found handler missing")
	}
}

func TestBuildPoller(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "webhook", Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://example.org/hook"}})
	wh, ok := p.(*tele.Webhook)
	if !ok {
		t.Fatalf("poller = %T, want webhook", p)
	}
	if wh.Listen != "0.0.0.0:8443" || wh.Endpoint.PublicURL != "https://example.org/hook" {
		t.Fatalf("webhook = %+v", wh)
	}

	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	if !ok || lp.Timeout != defaultLongPollTimeout {
		t.Fatalf("long poller = %+v", lp)
	}
}
