package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name        string
		cb          *tele.Callback
		key, detail string
	}{
		{"nil", nil, "", ""},
		{"encoded", &tele.Callback{Data: "\ftask|9.1"}, "task", "9.1"},
		{"no payload", &tele.Callback{Data: "\fstart"}, "start", ""},
		{"resolved by telebot", &tele.Callback{Unique: "cancel", Data: "support"}, "cancel", "support"},
		{"bare", &tele.Callback{Data: "back"}, "back", ""},
		{"pipe in payload", &tele.Callback{Data: "\fx|a|b"}, "x", "a|b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(tc.cb)
			if key != tc.key || payload != tc.detail {
				t.Fatalf("got %q/%q, want %q/%q", key, payload, tc.key, tc.detail)
			}
		})
	}
}
