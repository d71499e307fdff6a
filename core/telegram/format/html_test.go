package format

import "testing"

func TestEscapeHelpers(t *testing.T) {
	if got := Bold("<1 & 2>"); got != "<b>&lt;1 &amp; 2&gt;</b>" {
		t.Fatalf("Bold = %q", got)
	}
	if got := Link("https://t.me/x?a=1&b=2", "chat"); got != `<a href="https://t.me/x?a=1&amp;b=2">chat</a>` {
		t.Fatalf("Link = %q", got)
	}
}

func TestUserMention(t *testing.T) {
	if got := UserMention(7, "@alice", "Alice"); got != "@alice" {
		t.Fatalf("mention = %q", got)
	}
	if got := UserMention(7, "", "A<b>"); got != `<a href="tg://user?id=7">A&lt;b&gt;</a>` {
		t.Fatalf("mention = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("привет", 10); got != "привет" {
		t.Fatalf("short text changed: %q", got)
	}
	if got := Truncate("привет", 4); got != "при…" {
		t.Fatalf("Truncate = %q", got)
	}
}
