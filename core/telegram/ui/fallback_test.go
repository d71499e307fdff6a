package ui

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context

	update    tele.Update
	store     map[string]any
	sent      []any
	responses []*tele.CallbackResponse
}

func newFakeContext(u tele.Update) *fakeContext {
	return &fakeContext{update: u, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update      { return f.update }
func (f *fakeContext) Callback() *tele.Callback { return f.update.Callback }
func (f *fakeContext) Get(key string) any       { return f.store[key] }
func (f *fakeContext) Set(key string, v any)    { f.store[key] = v }

func (f *fakeContext) Sender() *tele.User {
	if f.update.Callback != nil {
		return f.update.Callback.Sender
	}
	if f.update.Message != nil {
		return f.update.Message.Sender
	}
	return nil
}

func (f *fakeContext) Chat() *tele.Chat {
	if f.update.Message != nil {
		return f.update.Message.Chat
	}
	return nil
}

func (f *fakeContext) Send(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeContext) Respond(r ...*tele.CallbackResponse) error {
	f.responses = append(f.responses, r...)
	return nil
}

func messageUpdate() tele.Update {
	user := &tele.User{ID: 5}
	return tele.Update{ID: 1, Message: &tele.Message{Sender: user, Chat: &tele.Chat{ID: 5}}}
}

func TestStaticFallbacksMedia(t *testing.T) {
	f := StaticFallbacks{Media: "text only"}
	c := newFakeContext(messageUpdate())
	if err := f.UnknownMedia()(c); err != nil {
		t.Fatal(err)
	}
	if len(c.sent) != 1 || c.sent[0] != "text only" {
		t.Fatalf("sent = %v", c.sent)
	}
}

func TestStaticFallbacksEmptyTextIsNoop(t *testing.T) {
	c := newFakeContext(messageUpdate())
	if err := (StaticFallbacks{}).UnknownText()(c); err != nil {
		t.Fatal(err)
	}
	if len(c.sent) != 0 {
		t.Fatalf("sent = %v", c.sent)
	}
}

func TestStaticFallbacksCallbackToast(t *testing.T) {
	f := StaticFallbacks{Callback: "unavailable"}
	c := newFakeContext(tele.Update{ID: 2, Callback: &tele.Callback{Sender: &tele.User{ID: 5}}})
	if err := f.UnknownCallback()(c); err != nil {
		t.Fatal(err)
	}
	if len(c.responses) != 1 || c.responses[0].Text != "unavailable" {
		t.Fatalf("responses = %+v", c.responses)
	}
}
