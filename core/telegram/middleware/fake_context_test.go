package middleware

import (
	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the parts of tele.Context the middleware touches.
// Calling anything else panics through the nil embedded interface.
type fakeContext struct {
	tele.Context

	update    tele.Update
	store     map[string]any
	sent      []any
	responded int
	sendErr   error
}

func newFakeContext(userID int64, text string) *fakeContext {
	user := &tele.User{ID: userID, Username: "tester"}
	return &fakeContext{
		update: tele.Update{ID: 100, Message: &tele.Message{
			Sender: user,
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   text,
		}},
		store: make(map[string]any),
	}
}

func (f *fakeContext) Update() tele.Update { return f.update }

func (f *fakeContext) Sender() *tele.User {
	switch {
	case f.update.Callback != nil:
		return f.update.Callback.Sender
	case f.update.Message != nil:
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

func (f *fakeContext) Callback() *tele.Callback { return f.update.Callback }

func (f *fakeContext) Text() string {
	if f.update.Message != nil {
		return f.update.Message.Text
	}
	return ""
}

func (f *fakeContext) Get(key string) any { return f.store[key] }

func (f *fakeContext) Set(key string, val any) { f.store[key] = val }

func (f *fakeContext) Send(what any, _ ...any) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeContext) Respond(_ ...*tele.CallbackResponse) error {
	f.responded++
	return nil
}
