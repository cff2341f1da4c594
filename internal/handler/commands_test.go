package handler

import (
	"strings"
	"testing"

	"github.com/mymmrac/telego"

	"tg-agegate/internal/service"
)

func privateMessage(chatID int64) telego.Message {
	return telego.Message{
		Chat: telego.Chat{ID: chatID, Type: "private"},
		From: &telego.User{ID: chatID},
	}
}

// The notification target is process-wide state, so /set_log must never be
// accepted from a private chat where no admin role exists.
func TestSetLogRefusedInPrivateChat(t *testing.T) {
	before := service.LogChannelID()

	text, err := handleSetLogCommand(nil, nil, privateMessage(424242))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "inside the group") {
		t.Errorf("reply = %q, want a refusal", text)
	}
	if got := service.LogChannelID(); got != before {
		t.Errorf("notification target changed to %d by a private /set_log", got)
	}
}

func TestSetThresholdRefusedInPrivateChat(t *testing.T) {
	text, err := handleSetThresholdCommand(nil, nil, privateMessage(424242), []string{"/set_ban", "7d"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "inside the group") {
		t.Errorf("reply = %q, want a refusal", text)
	}
}

func TestExemptRefusedInPrivateChat(t *testing.T) {
	text, err := handleExemptCommand(nil, nil, privateMessage(424242), []string{"/exempt", "add", "7"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "inside a group") {
		t.Errorf("reply = %q, want a refusal", text)
	}

	exempt, err := service.IsExempt(7)
	if err != nil {
		t.Fatal(err)
	}
	if exempt {
		t.Error("exemption added by a private /exempt")
	}
}
