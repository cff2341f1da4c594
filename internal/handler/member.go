package handler

import (
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-agegate/internal/engine"
	"tg-agegate/internal/gateway"
	"tg-agegate/internal/logger"
)

// handleChatMemberUpdate turns a member-status transition into a join event
// for the engine.
func handleChatMemberUpdate(ctx *th.Context, bot *telego.Bot, update telego.Update) error {
	if update.ChatMember == nil {
		return nil
	}

	chatID := update.ChatMember.Chat.ID
	newChatMember := update.ChatMember.NewChatMember
	user := newChatMember.MemberUser()

	// Only act on actual joins, not on promotions or restrictions of
	// existing members.
	if !newChatMember.MemberIsMember() {
		return nil
	}
	if update.ChatMember.OldChatMember != nil && update.ChatMember.OldChatMember.MemberIsMember() {
		return nil
	}

	// Skip the bot's own membership changes
	if user.ID == bot.ID() {
		return nil
	}

	logger.Debugf("User %d joined group %d", user.ID, chatID)

	event := engine.JoinEvent{
		GroupID:     chatID,
		GroupName:   update.ChatMember.Chat.Title,
		UserID:      user.ID,
		DisplayName: displayName(user),
		CreatedAt:   gateway.EstimateCreation(user.ID, time.Now()),
		IsBot:       user.IsBot,
	}

	return eng.HandleJoin(ctx.Context(), event)
}

// handleMyChatMemberUpdate logs the bot's own status changes so operators
// can see where it was added, promoted or removed.
func handleMyChatMemberUpdate(_ *th.Context, update telego.Update) error {
	if update.MyChatMember == nil {
		return nil
	}

	chat := update.MyChatMember.Chat
	status := update.MyChatMember.NewChatMember.MemberStatus()
	logger.Infof("Bot status in chat %d (%s) changed to %s by user %d",
		chat.ID, chat.Title, status, update.MyChatMember.From.ID)

	return nil
}

func displayName(user telego.User) string {
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	return name
}
