package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"

	"tg-agegate/internal/logger"
)

// TelegramGateway implements Gateway on the Telegram Bot API via telego.
type TelegramGateway struct {
	bot *telego.Bot
}

func NewTelegramGateway(bot *telego.Bot) *TelegramGateway {
	return &TelegramGateway{bot: bot}
}

// Remove bans the member; a temporary removal is the Telegram kick idiom of
// ban followed by unban, which only ejects the member from the group.
func (g *TelegramGateway) Remove(ctx context.Context, groupID, userID int64, permanent bool, reason string) error {
	err := g.bot.BanChatMember(ctx, &telego.BanChatMemberParams{
		ChatID: telego.ChatID{ID: groupID},
		UserID: userID,
	})
	if err != nil {
		return classifyError("ban chat member", err)
	}

	if !permanent {
		err = g.bot.UnbanChatMember(ctx, &telego.UnbanChatMemberParams{
			ChatID:       telego.ChatID{ID: groupID},
			UserID:       userID,
			OnlyIfBanned: true,
		})
		if err != nil {
			return classifyError("unban after kick", err)
		}
	}

	logger.Infof("Removed user %d from group %d (permanent=%v): %s", userID, groupID, permanent, reason)
	return nil
}

// Notify sends a plain-text direct message to a user.
func (g *TelegramGateway) Notify(ctx context.Context, userID int64, text string) error {
	_, err := g.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: userID},
		Text:   text,
	})
	if err != nil {
		// Users who never opened a chat with the bot cannot be messaged
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ChannelSend renders a notice as an HTML message to a channel.
func (g *TelegramGateway) ChannelSend(ctx context.Context, channelID int64, notice Notice) error {
	var markup *telego.InlineKeyboardMarkup
	if notice.Lift != nil {
		markup = &telego.InlineKeyboardMarkup{
			InlineKeyboard: [][]telego.InlineKeyboardButton{
				{
					{
						Text:         "Lift & exempt",
						CallbackData: fmt.Sprintf("lift:%d:%d", notice.Lift.GroupID, notice.Lift.UserID),
					},
				},
			},
		}
	}

	_, err := g.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:      telego.ChatID{ID: channelID},
		Text:        fmt.Sprintf("%s <b>%s</b>\n%s", severityEmoji(notice.Severity), escapeHTML(notice.Title), escapeHTML(notice.Body)),
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ResolveOwner finds the group creator, falling back to the first admin with
// promotion rights (the likely bot promoter) when the creator is hidden.
func (g *TelegramGateway) ResolveOwner(ctx context.Context, groupID int64) (int64, error) {
	admins, err := g.bot.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{
		ChatID: telego.ChatID{ID: groupID},
	})
	if err != nil {
		return 0, classifyError("get chat administrators", err)
	}

	for _, admin := range admins {
		if admin.MemberStatus() == telego.MemberStatusCreator {
			if creator, ok := admin.(*telego.ChatMemberOwner); ok {
				return creator.User.ID, nil
			}
		}
	}

	for _, admin := range admins {
		if admin.MemberStatus() == telego.MemberStatusAdministrator {
			if adminMember, ok := admin.(*telego.ChatMemberAdministrator); ok {
				if adminMember.CanPromoteMembers && !adminMember.User.IsBot {
					return adminMember.User.ID, nil
				}
			}
		}
	}

	return 0, fmt.Errorf("%w: no owner visible in group %d", ErrUnavailable, groupID)
}

func severityEmoji(s Severity) string {
	switch s {
	case SeverityWarning:
		return "⚠️"
	case SeverityError:
		return "🚫"
	default:
		return "ℹ️"
	}
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// classifyError maps a Bot API failure onto the gateway sentinels. Telegram
// reports missing rights either as HTTP 403 or as a 400 with a rights
// description, so both are inspected.
func classifyError(op string, err error) error {
	var apiErr *telegoapi.Error
	if errors.As(err, &apiErr) {
		desc := strings.ToLower(apiErr.Description)
		if apiErr.ErrorCode == 403 ||
			strings.Contains(desc, "not enough rights") ||
			strings.Contains(desc, "chat_admin_required") ||
			strings.Contains(desc, "user is an administrator") {
			return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
