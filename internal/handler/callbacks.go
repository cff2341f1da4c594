package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-agegate/internal/logger"
	"tg-agegate/internal/service"
)

// HandleCallbackQuery processes the "Lift & exempt" button attached to audit
// notices: it unbans the user, exempts them from future evaluation, and
// marks the stored removal record as lifted.
func HandleCallbackQuery(ctx *th.Context, bot *telego.Bot, query telego.CallbackQuery) error {
	if !strings.HasPrefix(query.Data, "lift:") {
		return nil
	}

	groupID, userID, err := getGroupAndUserID(query.Data)
	if err != nil {
		logger.Warningf("Malformed lift callback data %q: %v", query.Data, err)
		return nil
	}

	err = bot.UnbanChatMember(ctx.Context(), &telego.UnbanChatMemberParams{
		ChatID:       telego.ChatID{ID: groupID},
		UserID:       userID,
		OnlyIfBanned: true,
	})
	if err != nil {
		logger.Warningf("Error unbanning user %d in group %d: %v", userID, groupID, err)
		return answerCallback(ctx, bot, query, "Could not unban the user.")
	}

	if err := service.AddExemption(userID); err != nil {
		logger.Warningf("Error exempting user %d: %v", userID, err)
		return answerCallback(ctx, bot, query, "User unbanned, but exempting failed.")
	}

	liftedBy := strconv.FormatInt(query.From.ID, 10)
	if query.From.Username != "" {
		liftedBy = query.From.Username
	}
	service.MarkRemovalLifted(groupID, userID, liftedBy)

	logger.Infof("User %d unbanned in group %d and exempted by %s", userID, groupID, liftedBy)

	// Replace the button with a confirmation on the original notice
	if query.Message != nil {
		if notice, ok := query.Message.(*telego.Message); ok {
			_, err = bot.EditMessageText(ctx.Context(), &telego.EditMessageTextParams{
				ChatID:    telego.ChatID{ID: notice.Chat.ID},
				MessageID: notice.MessageID,
				Text: fmt.Sprintf("✅ <b>Removal lifted</b>\nUser <code>%d</code> was unbanned and added to the exemption list by %s.",
					userID, liftedBy),
				ParseMode: "HTML",
			})
			if err != nil {
				logger.Warningf("Error editing notice message: %v", err)
			}
		}
	}

	return answerCallback(ctx, bot, query, "User unbanned and exempted.")
}

func answerCallback(ctx *th.Context, bot *telego.Bot, query telego.CallbackQuery, text string) error {
	return bot.AnswerCallbackQuery(ctx.Context(), &telego.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
		Text:            text,
	})
}
