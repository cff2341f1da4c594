package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-agegate/internal/duration"
	"tg-agegate/internal/logger"
	"tg-agegate/internal/service"
	"tg-agegate/internal/storage"
)

// RegisterCommands dispatches a message to its command handler and sends the
// handler's reply. Returns true when the message was a command for this bot.
func RegisterCommands(ctx *th.Context, bot *telego.Bot, message telego.Message) (bool, error) {
	text := strings.TrimSpace(message.Text)
	if !strings.HasPrefix(text, "/") {
		return false, nil
	}

	fields := strings.Fields(text)
	// Strip the @botname suffix used in groups
	command := strings.SplitN(fields[0], "@", 2)[0]

	var replyText string
	var err error

	switch command {
	case "/help":
		replyText = helpText()
	case "/policy":
		replyText, err = handlePolicyCommand(message)
	case "/set_ban":
		replyText, err = handleSetThresholdCommand(ctx, bot, message, fields, true)
	case "/set_kick":
		replyText, err = handleSetThresholdCommand(ctx, bot, message, fields, false)
	case "/set_log":
		replyText, err = handleSetLogCommand(ctx, bot, message)
	case "/exempt":
		replyText, err = handleExemptCommand(ctx, bot, message, fields)
	default:
		return false, nil
	}

	if err != nil {
		return true, err
	}
	if replyText == "" {
		return true, nil
	}
	return true, reply(ctx, bot, message, replyText)
}

func helpText() string {
	return "<b>Admission policy bot</b>\n\n" +
		"Members joining a group are checked against the estimated age of their Telegram account. " +
		"Accounts younger than the ban threshold are banned, younger than the kick threshold are removed.\n\n" +
		"<b>Commands</b> (group admins only unless noted):\n" +
		"/policy - show this group's thresholds (anyone)\n" +
		"/set_ban &lt;duration&gt; - ban accounts younger than this, e.g. <code>/set_ban 7d</code>\n" +
		"/set_kick &lt;duration&gt; - remove accounts younger than this, e.g. <code>/set_kick 30d</code>\n" +
		"/set_log - send audit notices to the group or channel this is issued in\n" +
		"/exempt add|remove|list &lt;user id&gt; - manage the global exemption list\n\n" +
		"Durations: a number with a unit letter: s, m, h, d (default), w."
}

// handlePolicyCommand shows the active thresholds for the current group.
func handlePolicyCommand(message telego.Message) (string, error) {
	if message.Chat.Type == "private" {
		return "Use /policy inside a group to see its thresholds.", nil
	}

	policy, err := service.GetPolicy(message.Chat.ID)
	if err != nil {
		logger.Errorf("Error reading policy for group %d: %v", message.Chat.ID, err)
		return storageErrorText(err), nil
	}

	return fmt.Sprintf(
		"<b>Admission policy</b>\nBan accounts younger than: %s\nRemove accounts younger than: %s",
		duration.FormatSeconds(policy.BanSeconds()),
		duration.FormatSeconds(policy.KickSeconds()),
	), nil
}

// handleSetThresholdCommand handles /set_ban and /set_kick.
func handleSetThresholdCommand(ctx *th.Context, bot *telego.Bot, message telego.Message, fields []string, ban bool) (string, error) {
	if message.Chat.Type == "private" {
		return "Thresholds are per group: run this command inside the group.", nil
	}
	if ok, err := isAdminSender(ctx, bot, message); err != nil {
		return "", err
	} else if !ok {
		return "Only group admins can use this command.", nil
	}

	name, label := "kick", "Kick"
	if ban {
		name, label = "ban", "Ban"
	}

	if len(fields) < 2 {
		return fmt.Sprintf("Usage: /set_%s &lt;duration&gt;, e.g. <code>/set_%s 7d</code>", name, name), nil
	}

	seconds, err := duration.ParseSeconds(fields[1])
	if err != nil {
		if errors.Is(err, duration.ErrInvalidDuration) {
			return fmt.Sprintf("Cannot read %q as a duration. Use a number with an optional unit letter: s, m, h, d, w.", fields[1]), nil
		}
		return "", err
	}

	if ban {
		err = service.SetBanThreshold(message.Chat.ID, seconds)
	} else {
		err = service.SetKickThreshold(message.Chat.ID, seconds)
	}
	if err != nil {
		logger.Errorf("Error setting %s threshold for group %d: %v", name, message.Chat.ID, err)
		return storageErrorText(err), nil
	}

	return fmt.Sprintf("%s threshold set to %s.", label, duration.FormatSeconds(seconds)), nil
}

// handleSetLogCommand binds the notification target to the current chat. The
// target is process-wide, so only a group admin may change it; a private chat
// carries no admin role and is refused outright.
func handleSetLogCommand(ctx *th.Context, bot *telego.Bot, message telego.Message) (string, error) {
	if message.Chat.Type == "private" {
		return "Run /set_log inside the group or channel that should receive the notices.", nil
	}
	if ok, err := isAdminSender(ctx, bot, message); err != nil {
		return "", err
	} else if !ok {
		return "Only group admins can use this command.", nil
	}

	if err := service.SetLogChannelID(message.Chat.ID); err != nil {
		logger.Errorf("Error setting notification target: %v", err)
		return storageErrorText(err), nil
	}

	return "Audit and escalation notices will be sent to this chat.", nil
}

// handleExemptCommand handles /exempt add|remove|list.
func handleExemptCommand(ctx *th.Context, bot *telego.Bot, message telego.Message, fields []string) (string, error) {
	if message.Chat.Type == "private" {
		return "Run /exempt inside a group you administer.", nil
	}
	if ok, err := isAdminSender(ctx, bot, message); err != nil {
		return "", err
	} else if !ok {
		return "Only group admins can use this command.", nil
	}

	usage := "Usage: /exempt add &lt;user id&gt;, /exempt remove &lt;user id&gt; or /exempt list"
	if len(fields) < 2 {
		return usage, nil
	}

	switch fields[1] {
	case "list":
		ids, err := service.ListExemptions()
		if err != nil {
			logger.Errorf("Error listing exemptions: %v", err)
			return storageErrorText(err), nil
		}
		if len(ids) == 0 {
			return "The exemption list is empty.", nil
		}
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatInt(id, 10)
		}
		return "<b>Exempt user ids</b>\n" + strings.Join(parts, ", "), nil

	case "add", "remove":
		if len(fields) < 3 {
			return usage, nil
		}
		userID, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return fmt.Sprintf("%q is not a user id.", fields[2]), nil
		}

		if fields[1] == "add" {
			if err := service.AddExemption(userID); err != nil {
				logger.Errorf("Error adding exemption %d: %v", userID, err)
				return storageErrorText(err), nil
			}
			return fmt.Sprintf("Added <code>%d</code> to the exemption list.", userID), nil
		}

		removed, err := service.RemoveExemption(userID)
		if err != nil {
			logger.Errorf("Error removing exemption %d: %v", userID, err)
			return storageErrorText(err), nil
		}
		if !removed {
			return fmt.Sprintf("<code>%d</code> is not on the exemption list.", userID), nil
		}
		return fmt.Sprintf("Removed <code>%d</code> from the exemption list.", userID), nil

	default:
		return usage, nil
	}
}

// isAdminSender reports whether the message sender administers the chat it
// was sent in.
func isAdminSender(ctx *th.Context, bot *telego.Bot, message telego.Message) (bool, error) {
	if message.From == nil {
		return false, nil
	}
	isAdmin, err := isUserAdmin(ctx.Context(), bot, message.Chat.ID, message.From.ID)
	if err != nil {
		logger.Warningf("Error checking admin status of user %d in chat %d: %v", message.From.ID, message.Chat.ID, err)
		return false, err
	}
	return isAdmin, nil
}

func storageErrorText(err error) string {
	if errors.Is(err, storage.ErrUnavailable) {
		return "Storage is unavailable right now, nothing was changed. Try again later."
	}
	return "Something went wrong, nothing was changed."
}

func reply(ctx *th.Context, bot *telego.Bot, message telego.Message, text string) error {
	_, err := bot.SendMessage(ctx.Context(), &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: message.Chat.ID},
		Text:      text,
		ParseMode: "HTML",
	})
	return err
}
