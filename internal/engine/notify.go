package engine

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"tg-agegate/internal/gateway"
	"tg-agegate/internal/logger"
)

// Audit delivers a structured record to the notification target channel.
// A no-op when no target is configured; delivery failure is logged, never
// propagated.
func (e *Engine) Audit(ctx context.Context, notice gateway.Notice) {
	channelID := e.logChannel()
	if channelID == 0 {
		return
	}
	if err := e.gateway.ChannelSend(ctx, channelID, notice); err != nil {
		logger.Warningf("Audit notice %q not delivered to channel %d: %v", notice.Title, channelID, err)
	}
}

// Escalate notifies a human that the removal could not be carried out. The
// configured channel is tried when one is set; otherwise the group owner
// gets a direct message. There is no further fallback: a failed escalation
// is terminal and only logged.
func (e *Engine) Escalate(ctx context.Context, event JoinEvent, decision Decision) {
	notice := escalationNotice(event, decision)

	if channelID := e.logChannel(); channelID != 0 {
		if err := e.gateway.ChannelSend(ctx, channelID, notice); err != nil {
			logger.Warningf("Escalation to channel %d failed: %v", channelID, err)
		}
		return
	}

	var errs error
	owner, err := e.gateway.ResolveOwner(ctx, event.GroupID)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else {
		text := fmt.Sprintf("%s\n%s", notice.Title, notice.Body)
		if err := e.gateway.Notify(ctx, owner, text); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("owner %d: %w", owner, err))
		}
	}
	if errs != nil {
		logger.Warningf("Escalation for user %d in group %d failed: %v", event.UserID, event.GroupID, errs)
	}
}

func successNotice(event JoinEvent, decision Decision, permanent bool) gateway.Notice {
	title := "User Removed"
	severity := gateway.SeverityWarning
	if permanent {
		title = "User Banned"
		severity = gateway.SeverityError
	}
	return gateway.Notice{
		Title:    title,
		Body:     fmt.Sprintf("%s\nReason: %s", describeMember(event), decision.Reason),
		Severity: severity,
		Lift: &gateway.LiftAction{
			GroupID: event.GroupID,
			UserID:  event.UserID,
		},
	}
}

func failureNotice(event JoinEvent, decision Decision, err error) gateway.Notice {
	return gateway.Notice{
		Title:    "Moderation Error",
		Body:     fmt.Sprintf("Failed to %s %s: %v", decision.Action, describeMember(event), err),
		Severity: gateway.SeverityError,
	}
}

func escalationNotice(event JoinEvent, decision Decision) gateway.Notice {
	return gateway.Notice{
		Title: "Permission Error",
		Body: fmt.Sprintf("Missing permissions to %s %s.\nReason: %s",
			decision.Action, describeMember(event), decision.Reason),
		Severity: gateway.SeverityError,
	}
}

func describeMember(event JoinEvent) string {
	if event.DisplayName != "" {
		return fmt.Sprintf("%s (ID: %d)", event.DisplayName, event.UserID)
	}
	return fmt.Sprintf("user %d", event.UserID)
}
