// Package gateway defines the contract between the admission engine and the
// Telegram Bot API, so the engine can be exercised against fakes.
package gateway

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied means the bot lacks the rights to carry out a
	// moderation action. The engine escalates instead of retrying.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnavailable covers transient delivery failures: a user who has not
	// opened a private chat with the bot, a deleted channel, network errors.
	ErrUnavailable = errors.New("delivery unavailable")
)

// Severity tags a notice for channel formatting.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a structured record for the audit / escalation channel.
type Notice struct {
	Title    string
	Body     string
	Severity Severity

	// Lift, when set, attaches an inline action that unbans the affected
	// user and adds them to the exemption list.
	Lift *LiftAction
}

// LiftAction identifies the removal a channel notice offers to revert.
type LiftAction struct {
	GroupID int64
	UserID  int64
}

// Gateway is the platform collaborator the engine acts through.
type Gateway interface {
	// Remove kicks (permanent=false) or bans (permanent=true) a member.
	// Returns ErrPermissionDenied when the bot lacks rights in the group.
	Remove(ctx context.Context, groupID, userID int64, permanent bool, reason string) error

	// Notify sends a direct message to a user. Fails with ErrUnavailable
	// when the user never started a chat with the bot; callers treat that
	// as expected.
	Notify(ctx context.Context, userID int64, text string) error

	// ChannelSend delivers a structured notice to a channel.
	ChannelSend(ctx context.Context, channelID int64, notice Notice) error

	// ResolveOwner returns the user id of the group's creator, or of the
	// admin who promoted the bot when the creator is not visible.
	ResolveOwner(ctx context.Context, groupID int64) (int64, error)
}
