// Package engine holds the admission decision state machine: evaluate a
// membership join against the group policy and the exemption list, carry out
// the removal, and degrade to audit or escalation when the action fails.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tg-agegate/internal/duration"
	"tg-agegate/internal/gateway"
	"tg-agegate/internal/logger"
	"tg-agegate/internal/models"
)

// Action is the outcome of evaluating a join event.
type Action int

const (
	// ActionNone admits the member.
	ActionNone Action = iota
	// ActionKick removes the member without excluding them permanently.
	ActionKick
	// ActionBan removes and permanently excludes the member.
	ActionBan
)

func (a Action) String() string {
	switch a {
	case ActionKick:
		return "kick"
	case ActionBan:
		return "ban"
	default:
		return "none"
	}
}

// JoinEvent is one membership join as delivered by the gateway.
type JoinEvent struct {
	GroupID     int64
	GroupName   string
	UserID      int64
	DisplayName string
	CreatedAt   time.Time
	IsBot       bool

	// Now pins the evaluation time in tests; zero means time.Now.
	Now time.Time
}

// Decision is the evaluated outcome plus the reason handed to the gateway.
type Decision struct {
	Action    Action
	Threshold int64
	Reason    string
}

// PolicyStore supplies the per-group thresholds.
type PolicyStore interface {
	GetPolicy(groupID int64) (*models.GroupPolicy, error)
}

// ExemptionStore answers global exemption lookups.
type ExemptionStore interface {
	IsExempt(userID int64) (bool, error)
}

// RecordFunc persists a removal record after a successful action.
type RecordFunc func(eventID string, groupID, userID int64, permanent bool, reason string)

// Engine evaluates join events and runs their side effects.
type Engine struct {
	gateway    gateway.Gateway
	policies   PolicyStore
	exemptions ExemptionStore
	logChannel func() int64
	record     RecordFunc
}

// New assembles an engine. logChannel returns the current notification
// target (0 when unset); record may be nil when removal persistence is off.
func New(gw gateway.Gateway, policies PolicyStore, exemptions ExemptionStore, logChannel func() int64, record RecordFunc) *Engine {
	if record == nil {
		record = func(string, int64, int64, bool, string) {}
	}
	return &Engine{
		gateway:    gw,
		policies:   policies,
		exemptions: exemptions,
		logChannel: logChannel,
		record:     record,
	}
}

// Evaluate runs the decision ladder without side effects. A storage failure
// is returned as an error: no action may be decided from stale or default
// data.
func (e *Engine) Evaluate(event JoinEvent) (Decision, error) {
	if event.IsBot {
		return Decision{Action: ActionNone}, nil
	}

	exempt, err := e.exemptions.IsExempt(event.UserID)
	if err != nil {
		return Decision{}, fmt.Errorf("exemption lookup for user %d: %w", event.UserID, err)
	}
	if exempt {
		return Decision{Action: ActionNone}, nil
	}

	now := event.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	ageSeconds := int64(now.Sub(event.CreatedAt.UTC()).Seconds())

	policy, err := e.policies.GetPolicy(event.GroupID)
	if err != nil {
		return Decision{}, fmt.Errorf("policy for group %d: %w", event.GroupID, err)
	}

	// Ban is checked first and short-circuits, even if the kick threshold
	// happens to be the larger of the two.
	if ageSeconds < policy.BanSeconds() {
		return Decision{
			Action:    ActionBan,
			Threshold: policy.BanSeconds(),
			Reason:    reason(ageSeconds, policy.BanSeconds(), event.CreatedAt),
		}, nil
	}
	if ageSeconds < policy.KickSeconds() {
		return Decision{
			Action:    ActionKick,
			Threshold: policy.KickSeconds(),
			Reason:    reason(ageSeconds, policy.KickSeconds(), event.CreatedAt),
		}, nil
	}

	return Decision{Action: ActionNone}, nil
}

// HandleJoin evaluates one join event and runs the side-effect ladder to
// completion: member notice, removal, then audit or escalation. Each step is
// best-effort and nothing is retried on a later event.
func (e *Engine) HandleJoin(ctx context.Context, event JoinEvent) error {
	decision, err := e.Evaluate(event)
	if err != nil {
		logger.Errorf("Evaluation failed for user %d joining group %d: %v", event.UserID, event.GroupID, err)
		return err
	}
	if decision.Action == ActionNone {
		return nil
	}

	eventID := uuid.NewString()
	permanent := decision.Action == ActionBan
	logger.Infof("[%s] user %d joining group %d: %s (%s)", eventID, event.UserID, event.GroupID, decision.Action, decision.Reason)

	// The member may have direct messages disabled; that is expected and
	// never blocks the removal.
	if err := e.gateway.Notify(ctx, event.UserID, memberNotice(event, decision, permanent)); err != nil {
		logger.Debugf("[%s] member notice not delivered: %v", eventID, err)
	}

	err = e.gateway.Remove(ctx, event.GroupID, event.UserID, permanent, decision.Reason)
	switch {
	case err == nil:
		e.record(eventID, event.GroupID, event.UserID, permanent, decision.Reason)
		e.Audit(ctx, successNotice(event, decision, permanent))
	case errors.Is(err, gateway.ErrPermissionDenied):
		logger.Warningf("[%s] missing permissions in group %d, escalating", eventID, event.GroupID)
		e.Escalate(ctx, event, decision)
	default:
		logger.Warningf("[%s] removal failed: %v", eventID, err)
		e.Audit(ctx, failureNotice(event, decision, err))
	}
	return nil
}

func reason(ageSeconds, threshold int64, createdAt time.Time) string {
	return fmt.Sprintf("Account age %dd < %s (created: %s UTC)",
		ageSeconds/86400,
		duration.FormatSeconds(threshold),
		createdAt.UTC().Format("2006-01-02"))
}

func memberNotice(event JoinEvent, decision Decision, permanent bool) string {
	verb := "removed from"
	if permanent {
		verb = "banned from"
	}
	group := event.GroupName
	if group == "" {
		group = fmt.Sprintf("group %d", event.GroupID)
	}
	return fmt.Sprintf("You were %s %s.\nReason: %s", verb, group, decision.Reason)
}
