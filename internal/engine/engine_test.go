package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tg-agegate/internal/gateway"
	"tg-agegate/internal/models"
)

type removeCall struct {
	groupID   int64
	userID    int64
	permanent bool
	reason    string
}

type notifyCall struct {
	userID int64
	text   string
}

type channelCall struct {
	channelID int64
	notice    gateway.Notice
}

type fakeGateway struct {
	removeErr  error
	notifyErr  error
	channelErr error
	owner      int64
	ownerErr   error

	removes  []removeCall
	notifies []notifyCall
	sends    []channelCall
	resolves int
}

func (f *fakeGateway) Remove(_ context.Context, groupID, userID int64, permanent bool, reason string) error {
	f.removes = append(f.removes, removeCall{groupID, userID, permanent, reason})
	return f.removeErr
}

func (f *fakeGateway) Notify(_ context.Context, userID int64, text string) error {
	f.notifies = append(f.notifies, notifyCall{userID, text})
	return f.notifyErr
}

func (f *fakeGateway) ChannelSend(_ context.Context, channelID int64, notice gateway.Notice) error {
	f.sends = append(f.sends, channelCall{channelID, notice})
	return f.channelErr
}

func (f *fakeGateway) ResolveOwner(_ context.Context, _ int64) (int64, error) {
	f.resolves++
	return f.owner, f.ownerErr
}

type fakePolicies struct {
	ban  int64
	kick int64
	err  error
}

func (f *fakePolicies) GetPolicy(groupID int64) (*models.GroupPolicy, error) {
	if f.err != nil {
		return nil, f.err
	}
	ban, kick := f.ban, f.kick
	return &models.GroupPolicy{GroupID: groupID, BanUnderSeconds: &ban, KickUnderSeconds: &kick}, nil
}

type fakeExemptions struct {
	ids map[int64]bool
	err error
}

func (f *fakeExemptions) IsExempt(userID int64) (bool, error) {
	return f.ids[userID], f.err
}

type recorded struct {
	eventID   string
	groupID   int64
	userID    int64
	permanent bool
	reason    string
}

type harness struct {
	gw      *fakeGateway
	records []recorded
	channel int64
	engine  *Engine
}

func newHarness(ban, kick int64) *harness {
	h := &harness{gw: &fakeGateway{owner: 999}}
	h.engine = New(
		h.gw,
		&fakePolicies{ban: ban, kick: kick},
		&fakeExemptions{ids: map[int64]bool{}},
		func() int64 { return h.channel },
		func(eventID string, groupID, userID int64, permanent bool, reason string) {
			h.records = append(h.records, recorded{eventID, groupID, userID, permanent, reason})
		},
	)
	return h
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func joinAged(age time.Duration) JoinEvent {
	return JoinEvent{
		GroupID:     -100200,
		GroupName:   "Test Group",
		UserID:      4242,
		DisplayName: "New Member",
		CreatedAt:   testNow.Add(-age),
		Now:         testNow,
	}
}

const (
	week  = 7 * 24 * time.Hour
	month = 30 * 24 * time.Hour
)

func TestEvaluateThresholds(t *testing.T) {
	h := newHarness(604800, 2592000) // 7d ban, 30d kick

	cases := []struct {
		age  time.Duration
		want Action
	}{
		{3 * 24 * time.Hour, ActionBan},
		{15 * 24 * time.Hour, ActionKick},
		{45 * 24 * time.Hour, ActionNone},
		{week, ActionKick},  // exactly at the ban threshold is not banned
		{month, ActionNone}, // exactly at the kick threshold is admitted
	}

	for _, tc := range cases {
		decision, err := h.engine.Evaluate(joinAged(tc.age))
		if err != nil {
			t.Fatalf("Evaluate(age=%v) error: %v", tc.age, err)
		}
		if decision.Action != tc.want {
			t.Errorf("Evaluate(age=%v) = %v, want %v", tc.age, decision.Action, tc.want)
		}
	}
}

func TestEvaluateReasonFormat(t *testing.T) {
	h := newHarness(604800, 2592000)

	decision, err := h.engine.Evaluate(joinAged(3 * 24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	want := "Account age 3d < 1w (created: 2026-03-12 UTC)"
	if decision.Reason != want {
		t.Errorf("reason = %q, want %q", decision.Reason, want)
	}
}

func TestEvaluateSkipsBots(t *testing.T) {
	h := newHarness(604800, 2592000)

	event := joinAged(0)
	event.IsBot = true
	decision, err := h.engine.Evaluate(event)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Action != ActionNone {
		t.Errorf("bot account: action = %v, want none", decision.Action)
	}
}

func TestEvaluateSkipsExemptUsers(t *testing.T) {
	h := newHarness(604800, 2592000)
	h.engine.exemptions = &fakeExemptions{ids: map[int64]bool{4242: true}}

	// A zero-second-old account is still admitted when exempt.
	decision, err := h.engine.Evaluate(joinAged(0))
	if err != nil {
		t.Fatal(err)
	}
	if decision.Action != ActionNone {
		t.Errorf("exempt user: action = %v, want none", decision.Action)
	}
}

func TestEvaluateBanCheckedBeforeKick(t *testing.T) {
	// kick threshold below ban threshold: the ban branch still wins for
	// any account younger than the ban threshold.
	h := newHarness(2592000, 604800) // ban 30d, kick 7d

	decision, err := h.engine.Evaluate(joinAged(15 * 24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if decision.Action != ActionBan {
		t.Errorf("action = %v, want ban (ban branch short-circuits)", decision.Action)
	}
}

func TestEvaluateStorageErrorsSurface(t *testing.T) {
	storageErr := errors.New("storage unavailable")

	h := newHarness(604800, 2592000)
	h.engine.policies = &fakePolicies{err: storageErr}
	if _, err := h.engine.Evaluate(joinAged(time.Hour)); !errors.Is(err, storageErr) {
		t.Errorf("policy store error not surfaced: %v", err)
	}

	h = newHarness(604800, 2592000)
	h.engine.exemptions = &fakeExemptions{err: storageErr}
	if _, err := h.engine.Evaluate(joinAged(time.Hour)); !errors.Is(err, storageErr) {
		t.Errorf("exemption store error not surfaced: %v", err)
	}
}

func TestHandleJoinBanFlow(t *testing.T) {
	h := newHarness(604800, 2592000)
	h.channel = -555

	if err := h.engine.HandleJoin(context.Background(), joinAged(3*24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	if len(h.gw.notifies) != 1 || h.gw.notifies[0].userID != 4242 {
		t.Fatalf("member notice calls = %+v, want one to user 4242", h.gw.notifies)
	}
	if !strings.Contains(h.gw.notifies[0].text, "banned from Test Group") {
		t.Errorf("member notice text = %q", h.gw.notifies[0].text)
	}

	if len(h.gw.removes) != 1 {
		t.Fatalf("remove calls = %d, want 1", len(h.gw.removes))
	}
	if !h.gw.removes[0].permanent {
		t.Error("remove call not permanent for a ban")
	}

	if len(h.records) != 1 || !h.records[0].permanent {
		t.Fatalf("removal records = %+v, want one permanent record", h.records)
	}
	if h.records[0].eventID == "" {
		t.Error("removal record missing event id")
	}

	if len(h.gw.sends) != 1 {
		t.Fatalf("channel sends = %d, want 1 audit notice", len(h.gw.sends))
	}
	notice := h.gw.sends[0]
	if notice.channelID != -555 || notice.notice.Title != "User Banned" {
		t.Errorf("audit notice = %+v", notice)
	}
	if notice.notice.Lift == nil || notice.notice.Lift.UserID != 4242 {
		t.Errorf("audit notice missing lift action: %+v", notice.notice.Lift)
	}
}

func TestHandleJoinKickFlow(t *testing.T) {
	h := newHarness(604800, 2592000)
	h.channel = -555

	if err := h.engine.HandleJoin(context.Background(), joinAged(15*24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	if len(h.gw.removes) != 1 || h.gw.removes[0].permanent {
		t.Fatalf("remove calls = %+v, want one non-permanent", h.gw.removes)
	}
	if len(h.records) != 1 || h.records[0].permanent {
		t.Fatalf("removal records = %+v, want one non-permanent record", h.records)
	}
	if len(h.gw.sends) != 1 || h.gw.sends[0].notice.Title != "User Removed" {
		t.Fatalf("audit sends = %+v", h.gw.sends)
	}
}

func TestHandleJoinAdmitsWithoutSideEffects(t *testing.T) {
	h := newHarness(604800, 2592000)
	h.channel = -555

	if err := h.engine.HandleJoin(context.Background(), joinAged(45*24*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if len(h.gw.notifies)+len(h.gw.removes)+len(h.gw.sends)+len(h.records) != 0 {
		t.Errorf("admitted member triggered side effects: %+v", h.gw)
	}
}

func TestHandleJoinMemberNoticeFailureDoesNotBlockRemoval(t *testing.T) {
	h := newHarness(604800, 2592000)
	h.gw.notifyErr = gateway.ErrUnavailable

	if err := h.engine.HandleJoin(context.Background(), joinAged(3*24*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if len(h.gw.removes) != 1 {
		t.Errorf("remove calls = %d, want 1 despite notice failure", len(h.gw.removes))
	}
}

func TestHandleJoinPermissionDeniedEscalatesToChannel(t *testing.T) {
	h := newHarness(604800, 2592000)
	h.channel = -555
	h.gw.removeErr = gateway.ErrPermissionDenied

	if err := h.engine.HandleJoin(context.Background(), joinAged(3*24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	if len(h.records) != 0 {
		t.Errorf("removal recorded despite failed action: %+v", h.records)
	}
	if len(h.gw.sends) != 1 || h.gw.sends[0].notice.Title != "Permission Error" {
		t.Fatalf("channel sends = %+v, want one permission-error notice", h.gw.sends)
	}
	if h.gw.resolves != 0 {
		t.Error("owner resolved although a notification channel is configured")
	}
}

func TestHandleJoinPermissionDeniedFallsBackToOwner(t *testing.T) {
	h := newHarness(604800, 2592000)
	h.channel = 0 // no notification target configured
	h.gw.removeErr = gateway.ErrPermissionDenied

	if err := h.engine.HandleJoin(context.Background(), joinAged(3*24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	if len(h.gw.sends) != 0 {
		t.Errorf("channel sends = %+v, want none without a target", h.gw.sends)
	}
	if h.gw.resolves != 1 {
		t.Fatalf("owner resolutions = %d, want 1", h.gw.resolves)
	}

	// Last notify is the owner notice (the first was the member DM).
	last := h.gw.notifies[len(h.gw.notifies)-1]
	if last.userID != 999 {
		t.Errorf("escalation sent to user %d, want owner 999", last.userID)
	}
	if !strings.Contains(last.text, "Permission Error") {
		t.Errorf("escalation text = %q", last.text)
	}
}

func TestHandleJoinOtherFailureIsAudited(t *testing.T) {
	h := newHarness(604800, 2592000)
	h.channel = -555
	h.gw.removeErr = gateway.ErrUnavailable

	if err := h.engine.HandleJoin(context.Background(), joinAged(3*24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	if len(h.records) != 0 {
		t.Errorf("removal recorded despite failed action: %+v", h.records)
	}
	if len(h.gw.sends) != 1 || h.gw.sends[0].notice.Title != "Moderation Error" {
		t.Fatalf("channel sends = %+v, want one moderation-error notice", h.gw.sends)
	}
	if h.gw.resolves != 0 {
		t.Error("non-permission failure must not escalate to the owner")
	}
}
