// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package notify delivers best-effort outbound announcements over a Discord
// webhook. Delivery failures are logged and swallowed; nothing in the match
// pipeline depends on a notification landing.
package notify

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/models"
	"github.com/unitemate/ranked-core/pkg/penalty"
)

// webhookExecutor is the slice of discordgo.Session used here, kept as an
// interface so tests can capture payloads without a live webhook.
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   webhookExecutor
	webhookID string
	token     string
}

// NewDiscordNotifier returns nil when the webhook is unconfigured; callers
// treat a nil notifier as notifications disabled.
func NewDiscordNotifier(webhookID, token string) (*DiscordNotifier, error) {
	if webhookID == "" || token == "" {
		return nil, nil
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{session: session, webhookID: webhookID, token: token}, nil
}

// AnnounceMatch posts the rosters and voice slots of a freshly formed match.
func (n *DiscordNotifier) AnnounceMatch(scope *envelope.Scope, record models.MatchRecord) {
	var b strings.Builder
	fmt.Fprintf(&b, "**Match #%d formed**\n", record.MatchID)
	fmt.Fprintf(&b, "Team A (VC %d): %s\n", record.VoiceChannelA, rosterLine(record.TeamA))
	fmt.Fprintf(&b, "Team B (VC %d): %s", record.VoiceChannelB(), rosterLine(record.TeamB))
	n.post(scope, b.String())
}

// Refer posts a penalty referral for out-of-band moderator handling.
func (n *DiscordNotifier) Refer(scope *envelope.Scope, referral penalty.Referral) {
	n.post(scope, fmt.Sprintf(
		"**Penalty referral** match #%d: player %s named by %d reporters (games played %d, correction %d)",
		referral.MatchID, referral.PlayerID, referral.NamedCount, referral.GamesPlayed, referral.Correction,
	))
}

func (n *DiscordNotifier) post(scope *envelope.Scope, content string) {
	_, err := n.session.WebhookExecute(n.webhookID, n.token, false, &discordgo.WebhookParams{Content: content})
	if err != nil {
		scope.Log.WithError(err).Warn("NOTIFY: webhook delivery failed")
	}
}

func rosterLine(team []models.TeamSlot) string {
	names := make([]string, 0, len(team))
	for _, slot := range team {
		names = append(names, fmt.Sprintf("%s (%d)", slot.PlayerID, slot.Rating))
	}
	return strings.Join(names, ", ")
}
