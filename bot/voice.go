package bot

import (
	"context"
	"fmt"
	"time"

	"vpbot/bot/common"
	"vpbot/presence"
	"vpbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleVoiceStateUpdate feeds join, switch and leave events into the tracker
// and the voice session log
func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil || !b.inScope(v.GuildID) || b.isBotUser(v.VoiceState) {
		return
	}

	b.applyVoiceState(context.Background(), v.GuildID, v.VoiceState, time.Now())
}

// handleGuildCreate seeds the tracker from the voice states Discord reports,
// so users already in voice keep earning after a restart or reconnect
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if !b.inScope(g.ID) {
		return
	}

	ctx := context.Background()
	now := time.Now()

	seen := make(map[int64]bool, len(g.VoiceStates))
	for _, vs := range g.VoiceStates {
		if b.isBotUser(vs) {
			continue
		}
		if id, err := common.ParseUserID(vs.UserID); err == nil && vs.ChannelID != "" {
			seen[id] = true
		}
		b.applyVoiceState(ctx, g.ID, vs, now)
	}

	// Anyone tracked from this guild but no longer in its voice channels left
	// while we were disconnected
	for _, entry := range b.tracker.SnapshotGuild(g.ID) {
		if seen[entry.DiscordID] {
			continue
		}
		b.applyTransition(ctx, g.ID, entry.DiscordID, 0, "", now)
	}

	log.WithFields(log.Fields{
		"guild":       g.Name,
		"guildID":     g.ID,
		"voiceStates": len(g.VoiceStates),
		"tracked":     b.tracker.Len(),
	}).Info("Guild available, voice presence seeded")
}

// isBotUser reports whether a voice state belongs to a bot account, judged by
// the member attached to the state or our own user id
func (b *Bot) isBotUser(vs *discordgo.VoiceState) bool {
	if vs.Member != nil && vs.Member.User != nil && vs.Member.User.Bot {
		return true
	}
	return b.selfUserID() != "" && vs.UserID == b.selfUserID()
}

func (b *Bot) selfUserID() string {
	if b.session == nil || b.session.State == nil || b.session.State.User == nil {
		return ""
	}
	return b.session.State.User.ID
}

func (b *Bot) inScope(guildID string) bool {
	return b.config.GuildID == "" || guildID == b.config.GuildID
}

func (b *Bot) applyVoiceState(ctx context.Context, guildID string, vs *discordgo.VoiceState, now time.Time) {
	discordID, err := common.ParseUserID(vs.UserID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", vs.UserID, err)
		return
	}
	channelID, err := common.ParseChannelID(vs.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", vs.ChannelID, err)
		return
	}

	var name string
	if vs.Member != nil {
		name = common.MemberDisplayName(vs.Member)
	}

	b.applyTransition(ctx, guildID, discordID, channelID, name, now)
}

func (b *Bot) applyTransition(ctx context.Context, guildID string, discordID, channelID int64, name string, now time.Time) {
	transition, prev := b.tracker.Apply(guildID, discordID, channelID, now)
	if transition == presence.TransitionNone {
		return
	}

	fields := log.Fields{
		"guildID":    guildID,
		"discordID":  discordID,
		"transition": transition.String(),
		"channelID":  channelID,
	}
	if transition != presence.TransitionJoined {
		fields["previousChannelID"] = prev.ChannelID
	}
	log.WithFields(fields).Debug("Voice presence changed")

	if err := b.recordVoiceSession(ctx, transition, discordID, channelID, name, now); err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to record voice session")
	}
}

// recordVoiceSession mirrors a tracker transition into the voice session log
func (b *Bot) recordVoiceSession(ctx context.Context, transition presence.Transition, discordID, channelID int64, name string, at time.Time) error {
	uow := b.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	voiceService := service.NewVoiceSessionService(uow.BalanceRepository(), uow.VoiceSessionRepository(), uow.EventBus())

	var err error
	switch transition {
	case presence.TransitionJoined:
		err = voiceService.Join(ctx, discordID, name, channelID, at)
	case presence.TransitionSwitched:
		err = voiceService.Switch(ctx, discordID, channelID, at)
	case presence.TransitionLeft:
		err = voiceService.Leave(ctx, discordID, at)
	}
	if err != nil {
		return err
	}

	return uow.Commit()
}
