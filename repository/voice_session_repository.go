package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vpbot/database"
	"vpbot/models"

	"github.com/jackc/pgx/v5"
)

const voiceSessionColumns = `id, discord_id, channel_id, joined_at, left_at, vp_earned`

// VoiceSessionRepository implements the VoiceSessionRepository interface
type VoiceSessionRepository struct {
	q Queryable
}

// NewVoiceSessionRepository creates a new voice session repository
func NewVoiceSessionRepository(db *database.DB) *VoiceSessionRepository {
	return &VoiceSessionRepository{q: db.Pool}
}

func newVoiceSessionRepositoryWithTx(tx Queryable) *VoiceSessionRepository {
	return &VoiceSessionRepository{q: tx}
}

func scanVoiceSession(row pgx.Row) (*models.VoiceSession, error) {
	var s models.VoiceSession
	err := row.Scan(
		&s.ID,
		&s.DiscordID,
		&s.ChannelID,
		&s.JoinedAt,
		&s.LeftAt,
		&s.VPEarned,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Open starts a new session. The partial unique index rejects a second open
// session for the same user.
func (r *VoiceSessionRepository) Open(ctx context.Context, discordID int64, channelID int64, joinedAt time.Time) (*models.VoiceSession, error) {
	query := `
		INSERT INTO voice_sessions (discord_id, channel_id, joined_at)
		VALUES ($1, $2, $3)
		RETURNING ` + voiceSessionColumns

	session, err := scanVoiceSession(r.q.QueryRow(ctx, query, discordID, channelID, joinedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to open voice session for %d: %w", discordID, err)
	}
	return session, nil
}

// CloseOpen stamps left_at on the user's open session
func (r *VoiceSessionRepository) CloseOpen(ctx context.Context, discordID int64, leftAt time.Time) (*models.VoiceSession, error) {
	query := `
		UPDATE voice_sessions
		SET left_at = GREATEST($2, joined_at)
		WHERE discord_id = $1 AND left_at IS NULL
		RETURNING ` + voiceSessionColumns

	session, err := scanVoiceSession(r.q.QueryRow(ctx, query, discordID, leftAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to close voice session for %d: %w", discordID, err)
	}
	return session, nil
}

// AddEarned adds accrued VP to the user's open session
func (r *VoiceSessionRepository) AddEarned(ctx context.Context, discordID int64, amount int64) (bool, error) {
	query := `
		UPDATE voice_sessions
		SET vp_earned = vp_earned + $2
		WHERE discord_id = $1 AND left_at IS NULL
	`

	tag, err := r.q.Exec(ctx, query, discordID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to add earned VP to session for %d: %w", discordID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// CloseAllOpen closes every session still open, used at startup
func (r *VoiceSessionRepository) CloseAllOpen(ctx context.Context, leftAt time.Time) (int64, error) {
	query := `
		UPDATE voice_sessions
		SET left_at = GREATEST($1, joined_at)
		WHERE left_at IS NULL
	`

	tag, err := r.q.Exec(ctx, query, leftAt)
	if err != nil {
		return 0, fmt.Errorf("failed to close open voice sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetTotals aggregates the user's sessions. Open sessions count up to now.
func (r *VoiceSessionRepository) GetTotals(ctx context.Context, discordID int64, now time.Time) (*models.VoiceTotals, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(EXTRACT(EPOCH FROM (COALESCE(left_at, GREATEST($2, joined_at)) - joined_at))), 0)::BIGINT,
			COALESCE(SUM(vp_earned), 0)::BIGINT
		FROM voice_sessions
		WHERE discord_id = $1
	`

	var totals models.VoiceTotals
	var seconds int64
	err := r.q.QueryRow(ctx, query, discordID, now).Scan(&totals.Sessions, &seconds, &totals.VPEarned)
	if err != nil {
		return nil, fmt.Errorf("failed to get voice totals for %d: %w", discordID, err)
	}

	totals.TimeSpent = time.Duration(seconds) * time.Second
	return &totals, nil
}
