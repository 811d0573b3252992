package bot

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// DebugResponse represents the response from a debug endpoint
type DebugResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// PresenceInfo is one tracked user as reported by /debug/presence
type PresenceInfo struct {
	GuildID        string    `json:"guild_id"`
	DiscordID      string    `json:"discord_id"`
	ChannelID      string    `json:"channel_id"`
	Since          time.Time `json:"since"`
	PendingMinutes int64     `json:"pending_minutes"`
	Rewarded       bool      `json:"rewarded"`
	Bonus          bool      `json:"bonus"`
}

// debugMux builds the debug API routes
func (b *Bot) debugMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Presence snapshot endpoint
	mux.HandleFunc("/debug/presence", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		now := time.Now()
		entries := b.tracker.Snapshot()
		infos := make([]PresenceInfo, 0, len(entries))
		for _, e := range entries {
			infos = append(infos, PresenceInfo{
				GuildID:        e.GuildID,
				DiscordID:      strconv.FormatInt(e.DiscordID, 10),
				ChannelID:      strconv.FormatInt(e.ChannelID, 10),
				Since:          e.Since,
				PendingMinutes: int64(now.Sub(e.Since) / time.Minute),
				Rewarded:       e.ChannelID == b.config.Accrual.RewardChannelID,
				Bonus:          e.ChannelID == b.config.Accrual.BonusChannelID,
			})
		}

		respondWithJSON(w, http.StatusOK, DebugResponse{
			Success: true,
			Message: fmt.Sprintf("%d users in voice", len(infos)),
			Data:    infos,
		})
	})

	return mux
}

// StartDebugAPI starts an internal HTTP API for health checks and presence inspection
func (b *Bot) StartDebugAPI(port int) error {
	server := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Handler:      b.debugMux(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Debug API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Debug API server error: %v", err)
		}
	}()

	b.debugServer = server
	return nil
}

func respondWithJSON(w http.ResponseWriter, status int, resp DebugResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Errorf("Error encoding debug response: %v", err)
	}
}
