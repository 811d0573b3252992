package help

import (
	"vpbot/bot/common"
	"vpbot/presence"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature serves /help
type Feature struct {
	accrual presence.AccrualConfig
}

func New(accrual presence.AccrualConfig) *Feature {
	return &Feature{accrual: accrual}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := common.RespondWithEmbed(s, i, BuildHelpEmbed(f.accrual), false); err != nil {
		log.Errorf("Error responding to help command: %v", err)
	}
	return nil
}
