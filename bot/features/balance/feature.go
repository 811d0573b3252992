package balance

import (
	"vpbot/presence"
	"vpbot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature serves /vp
type Feature struct {
	uowFactory service.UnitOfWorkFactory
	tracker    *presence.Tracker
	accrual    presence.AccrualConfig
}

func New(uowFactory service.UnitOfWorkFactory, tracker *presence.Tracker, accrual presence.AccrualConfig) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		tracker:    tracker,
		accrual:    accrual,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return f.handleVP(s, i)
}
