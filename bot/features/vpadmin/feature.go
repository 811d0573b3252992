package vpadmin

import (
	"vpbot/service"

	"github.com/bwmarrin/discordgo"
)

// Subcommands of /vpadmin
const (
	SubcommandGive = "give"
	SubcommandTake = "take"
)

// Feature serves the administrator balance adjustments
type Feature struct {
	uowFactory service.UnitOfWorkFactory
	isAdmin    func(member *discordgo.Member) bool
}

func New(uowFactory service.UnitOfWorkFactory, isAdmin func(member *discordgo.Member) bool) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		isAdmin:    isAdmin,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return f.handleAdjust(s, i)
}
