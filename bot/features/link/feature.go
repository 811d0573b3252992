package link

import (
	"vpbot/service"

	"github.com/bwmarrin/discordgo"
)

// AdminCheck decides whether the invoking member may use admin commands
type AdminCheck func(member *discordgo.Member) bool

// Feature serves /verify, /mylink, /whois and /unlink
type Feature struct {
	uowFactory service.UnitOfWorkFactory
	isAdmin    AdminCheck
}

func New(uowFactory service.UnitOfWorkFactory, isAdmin AdminCheck) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		isAdmin:    isAdmin,
	}
}

func (f *Feature) HandleVerify(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return f.handleVerify(s, i)
}

func (f *Feature) HandleMyLink(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return f.handleMyLink(s, i)
}

func (f *Feature) HandleWhois(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return f.handleWhois(s, i)
}

func (f *Feature) HandleUnlink(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return f.handleUnlink(s, i)
}
