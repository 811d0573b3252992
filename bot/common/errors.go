package common

import (
	"errors"
	"fmt"

	"vpbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const genericErrorMessage = "Something went wrong. Please try again later."

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string      // Message shown to Discord user
	LogMessage  string      // Internal message for logging
	Ephemeral   bool        // Whether the error message should be ephemeral
	Err         error       // Underlying error
	Context     interface{} // Additional context for logging
	system      bool
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether the error was caused by the caller rather than the system
func (e *BotError) IsUserError() bool {
	return !e.system
}

// NewUserError creates an error for user-caused issues (bad code, insufficient VP, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: genericErrorMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
		system:      true,
	}
}

// FromServiceError maps a service error onto the message the user should see.
// Sentinels the user can act on keep their meaning; anything else becomes a
// system error with the generic message.
func FromServiceError(err error, logMessage string) *BotError {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr
	}

	var userMessage string
	var alreadyVerified *service.AlreadyVerifiedError
	switch {
	case errors.As(err, &alreadyVerified):
		userMessage = fmt.Sprintf("You are already verified with **%s**!", alreadyVerified.GrowID)
	case errors.Is(err, service.ErrStoreUnavailable):
		return NewSystemError(err, logMessage)
	case errors.Is(err, service.ErrInvalidCode):
		userMessage = "Invalid or expired verification code!\nUse `/link` command in-game first to get a code."
	case errors.Is(err, service.ErrGrowIDTaken):
		userMessage = "That GrowID is already verified by another Discord account."
	case errors.Is(err, service.ErrPermissionDenied):
		userMessage = "Only administrators can use this command!"
	case errors.Is(err, service.ErrInsufficientBalance):
		userMessage = "Not enough VP for that."
	case errors.Is(err, service.ErrInvalidAmount):
		userMessage = "Amount must be positive."
	case errors.Is(err, service.ErrNotFound):
		userMessage = "Nothing found."
	default:
		return NewSystemError(err, logMessage)
	}

	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// HandleError processes an error from a command handler and responds appropriately
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	fields := log.Fields{
		"user_id": InteractionUserID(i),
		"command": i.ApplicationCommandData().Name,
		"error":   err.Error(),
	}

	var botErr *BotError
	if !errors.As(err, &botErr) {
		// Unexpected error - log full details but show generic message to user
		log.WithFields(fields).Error("Unexpected error in bot command")
		RespondWithError(s, i, genericErrorMessage)
		return
	}

	fields["user_message"] = botErr.UserMessage
	if botErr.Context != nil {
		fields["context"] = botErr.Context
	}

	if botErr.IsUserError() {
		log.WithFields(fields).Info(botErr.LogMessage)
	} else {
		log.WithFields(fields).Error(botErr.LogMessage)
	}
	RespondWithError(s, i, botErr.UserMessage)
}
