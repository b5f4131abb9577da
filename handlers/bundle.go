// File: aviachat/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Chat wizard endpoints
	Message    gin.HandlerFunc
	Select     gin.HandlerFunc
	Continue   gin.HandlerFunc
	Back       gin.HandlerFunc
	Passengers gin.HandlerFunc
	Confirm    gin.HandlerFunc
	Reset      gin.HandlerFunc
	Transcript gin.HandlerFunc

	// Operational endpoints
	Health gin.HandlerFunc
}

// NewHandlerBundle assembles the bundle from a ChatHandler.
func NewHandlerBundle(chat *ChatHandler) *HandlerBundle {
	return &HandlerBundle{
		Message:    chat.MessageHandler,
		Select:     chat.SelectHandler,
		Continue:   chat.ContinueHandler,
		Back:       chat.BackHandler,
		Passengers: chat.PassengersHandler,
		Confirm:    chat.ConfirmHandler,
		Reset:      chat.ResetHandler,
		Transcript: chat.TranscriptHandler,
		Health:     HealthHandler,
	}
}
