package handlers

import (
	"errors"
	"net/http"

	"aviachat/models"
	"aviachat/services/assistant"
	"aviachat/services/session"
	"aviachat/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler exposes the booking wizard to the browser widget.
type ChatHandler struct {
	wizard assistant.WizardService
	logger *zap.Logger
}

func NewChatHandler(wizard assistant.WizardService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{wizard: wizard, logger: logger}
}

// MessageHandler runs a search turn. A missing session ID starts a new
// session.
func (h *ChatHandler) MessageHandler(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	turn, err := h.wizard.Message(c.Request.Context(), req.SessionID, req.Message)
	h.reply(c, turn, err)
}

// SelectHandler picks one offer from the last result set.
func (h *ChatHandler) SelectHandler(c *gin.Context) {
	var req models.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	turn, err := h.wizard.Select(c.Request.Context(), req.SessionID, req.FlightIndex)
	h.reply(c, turn, err)
}

// ContinueHandler moves from a selected offer to the passenger form.
func (h *ChatHandler) ContinueHandler(c *gin.Context) {
	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	turn, err := h.wizard.Continue(c.Request.Context(), req.SessionID)
	h.reply(c, turn, err)
}

// BackHandler walks one wizard step backwards.
func (h *ChatHandler) BackHandler(c *gin.Context) {
	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	turn, err := h.wizard.Back(c.Request.Context(), req.SessionID)
	h.reply(c, turn, err)
}

// PassengersHandler submits the passenger form.
func (h *ChatHandler) PassengersHandler(c *gin.Context) {
	var req models.PassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	turn, err := h.wizard.Passengers(c.Request.Context(), req.SessionID, req.Passengers, req.Contact)
	h.reply(c, turn, err)
}

// ConfirmHandler finalizes the booking.
func (h *ChatHandler) ConfirmHandler(c *gin.Context) {
	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	turn, err := h.wizard.Confirm(c.Request.Context(), req.SessionID)
	h.reply(c, turn, err)
}

// ResetHandler discards the session and starts a fresh one.
func (h *ChatHandler) ResetHandler(c *gin.Context) {
	var req models.SessionRequest
	// Reset works even with no body at all.
	_ = c.ShouldBindJSON(&req)

	turn, err := h.wizard.Reset(c.Request.Context(), req.SessionID)
	h.reply(c, turn, err)
}

// TranscriptHandler returns the full display log of a session.
func (h *ChatHandler) TranscriptHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")

	entries, err := h.wizard.Transcript(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "session not found", err.Error())
			return
		}
		h.logger.Error("transcript fetch failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load transcript", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "transcript": entries})
}

func (h *ChatHandler) reply(c *gin.Context, turn *models.ChatTurn, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, turn)
	case errors.Is(err, session.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "session not found or expired", "Start a new search to open a session.")
	case errors.Is(err, assistant.ErrStaleTurn):
		// The session was reset while the webhook call was in flight;
		// the result was discarded on purpose.
		c.JSON(http.StatusConflict, gin.H{"error": "session was reset, result discarded"})
	default:
		h.logger.Error("wizard turn failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "something went wrong", "")
	}
}
