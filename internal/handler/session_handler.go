package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusgarden/backend/internal/service"
)

// SessionHandler forwards user intents from the extension surfaces into the
// session engine and returns engine snapshots.
type SessionHandler struct {
	sessions *service.SessionService
}

type startRequest struct {
	ListID   string `json:"listId"`
	WithPrep bool   `json:"withPrep"`
}

type emergencyRequest struct {
	Site string `json:"site"`
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) GetState(c *gin.Context) {
	view, apiErr := h.sessions.Snapshot(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": view})
}

func (h *SessionHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}
	if req.ListID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_list_id", "message": "listId is required"},
		})
		return
	}

	view, apiErr := h.sessions.Start(c.Request.Context(), req.ListID, req.WithPrep)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": view})
}

func (h *SessionHandler) CompletePrep(c *gin.Context) {
	view, apiErr := h.sessions.CompletePrep(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": view})
}

func (h *SessionHandler) Extend(c *gin.Context) {
	view, apiErr := h.sessions.Extend(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": view})
}

func (h *SessionHandler) GiveUp(c *gin.Context) {
	view, apiErr := h.sessions.GiveUp(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": view})
}

// ActiveBlockList hands the content-blocking consumer its contract: the
// block list in force right now, or null when nothing should be blocked.
func (h *SessionHandler) ActiveBlockList(c *gin.Context) {
	list, apiErr := h.sessions.ActiveBlockList(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blockList": list})
}

func (h *SessionHandler) RecordEmergencyAccess(c *gin.Context) {
	var req emergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	stats, apiErr := h.sessions.RecordEmergencyAccess(c.Request.Context(), req.Site)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
