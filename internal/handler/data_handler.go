package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusgarden/backend/internal/model"
	"focusgarden/backend/internal/service"
)

// DataHandler serves the records the options and dashboard surfaces own:
// list definitions, the garden, daily stats and settings.
type DataHandler struct {
	data *service.DataService
}

func NewDataHandler(data *service.DataService) *DataHandler {
	return &DataHandler{data: data}
}

func (h *DataHandler) GetFocusLists(c *gin.Context) {
	lists, apiErr := h.data.FocusLists(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"focusLists": lists})
}

func (h *DataHandler) PutFocusLists(c *gin.Context) {
	var lists []model.FocusList
	if err := c.ShouldBindJSON(&lists); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	saved, apiErr := h.data.SaveFocusLists(c.Request.Context(), lists)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"focusLists": saved})
}

func (h *DataHandler) GetBlockLists(c *gin.Context) {
	lists, apiErr := h.data.BlockLists(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blockLists": lists})
}

func (h *DataHandler) PutBlockLists(c *gin.Context) {
	var lists []model.BlockList
	if err := c.ShouldBindJSON(&lists); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	saved, apiErr := h.data.SaveBlockLists(c.Request.Context(), lists)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blockLists": saved})
}

func (h *DataHandler) GetGarden(c *gin.Context) {
	garden, apiErr := h.data.Garden(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"garden": garden})
}

func (h *DataHandler) GetStats(c *gin.Context) {
	stats, apiErr := h.data.Stats(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *DataHandler) GetSettings(c *gin.Context) {
	settings, apiErr := h.data.Settings(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *DataHandler) PutSettings(c *gin.Context) {
	var settings model.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	saved, apiErr := h.data.SaveSettings(c.Request.Context(), settings)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": saved})
}
