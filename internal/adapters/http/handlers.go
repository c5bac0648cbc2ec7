package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/canbridge/canbridge/internal/adapters/ws"
	"github.com/canbridge/canbridge/internal/app"
	"github.com/canbridge/canbridge/internal/core"
	"github.com/canbridge/canbridge/internal/domain"
)

type CANHandlers struct {
	Manager *app.SessionManager
	Hub     *ws.Hub
}

type StartRequest struct {
	Interface string `json:"interface"`
}

type SendRequest struct {
	ID       uint32   `json:"id"`
	Data     []uint32 `json:"data"`
	Extended bool     `json:"extended"`
}

type StatusResponse struct {
	app.Status
	Subscribers int `json:"subscribers"`
}

func (h *CANHandlers) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start payload"})
		return
	}

	if err := h.Manager.Start(req.Interface); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, core.ErrAlreadyActive) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Manager.Status())
}

func (h *CANHandlers) Stop(c *gin.Context) {
	h.Manager.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (h *CANHandlers) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid frame"})
		return
	}

	payload := make([]byte, 0, len(req.Data))
	for _, b := range req.Data {
		if b > 0xFF {
			c.JSON(http.StatusBadRequest, gin.H{"error": "data bytes must be in 0..255"})
			return
		}
		payload = append(payload, byte(b))
	}

	if err := h.Manager.Send(req.ID, payload, req.Extended); err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, core.ErrNotStarted):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrPayloadTooLong), errors.Is(err, domain.ErrIDOutOfRange):
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (h *CANHandlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:      h.Manager.Status(),
		Subscribers: h.Hub.Len(),
	})
}
