package api

import (
	"net/http"

	"github.com/NurAbir/pokemon-battle-server/internal/constants"
	"github.com/NurAbir/pokemon-battle-server/internal/service"
	"github.com/gin-gonic/gin"
)

type joinRequest struct {
	Name   string               `json:"name"`
	Roster []service.RosterSpec `json:"roster"`
}

// JoinMatchmaking enqueues the caller with their requested roster. The
// response carries the newly assigned participant identity and, when a
// waiting opponent was found, the started battle's id.
func (h *BattleHandler) JoinMatchmaking(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	result, err := h.manager.JoinMatchmaking(req.Name, req.Roster)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// LeaveMatchmaking removes a waiting caller from the queue.
func (h *BattleHandler) LeaveMatchmaking(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	removed := h.manager.LeaveMatchmaking(id)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
