package api

import (
	"net/http"
	"time"

	"github.com/NurAbir/pokemon-battle-server/internal/constants"
	"github.com/NurAbir/pokemon-battle-server/internal/logging"
	"github.com/NurAbir/pokemon-battle-server/internal/service"
	"github.com/NurAbir/pokemon-battle-server/internal/ws"
	"github.com/gin-gonic/gin"
)

// BattleWebSocket upgrades the connection and attaches the caller to their
// battle's broadcast group. The participant identity comes from the header
// or, for browser clients that cannot set headers on upgrade requests, the
// participant_id query parameter.
func (h *BattleHandler) BattleWebSocket(c *gin.Context) {
	id := c.GetHeader(constants.HeaderParticipantID)
	if id == "" {
		id = c.Query("participant_id")
	}
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrParticipantIDRequired})
		return
	}
	battleID := c.Param("battleID")

	// Membership is checked before the upgrade so a bad request gets a
	// proper HTTP status instead of an immediately closed socket.
	var since time.Time
	if s := c.Query("since"); s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			since = t
		}
	}
	state, err := h.manager.Rejoin(battleID, id, since)
	if err != nil {
		status := http.StatusNotFound
		if err == service.ErrNotParticipant {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{constants.JSONKeyError: err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", err, logging.Fields{
			constants.LogFieldBattleID: battleID,
		})
		return
	}

	client := ws.NewClient(h.hub, conn, battleID, id)
	client.Register()
	go client.WritePump()
	go client.ReadPump()

	client.SendMessage(service.MsgBattleState, state)
}
