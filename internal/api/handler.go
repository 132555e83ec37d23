package api

import (
	"net/http"

	"github.com/NurAbir/pokemon-battle-server/internal/constants"
	"github.com/NurAbir/pokemon-battle-server/internal/service"
	"github.com/NurAbir/pokemon-battle-server/internal/storage"
	"github.com/NurAbir/pokemon-battle-server/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// BattleHandler exposes the battle server over HTTP: matchmaking, the
// read-only battle surfaces and the WebSocket upgrade endpoint.
type BattleHandler struct {
	repo     storage.Repository
	manager  *service.Manager
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewBattleHandler(repo storage.Repository, manager *service.Manager, hub *ws.Hub) *BattleHandler {
	return &BattleHandler{
		repo:    repo,
		manager: manager,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// participantID extracts the caller identity header, answering 401 and
// returning ok=false when it is missing.
func participantID(c *gin.Context) (string, bool) {
	id := c.GetHeader(constants.HeaderParticipantID)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrParticipantIDRequired})
		return "", false
	}
	return id, true
}

// RegisterRoutes attaches every endpoint to the router.
func RegisterRoutes(router *gin.Engine, h *BattleHandler) {
	router.GET(constants.RouteHealthz, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "ok"})
	})

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, Version)
		apiRoutes.POST(constants.RouteMatchmakingJoin, h.JoinMatchmaking)
		apiRoutes.POST(constants.RouteMatchmakingLeave, h.LeaveMatchmaking)
		apiRoutes.GET(constants.RouteBattles, h.ListBattles)
		apiRoutes.GET(constants.RouteBattleByID, h.GetBattle)
		apiRoutes.GET(constants.RouteBattleLog, h.GetBattleLog)
		apiRoutes.POST(constants.RouteBattleForfeit, h.Forfeit)
		apiRoutes.GET(constants.RouteBattleWS, h.BattleWebSocket)
	}
}
