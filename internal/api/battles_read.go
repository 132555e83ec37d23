package api

import (
	"net/http"

	"github.com/NurAbir/pokemon-battle-server/internal/constants"
	"github.com/gin-gonic/gin"
)

// ListBattles returns the caller's battle history, newest first.
func (h *BattleHandler) ListBattles(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	recs, err := h.repo.ListBattlesByParticipant(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBattles})
		return
	}
	c.JSON(http.StatusOK, recs)
}

// GetBattle returns the caller-scoped view of a battle: a live snapshot
// while the battle is running, or the summary record once it completed.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	battleID := c.Param("battleID")

	if snap, err := h.manager.Snapshot(battleID, id); err == nil {
		c.JSON(http.StatusOK, snap)
		return
	}

	rec, err := h.repo.GetBattleRecord(battleID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		return
	}
	if !rec.HasParticipant(id) {
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotYourBattle})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetBattleLog returns the full ordered battle log.
func (h *BattleHandler) GetBattleLog(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	battleID := c.Param("battleID")

	rec, err := h.repo.GetBattleRecord(battleID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		return
	}
	if !rec.HasParticipant(id) {
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotYourBattle})
		return
	}

	entries, err := h.repo.GetFullLog(battleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLog})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Forfeit concedes an active battle on behalf of the caller.
func (h *BattleHandler) Forfeit(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	if err := h.manager.Forfeit(c.Param("battleID"), id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "forfeited"})
}
