package service

import (
	"fmt"

	"github.com/NurAbir/pokemon-battle-server/internal/engine"
	"github.com/NurAbir/pokemon-battle-server/internal/game"
)

// resolveTurnLocked executes both pending actions in order, applies
// end-of-turn status damage and either completes the battle or opens the
// next turn. The caller holds the battle's mutex.
func (m *Manager) resolveTurnLocked(b *game.Battle) {
	for _, p := range b.Participants {
		act := p.PendingAction
		if act == nil {
			continue
		}
		if act.Kind == game.ActionSwitch {
			act.Priority = game.SwitchPriority
		} else if mv, ok := m.catalog.Move(act.Move); ok {
			act.Priority = mv.Priority
		}
		act.Speed = engine.EffectiveSpeed(p.Active())
	}

	order := [2]int{0, 1}
	if secondActsFirst(b.Participants[0].PendingAction, b.Participants[1].PendingAction, m.randIntn(2)) {
		order = [2]int{1, 0}
	}

	for _, idx := range order {
		p := b.Participants[idx]
		opp := b.Participants[1-idx]
		act := p.PendingAction
		if act == nil {
			continue
		}
		switch act.Kind {
		case game.ActionSwitch:
			m.executeSwitch(b, p, act.SwitchTo)
		case game.ActionMove:
			m.executeMove(b, p, opp, act.Move)
		}
		// Termination is checked after every action, not at end of turn: a
		// roster-exhausting blow decides the battle before anything else
		// (the remaining action, residual status damage) can run.
		if m.completeIfExhaustedLocked(b) {
			return
		}
	}

	m.applyEndOfTurnStatus(b)
	m.finishTurn(b)
}

// completeIfExhaustedLocked ends the battle when a side has no usable
// combatant left, reporting whether it completed. The caller holds the
// battle's mutex.
func (m *Manager) completeIfExhaustedLocked(b *game.Battle) bool {
	lost := [2]bool{b.Participants[0].AllFainted(), b.Participants[1].AllFainted()}
	switch {
	case lost[0] && lost[1]:
		m.completeBattleLocked(b, "", game.EndReasonKnockout)
	case lost[0]:
		m.completeBattleLocked(b, b.Participants[1].ID, game.EndReasonKnockout)
	case lost[1]:
		m.completeBattleLocked(b, b.Participants[0].ID, game.EndReasonKnockout)
	default:
		return false
	}
	return true
}

// secondActsFirst orders two actions: higher priority first, then higher
// effective speed, with a coin flip breaking exact ties.
func secondActsFirst(a, b *game.Action, coin int) bool {
	if a == nil || b == nil {
		return a == nil && b != nil
	}
	if b.Priority != a.Priority {
		return b.Priority > a.Priority
	}
	if b.Speed != a.Speed {
		return b.Speed > a.Speed
	}
	return coin == 1
}

// executeMove resolves one damaging or status move. A fainted attacker
// skips its action; a move that cannot be resolved fails softly and still
// consumes the turn.
func (m *Manager) executeMove(b *game.Battle, p, opp *game.Participant, moveName string) {
	attacker := p.Active()
	if attacker == nil || attacker.Fainted {
		return
	}
	defender := opp.Active()

	mv, ok := m.catalog.Move(moveName)
	if !ok || defender == nil || defender.Fainted {
		m.logEvent(b, game.EventMoveFailed, p.ID,
			fmt.Sprintf("%s's %s failed!", attacker.DisplayName(), moveName),
			game.MoveFailedPayload{Attacker: attacker.DisplayName(), Move: moveName})
		return
	}

	m.logEvent(b, game.EventMoveUsed, p.ID,
		fmt.Sprintf("%s used %s!", attacker.DisplayName(), mv.Name),
		game.MoveUsedPayload{Attacker: attacker.DisplayName(), Move: mv.Name, Target: defender.DisplayName()})

	if !engine.AccuracyCheck(mv, attacker, defender, m.randFloat()*100) {
		m.logEvent(b, game.EventMoveMissed, p.ID,
			fmt.Sprintf("%s's attack missed!", attacker.DisplayName()),
			game.MoveMissedPayload{Attacker: attacker.DisplayName(), Move: mv.Name})
		return
	}

	if !mv.IsDamaging() {
		m.logEvent(b, game.EventInfo, p.ID, "But nothing happened.", nil)
		return
	}

	effectiveness := engine.TypeEffectiveness(mv.Type, defender.Types)
	if effectiveness == 0 {
		m.logEvent(b, game.EventDamage, p.ID,
			fmt.Sprintf("It doesn't affect %s...", defender.DisplayName()),
			game.DamagePayload{Target: defender.DisplayName(), RemainingHP: defender.CurrentHP, Effectiveness: 0})
		return
	}

	crit := engine.CritCheck(0, m.randFloat())
	factor := engine.DamageRollFromStep(m.randIntn(engine.DamageRollSteps))
	dmg := engine.Damage(attacker, defender, mv, crit, factor, 1)
	defender.ApplyDamage(dmg)

	if crit {
		m.logEvent(b, game.EventCriticalHit, p.ID, "A critical hit!",
			game.CriticalHitPayload{Target: defender.DisplayName()})
	}
	m.logEvent(b, game.EventDamage, p.ID,
		damageMessage(defender.DisplayName(), dmg, effectiveness),
		game.DamagePayload{
			Target:        defender.DisplayName(),
			Amount:        dmg,
			RemainingHP:   defender.CurrentHP,
			Effectiveness: effectiveness,
		})

	if defender.Fainted {
		m.logEvent(b, game.EventFaint, opp.ID,
			fmt.Sprintf("%s fainted!", defender.DisplayName()),
			game.FaintPayload{Participant: opp.ID, Combatant: defender.DisplayName()})
	}
}

func damageMessage(target string, amount int, effectiveness float64) string {
	msg := fmt.Sprintf("%s took %d damage.", target, amount)
	switch {
	case effectiveness > 1:
		msg += " It's super effective!"
	case effectiveness < 1:
		msg += " It's not very effective..."
	}
	return msg
}

// executeSwitch withdraws the active combatant and sends out the roster
// member at index. Stat stages do not survive leaving the field; status
// conditions do.
func (m *Manager) executeSwitch(b *game.Battle, p *game.Participant, index int) {
	if index < 0 || index >= len(p.Roster) || p.Roster[index].Fainted {
		return
	}
	if cur := p.Active(); cur != nil {
		cur.Stages = game.StatStages{}
		m.logEvent(b, game.EventSwitchWithdraw, p.ID,
			fmt.Sprintf("%s withdrew %s!", p.Name, cur.DisplayName()),
			game.SwitchPayload{Participant: p.ID, Combatant: cur.DisplayName(), Index: p.ActiveIndex})
	}
	p.ActiveIndex = index
	next := p.Active()
	m.logEvent(b, game.EventSwitchSendOut, p.ID,
		fmt.Sprintf("%s sent out %s!", p.Name, next.DisplayName()),
		game.SwitchPayload{Participant: p.ID, Combatant: next.DisplayName(), Index: index})
}

// applyEndOfTurnStatus ticks residual status damage on both actives.
func (m *Manager) applyEndOfTurnStatus(b *game.Battle) {
	for _, p := range b.Participants {
		active := p.Active()
		if active == nil || active.Fainted {
			continue
		}
		var amount int
		var verb string
		switch active.Status {
		case game.StatusBurn:
			amount = active.MaxHP / 16
			verb = "its burn"
		case game.StatusPoison:
			amount = active.MaxHP / 8
			verb = "poison"
		default:
			continue
		}
		if amount < 1 {
			amount = 1
		}
		active.ApplyDamage(amount)
		m.logEvent(b, game.EventStatusDamage, p.ID,
			fmt.Sprintf("%s is hurt by %s!", active.DisplayName(), verb),
			game.StatusDamagePayload{
				Target:      active.DisplayName(),
				Status:      active.Status,
				Amount:      amount,
				RemainingHP: active.CurrentHP,
			})
		if active.Fainted {
			m.logEvent(b, game.EventFaint, p.ID,
				fmt.Sprintf("%s fainted!", active.DisplayName()),
				game.FaintPayload{Participant: p.ID, Combatant: active.DisplayName()})
		}
	}
}

// finishTurn closes the resolved turn: it either ends the battle, flags
// forced replacements, or opens the next turn and restarts the clock.
func (m *Manager) finishTurn(b *game.Battle) {
	for _, p := range b.Participants {
		p.ClearPending()
	}

	if m.completeIfExhaustedLocked(b) {
		return
	}

	for _, p := range b.Participants {
		if active := p.Active(); active != nil && active.Fainted {
			p.MustSwitch = true
		}
	}

	b.Turn++
	m.logEvent(b, game.EventTurnMarker, "", fmt.Sprintf("Turn %d", b.Turn),
		game.TurnMarkerPayload{Turn: b.Turn})
	m.timers.StartTurn(b.ID, b.Turn, m.timeoutFor(b.ID))
	m.broadcastSnapshots(b)
}
