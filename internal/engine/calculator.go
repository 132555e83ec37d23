package engine

import (
	"math"

	"github.com/NurAbir/pokemon-battle-server/internal/catalog"
	"github.com/NurAbir/pokemon-battle-server/internal/game"
)

// The calculator is a library of pure functions: every probabilistic input
// (accuracy roll, crit roll, damage factor) is passed in explicitly, so a
// given set of draws always produces the same result.

const (
	stabBonus      = 1.5
	critMultiplier = 1.5

	// Canonical random damage factor: one of the 16 steps 0.85..1.00.
	damageRollMin = 0.85

	// DamageRollSteps is the number of discrete damage-roll outcomes.
	DamageRollSteps = 16
)

// StageMultiplier maps a stage in [-6,+6] onto its stat multiplier.
func StageMultiplier(stage int) float64 {
	num := 2 + stage
	if num < 2 {
		num = 2
	}
	den := 2 - stage
	if den < 2 {
		den = 2
	}
	return float64(num) / float64(den)
}

// CritChance returns the critical-hit probability for a crit stage.
func CritChance(stage int) float64 {
	switch {
	case stage <= 0:
		return 1.0 / 24
	case stage == 1:
		return 1.0 / 8
	case stage == 2:
		return 1.0 / 2
	default:
		return 1
	}
}

// CritCheck decides a critical hit from a uniform roll in [0,1).
func CritCheck(stage int, roll float64) bool {
	return roll < CritChance(stage)
}

// AccuracyCheck decides whether a move connects. A move without a defined
// accuracy never misses. Otherwise the hit chance is the move accuracy
// scaled by the attacker's accuracy stage and the defender's evasion stage,
// clamped to at most 100, compared against a uniform roll in [0,100).
func AccuracyCheck(move catalog.Move, attacker, defender *game.Combatant, roll float64) bool {
	if move.Accuracy == nil {
		return true
	}
	chance := float64(*move.Accuracy) *
		StageMultiplier(attacker.Stages.Accuracy) /
		StageMultiplier(defender.Stages.Evasion)
	if chance > 100 {
		chance = 100
	}
	return roll < chance
}

// EffectiveSpeed is the speed stat scaled by its stage multiplier, used as
// the turn-order tiebreaker.
func EffectiveSpeed(c *game.Combatant) int {
	return int(float64(c.Stats.Speed) * StageMultiplier(c.Stages.Speed))
}

// IsSTAB reports whether the move type matches one of the attacker's types.
func IsSTAB(moveType string, attackerTypes []string) bool {
	for _, t := range attackerTypes {
		if t == moveType {
			return true
		}
	}
	return false
}

// offensiveStats picks the attack/defense pairing for the move category and
// applies stage multipliers. Critical hits ignore stage modifiers that would
// hurt the attacker: a negative attacker stage and a positive defender stage
// are both treated as zero.
func offensiveStats(attacker, defender *game.Combatant, move catalog.Move, crit bool) (atk, def float64) {
	var atkBase, defBase, atkStage, defStage int
	if move.Category == catalog.CategoryPhysical {
		atkBase, atkStage = attacker.Stats.Attack, attacker.Stages.Attack
		defBase, defStage = defender.Stats.Defense, defender.Stages.Defense
	} else {
		atkBase, atkStage = attacker.Stats.SpAttack, attacker.Stages.SpAttack
		defBase, defStage = defender.Stats.SpDefense, defender.Stages.SpDefense
	}
	if crit {
		if atkStage < 0 {
			atkStage = 0
		}
		if defStage > 0 {
			defStage = 0
		}
	}
	return float64(atkBase) * StageMultiplier(atkStage), float64(defBase) * StageMultiplier(defStage)
}

// Damage computes final damage for a connecting damaging move. The factor
// argument is the random damage roll in [0.85, 1.00]; externalMod is the
// weather-style hook (pass 1 when unused). Immune matchups deal zero;
// otherwise damage is floored at 1.
func Damage(attacker, defender *game.Combatant, move catalog.Move, crit bool, factor, externalMod float64) int {
	effectiveness := TypeEffectiveness(move.Type, defender.Types)
	if effectiveness == 0 || !move.IsDamaging() {
		return 0
	}

	atk, def := offensiveStats(attacker, defender, move, crit)
	base := math.Floor((2*float64(attacker.Level)/5+2)*float64(move.Power)*atk/def/50) + 2
	dmg := base
	if crit {
		dmg *= critMultiplier
	}
	dmg *= factor
	if IsSTAB(move.Type, attacker.Types) {
		dmg *= stabBonus
	}
	dmg *= effectiveness
	dmg *= externalMod
	if attacker.Status == game.StatusBurn && move.Category == catalog.CategoryPhysical {
		dmg /= 2
	}

	out := int(math.Floor(dmg))
	if out < 1 {
		out = 1
	}
	return out
}

// DamageRollFromStep maps a step in [0,16) onto its canonical damage factor.
func DamageRollFromStep(step int) float64 {
	return damageRollMin + float64(step)/100
}

// DamageRange returns the minimum and maximum damage across the 16 canonical
// random-factor steps, for the same inputs Damage accepts.
func DamageRange(attacker, defender *game.Combatant, move catalog.Move, crit bool, externalMod float64) (min, max int) {
	min = Damage(attacker, defender, move, crit, DamageRollFromStep(0), externalMod)
	max = Damage(attacker, defender, move, crit, DamageRollFromStep(DamageRollSteps-1), externalMod)
	return min, max
}
