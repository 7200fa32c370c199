package bot

import botinternal "ringo/internal/bot/internal"

const finishBonus = 1000.0

// DefaultTuning is the heuristic tier's balance of structure preservation and
// hand reduction by phase.
var DefaultTuning = botinternal.BotTuning{
	Opening: botinternal.PhaseWeights{
		MessinessWeight:  1.5,
		GroupWeight:      0.8,
		HandSizePenalty:  0.6,
		ValueWeight:      0.1,
		SplitAmmoPenalty: 1.2,
		OversizePenalty:  1.0,
		FinishBonus:      finishBonus,
	},
	Mid: botinternal.PhaseWeights{
		MessinessWeight:  1.2,
		GroupWeight:      0.7,
		HandSizePenalty:  1.0,
		ValueWeight:      0.15,
		SplitAmmoPenalty: 1.0,
		OversizePenalty:  0.8,
		FinishBonus:      finishBonus,
	},
	End: botinternal.PhaseWeights{
		MessinessWeight:  0.8,
		GroupWeight:      0.4,
		HandSizePenalty:  2.0,
		ValueWeight:      0.2,
		SplitAmmoPenalty: 0.4,
		OversizePenalty:  0.3,
		FinishBonus:      finishBonus,
	},
	DrawThreshold:      -3.0,
	DangerThreshold:    4,
	EmergencyThreshold: 2,
}

// strategicTuning extends the heuristic weights with denial pressure and a
// stiffer ammo economy for the strategic tier.
var strategicTuning = func() botinternal.BotTuning {
	t := DefaultTuning
	t.Opening.DenialBonus = 0.3
	t.Mid.DenialBonus = 0.5
	t.End.DenialBonus = 0.8
	t.Opening.SplitAmmoPenalty = 1.6
	t.Mid.SplitAmmoPenalty = 1.4
	t.Mid.OversizePenalty = 1.2
	t.DrawThreshold = -2.0
	t.JitterFrac = 0.05
	return t
}()
