// Package elo computes rating deltas for ranked games.
//
// Every rating curve implements Model. Sine is the live curve; KFactor and
// Damped are alternates kept for comparison and tuning. All models are pure:
// the same inputs always produce the same integer delta.
package elo

import "math"

// LossGuesses is the guess count charged for a loss.
const LossGuesses = 7

// MaxGain caps any single win.
const MaxGain = 250

// Compensation bounds for sessions interrupted by a restart.
const (
	MinCompensation = 0
	MaxCompensation = 30
)

// Model maps (elo, guesses used, won) to an integer rating delta.
type Model interface {
	Delta(elo, guesses int, won bool) int
}

// Live is the model wired into ranked resolution.
var Live Model = Sine{}

// Compensation is the credit for a ranked game cut short by a restart after
// guesses accepted guesses: the win delta for one more guess, kept in
// [MinCompensation, MaxCompensation]. It is never negative.
func Compensation(m Model, elo, guesses int) int {
	d := m.Delta(elo, guesses+1, true)
	return max(MinCompensation, min(MaxCompensation, d))
}

// chargedGuesses is the guess count a model should score.
func chargedGuesses(guesses int, won bool) int {
	if !won {
		return LossGuesses
	}
	return guesses
}

// sineT is the shared curve argument: (elo − 500·(7−g)^1.6) / 5600.
func sineT(elo, g int) float64 {
	return (float64(elo) - 500*math.Pow(float64(7-g), 1.6)) / 5600
}

// round matches the half-to-even rounding the ladder was tuned with.
func round(x float64) int { return int(math.RoundToEven(x)) }

// Sine is the live curve h = −800·sin(t).
//
// Fast wins (g ≤ 4) are floored at a per-guess bounty and capped at MaxGain.
// Slow wins and losses (g > 4) are damped by Softener and floored at a
// per-guess cap that grows harsher from 5 to 7.
type Sine struct{}

// Softener damps slow wins and losses.
const Softener = 0.25

// bounds holds the minimum bounty (g ≤ 4) or maximum loss (g > 4) per g.
var bounds = [8]int{0, 150, 50, 15, 3, 35, 55, 75}

func (Sine) Delta(elo, guesses int, won bool) int {
	g := clampGuesses(chargedGuesses(guesses, won))
	h := -800 * math.Sin(sineT(elo, g))
	if g > 4 {
		return max(-bounds[g], round(h*Softener))
	}
	return min(max(bounds[g], round(h)), MaxGain)
}

// clampGuesses keeps g inside the 1..LossGuesses domain of the curves.
func clampGuesses(g int) int {
	return max(1, min(LossGuesses, g))
}
