package elo

import "math"

// KFactor is the linear model: delta = K(elo) · (neutral(elo) − g), with a
// volatility K that shrinks as elo rises and a neutral guess count that drops.
// Losses are scaled up with elo; wins below WinFloor never lose rating.
type KFactor struct{}

const (
	kfCenter      = 2500 // where the ladder stabilizes
	kfWinFloor    = 2000 // wins never lose elo below this
	kfKMax        = 22.0
	kfKMin        = 2.0
	kfKDecayPower = 3.4
	kfNeutralBase = 7.0
	kfNeutralDrop = 4.2
	kfLossPower   = 2.1
	kfLowEloBonus = 30.0
	kfMaxLoss     = -75.0
)

func kfNeutral(elo float64) float64 {
	return kfNeutralBase - kfNeutralDrop*(elo/(elo+kfCenter))
}

func kfK(elo float64) float64 {
	return kfKMin + (kfKMax-kfKMin)/(1+math.Pow(elo/kfCenter, kfKDecayPower))
}

// kfBonus rewards cracked games at low elo.
func kfBonus(elo float64, guesses int) float64 {
	if guesses >= 4 {
		return 1
	}
	scale := math.Max(0, (kfCenter-elo)/kfCenter)
	if guesses == 3 {
		return 1 + 0.1*scale
	}
	return 1 + 0.95*scale
}

func (KFactor) Delta(rating, guesses int, won bool) int {
	elo := math.Max(0, float64(rating))
	g := chargedGuesses(guesses, won)

	base := kfK(elo) * (kfNeutral(elo) - float64(g))
	if !won {
		base *= math.Pow(elo/kfWinFloor, kfLossPower)
	} else {
		if elo < kfWinFloor || guesses == 4 {
			base = math.Max(base, 0)
		}
		base *= kfBonus(elo, guesses)
		if elo < kfWinFloor && base == 0 {
			base += kfLowEloBonus * (1 - elo/kfWinFloor)
		}
	}
	return round(math.Max(kfMaxLoss, math.Min(MaxGain, base)))
}
