package elo

import "math"

// Damped keeps the sine curve for fast wins and switches to a damped sigmoid
// for slow wins and losses. Losses are scaled by 0.35 and floored at
// -150.
type Damped struct{}

const (
	dampedLossScale = 0.35
	dampedLossFloor = -150

	dampedA   = 800.0
	dampedB   = 2.0
	dampedC   = 0.09
	dampedD   = 3.0
	dampedP   = 2.0
	dampedK   = 0.8
	dampedPhi = 1.9
)

func dampedCurve(elo, g int) float64 {
	t := sineT(elo, g)
	tp := math.Max(0, t)

	term1 := 1 - math.Pow(tp, dampedP)/(math.Pow(tp, dampedP)+math.Pow(dampedK, dampedP))
	term2 := math.Pow(dampedC, dampedD) / (math.Pow(tp, dampedD) + math.Pow(dampedC, dampedD))
	term3 := (math.Sin(dampedB*t-dampedPhi) + 1) / 2
	offset := 15 / float64(g-1)

	return dampedA*term1*term2*term3 + offset
}

func (Damped) Delta(elo, guesses int, won bool) int {
	g := clampGuesses(chargedGuesses(guesses, won))
	if won && g <= 4 {
		return max(1, round(-800*math.Sin(sineT(elo, g))))
	}
	// g == 1 never reaches the curve: it is always a fast win.
	h := dampedCurve(elo, g)
	if !won {
		return max(dampedLossFloor, round(h*dampedLossScale))
	}
	return max(1, round(h))
}
