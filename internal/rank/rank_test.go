package rank

import "testing"

func TestTierFor(t *testing.T) {
	tests := []struct {
		elo  int
		want string
	}{
		{-40, "Bigma"},
		{0, "Bigma"},
		{499, "Bigma"},
		{500, "Bronze"},
		{1000, "Bronze"},
		{1200, "Silver"},
		{9999, "Astral"},
		{696969, "elaine"},
		{1 << 30, "elaine"},
	}
	for _, tt := range tests {
		if got := Default.TierFor(tt.elo).Name; got != tt.want {
			t.Errorf("TierFor(%d) = %s, want %s", tt.elo, got, tt.want)
		}
	}
}

func TestNextTierAbove(t *testing.T) {
	if next, ok := Default.NextTierAbove(1000); !ok || next.Name != "Silver" {
		t.Errorf("NextTierAbove(1000) = %v, %v", next, ok)
	}
	if next, ok := Default.NextTierAbove(500); !ok || next.Name != "Silver" {
		t.Errorf("NextTierAbove(500) = %v, %v", next, ok)
	}
	if _, ok := Default.NextTierAbove(696969); ok {
		t.Errorf("top tier should have no next tier")
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		elo      int
		tier     string
		division int
	}{
		{0, "Bigma", 1},
		{99, "Bigma", 1},
		{100, "Bigma", 2},
		{499, "Bigma", 5},
		{500, "Bronze", 1},
		{1000, "Bronze", 4},
		{1199, "Bronze", 5},
		{10000, "Singularity", 1},
		{696969, "elaine", 0},
		{800000, "elaine", 0},
	}
	for _, tt := range tests {
		p := Default.Position(tt.elo)
		if p == nil {
			t.Fatalf("Position(%d) = nil", tt.elo)
		}
		if p.Tier.Name != tt.tier || p.Division != tt.division {
			t.Errorf("Position(%d) = %s %d, want %s %d", tt.elo, p.Tier.Name, p.Division, tt.tier, tt.division)
		}
	}
	if p := Default.Position(-1); p != nil {
		t.Errorf("Position(-1) = %+v, want nil", p)
	}
}

func TestCompareIsMonotonicInElo(t *testing.T) {
	prev := Default.Position(0)
	for elo := 1; elo <= 12000; elo++ {
		cur := Default.Position(elo)
		if Compare(cur, prev) < 0 {
			t.Fatalf("position at %d (%+v) ranks below %d (%+v)", elo, cur, elo-1, prev)
		}
		prev = cur
	}
}

func TestClassify(t *testing.T) {
	bronze4, silver1 := Default.Position(1000), Default.Position(1200)
	if got := Classify(bronze4, silver1); got != Promotion {
		t.Errorf("Classify up = %s", got)
	}
	if got := Classify(silver1, bronze4); got != Demotion {
		t.Errorf("Classify down = %s", got)
	}
	if got := Classify(bronze4, Default.Position(1010)); got != NoChange {
		t.Errorf("Classify same division = %s", got)
	}
	if got := Classify(nil, silver1); got != NoChange {
		t.Errorf("Classify nil = %s", got)
	}
}

func TestProgressAndBands(t *testing.T) {
	if got := Default.Progress(850); got != 0.5 {
		t.Errorf("Progress(850) = %v, want 0.5", got)
	}
	if got := Default.Progress(700000); got != 1 {
		t.Errorf("Progress(top) = %v, want 1", got)
	}
	bands := Default.Bands()
	if len(bands) != Default.Len() {
		t.Fatalf("bands = %d, tiers = %d", len(bands), Default.Len())
	}
	if bands[0].Min != 0 || bands[0].Max != 499 || bands[len(bands)-1].Max != -1 {
		t.Errorf("unexpected bands: first %+v last %+v", bands[0], bands[len(bands)-1])
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].Min != bands[i-1].Max+1 {
			t.Errorf("gap between %s and %s", bands[i-1].Name, bands[i].Name)
		}
	}
}
