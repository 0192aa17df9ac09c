package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/wordl-ranked/internal/auth"
	"github.com/robalobadob/wordl-ranked/internal/ranked"
	"github.com/robalobadob/wordl-ranked/internal/store"
	"github.com/robalobadob/wordl-ranked/internal/words"
)

type harness struct {
	t      *testing.T
	srv    *Server
	issuer *auth.Issuer
	st     store.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dict, err := words.New([]string{"crane"}, []string{"tulip", "slate", "react", "pious", "dodgy", "lymph"})
	if err != nil {
		t.Fatal(err)
	}
	st := store.NewMemoryStore()
	issuer := auth.NewIssuer("test-secret", time.Hour)
	svc := ranked.New(dict, st, st)
	return &harness{t: t, srv: New(svc, issuer, Options{}), issuer: issuer, st: st}
}

func (h *harness) token(playerID string) string {
	h.t.Helper()
	tok, _, err := h.issuer.Sign(playerID)
	if err != nil {
		h.t.Fatal(err)
	}
	return tok
}

// do sends a request as playerID (anonymous when empty) and decodes the JSON body into out.
func (h *harness) do(method, path, playerID, body string, out any) int {
	h.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if playerID != "" {
		req.Header.Set("Authorization", "Bearer "+h.token(playerID))
	}
	rec := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rec, req)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		h.t.Fatalf("%s %s content-type = %q", method, path, ct)
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			h.t.Fatalf("%s %s decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

type errBody struct {
	Error string `json:"error"`
}

func TestHealthAndNotFound(t *testing.T) {
	h := newHarness(t)
	var ok map[string]bool
	if code := h.do(http.MethodGet, "/health", "", "", &ok); code != http.StatusOK || !ok["ok"] {
		t.Fatalf("health = %d %v", code, ok)
	}
	var nf errBody
	if code := h.do(http.MethodGet, "/nope", "", "", &nf); code != http.StatusNotFound || nf.Error != "not_found" {
		t.Fatalf("404 = %d %+v", code, nf)
	}
}

func TestHealthReportsBackendFailure(t *testing.T) {
	h := newHarness(t)
	h.srv = New(nil, h.issuer, Options{Ready: func(context.Context) error { return errors.New("db locked") }})
	var body map[string]bool
	if code := h.do(http.MethodGet, "/health", "", "", &body); code != http.StatusServiceUnavailable || body["ok"] {
		t.Fatalf("health = %d %v", code, body)
	}
}

func TestGameRoutesRequireToken(t *testing.T) {
	h := newHarness(t)
	var e errBody
	if code := h.do(http.MethodPost, "/game/new", "", `{}`, &e); code != http.StatusUnauthorized {
		t.Fatalf("no token = %d", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/stats/me", nil)
	req.Header.Set("Authorization", "Bearer junk")
	rec := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Invalid token") {
		t.Fatalf("bad token = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRankedFlowOverHTTP(t *testing.T) {
	h := newHarness(t)

	var v ranked.View
	if code := h.do(http.MethodPost, "/game/new", "p1", `{"mode":"ranked","channelId":"c1"}`, &v); code != http.StatusCreated {
		t.Fatalf("new game = %d", code)
	}
	if v.Mode != "ranked" || v.Answer != "" || v.Remaining != 6 {
		t.Fatalf("view = %+v", v)
	}

	var e errBody
	if code := h.do(http.MethodPost, "/game/new", "p1", `{"mode":"casual"}`, &e); code != http.StatusConflict {
		t.Fatalf("casual during ranked = %d %+v", code, e)
	}
	if code := h.do(http.MethodPost, "/game/guess", "p1", `{"guess":"zzzzz"}`, &e); code != http.StatusBadRequest {
		t.Fatalf("invalid guess = %d %+v", code, e)
	}

	var out ranked.GuessOutcome
	if code := h.do(http.MethodPost, "/game/guess", "p1", `{"guess":"tulip"}`, &out); code != http.StatusOK {
		t.Fatalf("guess = %d", code)
	}
	if out.GuessCount != 1 || out.Rating != nil {
		t.Fatalf("first guess = %+v", out)
	}

	var cur ranked.View
	if code := h.do(http.MethodGet, "/game/current", "p1", "", &cur); code != http.StatusOK || cur.GuessCount != 1 {
		t.Fatalf("current = %d %+v", code, cur)
	}

	out = ranked.GuessOutcome{}
	if code := h.do(http.MethodPost, "/game/guess", "p1", `{"guess":"CRANE"}`, &out); code != http.StatusOK {
		t.Fatalf("winning guess = %d", code)
	}
	if out.State != "won" || out.Answer != "crane" || out.Rating == nil || out.Rating.Delta != 250 {
		t.Fatalf("win = %+v rating=%+v", out, out.Rating)
	}

	if code := h.do(http.MethodGet, "/game/current", "p1", "", &e); code != http.StatusNotFound {
		t.Fatalf("current after win = %d", code)
	}

	var p ranked.Profile
	if code := h.do(http.MethodGet, "/stats/me", "p1", "", &p); code != http.StatusOK {
		t.Fatalf("stats = %d", code)
	}
	if p.Stats.Elo != 1250 || p.Stats.Wins != 1 || p.Position == nil || p.Position.Tier.Name != "Silver" {
		t.Fatalf("profile = %+v", p)
	}

	p = ranked.Profile{}
	if code := h.do(http.MethodGet, "/stats/p1", "", "", &p); code != http.StatusOK || p.Stats.Elo != 1250 {
		t.Fatalf("public stats = %d %+v", code, p)
	}
}

func TestLeaderboardRoute(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i, elo := range []int{1500, 900, 2100} {
		if err := h.st.Save(ctx, store.PlayerStats{PlayerID: fmt.Sprintf("p%d", i), Elo: elo}); err != nil {
			t.Fatal(err)
		}
	}

	var lb ranked.Leaderboard
	if code := h.do(http.MethodGet, "/leaderboard?limit=2", "p1", "", &lb); code != http.StatusOK {
		t.Fatalf("leaderboard = %d", code)
	}
	if len(lb.Top) != 2 || lb.Top[0].Stats.PlayerID != "p2" || lb.Place != 3 || lb.Total != 3 {
		t.Fatalf("leaderboard = %+v", lb)
	}

	var e errBody
	if code := h.do(http.MethodGet, "/leaderboard?limit=zero", "", "", &e); code != http.StatusBadRequest {
		t.Fatalf("bad limit = %d", code)
	}
}

func TestRankAndSimulateRoutes(t *testing.T) {
	h := newHarness(t)

	var bands []map[string]any
	if code := h.do(http.MethodGet, "/ranks", "", "", &bands); code != http.StatusOK || len(bands) != 23 {
		t.Fatalf("ranks = %d len=%d", code, len(bands))
	}

	tests := []struct {
		name     string
		path     string
		wantCode int
		check    func(t *testing.T, body map[string]any)
	}{
		{
			name:     "rank of 1000",
			path:     "/rank?elo=1000",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["division"].(float64) != 4 {
					t.Fatalf("division = %v", body["division"])
				}
			},
		},
		{name: "negative elo", path: "/rank?elo=-5", wantCode: http.StatusNotFound},
		{name: "non numeric", path: "/rank?elo=lots", wantCode: http.StatusBadRequest},
		{
			name:     "win in three",
			path:     "/simulate?elo=1000&outcome=win&guesses=3",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["delta"].(float64) != 250 || body["change"] != "promotion" {
					t.Fatalf("sim = %v", body)
				}
			},
		},
		{
			name:     "loss ignores guesses",
			path:     "/simulate?elo=1000&outcome=lose",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["delta"].(float64) != -36 || body["guesses"].(float64) != 7 {
					t.Fatalf("sim = %v", body)
				}
			},
		},
		{name: "guesses out of range", path: "/simulate?elo=1000&outcome=win&guesses=9", wantCode: http.StatusBadRequest},
		{name: "bad outcome", path: "/simulate?elo=1000&outcome=draw&guesses=3", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			if code := h.do(http.MethodGet, tt.path, "", "", &body); code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%v)", code, tt.wantCode, body)
			}
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", ranked.ErrInvalidGuess), http.StatusBadRequest},
		{ranked.ErrAlreadyInRankedGame, http.StatusConflict},
		{ranked.ErrNoActiveGame, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
