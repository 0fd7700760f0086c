package domain

import (
	"errors"
	"reflect"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultEngineConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func baseRequest() SelectionRequest {
	return SelectionRequest{
		Symbol:         "NIFTY",
		SpotPrice:      26178.70,
		Bias:           BiasBullish,
		StrikeInterval: 50,
		DaysToExpiry:   2.0,
		MinDelta:       0.05,
		MaxDelta:       0.95,
		MinGamma:       0.0001,
		PreferATM:      true,
	}
}

func TestSelectBullishPicksATMCall(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Select(baseRequest())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if result.NoCandidate {
		t.Fatalf("expected a winner, got no candidate (%s)", result.Reason)
	}
	if result.ATMStrike != 26200 {
		t.Errorf("atm strike: expected 26200, got %v", result.ATMStrike)
	}

	best := result.Best
	if best.Candidate.Strike != 26200 || best.Candidate.OptionType != OptionTypeCall {
		t.Fatalf("expected 26200 CALL, got %v %s", best.Candidate.Strike, best.Candidate.OptionType)
	}
	if best.Candidate.Moneyness != MoneynessATM || best.Candidate.OffsetFromATM != 0 {
		t.Errorf("winner should be the ATM candidate, got %+v", best.Candidate)
	}
	if !approx(best.Greeks.Delta, 0.486966, 1e-5) {
		t.Errorf("delta: expected ~0.486966, got %v", best.Greeks.Delta)
	}
	if !approx(best.Greeks.IVUsed, 0.16, 1e-12) {
		t.Errorf("iv_used: expected 0.16, got %v", best.Greeks.IVUsed)
	}
	if !approx(best.Score.TotalScore, 73.501004, 1e-4) {
		t.Errorf("total score: expected ~73.5010, got %v", best.Score.TotalScore)
	}
	if best.Score.ProximityBonus != 20 {
		t.Errorf("atm bonus: expected 20, got %v", best.Score.ProximityBonus)
	}
}

func TestSelectLadderOrdering(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Select(baseRequest())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(result.Ladder) != 7 {
		t.Fatalf("expected 7 ranked candidates, got %d", len(result.Ladder))
	}

	wantStrikes := []float64{26200, 26150, 26250, 26100, 26300, 26050, 26350}
	for i, sc := range result.Ladder {
		if sc.Candidate.Strike != wantStrikes[i] {
			t.Errorf("ladder[%d]: expected strike %v, got %v", i, wantStrikes[i], sc.Candidate.Strike)
		}
		if i > 0 && sc.Score.TotalScore > result.Ladder[i-1].Score.TotalScore {
			t.Errorf("ladder[%d] outranks ladder[%d]: %v > %v",
				i, i-1, sc.Score.TotalScore, result.Ladder[i-1].Score.TotalScore)
		}
	}
	if len(result.Skipped) != 0 {
		t.Errorf("no candidate should be skipped, got %v", result.Skipped)
	}
}

func TestSelectWithoutATMPreference(t *testing.T) {
	engine := newTestEngine(t)

	req := baseRequest()
	req.PreferATM = false
	result, err := engine.Select(req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	// With the proximity bonus off the ranking follows raw Greeks
	// quality and the slightly ITM strike wins.
	if result.Best.Candidate.Strike != 26150 {
		t.Fatalf("expected 26150 to win without ATM bonus, got %v", result.Best.Candidate.Strike)
	}
	for _, sc := range result.Ladder {
		if sc.Score.ProximityBonus != 0 {
			t.Errorf("strike %v carries a bonus with prefer_atm off", sc.Candidate.Strike)
		}
	}
}

func TestSelectBearishEvaluatesPutsOnly(t *testing.T) {
	engine := newTestEngine(t)

	req := baseRequest()
	req.Bias = BiasBearish
	result, err := engine.Select(req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if result.NoCandidate {
		t.Fatalf("expected a winner, got no candidate (%s)", result.Reason)
	}
	for _, sc := range result.Ladder {
		if sc.Candidate.OptionType != OptionTypePut {
			t.Fatalf("bearish bias must evaluate puts only, found %s %v",
				sc.Candidate.OptionType, sc.Candidate.Strike)
		}
		if sc.Greeks.Delta >= 0 {
			t.Errorf("put delta must stay negative, got %v at %v", sc.Greeks.Delta, sc.Candidate.Strike)
		}
	}
	if result.Best.Candidate.Strike != 26200 {
		t.Errorf("expected ATM put to win, got %v", result.Best.Candidate.Strike)
	}
}

func TestSelectNeutralBiasIsNoTrade(t *testing.T) {
	engine := newTestEngine(t)

	req := baseRequest()
	req.Bias = BiasNeutral
	result, err := engine.Select(req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !result.NoCandidate {
		t.Fatal("neutral bias must end with no candidate")
	}
	if result.Reason != ReasonNoDirectionalBias {
		t.Errorf("reason: expected %q, got %q", ReasonNoDirectionalBias, result.Reason)
	}
	if result.Best != nil || len(result.Ladder) != 0 {
		t.Errorf("no-trade result must carry no winner or ladder: %+v", result)
	}
}

func TestSelectDeltaThresholdFilters(t *testing.T) {
	engine := newTestEngine(t)

	req := baseRequest()
	req.MinDelta = 0.35
	req.MaxDelta = 0.75
	result, err := engine.Select(req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	// The far OTM strike (|delta|~0.319) drops out of the window.
	if len(result.Ladder) != 6 {
		t.Fatalf("expected 6 survivors, got %d", len(result.Ladder))
	}
	for _, sc := range result.Ladder {
		if sc.Candidate.Strike == 26350 {
			t.Fatal("26350 should have been filtered on min delta")
		}
	}
}

func TestSelectThresholdsEliminateEverything(t *testing.T) {
	engine := newTestEngine(t)

	req := baseRequest()
	req.MinGamma = 0.01
	result, err := engine.Select(req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !result.NoCandidate {
		t.Fatal("expected no candidate when gamma threshold exceeds every strike")
	}
	if result.Reason != ReasonThresholdsNotMet {
		t.Errorf("reason: expected %q, got %q", ReasonThresholdsNotMet, result.Reason)
	}
}

func TestSelectSkipsNonPositiveStrikes(t *testing.T) {
	engine := newTestEngine(t)

	// A spot far below the strike interval centers the window on zero,
	// so four of the seven strikes are non-positive and fail pricing.
	req := SelectionRequest{
		Symbol:         "PENNY",
		SpotPrice:      49,
		Bias:           BiasBullish,
		StrikeInterval: 100,
		DaysToExpiry:   2.0,
		MinDelta:       0,
		MaxDelta:       1,
		MinGamma:       0,
		PreferATM:      true,
	}
	result, err := engine.Select(req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if result.NoCandidate {
		t.Fatalf("valid strikes remain, got no candidate (%s)", result.Reason)
	}
	if len(result.Skipped) != 4 {
		t.Fatalf("expected 4 skipped strikes, got %d: %+v", len(result.Skipped), result.Skipped)
	}
	for _, sk := range result.Skipped {
		if sk.Strike > 0 {
			t.Errorf("strike %v should not have been skipped", sk.Strike)
		}
		if sk.Cause == "" {
			t.Errorf("skipped strike %v carries no cause", sk.Strike)
		}
	}
	if len(result.Ladder) != 3 {
		t.Fatalf("expected 3 ranked candidates, got %d", len(result.Ladder))
	}
	if result.Best.Candidate.Strike != 100 {
		t.Errorf("expected the nearest valid strike to win, got %v", result.Best.Candidate.Strike)
	}
}

func TestSelectAllCandidatesInvalid(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.HalfWidth = 0
	engine, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	// Spot 40 against interval 100 rounds the single ATM strike to zero.
	req := SelectionRequest{
		Symbol:         "PENNY",
		SpotPrice:      40,
		Bias:           BiasBullish,
		StrikeInterval: 100,
		DaysToExpiry:   2.0,
		MaxDelta:       1,
		PreferATM:      true,
	}
	result, err := engine.Select(req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !result.NoCandidate {
		t.Fatal("expected no candidate when every strike fails pricing")
	}
	if result.Reason != ReasonNumericallyInvalid {
		t.Errorf("reason: expected %q, got %q", ReasonNumericallyInvalid, result.Reason)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Strike != 0 {
		t.Errorf("expected the zero strike on the skipped list, got %+v", result.Skipped)
	}
	if result.Best != nil || len(result.Ladder) != 0 {
		t.Errorf("all-invalid result must carry no winner or ladder: %+v", result)
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	engine := newTestEngine(t)

	req := baseRequest()
	first, err := engine.Select(req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := engine.Select(req)
		if err != nil {
			t.Fatalf("Select run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d diverged from the first result", i)
		}
	}
}

func TestSelectRejectsInvalidRequest(t *testing.T) {
	engine := newTestEngine(t)

	cases := []struct {
		name   string
		mutate func(*SelectionRequest)
	}{
		{"zero spot", func(r *SelectionRequest) { r.SpotPrice = 0 }},
		{"negative interval", func(r *SelectionRequest) { r.StrikeInterval = -50 }},
		{"negative expiry", func(r *SelectionRequest) { r.DaysToExpiry = -1 }},
		{"inverted delta band", func(r *SelectionRequest) { r.MinDelta = 0.8; r.MaxDelta = 0.2 }},
		{"negative gamma floor", func(r *SelectionRequest) { r.MinGamma = -0.001 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest()
			tc.mutate(&req)
			if _, err := engine.Select(req); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.BaseIV = 0
	if _, err := NewEngine(cfg, nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}

	cfg = DefaultEngineConfig()
	cfg.DeltaIdealLow = 0.7
	cfg.DeltaIdealHigh = 0.4
	if _, err := NewEngine(cfg, nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestSelectionResultString(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Select(baseRequest())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := result.String(); got == "" {
		t.Fatal("expected a non-empty summary line")
	}

	req := baseRequest()
	req.Bias = BiasNeutral
	noTrade, _ := engine.Select(req)
	if got := noTrade.String(); got != "no candidate (no directional bias)" {
		t.Errorf("unexpected no-trade summary: %q", got)
	}
}
