package services

import (
	"testing"

	"goaltips/internal/models"
)

func TestMaskPremiumTips(t *testing.T) {
	tips := []models.Tip{
		{ID: 1, Prediction: "Home win", Odds: 1.85, IsFree: true},
		{ID: 2, Prediction: "Over 2.5", Odds: 2.10, IsFree: false},
	}

	masked := maskPremiumTips(tips)

	if masked[0].Prediction != "Home win" || masked[0].Locked {
		t.Errorf("free tip must pass through untouched: %+v", masked[0])
	}
	if masked[1].Prediction != "" || masked[1].Odds != 0 {
		t.Errorf("premium tip content must be stripped: %+v", masked[1])
	}
	if !masked[1].Locked {
		t.Error("premium tip must be flagged locked")
	}

	// originals untouched
	if tips[1].Prediction != "Over 2.5" {
		t.Error("masking must not mutate the input slice")
	}
}
