package sttimer

import "testing"

func TestInactiveNeverExpires(t *testing.T) {
	var tm Timer
	for i := 0; i < 100; i++ {
		if tm.Expired(5) {
			t.Fatalf("inactive timer must never expire")
		}
	}
}

func TestExpiresAtLimit(t *testing.T) {
	var tm Timer
	tm.Start(0)
	for i := uint32(0); i < 4; i++ {
		if tm.Expired(5) {
			t.Fatalf("expired too early at tick %d", i)
		}
	}
	if !tm.Expired(5) {
		t.Fatalf("expected expiry at tick 5")
	}
	if tm.Active() {
		t.Fatalf("expired timer must stop itself")
	}
}

func TestStartResumesFromGivenValue(t *testing.T) {
	var tm Timer
	tm.Start(3)
	if tm.Value() != 3 {
		t.Fatalf("expected value 3, got %d", tm.Value())
	}
	if !tm.Expired(4) {
		t.Fatalf("expected expiry one tick after starting at value 3 with limit 4")
	}
}

func TestStopClearsValue(t *testing.T) {
	var tm Timer
	tm.Start(2)
	tm.Stop()
	if tm.Active() || tm.Value() != 0 {
		t.Fatalf("expected inactive, zeroed timer after Stop")
	}
}

func TestSecondsConversion(t *testing.T) {
	if Seconds(2) != 20 {
		t.Fatalf("expected 2s == 20 ticks, got %d", Seconds(2))
	}
	if Seconds(-1) != 0 {
		t.Fatalf("expected negative seconds to clamp to 0 ticks")
	}
}
