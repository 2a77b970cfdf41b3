package booking

import (
	"reflect"
	"testing"
	"time"

	"github.com/agendoai/aviao-sub000/internal/availability"
	"github.com/agendoai/aviao-sub000/internal/config"
	"github.com/agendoai/aviao-sub000/internal/models"
)

func testSched() config.Scheduling {
	return config.Scheduling{
		PreFlightBuffer:   3 * time.Hour,
		MaintenanceBuffer: 3 * time.Hour,
		SlotInterval:      30 * time.Minute,
		DayStart:          6 * time.Hour,
		DayEnd:            24 * time.Hour,
		RoutingPadding:    1.10,
		DefaultCruiseKt:   185,
		EarlyMorningCut:   6 * time.Hour,
	}
}

func day() time.Time {
	return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
}

func at(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

func openWindow(start, end time.Time) models.AdminAvailabilityWindow {
	return models.AdminAvailabilityWindow{ID: "w", Start: start, End: end, Status: models.WindowOpen}
}

func buildDay(missions []models.Mission, windows []models.AdminAvailabilityWindow) availability.Day {
	snap := availability.Snapshot{AircraftID: "ac1", Missions: missions, Windows: windows}
	return availability.BuildDay(snap, day(), testSched())
}

func mission(id string, dep, ret time.Time) models.Mission {
	return models.Mission{ID: id, AircraftID: "ac1", Departure: dep, Return: ret, Status: models.MissionConfirmed}
}

func departureAt(t time.Time) models.MissionProposal {
	return models.MissionProposal{AircraftID: "ac1", Date: day(), Proposed: t, Mode: models.SelectDeparture}
}

func returnAt(dep, t time.Time) models.MissionProposal {
	return models.MissionProposal{AircraftID: "ac1", Date: day(), Proposed: t, Mode: models.SelectReturn, Counterpart: &dep}
}

func checkSuggestions(t *testing.T, res models.ValidationResult) {
	t.Helper()
	if len(res.Suggestions) > 3 {
		t.Fatalf("%d suggestions, want at most 3", len(res.Suggestions))
	}
	for i := 1; i < len(res.Suggestions); i++ {
		if !res.Suggestions[i-1].Before(res.Suggestions[i]) {
			t.Fatalf("suggestions not strictly ascending: %v", res.Suggestions)
		}
	}
	if !res.Degraded && res.RequiredFrom != nil {
		for _, s := range res.Suggestions {
			if s.Before(*res.RequiredFrom) {
				t.Fatalf("non-degraded suggestion %v before required threshold %v", s, *res.RequiredFrom)
			}
		}
	}
}

// Mission 08:00-10:00 with its 10:00-13:00 maintenance tail: the departure
// rules around it.
func TestValidateDepartureAroundMorningMission(t *testing.T) {
	d := buildDay(
		[]models.Mission{mission("m1", at(8, 0), at(10, 0))},
		[]models.AdminAvailabilityWindow{openWindow(day(), day().Add(24*time.Hour))},
	)

	t.Run("inside the mission", func(t *testing.T) {
		res := Validate(d, departureAt(at(9, 30)), testSched())
		if res.Accepted || res.Code != models.ReasonStatusBlocked || res.BlockKind != models.BlockMissionInProgress {
			t.Fatalf("got %+v, want status-blocked mission-in-progress", res)
		}
	})

	t.Run("inside the maintenance tail", func(t *testing.T) {
		res := Validate(d, departureAt(at(12, 0)), testSched())
		if res.Accepted || res.Code != models.ReasonStatusBlocked || res.BlockKind != models.BlockPostFlight {
			t.Fatalf("got %+v, want status-blocked post-flight", res)
		}
	})

	t.Run("too soon after maintenance", func(t *testing.T) {
		res := Validate(d, departureAt(at(13, 30)), testSched())
		if res.Accepted || res.Code != models.ReasonInsufficientGap {
			t.Fatalf("got %+v, want insufficient gap", res)
		}
		checkSuggestions(t, res)
		if len(res.Suggestions) == 0 || !res.Suggestions[0].Equal(at(16, 0)) {
			t.Fatalf("first suggestion = %v, want 16:00", res.Suggestions)
		}
		if res.RequiredFrom == nil || !res.RequiredFrom.Equal(at(16, 0)) {
			t.Fatalf("required-from = %v, want 16:00", res.RequiredFrom)
		}
		if res.Degraded {
			t.Fatal("suggestions unexpectedly degraded")
		}
	})

	t.Run("full buffer after maintenance", func(t *testing.T) {
		res := Validate(d, departureAt(at(16, 0)), testSched())
		if !res.Accepted {
			t.Fatalf("got %+v, want accepted", res)
		}
	})
}

// A return chosen through an intervening mission is a path collision even
// when the proposed instant itself is free.
func TestValidateReturnPathCollision(t *testing.T) {
	d := buildDay(
		[]models.Mission{mission("m1", at(10, 0), at(11, 0))},
		[]models.AdminAvailabilityWindow{openWindow(day(), day().Add(24*time.Hour))},
	)

	res := Validate(d, returnAt(at(8, 0), at(15, 0)), testSched())
	if res.Accepted || res.Code != models.ReasonPathCollision {
		t.Fatalf("got %+v, want path collision", res)
	}
	checkSuggestions(t, res)
	if res.RequiredFrom == nil || !res.RequiredFrom.Equal(at(11, 0)) {
		t.Fatalf("required-from = %v, want the conflicting mission's end 11:00", res.RequiredFrom)
	}
	// 11:00-14:00 is still under maintenance; the first genuinely free
	// slot starts at 14:00.
	if len(res.Suggestions) == 0 || !res.Suggestions[0].Equal(at(14, 0)) {
		t.Fatalf("first suggestion = %v, want 14:00", res.Suggestions)
	}
}

// A return landing inside the intervening mission's maintenance tail is
// rejected on the slot's own state before the path scan runs.
func TestValidateReturnStatusGateRunsFirst(t *testing.T) {
	d := buildDay(
		[]models.Mission{mission("m1", at(10, 0), at(11, 0))},
		[]models.AdminAvailabilityWindow{openWindow(day(), day().Add(24*time.Hour))},
	)

	res := Validate(d, returnAt(at(8, 0), at(12, 30)), testSched())
	if res.Accepted || res.Code != models.ReasonStatusBlocked {
		t.Fatalf("got %+v, want status-blocked", res)
	}
	if res.BlockKind != models.BlockPostFlight {
		t.Fatalf("block kind = %q, want post-flight", res.BlockKind)
	}
	if len(res.Suggestions) != 0 {
		t.Fatalf("slot-state rejection carries suggestions: %v", res.Suggestions)
	}
}

func TestValidateReturnPathCollisionPicksLatestConflict(t *testing.T) {
	d := buildDay(
		[]models.Mission{
			mission("m1", at(10, 0), at(11, 0)),
			mission("m2", at(12, 0), at(13, 0)),
		},
		[]models.AdminAvailabilityWindow{openWindow(day(), day().Add(24*time.Hour))},
	)

	res := Validate(d, returnAt(at(8, 0), at(16, 30)), testSched())
	if res.Accepted || res.Code != models.ReasonPathCollision {
		t.Fatalf("got %+v, want path collision", res)
	}
	if res.RequiredFrom == nil || !res.RequiredFrom.Equal(at(13, 0)) {
		t.Fatalf("required-from = %v, want the later mission's end 13:00", res.RequiredFrom)
	}
}

func TestValidateReturnOrderingGate(t *testing.T) {
	d := buildDay(nil, []models.AdminAvailabilityWindow{openWindow(day(), day().Add(24*time.Hour))})

	tests := []struct {
		name     string
		proposed time.Time
	}{
		{"return equals departure", at(8, 0)},
		{"return before departure", at(7, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(d, returnAt(at(8, 0), tt.proposed), testSched())
			if res.Accepted || res.Code != models.ReasonInvalidInterval {
				t.Fatalf("got %+v, want invalid interval", res)
			}
			if len(res.Suggestions) != 0 {
				t.Fatalf("ordering rejection carries suggestions: %v", res.Suggestions)
			}
		})
	}
}

func TestValidateReturnForwardGap(t *testing.T) {
	// Next mission departs 18:00, so its preparation window starts 15:00
	// and returns from 12:00 onward leave no room for our own maintenance.
	d := buildDay(
		[]models.Mission{mission("m2", at(18, 0), at(20, 0))},
		[]models.AdminAvailabilityWindow{openWindow(day(), day().Add(24*time.Hour))},
	)

	t.Run("return crowds the next preparation window", func(t *testing.T) {
		res := Validate(d, returnAt(at(8, 0), at(13, 0)), testSched())
		if res.Accepted || res.Code != models.ReasonInsufficientGap {
			t.Fatalf("got %+v, want insufficient gap", res)
		}
		if res.RequiredFrom == nil || !res.RequiredFrom.Equal(at(12, 0)) {
			t.Fatalf("required-from = %v, want 12:00", res.RequiredFrom)
		}
		checkSuggestions(t, res)
	})

	t.Run("return clear of the next preparation window", func(t *testing.T) {
		res := Validate(d, returnAt(at(8, 0), at(11, 30)), testSched())
		if !res.Accepted {
			t.Fatalf("got %+v, want accepted", res)
		}
	})
}

func TestValidateAdminClosureIsTerminal(t *testing.T) {
	d := buildDay(nil, nil)

	res := Validate(d, departureAt(at(10, 0)), testSched())
	if res.Accepted || res.Code != models.ReasonNoOpenWindow {
		t.Fatalf("got %+v, want no-open-window", res)
	}
	if len(res.Suggestions) != 0 {
		t.Fatalf("admin closure carries suggestions: %v", res.Suggestions)
	}
}

func TestValidateOutsideOperatingWindow(t *testing.T) {
	d := buildDay(nil, []models.AdminAvailabilityWindow{openWindow(day(), day().Add(24*time.Hour))})

	res := Validate(d, departureAt(day().Add(3*time.Hour)), testSched())
	if res.Accepted || res.Code != models.ReasonInvalidInterval {
		t.Fatalf("got %+v, want invalid interval for 03:00", res)
	}
}

func TestValidateDegradedSuggestions(t *testing.T) {
	// The open window closes at 17:00, leaving only two free slots at or
	// after the 16:00 threshold. The search falls back to slots right
	// after the maintenance tail and flags the list.
	d := buildDay(
		[]models.Mission{mission("m1", at(8, 0), at(10, 0))},
		[]models.AdminAvailabilityWindow{openWindow(day(), at(17, 0))},
	)

	res := Validate(d, departureAt(at(13, 30)), testSched())
	if res.Accepted || res.Code != models.ReasonInsufficientGap {
		t.Fatalf("got %+v, want insufficient gap", res)
	}
	if !res.Degraded {
		t.Fatal("expected degraded suggestions")
	}
	checkSuggestions(t, res)
	if len(res.Suggestions) != 3 || !res.Suggestions[0].Equal(at(13, 0)) {
		t.Fatalf("suggestions = %v, want them to start right after the conflict end 13:00", res.Suggestions)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	d := buildDay(
		[]models.Mission{mission("m1", at(8, 0), at(10, 0))},
		[]models.AdminAvailabilityWindow{openWindow(day(), day().Add(24*time.Hour))},
	)

	p := departureAt(at(13, 30))
	first := Validate(d, p, testSched())
	second := Validate(d, p, testSched())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same snapshot, different results:\n%+v\n%+v", first, second)
	}
}
