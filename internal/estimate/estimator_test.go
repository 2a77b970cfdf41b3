package estimate

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

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

func testService(fees FeeLookup) *Service {
	if fees == nil {
		fees = DefaultFeeTable()
	}
	return NewService(nil, testSched(), DefaultAirportTable(), fees, zerolog.Nop())
}

func dayAt(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

func TestOvernightStays(t *testing.T) {
	tests := []struct {
		name      string
		departure time.Time
		ret       time.Time
		want      int
	}{
		{"same day round trip", dayAt(8, 0), dayAt(16, 0), 0},
		{"same nominal day, early morning return", dayAt(23, 0), dayAt(1, 0), 1},
		{"same date, earlier clock but after cut", dayAt(23, 30), dayAt(7, 0), 0},
		{"next date, under 24h away", dayAt(23, 0), dayAt(1, 0).AddDate(0, 0, 1), 0},
		{"two full days away", dayAt(9, 0), dayAt(10, 0).AddDate(0, 0, 2), 2},
		{"one full day away", dayAt(9, 0), dayAt(9, 0).AddDate(0, 0, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OvernightStays(tt.departure, tt.ret, 6*time.Hour)
			if got != tt.want {
				t.Errorf("OvernightStays(%v, %v) = %d, want %d", tt.departure, tt.ret, got, tt.want)
			}
		})
	}
}

func TestFlightHoursAppliesRoutingPadding(t *testing.T) {
	got := FlightHours(185, 185, 1.10)
	if math.Abs(got-1.10) > 1e-9 {
		t.Fatalf("FlightHours(185, 185, 1.10) = %v, want 1.10", got)
	}
}

func TestDistanceNMIsSymmetricAndPlausible(t *testing.T) {
	table := DefaultAirportTable()
	sp, _ := table.Coordinates("SBSP")
	rj, _ := table.Coordinates("SBRJ")

	there := DistanceNM(sp, rj)
	back := DistanceNM(rj, sp)
	if math.Abs(there-back) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", there, back)
	}
	// Congonhas to Santos Dumont is roughly 190 NM.
	if there < 170 || there > 210 {
		t.Fatalf("SBSP-SBRJ distance = %v NM, outside plausible range", there)
	}
}

// Two flight hours at 2800/h with no nights and no fees costs exactly 5600.
func TestEstimateFlightCostOnly(t *testing.T) {
	breakdown := CostBreakdown{FlightHours: 2}
	breakdown.FlightCost = breakdown.FlightHours * 2800
	breakdown.Total = breakdown.FlightCost

	if breakdown.Total != 5600 {
		t.Fatalf("total = %v, want 5600", breakdown.Total)
	}
}

func TestEstimateForAircraftRoundTrip(t *testing.T) {
	svc := testService(nil)
	aircraft := models.Aircraft{
		ID:            "ac1",
		Model:         "King Air C90",
		BaseICAO:      "SBSP",
		CruiseKnots:   226,
		HourlyRate:    2800,
		OvernightRate: 1500,
	}

	req := Request{
		AircraftID: "ac1",
		Legs: []models.MissionLeg{
			{FromICAO: "SBSP", ToICAO: "SBRJ"},
			{FromICAO: "SBRJ", ToICAO: "SBSP"},
		},
		Departure: dayAt(8, 0),
		Return:    dayAt(16, 0),
	}

	breakdown, err := svc.EstimateForAircraft(aircraft, req)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	if len(breakdown.Legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(breakdown.Legs))
	}
	if breakdown.OvernightStays != 0 || breakdown.OvernightCost != 0 {
		t.Errorf("same-day trip billed %d nights", breakdown.OvernightStays)
	}

	// Fees accrue at the destination only; the return to base is free.
	wantFees, _ := DefaultFeeTable().Fees("SBRJ")
	if math.Abs(breakdown.FeeTotal-wantFees.Total()) > 1e-9 {
		t.Errorf("fee total = %v, want %v (destination only)", breakdown.FeeTotal, wantFees.Total())
	}
	if breakdown.Legs[1].Fees != 0 {
		t.Errorf("return leg to base carries fees: %v", breakdown.Legs[1].Fees)
	}

	wantFlightCost := breakdown.FlightHours * 2800
	if math.Abs(breakdown.FlightCost-wantFlightCost) > 1e-9 {
		t.Errorf("flight cost = %v, want %v", breakdown.FlightCost, wantFlightCost)
	}
	wantTotal := breakdown.FlightCost + breakdown.FeeTotal
	if math.Abs(breakdown.Total-wantTotal) > 1e-9 {
		t.Errorf("total = %v, want %v", breakdown.Total, wantTotal)
	}
	if len(breakdown.UsedFallbacks) != 0 {
		t.Errorf("unexpected fallbacks: %v", breakdown.UsedFallbacks)
	}
}

func TestEstimateOvernightMission(t *testing.T) {
	svc := testService(nil)
	aircraft := models.Aircraft{
		ID: "ac1", BaseICAO: "SBSP", CruiseKnots: 226,
		HourlyRate: 2800, OvernightRate: 1500,
	}

	req := Request{
		Legs: []models.MissionLeg{
			{FromICAO: "SBSP", ToICAO: "SBRJ"},
			{FromICAO: "SBRJ", ToICAO: "SBSP"},
		},
		Departure: dayAt(23, 0),
		Return:    dayAt(1, 0), // same nominal date, past midnight
	}

	breakdown, err := svc.EstimateForAircraft(aircraft, req)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if breakdown.OvernightStays != 1 {
		t.Fatalf("overnight stays = %d, want 1", breakdown.OvernightStays)
	}
	if breakdown.OvernightCost != 1500 {
		t.Fatalf("overnight cost = %v, want 1500", breakdown.OvernightCost)
	}
}

type failingFees struct{}

func (failingFees) Fees(string) (AirportFees, error) {
	return AirportFees{}, timeoutError{}
}

type timeoutError struct{}

func (timeoutError) Error() string { return "fee service timeout" }

func TestEstimateRecoversFromFeeLookupFailure(t *testing.T) {
	svc := testService(failingFees{})
	aircraft := models.Aircraft{ID: "ac1", BaseICAO: "SBSP", CruiseKnots: 200, HourlyRate: 2000}

	req := Request{
		Legs:      []models.MissionLeg{{FromICAO: "SBSP", ToICAO: "SBRJ"}},
		Departure: dayAt(8, 0),
		Return:    dayAt(12, 0),
	}

	breakdown, err := svc.EstimateForAircraft(aircraft, req)
	if err != nil {
		t.Fatalf("fee lookup failure should not be fatal: %v", err)
	}
	if breakdown.FeeTotal != 0 {
		t.Errorf("fee total = %v, want 0 after fallback", breakdown.FeeTotal)
	}
	if len(breakdown.UsedFallbacks) == 0 {
		t.Error("expected the fallback to be reported")
	}
}

func TestEstimateUsesDefaultCruiseSpeedFallback(t *testing.T) {
	svc := testService(nil)
	aircraft := models.Aircraft{ID: "ac1", Model: "Unknown Model", BaseICAO: "SBSP", HourlyRate: 2000}

	req := Request{
		Legs:      []models.MissionLeg{{FromICAO: "SBSP", ToICAO: "SBRJ"}},
		Departure: dayAt(8, 0),
		Return:    dayAt(12, 0),
	}

	breakdown, err := svc.EstimateForAircraft(aircraft, req)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	dist := breakdown.Legs[0].DistanceNM
	want := FlightHours(dist, 185, 1.10)
	if math.Abs(breakdown.Legs[0].FlightHours-want) > 1e-9 {
		t.Errorf("leg hours = %v, want %v from the 185 kt fallback", breakdown.Legs[0].FlightHours, want)
	}
}

func TestEstimateUnknownAirportIsFatal(t *testing.T) {
	svc := testService(nil)
	aircraft := models.Aircraft{ID: "ac1", BaseICAO: "SBSP", CruiseKnots: 200}

	req := Request{
		Legs:      []models.MissionLeg{{FromICAO: "SBSP", ToICAO: "XXXX"}},
		Departure: dayAt(8, 0),
		Return:    dayAt(12, 0),
	}

	if _, err := svc.EstimateForAircraft(aircraft, req); err == nil {
		t.Fatal("expected an error for an airport missing from every table")
	}
}

func TestEstimateRejectsEmptyRoute(t *testing.T) {
	svc := testService(nil)
	if _, err := svc.EstimateForAircraft(models.Aircraft{ID: "ac1"}, Request{}); err == nil {
		t.Fatal("expected an error for a mission without legs")
	}
}
