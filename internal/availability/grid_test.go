package availability

import (
	"testing"
	"time"

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

func TestGenerateGridCoversOperatingWindow(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     int
	}{
		{"30 minute slots", 30 * time.Minute, 36},
		{"60 minute slots", 60 * time.Minute, 18},
		{"15 minute slots", 15 * time.Minute, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := testSched()
			sched.SlotInterval = tt.interval

			slots := GenerateGrid(day(), sched)
			if len(slots) != tt.want {
				t.Fatalf("GenerateGrid() produced %d slots, want %d", len(slots), tt.want)
			}

			if !slots[0].Start.Equal(at(6, 0)) {
				t.Errorf("first slot starts %v, want 06:00", slots[0].Start)
			}
			last := slots[len(slots)-1]
			if !last.End.Equal(day().Add(24 * time.Hour)) {
				t.Errorf("last slot ends %v, want midnight", last.End)
			}

			for i, s := range slots {
				if s.End.Sub(s.Start) != tt.interval {
					t.Errorf("slot %d has width %v, want %v", i, s.End.Sub(s.Start), tt.interval)
				}
				if s.Status != models.SlotAvailable {
					t.Errorf("slot %d generated with status %q", i, s.Status)
				}
				if i > 0 && !slots[i-1].End.Equal(s.Start) {
					t.Errorf("gap between slot %d and %d: %v != %v", i-1, i, slots[i-1].End, s.Start)
				}
			}
		})
	}
}

func TestBuildBufferZonesEmitsThreeZonesPerMission(t *testing.T) {
	dayStart, dayEnd := DayWindow(day(), testSched())
	missions := []models.Mission{{
		ID:        "m1",
		Departure: at(8, 0),
		Return:    at(10, 0),
		Status:    models.MissionConfirmed,
	}}

	zones := BuildBufferZones(missions, dayStart, dayEnd, testSched())
	if len(zones) != 3 {
		t.Fatalf("got %d zones, want 3", len(zones))
	}

	byKind := map[models.BlockKind]models.BufferZone{}
	for _, z := range zones {
		byKind[z.Kind] = z
	}

	pre := byKind[models.BlockPreFlight]
	if !pre.Start.Equal(at(5, 0)) || !pre.End.Equal(at(8, 0)) {
		t.Errorf("pre-flight zone [%v, %v), want [05:00, 08:00)", pre.Start, pre.End)
	}
	prog := byKind[models.BlockMissionInProgress]
	if !prog.Start.Equal(at(8, 0)) || !prog.End.Equal(at(10, 0)) {
		t.Errorf("mission zone [%v, %v), want [08:00, 10:00)", prog.Start, prog.End)
	}
	post := byKind[models.BlockPostFlight]
	if !post.Start.Equal(at(10, 0)) || !post.End.Equal(at(13, 0)) {
		t.Errorf("post-flight zone [%v, %v), want [10:00, 13:00)", post.Start, post.End)
	}
}

func TestBuildBufferZonesSkipsCancelledAndInverted(t *testing.T) {
	dayStart, dayEnd := DayWindow(day(), testSched())
	missions := []models.Mission{
		{ID: "cancelled", Departure: at(8, 0), Return: at(10, 0), Status: models.MissionCancelled},
		{ID: "inverted", Departure: at(12, 0), Return: at(11, 0), Status: models.MissionConfirmed},
	}

	if zones := BuildBufferZones(missions, dayStart, dayEnd, testSched()); len(zones) != 0 {
		t.Fatalf("got %d zones, want none", len(zones))
	}
}

func TestBuildBufferZonesCatchesCrossMidnightSpill(t *testing.T) {
	dayStart, dayEnd := DayWindow(day(), testSched())

	// Returned at 04:00; maintenance runs until 07:00 and must block the
	// start of this day's window.
	missions := []models.Mission{{
		ID:        "overnight",
		Departure: at(4, 0).Add(-8 * time.Hour),
		Return:    at(4, 0),
		Status:    models.MissionConfirmed,
	}}

	zones := BuildBufferZones(missions, dayStart, dayEnd, testSched())
	if len(zones) != 3 {
		t.Fatalf("got %d zones, want 3", len(zones))
	}

	var post models.BufferZone
	for _, z := range zones {
		if z.Kind == models.BlockPostFlight {
			post = z
		}
	}
	if !post.Overlaps(dayStart, dayEnd) {
		t.Errorf("post-flight zone [%v, %v) does not reach into the operating window", post.Start, post.End)
	}
}
