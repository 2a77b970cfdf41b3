package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MissionStatus tracks a mission through its lifecycle.
type MissionStatus string

const (
	MissionPending   MissionStatus = "pending"
	MissionConfirmed MissionStatus = "confirmed"
	MissionCompleted MissionStatus = "completed"
	MissionCancelled MissionStatus = "cancelled"
)

// Occupies reports whether a mission in this status still holds its
// timeline. Cancelled missions release their interval and buffers.
func (s MissionStatus) Occupies() bool {
	return s != MissionCancelled
}

// Aircraft is a shared-use airframe managed by the platform.
type Aircraft struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Registration  string    `gorm:"uniqueIndex" json:"registration"`
	Model         string    `gorm:"index" json:"model"`
	BaseICAO      string    `gorm:"type:varchar(8)" json:"base_icao"`
	Seats         int       `json:"seats"`
	CruiseKnots   float64   `json:"cruise_knots"`
	HourlyRate    float64   `json:"hourly_rate"`
	OvernightRate float64   `json:"overnight_rate"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Mission is a scheduled aircraft use with a departure and return instant.
// The availability engine only ever reads mission snapshots; creation and
// cancellation belong to the booking flow.
type Mission struct {
	ID          string        `gorm:"type:uuid;primaryKey" json:"id"`
	AircraftID  string        `gorm:"type:uuid;index:idx_missions_aircraft;not null" json:"aircraft_id"`
	OwnerUserID string        `gorm:"type:uuid;index" json:"owner_user_id"`
	Departure   time.Time     `gorm:"column:departure_at;index;not null" json:"departure"`
	Return      time.Time     `gorm:"column:return_at;index;not null" json:"return"`
	OriginICAO  string        `gorm:"type:varchar(8)" json:"origin_icao"`
	Legs        MissionLegs   `gorm:"type:jsonb" json:"legs,omitempty"`
	Status      MissionStatus `gorm:"type:varchar(16);index;not null;default:pending" json:"status"`
	Notes       string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Aircraft *Aircraft `gorm:"foreignKey:AircraftID" json:"aircraft,omitempty"`
}

// MissionLegs is the ordered route flown, origin base first. Slice type
// with GORM scanner/valuer support.
type MissionLegs []MissionLeg

func (l MissionLegs) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *MissionLegs) Scan(value interface{}) error {
	if value == nil {
		*l = MissionLegs{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("failed to unmarshal MissionLegs: %v", value)
}

// MissionLeg is one flown segment between two airports.
type MissionLeg struct {
	FromICAO string `json:"from_icao"`
	ToICAO   string `json:"to_icao"`
}

// WindowStatus marks an admin window as open for scheduling or blocked.
type WindowStatus string

const (
	WindowOpen    WindowStatus = "open"
	WindowBlocked WindowStatus = "blocked"
)

// AdminAvailabilityWindow defines when an aircraft may be scheduled at all,
// independent of existing missions.
type AdminAvailabilityWindow struct {
	ID         string       `gorm:"type:uuid;primaryKey" json:"id"`
	AircraftID string       `gorm:"type:uuid;index:idx_admin_windows_aircraft;not null" json:"aircraft_id"`
	Start      time.Time    `gorm:"column:start_at;index;not null" json:"start"`
	End        time.Time    `gorm:"column:end_at;index;not null" json:"end"`
	Status     WindowStatus `gorm:"type:varchar(16);not null;default:open" json:"status"`
	Note       string       `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (AdminAvailabilityWindow) TableName() string {
	return "admin_availability_windows"
}
