package entities

import "time"

// TimeOfDay is the coarse world clock
type TimeOfDay string

// Times of day, in order
const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// TimesOfDay lists every valid TimeOfDay
var TimesOfDay = []TimeOfDay{TimeMorning, TimeAfternoon, TimeEvening, TimeNight}

// IsValid reports whether t is one of the four times of day
func (t TimeOfDay) IsValid() bool {
	for _, v := range TimesOfDay {
		if t == v {
			return true
		}
	}
	return false
}

// World is the top-level namespace owning every other entity
type World struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IsTemplate  bool       `json:"is_template"`
	TimeOfDay   TimeOfDay  `json:"time_of_day"`
	DaysElapsed int32      `json:"days_elapsed"`
	WorldState  Attributes `json:"world_state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Location is a place in a world, optionally nested under a parent
type Location struct {
	ID               int64      `json:"id"`
	WorldID          int64      `json:"world_id"`
	ParentLocationID *int64     `json:"parent_location_id,omitempty"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	LocationType     string     `json:"location_type,omitempty"`
	State            Attributes `json:"state"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HasParent reports whether the location is nested
func (l *Location) HasParent() bool {
	return l.ParentLocationID != nil
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}

// SameID compares two optional ids
func SameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
