package model

import "time"

const (
	PlantSapling = "sapling"
	PlantTree    = "tree"
	PlantFlower  = "flower"

	PlantAlive    = "alive"
	PlantWithered = "withered"
)

// GardenPlant is one append-only reward/penalty record. Exactly one is created
// per completed focus cycle (alive) or abandoned non-prep session (withered);
// plants are never mutated or deleted.
type GardenPlant struct {
	ID     int64  `json:"id"`
	Type   string `json:"type"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// CycleStat aggregates one calendar day of session outcomes. Records are
// unique per date and upserted in place.
type CycleStat struct {
	Date            string         `json:"date"`
	Completed       int            `json:"completed"`
	Interrupted     int            `json:"interrupted"`
	EmergencyAccess map[string]int `json:"emergencyAccess"`
}

// Day formats t as the calendar-day key used by garden and stat records.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
