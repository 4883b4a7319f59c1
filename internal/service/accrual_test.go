package service

import (
	"testing"

	"focusgarden/backend/internal/model"
)

func TestRecordCompletionUpsertsByDay(t *testing.T) {
	stats := []model.CycleStat{}

	stats = recordCompletion("2026-08-28", stats)
	if len(stats) != 1 {
		t.Fatalf("expected fresh record, got %d", len(stats))
	}
	if stats[0].Completed != 1 || stats[0].Interrupted != 0 {
		t.Fatalf("unexpected fresh record %+v", stats[0])
	}
	if stats[0].EmergencyAccess == nil {
		t.Fatal("fresh record must carry an empty access map")
	}

	stats = recordCompletion("2026-08-28", stats)
	if len(stats) != 1 {
		t.Fatalf("same-day completion must not append, got %d records", len(stats))
	}
	if stats[0].Completed != 2 {
		t.Fatalf("repeated calls must accumulate exactly, got %d", stats[0].Completed)
	}

	stats = recordCompletion("2026-08-29", stats)
	if len(stats) != 2 {
		t.Fatalf("new day must append, got %d records", len(stats))
	}
}

func TestRecordInterruptionUpsertsByDay(t *testing.T) {
	stats := recordInterruption("2026-08-28", nil)
	if len(stats) != 1 || stats[0].Interrupted != 1 || stats[0].Completed != 0 {
		t.Fatalf("unexpected fresh record %+v", stats)
	}

	stats = recordInterruption("2026-08-28", stats)
	if stats[0].Interrupted != 2 {
		t.Fatalf("expected interrupted 2, got %d", stats[0].Interrupted)
	}
}

func TestAccrualDoesNotMutateInput(t *testing.T) {
	input := []model.CycleStat{
		{Date: "2026-08-28", Completed: 3, Interrupted: 1, EmergencyAccess: map[string]int{"youtube.com": 1}},
	}

	recordCompletion("2026-08-28", input)
	recordInterruption("2026-08-28", input)
	recordEmergencyAccess("2026-08-28", "youtube.com", input)

	if input[0].Completed != 3 || input[0].Interrupted != 1 {
		t.Fatalf("input mutated: %+v", input[0])
	}
	if input[0].EmergencyAccess["youtube.com"] != 1 {
		t.Fatalf("input access map mutated: %+v", input[0].EmergencyAccess)
	}
}

func TestRecordEmergencyAccessPerSite(t *testing.T) {
	stats := recordEmergencyAccess("2026-08-28", "reddit.com", nil)
	stats = recordEmergencyAccess("2026-08-28", "reddit.com", stats)
	stats = recordEmergencyAccess("2026-08-28", "twitter.com", stats)

	if len(stats) != 1 {
		t.Fatalf("expected one day record, got %d", len(stats))
	}
	if stats[0].EmergencyAccess["reddit.com"] != 2 || stats[0].EmergencyAccess["twitter.com"] != 1 {
		t.Fatalf("unexpected access counts %+v", stats[0].EmergencyAccess)
	}
}

func TestPlantForUniqueIds(t *testing.T) {
	garden := []model.GardenPlant{
		{ID: 1000, Type: model.PlantSapling, Date: "2026-08-28", Status: model.PlantAlive},
		{ID: 1001, Type: model.PlantSapling, Date: "2026-08-28", Status: model.PlantAlive},
	}

	plant := plantFor(1000, "2026-08-28", model.PlantWithered, garden)
	if plant.ID != 1002 {
		t.Fatalf("expected id bumped past collisions, got %d", plant.ID)
	}
	if plant.Type != model.PlantSapling || plant.Status != model.PlantWithered {
		t.Fatalf("unexpected plant %+v", plant)
	}
	if plant.Date != "2026-08-28" {
		t.Fatalf("unexpected date %s", plant.Date)
	}
}
