package service

import "focusgarden/backend/internal/model"

// Accrual helpers are pure: they never mutate their input, callers persist
// the returned value. Each transition invokes at most one of them, once.

// recordCompletion returns stats with today's completed count incremented,
// appending a fresh record when the day has none.
func recordCompletion(today string, stats []model.CycleStat) []model.CycleStat {
	out := make([]model.CycleStat, len(stats))
	copy(out, stats)
	for i := range out {
		if out[i].Date == today {
			out[i].Completed++
			return out
		}
	}
	return append(out, model.CycleStat{
		Date:            today,
		Completed:       1,
		Interrupted:     0,
		EmergencyAccess: map[string]int{},
	})
}

// recordInterruption is the penalized counterpart of recordCompletion.
func recordInterruption(today string, stats []model.CycleStat) []model.CycleStat {
	out := make([]model.CycleStat, len(stats))
	copy(out, stats)
	for i := range out {
		if out[i].Date == today {
			out[i].Interrupted++
			return out
		}
	}
	return append(out, model.CycleStat{
		Date:            today,
		Completed:       0,
		Interrupted:     1,
		EmergencyAccess: map[string]int{},
	})
}

// recordEmergencyAccess counts one pass-through for site on today's record.
func recordEmergencyAccess(today, site string, stats []model.CycleStat) []model.CycleStat {
	out := make([]model.CycleStat, len(stats))
	copy(out, stats)
	for i := range out {
		if out[i].Date != today {
			continue
		}
		access := make(map[string]int, len(out[i].EmergencyAccess)+1)
		for k, v := range out[i].EmergencyAccess {
			access[k] = v
		}
		access[site]++
		out[i].EmergencyAccess = access
		return out
	}
	return append(out, model.CycleStat{
		Date:            today,
		EmergencyAccess: map[string]int{site: 1},
	})
}

// plantFor builds the plant appended for one completed (alive) or abandoned
// (withered) session. Ids are time-based; a same-millisecond neighbor in the
// garden bumps the id until it is unique.
func plantFor(nowMillis int64, today, status string, garden []model.GardenPlant) model.GardenPlant {
	id := nowMillis
	for taken(id, garden) {
		id++
	}
	return model.GardenPlant{
		ID:     id,
		Type:   model.PlantSapling,
		Date:   today,
		Status: status,
	}
}

func taken(id int64, garden []model.GardenPlant) bool {
	for i := range garden {
		if garden[i].ID == id {
			return true
		}
	}
	return false
}
