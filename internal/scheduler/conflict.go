package scheduler

import "sort"

// Occupancy is the part of a booking that matters for conflict detection.
type Occupancy struct {
	BookingID string
	RoomIDs   []string
	Slot      Slot
}

// Conflict describes an existing occupancy that clashes with a candidate.
type Conflict struct {
	WithBookingID string
	RoomIDs       []string
}

// DetectConflicts returns every existing occupancy that shares a room with the
// candidate and overlaps its slot. Results follow the order of existing, and
// an occupancy with the candidate's own booking id is skipped.
func DetectConflicts(existing []Occupancy, candidate Occupancy) []Conflict {
	if len(candidate.RoomIDs) == 0 || len(existing) == 0 {
		return nil
	}

	wanted := make(map[string]struct{}, len(candidate.RoomIDs))
	for _, id := range candidate.RoomIDs {
		wanted[id] = struct{}{}
	}

	var conflicts []Conflict
	for _, occ := range existing {
		if candidate.BookingID != "" && occ.BookingID == candidate.BookingID {
			continue
		}
		shared := sharedRooms(wanted, occ.RoomIDs)
		if len(shared) == 0 {
			continue
		}
		if !occ.Slot.Overlaps(candidate.Slot) {
			continue
		}
		conflicts = append(conflicts, Conflict{WithBookingID: occ.BookingID, RoomIDs: shared})
	}
	return conflicts
}

func sharedRooms(wanted map[string]struct{}, rooms []string) []string {
	var shared []string
	seen := make(map[string]struct{}, len(rooms))
	for _, id := range rooms {
		if _, ok := wanted[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		shared = append(shared, id)
	}
	sort.Strings(shared)
	return shared
}
