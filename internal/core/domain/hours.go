package domain

// ClockedHours holds rounded hour totals for the three calendar windows.
// A fresh value is built per query.
type ClockedHours struct {
	Today        int64 `json:"today"`
	CurrentWeek  int64 `json:"currentWeek"`
	CurrentMonth int64 `json:"currentMonth"`
}

// SumHours buckets each record's rounded hours into the windows it falls in.
// Rounding happens per record, before summation.
func SumHours(records []ShiftRecord, ws Windows) ClockedHours {
	var out ClockedHours
	for _, r := range records {
		h := r.RoundedHours()
		if ws.Day.Contains(r.Start) {
			out.Today += h
		}
		if ws.Week.Contains(r.Start) {
			out.CurrentWeek += h
		}
		if ws.Month.Contains(r.Start) {
			out.CurrentMonth += h
		}
	}
	return out
}
