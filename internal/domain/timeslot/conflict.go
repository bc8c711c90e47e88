package timeslot

// FirstConflict returns the first blocked interval overlapping the candidate.
// Blocked intervals are expected to already include any idle buffers.
func FirstConflict(candidate Interval, blocked []Interval) (Interval, bool) {
	for _, b := range Merge(blocked) {
		if candidate.Overlaps(b) {
			return b, true
		}
	}
	return Interval{}, false
}

// Fits reports whether the candidate lies fully inside one of the free
// windows and overlaps none of the blocked intervals. This is the shared
// check behind both slot enumeration and the commit-time recheck.
func Fits(candidate Interval, windows, blocked []Interval) bool {
	contained := false
	for _, w := range Merge(windows) {
		if w.Contains(candidate) {
			contained = true
			break
		}
	}
	if !contained {
		return false
	}
	_, conflict := FirstConflict(candidate, blocked)
	return !conflict
}
