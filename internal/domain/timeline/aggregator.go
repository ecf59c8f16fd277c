package timeline

import "sort"

// Aggregate merges the per-subsystem collections into day groups, most
// recent day first. Events whose date cannot be normalized are dropped
// rather than guessed into a group; within a day, timed events sort
// latest first and untimed events sink to the end of the group.
//
// Aggregate is a pure function over its input and never mutates the
// collections.
func Aggregate(c Collections) *Timeline {
	var events []Event
	add := func(e Event) {
		if e.Date == "" {
			return
		}
		events = append(events, e)
	}

	for _, v := range c.Visits {
		add(eventFromVisit(v))
	}
	for _, s := range c.Sessions {
		add(eventFromSession(s))
	}
	for _, r := range c.LabResults {
		add(eventFromLabResult(r))
	}
	for _, ir := range c.Imaging {
		add(eventFromImaging(ir))
	}
	for _, rx := range c.Prescriptions {
		add(eventFromPrescription(rx))
	}
	for _, r := range c.Vitals {
		add(eventFromVitals(r))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date > events[j].Date
	})

	tl := &Timeline{Groups: []Group{}, Total: len(events)}
	for _, e := range events {
		if n := len(tl.Groups); n == 0 || tl.Groups[n-1].Date != e.Date {
			tl.Groups = append(tl.Groups, Group{Date: e.Date})
		}
		g := &tl.Groups[len(tl.Groups)-1]
		g.Events = append(g.Events, e)
	}

	for i := range tl.Groups {
		sortWithinDay(tl.Groups[i].Events)
	}
	return tl
}

// sortWithinDay orders one day's events latest time first. Events without
// a time component keep their relative source order after all timed ones.
func sortWithinDay(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Time, events[j].Time
		if a == "" || b == "" {
			return b == "" && a != ""
		}
		return a > b
	})
}
