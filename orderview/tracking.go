package orderview

import (
	"sort"
	"time"

	"go-storefront/models"
)

// StepState is how a timeline entry is rendered.
type StepState string

const (
	StepCompleted StepState = "completed"
	StepCurrent   StepState = "current"
	StepUpcoming  StepState = "upcoming"
)

// NoTrackingMessage is shown when an order has no tracking events yet.
const NoTrackingMessage = "No tracking information available yet"

// InvalidDate is displayed for events whose timestamp is missing or malformed.
const InvalidDate = "Invalid Date"

const displayTimeLayout = "Jan 2, 2006 3:04 PM"

// TimelineEntry is one rendered step of an order's tracking timeline.
type TimelineEntry struct {
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	Timestamp   string    `json:"timestamp,omitempty"`
	State       StepState `json:"state"`
}

// Timeline is the projection of a tracking log. When Placeholder is set,
// Entries is empty.
type Timeline struct {
	Entries     []TimelineEntry `json:"entries"`
	Placeholder string          `json:"placeholder,omitempty"`
}

// Current returns the entry marked current, if any.
func (t Timeline) Current() (TimelineEntry, bool) {
	for _, e := range t.Entries {
		if e.State == StepCurrent {
			return e, true
		}
	}
	return TimelineEntry{}, false
}

// DeriveTimeline projects recorded tracking events onto the canonical
// step sequence. Recorded events come first in chronological order, all
// completed. Unless a Delivered event was recorded, the canonical steps not
// yet seen follow: the first one current, the rest upcoming.
func DeriveTimeline(events []models.TrackingEvent) Timeline {
	if len(events) == 0 {
		return Timeline{Entries: []TimelineEntry{}, Placeholder: NoTrackingMessage}
	}

	sorted := make([]models.TrackingEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i].Timestamp).Before(sortKey(sorted[j].Timestamp))
	})

	entries := make([]TimelineEntry, 0, len(sorted)+len(models.CanonicalSteps))
	seen := make(map[string]bool, len(sorted))
	for _, ev := range sorted {
		entries = append(entries, TimelineEntry{
			Status:      ev.Status,
			Description: ev.Description,
			Timestamp:   FormatEventTime(ev.Timestamp),
			State:       StepCompleted,
		})
		seen[ev.Status] = true
	}

	if seen[models.StepDelivered] {
		return Timeline{Entries: entries}
	}

	current := false
	for _, step := range models.CanonicalSteps {
		if seen[step] {
			continue
		}
		state := StepUpcoming
		if !current {
			state = StepCurrent
			current = true
		}
		entries = append(entries, TimelineEntry{Status: step, State: state})
	}
	return Timeline{Entries: entries}
}

// FormatEventTime renders a tracking timestamp for display.
func FormatEventTime(ts models.Timestamp) string {
	if ts.IsZero() {
		return InvalidDate
	}
	return ts.UTC().Format(displayTimeLayout)
}

var epoch = time.Unix(0, 0).UTC()

func sortKey(ts models.Timestamp) time.Time {
	if ts.IsZero() {
		return epoch
	}
	return ts.Time
}
