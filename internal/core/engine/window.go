package engine

import (
	"time"

	"sable-ads/internal/core/domain"
)

// WithinWindow reports whether the campaign may spend at the given instant.
// An inactive campaign is never within window. The date bounds are
// inclusive on both sides; the schedule restricts hours to
// [StartHour, EndHour), so EndHour 24 accepts every hour from StartHour to
// the end of the day and there is no wraparound past midnight. A nil
// schedule leaves hours unrestricted. The instant's wall-clock fields are
// used as-is: callers pass an instant already in the campaign's local time.
func WithinWindow(c domain.Campaign, sched *domain.Schedule, at time.Time) bool {
	if !c.Active {
		return false
	}
	if !c.WithinDateWindow(at) {
		return false
	}
	if sched == nil {
		return true
	}
	return sched.Contains(at.Hour())
}
