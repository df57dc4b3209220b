package domain

// Schedule restricts a campaign to hours of the day (dayparting). It
// represents the half-open hour interval [StartHour, EndHour) in the
// campaign's local time. EndHour 24 means end of day, so a 0..24 schedule
// is equivalent to no restriction.
type Schedule struct {
	CampaignID int64
	StartHour  int // 0-23
	EndHour    int // 1-24
}

// Validate checks the hour bounds and ordering.
func (s Schedule) Validate() error {
	if s.StartHour < 0 || s.StartHour > 23 {
		return &FieldError{Field: "start_hour", Reason: "must be in [0,23]"}
	}
	if s.EndHour < 1 || s.EndHour > 24 {
		return &FieldError{Field: "end_hour", Reason: "must be in [1,24]"}
	}
	if s.StartHour >= s.EndHour {
		return &FieldError{Field: "start_hour", Reason: "must be before end_hour"}
	}
	return nil
}

// Contains reports whether the hour of day (0-23) falls inside the
// schedule. There is no wraparound past midnight: hour 0 passes only when
// StartHour is 0.
func (s Schedule) Contains(hour int) bool {
	return hour >= s.StartHour && hour < s.EndHour
}
