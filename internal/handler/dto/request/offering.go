package request

import (
	"time"

	"escrowbook/internal/domain/offering"
)

type WindowRequest struct {
	Enabled  bool  `json:"enabled"`
	StartMin int16 `json:"start_min"`
	EndMin   int16 `json:"end_min"`
}

type ExceptionRequest struct {
	Date     string `json:"date" binding:"required"`
	Enabled  bool   `json:"enabled"`
	StartMin int16  `json:"start_min"`
	EndMin   int16  `json:"end_min"`
	Reason   string `json:"reason,omitempty"`
}

type CreateOfferingRequest struct {
	Title       string             `json:"title" binding:"required"`
	DurationMin int32              `json:"duration_min" binding:"required,gt=0"`
	BufferMin   int32              `json:"buffer_min" binding:"gte=0"`
	PriceCents  int64              `json:"price_cents" binding:"gte=0"`
	FeeBps      int32              `json:"fee_bps" binding:"gte=0,lte=10000"`
	Timezone    string             `json:"timezone" binding:"required"`
	Schedule    [7]WindowRequest   `json:"schedule"`
	Exceptions  []ExceptionRequest `json:"exceptions,omitempty"`
}

type ReplaceScheduleRequest struct {
	Schedule   [7]WindowRequest   `json:"schedule"`
	Exceptions []ExceptionRequest `json:"exceptions,omitempty"`
}

func (r CreateOfferingRequest) Duration() time.Duration {
	return time.Duration(r.DurationMin) * time.Minute
}

func (r CreateOfferingRequest) Buffer() time.Duration {
	return time.Duration(r.BufferMin) * time.Minute
}

func ToWeeklySchedule(windows [7]WindowRequest) offering.WeeklySchedule {
	var schedule offering.WeeklySchedule
	for i, w := range windows {
		schedule[i] = offering.Window{Enabled: w.Enabled, StartMin: w.StartMin, EndMin: w.EndMin}
	}
	return schedule
}

func ToExceptions(exceptions []ExceptionRequest) []offering.Exception {
	out := make([]offering.Exception, len(exceptions))
	for i, ex := range exceptions {
		out[i] = offering.Exception{
			Date:     ex.Date,
			Enabled:  ex.Enabled,
			StartMin: ex.StartMin,
			EndMin:   ex.EndMin,
			Reason:   ex.Reason,
		}
	}
	return out
}
