package response

import (
	"time"

	"escrowbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type MonthAvailabilityResponse struct {
	OfferingID uuid.UUID           `json:"offeringId"`
	Year       int                 `json:"year"`
	Month      int                 `json:"month"`
	Timezone   string              `json:"timezone"`
	Days       []DayRollupResponse `json:"days"`
}

type DayRollupResponse struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	SlotCount int    `json:"slotCount"`
	Reason    string `json:"reason,omitempty"`
}

type DayAvailabilityResponse struct {
	OfferingID uuid.UUID      `json:"offeringId"`
	Date       string         `json:"date"`
	Timezone   string         `json:"timezone"`
	Slots      []SlotResponse `json:"slots"`
}

type SlotResponse struct {
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
}

func FromMonthAvailability(rm *queries.MonthAvailability) *MonthAvailabilityResponse {
	days := make([]DayRollupResponse, len(rm.Days))
	for i, d := range rm.Days {
		days[i] = DayRollupResponse{
			Date:      d.Date,
			Available: d.Available,
			SlotCount: d.SlotCount,
			Reason:    d.Reason,
		}
	}
	return &MonthAvailabilityResponse{
		OfferingID: rm.OfferingID,
		Year:       rm.Year,
		Month:      int(rm.Month),
		Timezone:   rm.Timezone,
		Days:       days,
	}
}

func FromDayAvailability(rm *queries.DayAvailability) *DayAvailabilityResponse {
	slots := make([]SlotResponse, len(rm.Slots))
	for i, s := range rm.Slots {
		slots[i] = SlotResponse{
			StartAt:   s.StartAt,
			EndAt:     s.EndAt,
			Available: s.Available,
			Reason:    s.Reason,
		}
	}
	return &DayAvailabilityResponse{
		OfferingID: rm.OfferingID,
		Date:       rm.Date,
		Timezone:   rm.Timezone,
		Slots:      slots,
	}
}
