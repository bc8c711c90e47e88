package response

import (
	"time"

	"escrowbook/internal/domain/offering"
	"escrowbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type OfferingResponse struct {
	ID          uuid.UUID `json:"id"`
	ProviderID  uuid.UUID `json:"providerId"`
	Title       string    `json:"title"`
	DurationMin int32     `json:"durationMin"`
	BufferMin   int32     `json:"bufferMin"`
	PriceCents  int64     `json:"priceCents"`
	FeeBps      int32     `json:"feeBps"`
	Timezone    string    `json:"timezone"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func FromOfferingEntity(off *offering.Offering) *OfferingResponse {
	return &OfferingResponse{
		ID:          off.ID(),
		ProviderID:  off.ProviderID(),
		Title:       off.Title(),
		DurationMin: int32(off.Duration().Minutes()),
		BufferMin:   int32(off.Buffer().Minutes()),
		PriceCents:  off.PriceCents(),
		FeeBps:      off.FeeBps(),
		Timezone:    off.Timezone(),
		CreatedAt:   off.CreatedAt(),
		UpdatedAt:   off.UpdatedAt(),
	}
}

func FromOfferingView(rm *queries.OfferingView) *OfferingResponse {
	return &OfferingResponse{
		ID:          rm.ID,
		ProviderID:  rm.ProviderID,
		Title:       rm.Title,
		DurationMin: rm.DurationMin,
		BufferMin:   rm.BufferMin,
		PriceCents:  rm.PriceCents,
		FeeBps:      rm.FeeBps,
		Timezone:    rm.Timezone,
		CreatedAt:   rm.CreatedAt,
		UpdatedAt:   rm.UpdatedAt,
	}
}
