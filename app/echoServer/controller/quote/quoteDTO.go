package quote

import (
	"equiprental/model"
	"equiprental/service/pricing"
)

type CreateQuoteReq struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// AddItemReq leaves quantity and period range checks to the quote engine so
// they surface as INVALID_QUANTITY / INVALID_PERIOD.
type AddItemReq struct {
	EquipmentID int64  `json:"equipment_id" validate:"required,gt=0"`
	Quantity    int    `json:"quantity"`
	Modality    string `json:"modality" validate:"required"`
	Period      int    `json:"period"`
	UsageDate   string `json:"usage_date" validate:"required,datetime=2006-01-02"`
}

type CreateReservationReq struct {
	UsageDate     string `json:"usage_date" validate:"omitempty,datetime=2006-01-02"`
	EventLocation string `json:"event_location" validate:"required,max=255"`
	Notes         string `json:"notes" validate:"max=2000"`
}

type QuoteItemResp struct {
	model.QuoteItem
	UnitFormatted  string `json:"unit_value_formatted"`
	TotalFormatted string `json:"total_value_formatted"`
}

type QuoteResp struct {
	*model.Quote
	Items          []QuoteItemResp `json:"items"`
	TotalFormatted string          `json:"total_value_formatted"`
}

func toResp(q *model.Quote, locale string) QuoteResp {
	items := make([]QuoteItemResp, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, QuoteItemResp{
			QuoteItem:      it,
			UnitFormatted:  pricing.Format(it.UnitValue, locale),
			TotalFormatted: pricing.Format(it.TotalValue, locale),
		})
	}
	return QuoteResp{Quote: q, Items: items, TotalFormatted: pricing.Format(q.TotalValue, locale)}
}
