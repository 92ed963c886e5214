package reservation

import (
	"equiprental/model"
	"equiprental/service/pricing"
)

type RejectReq struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type ReservationItemResp struct {
	model.ReservationItem
	UnitFormatted  string `json:"unit_value_formatted"`
	TotalFormatted string `json:"total_value_formatted"`
}

type ReservationResp struct {
	*model.Reservation
	Items          []ReservationItemResp `json:"items"`
	TotalFormatted string                `json:"total_value_formatted"`
}

type ApproveResp struct {
	Reservation ReservationResp       `json:"reservation"`
	Movements   []model.StockMovement `json:"movements"`
}

// ToResp attaches formatted money for the caller's locale.
func ToResp(r *model.Reservation, locale string) ReservationResp {
	items := make([]ReservationItemResp, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ReservationItemResp{
			ReservationItem: it,
			UnitFormatted:   pricing.Format(it.UnitValue, locale),
			TotalFormatted:  pricing.Format(it.TotalValue, locale),
		})
	}
	return ReservationResp{Reservation: r, Items: items, TotalFormatted: pricing.Format(r.TotalValue, locale)}
}
