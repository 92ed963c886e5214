package equipment

import (
	"time"

	"equiprental/model"
	"equiprental/service/pricing"

	"github.com/shopspring/decimal"
)

// EquipmentReq is the create/update payload. Prices are validated by the
// catalog service; AvailableQuantity defaults to TotalQuantity.
type EquipmentReq struct {
	Name              string              `json:"name" validate:"required,max=200"`
	Brand             string              `json:"brand" validate:"max=100"`
	Model             string              `json:"model" validate:"max=100"`
	CategoryID        int64               `json:"category_id" validate:"required,gt=0"`
	SerialNumber      *string             `json:"serial_number" validate:"omitempty,max=100"`
	DailyPrice        decimal.Decimal     `json:"daily_price"`
	WeeklyPrice       decimal.NullDecimal `json:"weekly_price"`
	MonthlyPrice      decimal.NullDecimal `json:"monthly_price"`
	TotalQuantity     int                 `json:"total_quantity" validate:"required,min=1"`
	AvailableQuantity *int                `json:"available_quantity" validate:"omitempty,min=0"`
	State             string              `json:"state" validate:"omitempty,oneof=available rented maintenance inactive"`
	TechnicalSpecs    map[string]string   `json:"technical_specs"`
	PrimaryImage      string              `json:"primary_image" validate:"omitempty,max=500"`
	AdditionalImages  []string            `json:"additional_images"`
	Description       string              `json:"description"`
	Notes             string              `json:"notes"`
}

func (r EquipmentReq) toModel(id int64) *model.Equipment {
	avail := r.TotalQuantity
	if r.AvailableQuantity != nil {
		avail = *r.AvailableQuantity
	}
	return &model.Equipment{
		ID:                id,
		Name:              r.Name,
		Brand:             r.Brand,
		Model:             r.Model,
		CategoryID:        r.CategoryID,
		SerialNumber:      r.SerialNumber,
		DailyPrice:        r.DailyPrice,
		WeeklyPrice:       r.WeeklyPrice,
		MonthlyPrice:      r.MonthlyPrice,
		TotalQuantity:     r.TotalQuantity,
		AvailableQuantity: avail,
		State:             model.EquipmentState(r.State),
		TechnicalSpecs:    r.TechnicalSpecs,
		PrimaryImage:      r.PrimaryImage,
		AdditionalImages:  r.AdditionalImages,
		Description:       r.Description,
		Notes:             r.Notes,
	}
}

type CategoryReq struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type PriceReq struct {
	Modality string `json:"modality" validate:"required"`
	Period   int    `json:"period"`
	Quantity int    `json:"quantity"`
}

type PriceResp struct {
	pricing.Line
	UnitFormatted  string `json:"unit_value_formatted"`
	TotalFormatted string `json:"total_value_formatted"`
}

type EquipmentResp struct {
	ID                    int64                `json:"id"`
	Name                  string               `json:"name"`
	Brand                 string               `json:"brand"`
	Model                 string               `json:"model"`
	CategoryID            int64                `json:"category_id"`
	Category              *model.Category      `json:"category,omitempty"`
	SerialNumber          *string              `json:"serial_number,omitempty"`
	DailyPrice            decimal.Decimal      `json:"daily_price"`
	DailyPriceFormatted   string               `json:"daily_price_formatted"`
	WeeklyPrice           decimal.NullDecimal  `json:"weekly_price"`
	WeeklyPriceFormatted  string               `json:"weekly_price_formatted,omitempty"`
	MonthlyPrice          decimal.NullDecimal  `json:"monthly_price"`
	MonthlyPriceFormatted string               `json:"monthly_price_formatted,omitempty"`
	TotalQuantity         int                  `json:"total_quantity"`
	AvailableQuantity     int                  `json:"available_quantity"`
	State                 model.EquipmentState `json:"state"`
	Available             bool                 `json:"available"`
	TechnicalSpecs        map[string]string    `json:"technical_specs"`
	PrimaryImage          string               `json:"primary_image"`
	AdditionalImages      []string             `json:"additional_images"`
	Description           string               `json:"description"`
	Notes                 string               `json:"notes"`
	RegisteredAt          time.Time            `json:"registered_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

func formatNull(d decimal.NullDecimal, locale string) string {
	if !d.Valid {
		return ""
	}
	return pricing.Format(d.Decimal, locale)
}

func toResp(e *model.Equipment, locale string) EquipmentResp {
	return EquipmentResp{
		ID:                    e.ID,
		Name:                  e.Name,
		Brand:                 e.Brand,
		Model:                 e.Model,
		CategoryID:            e.CategoryID,
		Category:              e.Category,
		SerialNumber:          e.SerialNumber,
		DailyPrice:            e.DailyPrice,
		DailyPriceFormatted:   pricing.Format(e.DailyPrice, locale),
		WeeklyPrice:           e.WeeklyPrice,
		WeeklyPriceFormatted:  formatNull(e.WeeklyPrice, locale),
		MonthlyPrice:          e.MonthlyPrice,
		MonthlyPriceFormatted: formatNull(e.MonthlyPrice, locale),
		TotalQuantity:         e.TotalQuantity,
		AvailableQuantity:     e.AvailableQuantity,
		State:                 e.State,
		Available:             e.Available(),
		TechnicalSpecs:        e.TechnicalSpecs,
		PrimaryImage:          e.PrimaryImage,
		AdditionalImages:      e.AdditionalImages,
		Description:           e.Description,
		Notes:                 e.Notes,
		RegisteredAt:          e.RegisteredAt,
		UpdatedAt:             e.UpdatedAt,
	}
}
