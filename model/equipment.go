// model/equipment.go
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active" gorm:"not null"`
}

type EquipmentState string

const (
	EquipmentAvailable   EquipmentState = "available"
	EquipmentRented      EquipmentState = "rented"
	EquipmentMaintenance EquipmentState = "maintenance"
	EquipmentInactive    EquipmentState = "inactive"
)

func (s EquipmentState) Valid() bool {
	switch s {
	case EquipmentAvailable, EquipmentRented, EquipmentMaintenance, EquipmentInactive:
		return true
	}
	return false
}

type Equipment struct {
	ID                int64               `json:"id" gorm:"primaryKey"`
	Name              string              `json:"name" gorm:"size:200;not null"`
	Brand             string              `json:"brand" gorm:"size:100"`
	Model             string              `json:"model" gorm:"size:100"`
	CategoryID        int64               `json:"category_id" gorm:"not null;index"`
	Category          *Category           `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	SerialNumber      *string             `json:"serial_number,omitempty" gorm:"size:100;uniqueIndex"`
	DailyPrice        decimal.Decimal     `json:"daily_price" gorm:"type:numeric(12,2);not null"`
	WeeklyPrice       decimal.NullDecimal `json:"weekly_price" gorm:"type:numeric(12,2)"`
	MonthlyPrice      decimal.NullDecimal `json:"monthly_price" gorm:"type:numeric(12,2)"`
	TotalQuantity     int                 `json:"total_quantity" gorm:"not null"`
	AvailableQuantity int                 `json:"available_quantity" gorm:"not null"`
	State             EquipmentState      `json:"state" gorm:"size:20;not null;default:'available';index"`
	TechnicalSpecs    map[string]string   `json:"technical_specs" gorm:"serializer:json"`
	PrimaryImage      string              `json:"primary_image" gorm:"size:500"`
	AdditionalImages  []string            `json:"additional_images" gorm:"serializer:json"`
	Description       string              `json:"description" gorm:"type:text"`
	Notes             string              `json:"notes" gorm:"type:text"`
	RegisteredAt      time.Time           `json:"registered_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func (Equipment) TableName() string { return "equipment" }

// Available is the effective availability for booking; it is always derived.
func (e Equipment) Available() bool {
	return e.AvailableQuantity > 0 && e.State == EquipmentAvailable
}

// Prices returns the per-modality price table of the equipment.
func (e Equipment) Prices() Prices {
	return Prices{Daily: e.DailyPrice, Weekly: e.WeeklyPrice, Monthly: e.MonthlyPrice}
}

func (e Equipment) MarshalJSON() ([]byte, error) {
	type alias Equipment
	return json.Marshal(struct {
		alias
		Available bool `json:"available"`
	}{alias: alias(e), Available: e.Available()})
}

// Prices holds what one unit of equipment costs per billing modality.
// Weekly and monthly are optional.
type Prices struct {
	Daily   decimal.Decimal
	Weekly  decimal.NullDecimal
	Monthly decimal.NullDecimal
}

type Modality string

const (
	ModalityDaily   Modality = "daily"
	ModalityWeekly  Modality = "weekly"
	ModalityMonthly Modality = "monthly"
)

func (m Modality) Valid() bool {
	switch m {
	case ModalityDaily, ModalityWeekly, ModalityMonthly:
		return true
	}
	return false
}
