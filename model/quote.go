// model/quote.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteDraft     QuoteStatus = "draft"
	QuoteFinalized QuoteStatus = "finalized"
	QuoteConverted QuoteStatus = "converted"
)

type Quote struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	OwnerID    int64           `json:"owner_id" gorm:"not null;index"`
	Status     QuoteStatus     `json:"status" gorm:"size:20;not null;default:'draft';index"`
	Items      []QuoteItem     `json:"items" gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	TotalValue decimal.Decimal `json:"total_value" gorm:"type:numeric(12,2);not null;default:0"`
	Notes      string          `json:"notes" gorm:"type:text"`
	Version    int             `json:"version" gorm:"not null;default:0"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Editable reports whether items may still be added or removed.
func (q *Quote) Editable() bool { return q.Status == QuoteDraft }

// Recalculate sets TotalValue to the sum of the item totals.
func (q *Quote) Recalculate() {
	total := decimal.Zero
	for _, it := range q.Items {
		total = total.Add(it.TotalValue)
	}
	q.TotalValue = total
}

// AfterToday reports whether d falls on a calendar day (UTC) later than
// the day of now. Usage dates must pass this.
func AfterToday(d, now time.Time) bool {
	y, m, day := now.UTC().Date()
	tomorrow := time.Date(y, m, day+1, 0, 0, 0, 0, time.UTC)
	return !d.UTC().Before(tomorrow)
}

// Item returns the index of the item with the given id, or -1.
func (q *Quote) Item(itemID int64) int {
	for i := range q.Items {
		if q.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

type QuoteItem struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	QuoteID       int64           `json:"quote_id" gorm:"not null;index"`
	EquipmentID   int64           `json:"equipment_id" gorm:"not null;index"`
	EquipmentName string          `json:"equipment_name" gorm:"size:200"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	Modality      Modality        `json:"modality" gorm:"size:20;not null"`
	Period        int             `json:"period" gorm:"not null"`
	UsageDate     time.Time       `json:"usage_date" gorm:"type:date"`
	UnitValue     decimal.Decimal `json:"unit_value" gorm:"type:numeric(12,2);not null"`
	TotalValue    decimal.Decimal `json:"total_value" gorm:"type:numeric(12,2);not null"`
	CreatedAt     time.Time       `json:"created_at"`
}
