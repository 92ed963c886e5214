// model/reservation.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationApproved  ReservationStatus = "approved"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

type ReservationAction string

const (
	ActionApprove  ReservationAction = "approve"
	ActionReject   ReservationAction = "reject"
	ActionActivate ReservationAction = "activate"
	ActionComplete ReservationAction = "complete"
	ActionCancel   ReservationAction = "cancel"
)

// Every (status, action) pair missing here is forbidden.
var reservationTransitions = map[ReservationStatus]map[ReservationAction]ReservationStatus{
	ReservationPending: {
		ActionApprove: ReservationApproved,
		ActionReject:  ReservationRejected,
	},
	ReservationApproved: {
		ActionActivate: ReservationActive,
	},
	ReservationActive: {
		ActionComplete: ReservationCompleted,
		ActionCancel:   ReservationCancelled,
	},
}

// Next returns the status reached by applying a to s.
func (s ReservationStatus) Next(a ReservationAction) (ReservationStatus, bool) {
	next, ok := reservationTransitions[s][a]
	return next, ok
}

// Terminal reports whether no action can leave s.
func (s ReservationStatus) Terminal() bool { return len(reservationTransitions[s]) == 0 }

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationApproved, ReservationRejected,
		ReservationActive, ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}

type Reservation struct {
	ID              int64             `json:"id" gorm:"primaryKey"`
	OwnerID         int64             `json:"owner_id" gorm:"not null;index"`
	QuoteID         int64             `json:"quote_id" gorm:"not null;uniqueIndex"`
	Status          ReservationStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	UsageDate       time.Time         `json:"usage_date" gorm:"type:date;index"`
	EventLocation   string            `json:"event_location" gorm:"size:255"`
	Notes           string            `json:"notes" gorm:"type:text"`
	RejectionReason string            `json:"rejection_reason,omitempty" gorm:"type:text"`
	TotalValue      decimal.Decimal   `json:"total_value" gorm:"type:numeric(12,2);not null"`
	Items           []ReservationItem `json:"items" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
	// decision by staff, set on approve and on reject
	ApprovedBy      *int64            `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time        `json:"approved_at,omitempty"`
	Version         int               `json:"version" gorm:"not null;default:0"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ReservationItem is a snapshot of a quote line taken at conversion time.
type ReservationItem struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	ReservationID int64           `json:"reservation_id" gorm:"not null;index"`
	EquipmentID   int64           `json:"equipment_id" gorm:"not null;index"`
	EquipmentName string          `json:"equipment_name" gorm:"size:200"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	Modality      Modality        `json:"modality" gorm:"size:20;not null"`
	Period        int             `json:"period" gorm:"not null"`
	UsageDate     time.Time       `json:"usage_date" gorm:"type:date"`
	UnitValue     decimal.Decimal `json:"unit_value" gorm:"type:numeric(12,2);not null"`
	TotalValue    decimal.Decimal `json:"total_value" gorm:"type:numeric(12,2);not null"`
}

// StockMovement is one equipment/quantity pair applied to inventory.
type StockMovement struct {
	EquipmentID int64 `json:"equipment_id"`
	Quantity    int   `json:"quantity"`
}

// StockMovements lists the inventory pairs a reservation holds, one per line.
func (r *Reservation) StockMovements() []StockMovement {
	out := make([]StockMovement, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, StockMovement{EquipmentID: it.EquipmentID, Quantity: it.Quantity})
	}
	return out
}
