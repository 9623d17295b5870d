// models/loan.go
package models

import "time"

const LoanTable = "loans"

// Loan lifecycle. Legal transitions:
// reserved -> collected -> returned, or reserved -> cancelled.
const (
	LoanStatusReserved  = "reserved"
	LoanStatusCollected = "collected"
	LoanStatusReturned  = "returned"
	LoanStatusCancelled = "cancelled"
)

// ActiveLoanStatuses are the states that keep a device occupied.
var ActiveLoanStatuses = []string{LoanStatusReserved, LoanStatusCollected}

// Loan is append-only: rows are created by allocation and mutated only by
// the staff transitions, never deleted. A partial unique index (see
// db.Migrate) guarantees at most one active loan per device.
type Loan struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   string `gorm:"type:uuid;index;not null" json:"userId"`
	DeviceID string `gorm:"type:uuid;index;not null" json:"deviceId"`
	Status   string `gorm:"size:20;index;not null;default:'reserved'" json:"status"`

	ReservedAt time.Time `gorm:"index;not null" json:"reservedAt"`
	DueDate    time.Time `gorm:"not null" json:"dueDate"`

	CollectedAt *time.Time `json:"collectedAt,omitempty"`
	ReturnedAt  *time.Time `json:"returnedAt,omitempty"`

	CollectedBy *string `gorm:"type:uuid" json:"collectedBy,omitempty"`
	ReturnedBy  *string `gorm:"type:uuid" json:"returnedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }

func (l *Loan) Active() bool {
	return l.Status == LoanStatusReserved || l.Status == LoanStatusCollected
}
