package models

// PaymentStatus is the payment state of a paper as stored in the papers
// table.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Paper is the payable record. The papers table is owned by the submission
// workflow; this service only ever writes payment_status.
type Paper struct {
	ID            string        `gorm:"column:id;primaryKey"`
	PaymentStatus PaymentStatus `gorm:"column:payment_status;type:varchar(20);not null;default:unpaid"`
}

func (Paper) TableName() string { return "papers" }
