package model

type PurchaseStatus string

const (
	PurchaseCompleted PurchaseStatus = "COMPLETED"
	PurchaseRefunded  PurchaseStatus = "REFUNDED"
)

// Purchase is an append-only ledger row per fulfilled payment line. Amounts
// are in minor currency units. CourseName/CoursePrice snapshot the course at
// purchase time; the live course row may change later.
// swagger:model Purchase
type Purchase struct {
	BaseModel
	UserID           uint           `gorm:"not null;index" json:"userId"`
	CourseID         uint           `gorm:"not null;index" json:"courseId"`
	Amount           int64          `gorm:"not null" json:"amount"`
	PlatformFee      int64          `gorm:"not null" json:"platformFee"`
	InstructorEarn   int64          `gorm:"not null" json:"instructorEarning"`
	Status           PurchaseStatus `gorm:"size:20;default:'COMPLETED'" json:"status"`
	PaymentSessionID string         `gorm:"size:255;index" json:"paymentSessionId"`
	PaymentIntentID  string         `gorm:"size:255" json:"paymentIntentId"`
	CourseName       string         `gorm:"size:200" json:"courseName"`
	CoursePrice      float64        `json:"coursePrice"`
}

func (Purchase) TableName() string {
	return "purchases"
}
