// models/asset.go
package models

import "time"

const AssetTable = "cl_assets"
const HistoryTable = "cl_history"

type AssetStatus string

const (
	StatusAvailable   AssetStatus = "available"
	StatusLoaned      AssetStatus = "loaned"
	StatusMaintenance AssetStatus = "maintenance"
)

type HistoryAction string

const (
	ActionLoan   HistoryAction = "loan"
	ActionReturn HistoryAction = "return"
)

// Asset 一台设备，(number, cart) 唯一；借出字段仅在 loaned 时非空
type Asset struct {
	ID     uint        `gorm:"primaryKey" json:"id"`
	Number int         `gorm:"not null;uniqueIndex:idx_asset_number_cart" json:"number"`
	Cart   string      `gorm:"size:64;not null;uniqueIndex:idx_asset_number_cart" json:"cart"`
	Status AssetStatus `gorm:"size:20;not null;default:'available';index" json:"status"`

	BorrowerName  *string    `gorm:"size:255" json:"borrowerName"`
	BorrowerGroup *string    `gorm:"size:64" json:"borrowerGroup"`
	LoanedBy      *string    `gorm:"size:255" json:"loanedBy"` // 借出操作的账号名
	LoanedAt      *time.Time `json:"loanedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoryEntry 借还流水，只追加
type HistoryEntry struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	AssetNumber   int           `gorm:"not null;index" json:"assetNumber"`
	Cart          string        `gorm:"size:64;not null" json:"cart"`
	BorrowerName  string        `gorm:"size:255" json:"borrowerName"`
	BorrowerGroup string        `gorm:"size:64" json:"borrowerGroup"`
	ActedBy       string        `gorm:"size:255" json:"actedBy"`
	LoanedAt      *time.Time    `json:"loanedAt,omitempty"`
	ReturnedAt    *time.Time    `json:"returnedAt,omitempty"`
	Action        HistoryAction `gorm:"size:20;not null" json:"action"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (Asset) TableName() string        { return AssetTable }
func (HistoryEntry) TableName() string { return HistoryTable }
