// db/repo_asset_list.go
package db

import (
	"cart_ledger/models"
	"context"
	"time"
)

const MaxHistory = 50

// AssetRow 全量列表的一行
type AssetRow struct {
	Number        int                `json:"number"`
	Cart          string             `json:"cart"`
	Status        models.AssetStatus `json:"status"`
	BorrowerName  *string            `json:"borrowerName"`
	BorrowerGroup *string            `json:"borrowerGroup"`
	LoanedBy      *string            `json:"loanedBy"`
	LoanedAt      *time.Time         `json:"loanedAt"`
}

type AvailableRow struct {
	Number int    `json:"number"`
	Cart   string `json:"cart"`
}

type LoanedRow struct {
	Number        int    `json:"number"`
	Cart          string `json:"cart"`
	BorrowerName  string `json:"borrowerName"`
	BorrowerGroup string `json:"borrowerGroup"`
}

type Stats struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Loaned      int64 `json:"loaned"`
	Maintenance int64 `json:"maintenance"`
}

func (r *Repo) ListAssets(ctx context.Context) ([]AssetRow, error) {
	rows := []AssetRow{}
	err := r.DB.WithContext(ctx).
		Model(&models.Asset{}).
		Select("number, cart, status, borrower_name, borrower_group, loaned_by, loaned_at").
		Order("cart, number").
		Scan(&rows).Error
	return rows, err
}

func (r *Repo) ListAvailableAssets(ctx context.Context) ([]AvailableRow, error) {
	rows := []AvailableRow{}
	err := r.DB.WithContext(ctx).
		Model(&models.Asset{}).
		Select("number, cart").
		Where("status = ?", models.StatusAvailable).
		Order("cart, number").
		Scan(&rows).Error
	return rows, err
}

func (r *Repo) ListLoanedAssets(ctx context.Context) ([]LoanedRow, error) {
	rows := []LoanedRow{}
	err := r.DB.WithContext(ctx).
		Model(&models.Asset{}).
		Select("number, cart, COALESCE(borrower_name, '') AS borrower_name, COALESCE(borrower_group, '') AS borrower_group").
		Where("status = ?", models.StatusLoaned).
		Order("cart, number").
		Scan(&rows).Error
	return rows, err
}

// ListHistory 最新在前；limit 超出范围时取 MaxHistory
func (r *Repo) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > MaxHistory {
		limit = MaxHistory
	}
	entries := []models.HistoryEntry{}
	err := r.DB.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// ComputeStats 按状态聚合，不做冗余存储
func (r *Repo) ComputeStats(ctx context.Context) (Stats, error) {
	var counts []struct {
		Status models.AssetStatus
		N      int64
	}
	if err := r.DB.WithContext(ctx).
		Model(&models.Asset{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&counts).Error; err != nil {
		return Stats{}, err
	}

	var s Stats
	for _, c := range counts {
		s.Total += c.N
		switch c.Status {
		case models.StatusAvailable:
			s.Available = c.N
		case models.StatusLoaned:
			s.Loaned = c.N
		case models.StatusMaintenance:
			s.Maintenance = c.N
		}
	}
	return s, nil
}
