package db

import (
	"context"
	"errors"
	"time"

	"cart_ledger/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Assets
func (r *Repo) CreateAsset(ctx context.Context, a *models.Asset) error {
	if a.Status == "" {
		a.Status = models.StatusAvailable
	}
	if err := r.DB.WithContext(ctx).Create(a).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *Repo) FindAsset(ctx context.Context, number int, cart string) (*models.Asset, error) {
	var a models.Asset
	if err := r.DB.WithContext(ctx).
		Where("number = ? AND cart = ?", number, cart).
		First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return &a, nil
}

// 锁住 (number, cart) 对应的行；sqlite 方言会忽略 FOR UPDATE，由单连接串行保证
func lockAsset(tx *gorm.DB, number int, cart string) (*models.Asset, error) {
	var a models.Asset
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("number = ? AND cart = ?", number, cart).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type LoanInput struct {
	Number        int
	Cart          string
	BorrowerName  string
	BorrowerGroup string
	ActedBy       string

	CreateIfMissing bool // 未登记的设备在借出时隐式创建
}

// LoanAsset 借出：锁住 asset → 校验状态 → 占用（或隐式创建）→ 追加流水，整体一个事务
func (r *Repo) LoanAsset(ctx context.Context, in LoanInput) (*models.HistoryEntry, error) {
	var entry *models.HistoryEntry
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		a, err := lockAsset(tx, in.Number, in.Cart)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if !in.CreateIfMissing {
				return ErrAssetNotFound
			}
			// 不存在：直接以 loaned 状态创建
			created := &models.Asset{
				Number:        in.Number,
				Cart:          in.Cart,
				Status:        models.StatusLoaned,
				BorrowerName:  &in.BorrowerName,
				BorrowerGroup: &in.BorrowerGroup,
				LoanedBy:      &in.ActedBy,
				LoanedAt:      &now,
			}
			if err := tx.Create(created).Error; err != nil {
				// 并发下另一事务抢先创建了同一台设备
				if IsUniqueViolation(err) {
					return ErrAlreadyLoaned
				}
				return err
			}
		case err != nil:
			return err
		case a.Status == models.StatusLoaned:
			return ErrAlreadyLoaned
		case a.Status == models.StatusMaintenance:
			return ErrUnderMaintenance
		default:
			res := tx.Model(&models.Asset{}).
				Where("id = ? AND status = ?", a.ID, models.StatusAvailable).
				Updates(map[string]any{
					"status":         models.StatusLoaned,
					"borrower_name":  in.BorrowerName,
					"borrower_group": in.BorrowerGroup,
					"loaned_by":      in.ActedBy,
					"loaned_at":      now,
					"updated_at":     now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrAlreadyLoaned
			}
		}

		e := &models.HistoryEntry{
			AssetNumber:   in.Number,
			Cart:          in.Cart,
			BorrowerName:  in.BorrowerName,
			BorrowerGroup: in.BorrowerGroup,
			ActedBy:       in.ActedBy,
			LoanedAt:      &now,
			Action:        models.ActionLoan,
		}
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ReturnAsset 归还：锁住 asset → 取出借用人 → 清空借出字段 → 追加流水
func (r *Repo) ReturnAsset(ctx context.Context, number int, cart string) (*models.HistoryEntry, error) {
	var entry *models.HistoryEntry
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		a, err := lockAsset(tx, number, cart)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssetNotFound
			}
			return err
		}
		switch a.Status {
		case models.StatusAvailable:
			return ErrAlreadyAvailable
		case models.StatusMaintenance:
			return ErrUnderMaintenance
		}

		res := tx.Model(&models.Asset{}).
			Where("id = ? AND status = ?", a.ID, models.StatusLoaned).
			Updates(map[string]any{
				"status":         models.StatusAvailable,
				"borrower_name":  nil,
				"borrower_group": nil,
				"loaned_by":      nil,
				"loaned_at":      nil,
				"updated_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyAvailable
		}

		e := &models.HistoryEntry{
			AssetNumber:   a.Number,
			Cart:          a.Cart,
			BorrowerName:  deref(a.BorrowerName),
			BorrowerGroup: deref(a.BorrowerGroup),
			ActedBy:       deref(a.LoanedBy),
			ReturnedAt:    &now,
			Action:        models.ActionReturn,
		}
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SetMaintenance 切换维修状态：available <-> maintenance；借出中的设备不能进入维修
func (r *Repo) SetMaintenance(ctx context.Context, number int, cart string, on bool) (*models.Asset, error) {
	var out models.Asset
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := lockAsset(tx, number, cart)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssetNotFound
			}
			return err
		}

		from, to := models.StatusAvailable, models.StatusMaintenance
		if !on {
			from, to = models.StatusMaintenance, models.StatusAvailable
		}
		if a.Status == models.StatusLoaned {
			return ErrAlreadyLoaned
		}
		if a.Status == to {
			// 已处于目标状态
			out = *a
			return nil
		}

		res := tx.Model(&models.Asset{}).
			Where("id = ? AND status = ?", a.ID, from).
			Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyLoaned
		}
		return tx.First(&out, a.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
