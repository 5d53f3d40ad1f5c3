package db

import (
	"cart_ledger/models"
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Accounts

func (r *Repo) CreateAccount(ctx context.Context, a *models.Account) error {
	if err := r.DB.WithContext(ctx).Create(a).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *Repo) TouchAccountLogin(ctx context.Context, accountID uint) error {
	now := time.Now().UTC()
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"last_login_at": now,
			"last_seen_at":  now,
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
		}).Error
}

func (r *Repo) TouchAccountSeen(ctx context.Context, accountID uint) error {
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("last_seen_at", time.Now().UTC()).Error
}

// 按 ID 查
func (r *Repo) FindAccountByID(ctx context.Context, id uint) (*models.Account, error) {
	var a models.Account
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// 大小写不敏感，兼容旧库里的大写账号
func (r *Repo) FindAccountByHandle(ctx context.Context, handle string) (*models.Account, error) {
	var a models.Account
	if err := r.DB.WithContext(ctx).Where("LOWER(handle) = ?", strings.ToLower(handle)).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) UpdatePasswordHash(ctx context.Context, accountID uint, hash string) error {
	res := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) SetAccountAdmin(ctx context.Context, accountID uint, isAdmin bool) error {
	return r.DB.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("is_admin", isAdmin).Error
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Account{}).
		Where("is_admin = ?", true).
		Count(&n).Error
	return n, err
}

// 列表（分页 + 关键词，匹配 handle/显示名）
type ListAccountsResult struct {
	Accounts []models.Account `json:"accounts"`
	Total    int64            `json:"total"`
}

func (r *Repo) ListAccounts(ctx context.Context, q string, page, size int) (ListAccountsResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Account{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(handle) LIKE ? OR LOWER(display_name) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListAccountsResult{}, err
	}

	var accounts []models.Account
	if err := tx.
		Order("handle ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&accounts).Error; err != nil {
		return ListAccountsResult{}, err
	}
	return ListAccountsResult{Accounts: accounts, Total: total}, nil
}

// AllAccounts 用于凭据迁移，按 id 顺序返回全部账号
func (r *Repo) AllAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
