package ledger

import (
	"cart_ledger/db"
	"cart_ledger/models"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcrypt ignores input past 72 bytes; reject instead of silently truncating.
const maxSecretLen = 72

// NormalizeHandle is the single form handles are stored, looked up and
// throttled under.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

func (l *Ledger) hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), l.hashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func validSecret(secret string) bool {
	return secret != "" && len(secret) <= maxSecretLen
}

func isBcrypt(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

func callerOf(a *models.Account) Caller {
	return Caller{AccountID: a.ID, Handle: a.Handle, Name: a.DisplayName, IsAdmin: a.IsAdmin}
}

// RegisterAccount stores a new staff account with a bcrypt credential.
// The reserved handle "admin" is always an administrator.
func (l *Ledger) RegisterAccount(ctx context.Context, handle, secret, displayName string, admin bool) (Result, error) {
	handle = NormalizeHandle(handle)
	displayName = strings.TrimSpace(displayName)
	if handle == "" || displayName == "" || !validSecret(secret) {
		return failed(newError(KindInvalidInput, "handle, password (up to %d bytes) and name are required", maxSecretLen))
	}

	h, err := l.hash(secret)
	if err != nil {
		return failed(storageFailure(err))
	}
	a := &models.Account{
		Handle:       handle,
		PasswordHash: h,
		DisplayName:  displayName,
		IsAdmin:      admin || handle == models.AdminHandle,
	}
	if err := l.repo.CreateAccount(ctx, a); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return failed(newError(KindDuplicateAccount, "account %q already exists", handle))
		}
		log.Printf("[ledger] register account %q: %v", handle, err)
		return failed(storageFailure(err))
	}
	return succeeded("account %q created", handle), nil
}

// AuthenticateAccount verifies secret against the stored bcrypt hash. Every
// failure is reported as ErrAuthenticationFailed.
func (l *Ledger) AuthenticateAccount(ctx context.Context, handle, secret string) (Caller, error) {
	a, err := l.repo.FindAccountByHandle(ctx, NormalizeHandle(handle))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[ledger] authenticate %q: %v", handle, err)
			return Caller{}, storageFailure(err)
		}
		_ = bcrypt.CompareHashAndPassword(l.dummyHash, []byte(secret))
		return Caller{}, ErrAuthenticationFailed
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(secret)) != nil {
		return Caller{}, ErrAuthenticationFailed
	}

	if err := l.repo.TouchAccountLogin(ctx, a.ID); err != nil {
		// 不阻塞登录
		log.Printf("[ledger] touch login %d: %v", a.ID, err)
	}
	return callerOf(a), nil
}

// ChangePassword replaces the credential after re-verifying the old one.
func (l *Ledger) ChangePassword(ctx context.Context, handle, oldSecret, newSecret string) (Result, error) {
	if !validSecret(newSecret) {
		return failed(newError(KindInvalidInput, "new password must be 1 to %d bytes", maxSecretLen))
	}
	c, err := l.AuthenticateAccount(ctx, handle, oldSecret)
	if err != nil {
		var le *Error
		errors.As(err, &le)
		return failed(le)
	}
	h, err := l.hash(newSecret)
	if err != nil {
		return failed(storageFailure(err))
	}
	if err := l.repo.UpdatePasswordHash(ctx, c.AccountID, h); err != nil {
		log.Printf("[ledger] change password %q: %v", handle, err)
		return failed(storageFailure(err))
	}
	return succeeded("password changed"), nil
}

// Account returns the public identity for id, or ErrAuthenticationFailed when
// the account no longer exists.
func (l *Ledger) Account(ctx context.Context, id uint) (Caller, error) {
	a, err := l.repo.FindAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Caller{}, ErrAuthenticationFailed
		}
		return Caller{}, storageFailure(err)
	}
	return callerOf(a), nil
}

func (l *Ledger) TouchSeen(ctx context.Context, id uint) error {
	return l.repo.TouchAccountSeen(ctx, id)
}

func (l *Ledger) ListAccounts(ctx context.Context, q string, page, size int) (db.ListAccountsResult, error) {
	res, err := l.repo.ListAccounts(ctx, q, page, size)
	if err != nil {
		return db.ListAccountsResult{}, storageFailure(err)
	}
	return res, nil
}

// EnsureAdmin creates the default "admin" account when no administrator
// exists. An empty secret is replaced by a random one, which is returned so
// the operator can see it once.
func (l *Ledger) EnsureAdmin(ctx context.Context, secret string) (created bool, used string, err error) {
	n, err := l.repo.CountAdmins(ctx)
	if err != nil {
		return false, "", storageFailure(err)
	}
	if n > 0 {
		return false, "", nil
	}

	// 旧库里已有 admin 账号但没有管理员标记
	if a, err := l.repo.FindAccountByHandle(ctx, models.AdminHandle); err == nil {
		if err := l.repo.SetAccountAdmin(ctx, a.ID, true); err != nil {
			return false, "", storageFailure(err)
		}
		return false, "", nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, "", storageFailure(err)
	}

	if secret == "" {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			return false, "", err
		}
		secret = hex.EncodeToString(buf)
	}
	if _, err := l.RegisterAccount(ctx, models.AdminHandle, secret, "Administrator", true); err != nil {
		return false, "", err
	}
	return true, secret, nil
}

type RehashReport struct {
	Rehashed int
	Hashed   int // already bcrypt
	Skipped  int // foreign hash formats that cannot be verified here
}

// RehashLegacyCredentials converts credentials still stored in clear text to
// bcrypt. Values in another hash format are left alone and reported.
func (l *Ledger) RehashLegacyCredentials(ctx context.Context) (RehashReport, error) {
	var rep RehashReport
	accounts, err := l.repo.AllAccounts(ctx)
	if err != nil {
		return rep, storageFailure(err)
	}
	for _, a := range accounts {
		switch {
		case isBcrypt(a.PasswordHash):
			rep.Hashed++
		case strings.HasPrefix(a.PasswordHash, "pbkdf2:") || strings.HasPrefix(a.PasswordHash, "scrypt:"):
			log.Printf("[ledger] account %q has a %s hash; reset its password", a.Handle, strings.SplitN(a.PasswordHash, ":", 2)[0])
			rep.Skipped++
		case !validSecret(a.PasswordHash):
			log.Printf("[ledger] account %q: stored password cannot be hashed; reset it", a.Handle)
			rep.Skipped++
		default:
			h, err := l.hash(a.PasswordHash)
			if err != nil {
				return rep, storageFailure(err)
			}
			if err := l.repo.UpdatePasswordHash(ctx, a.ID, h); err != nil {
				return rep, storageFailure(err)
			}
			rep.Rehashed++
		}
	}
	return rep, nil
}
