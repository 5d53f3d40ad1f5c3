package ledger

import (
	"cart_ledger/db"
	"cart_ledger/models"
	"context"
	"errors"
	"log"
	"strings"
)

type LoanRequest struct {
	Number        int
	Cart          string
	BorrowerName  string
	BorrowerGroup string
	ActedBy       string // account name of the caller
}

// RegisterAsset adds a device in the available state.
func (l *Ledger) RegisterAsset(ctx context.Context, number int, cart string) (Result, error) {
	cart = strings.TrimSpace(cart)
	if number <= 0 || cart == "" {
		return failed(newError(KindInvalidInput, "device number must be positive and cart is required"))
	}

	err := l.repo.CreateAsset(ctx, &models.Asset{Number: number, Cart: cart, Status: models.StatusAvailable})
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return failed(newError(KindDuplicateAsset, "device %d is already registered in cart %s", number, cart))
		}
		log.Printf("[ledger] register asset %d/%s: %v", number, cart, err)
		return failed(storageFailure(err))
	}
	return succeeded("device %d registered in cart %s", number, cart), nil
}

// LoanAsset moves a device to loaned and appends a loan entry, atomically.
func (l *Ledger) LoanAsset(ctx context.Context, req LoanRequest) (Result, error) {
	req.Cart = strings.TrimSpace(req.Cart)
	req.BorrowerName = strings.TrimSpace(req.BorrowerName)
	req.BorrowerGroup = strings.TrimSpace(req.BorrowerGroup)
	req.ActedBy = strings.TrimSpace(req.ActedBy)
	if req.Number <= 0 || req.Cart == "" || req.BorrowerName == "" || req.ActedBy == "" {
		return failed(newError(KindInvalidInput, "device number, cart and borrower are required"))
	}

	_, err := l.repo.LoanAsset(ctx, db.LoanInput{
		Number:          req.Number,
		Cart:            req.Cart,
		BorrowerName:    req.BorrowerName,
		BorrowerGroup:   req.BorrowerGroup,
		ActedBy:         req.ActedBy,
		CreateIfMissing: l.implicitCreate,
	})
	switch {
	case err == nil:
		return succeeded("device %d (cart %s) loaned to %s", req.Number, req.Cart, req.BorrowerName), nil
	case errors.Is(err, db.ErrAlreadyLoaned):
		return failed(newError(KindAlreadyLoaned, "device %d (cart %s) is already on loan", req.Number, req.Cart))
	case errors.Is(err, db.ErrUnderMaintenance):
		return failed(newError(KindUnderMaintenance, "device %d (cart %s) is under maintenance", req.Number, req.Cart))
	case errors.Is(err, db.ErrAssetNotFound):
		return failed(newError(KindAssetNotFound, "device %d (cart %s) is not registered", req.Number, req.Cart))
	default:
		log.Printf("[ledger] loan %d/%s: %v", req.Number, req.Cart, err)
		return failed(storageFailure(err))
	}
}

// ReturnAsset moves a loaned device back to available and appends a return
// entry carrying the borrower recorded at loan time.
func (l *Ledger) ReturnAsset(ctx context.Context, number int, cart string) (Result, error) {
	cart = strings.TrimSpace(cart)
	if number <= 0 || cart == "" {
		return failed(newError(KindInvalidInput, "device number and cart are required"))
	}

	_, err := l.repo.ReturnAsset(ctx, number, cart)
	switch {
	case err == nil:
		return succeeded("device %d (cart %s) returned", number, cart), nil
	case errors.Is(err, db.ErrAssetNotFound):
		return failed(newError(KindAssetNotFound, "device %d (cart %s) not found", number, cart))
	case errors.Is(err, db.ErrAlreadyAvailable):
		return failed(newError(KindAlreadyAvailable, "device %d (cart %s) is already available", number, cart))
	case errors.Is(err, db.ErrUnderMaintenance):
		return failed(newError(KindUnderMaintenance, "device %d (cart %s) is under maintenance", number, cart))
	default:
		log.Printf("[ledger] return %d/%s: %v", number, cart, err)
		return failed(storageFailure(err))
	}
}

// SetMaintenance takes an available device out of circulation, or puts a
// device under maintenance back. It writes no history.
func (l *Ledger) SetMaintenance(ctx context.Context, number int, cart string, on bool) (Result, error) {
	cart = strings.TrimSpace(cart)
	if number <= 0 || cart == "" {
		return failed(newError(KindInvalidInput, "device number and cart are required"))
	}

	a, err := l.repo.SetMaintenance(ctx, number, cart, on)
	switch {
	case err == nil:
		log.Printf("[ledger] device %d/%s now %s", number, cart, a.Status)
		return succeeded("device %d (cart %s) is now %s", number, cart, a.Status), nil
	case errors.Is(err, db.ErrAssetNotFound):
		return failed(newError(KindAssetNotFound, "device %d (cart %s) not found", number, cart))
	case errors.Is(err, db.ErrAlreadyLoaned):
		return failed(newError(KindAlreadyLoaned, "device %d (cart %s) is on loan", number, cart))
	default:
		log.Printf("[ledger] maintenance %d/%s: %v", number, cart, err)
		return failed(storageFailure(err))
	}
}

// Queries

func (l *Ledger) ListAllAssets(ctx context.Context) ([]db.AssetRow, error) {
	rows, err := l.repo.ListAssets(ctx)
	if err != nil {
		return nil, storageFailure(err)
	}
	return rows, nil
}

func (l *Ledger) ListAvailableAssets(ctx context.Context) ([]db.AvailableRow, error) {
	rows, err := l.repo.ListAvailableAssets(ctx)
	if err != nil {
		return nil, storageFailure(err)
	}
	return rows, nil
}

func (l *Ledger) ListLoanedAssets(ctx context.Context) ([]db.LoanedRow, error) {
	rows, err := l.repo.ListLoanedAssets(ctx)
	if err != nil {
		return nil, storageFailure(err)
	}
	return rows, nil
}

// ListHistory returns up to limit entries, newest first. limit <= 0 means
// the default cap of 50.
func (l *Ledger) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	es, err := l.repo.ListHistory(ctx, limit)
	if err != nil {
		return nil, storageFailure(err)
	}
	return es, nil
}

func (l *Ledger) ComputeStats(ctx context.Context) (db.Stats, error) {
	s, err := l.repo.ComputeStats(ctx)
	if err != nil {
		return db.Stats{}, storageFailure(err)
	}
	return s, nil
}

// Asset returns the current row for (number, cart).
func (l *Ledger) Asset(ctx context.Context, number int, cart string) (*models.Asset, error) {
	a, err := l.repo.FindAsset(ctx, number, strings.TrimSpace(cart))
	if err != nil {
		if errors.Is(err, db.ErrAssetNotFound) {
			return nil, newError(KindAssetNotFound, "device %d (cart %s) not found", number, cart)
		}
		return nil, storageFailure(err)
	}
	return a, nil
}
