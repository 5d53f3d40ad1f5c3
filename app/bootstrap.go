// app/bootstrap.go
package app

import (
	"context"
	"log"

	"cart_ledger/config"
	"cart_ledger/ledger"
	"cart_ledger/models"
)

// BootstrapFirstAdmin 没有任何管理员时创建默认 admin 账号
func BootstrapFirstAdmin(ctx context.Context, cfg config.Config, l *ledger.Ledger) error {
	created, secret, err := l.EnsureAdmin(ctx, cfg.BootstrapAdminPassword)
	if err != nil {
		log.Printf("[BOOTSTRAP] ensure admin failed: %v", err)
		return err
	}
	if !created {
		return nil
	}

	log.Printf("[BOOTSTRAP] No admin found, created account %q", models.AdminHandle)
	if cfg.BootstrapAdminPassword == "" {
		// 只打印这一次
		log.Printf("[BOOTSTRAP] Generated password: %s (change it after first login)", secret)
	}
	return nil
}
