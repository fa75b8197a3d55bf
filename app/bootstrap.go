// app/bootstrap.go
package app

import (
	"context"
	"log"

	"college_library_backend/db"
	"college_library_backend/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BootstrapFirstAdmin 首次启动没有管理员时，用环境变量种一个
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap admin check failed: %v", err)
		return
	}
	if n > 0 {
		return // 已经有管理员，跳过
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("bootstrap admin hash failed: %v", err)
		return
	}
	admin := &models.User{
		ID:           uuid.NewString(),
		Name:         "Administrator",
		Email:        cfg.BootstrapEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		log.Printf("bootstrap admin create failed: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] No admin found, created the first admin %s", cfg.BootstrapEmail)
}
