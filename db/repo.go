package db

import (
	"college_library_backend/models"
	"context"
	"strings"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Users

func (r *Repo) TouchUserLogin(ctx context.Context, userID, ip, ua string) error {
	// 用数据库时间更准，且避免并发覆盖：NOW() + 计数自增
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("NOW()"),
			"last_seen_at":  gorm.Expr("NOW()"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("NOW()")).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&u).Error
	if err != nil {
		return nil, asNotFound(err)
	}
	return &u, nil
}

// CreateUser inserts a new account; duplicate emails surface as ErrConflict.
func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(u.Email)).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	return r.DB.WithContext(ctx).Create(u).Error
}

type UpdateProfileInput struct {
	Name         *string
	Image        *string
	DepartmentID *string
	BatchID      *string
}

func (r *Repo) UpdateUserProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, error) {
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Image != nil {
		updates["image"] = *in.Image
	}
	if in.DepartmentID != nil {
		updates["department_id"] = *in.DepartmentID
	}
	if in.BatchID != nil {
		updates["batch_id"] = *in.BatchID
	}
	if len(updates) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", userID).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.FindUserByID(ctx, userID)
}

// 列表（分页 + 关键词，关键词匹配姓名/邮箱）
type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

func (r *Repo) ListUsers(ctx context.Context, q string, page, size int) (ListUsersResult, error) {
	page, size = clampPage(page, size)

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}

// ListStudents returns student accounts of one department+batch, newest first.
func (r *Repo) ListStudents(ctx context.Context, departmentID, batchID string) ([]models.User, error) {
	var students []models.User
	err := r.DB.WithContext(ctx).
		Where("role = ? AND department_id = ? AND batch_id = ?",
			models.RoleStudent, departmentID, batchID).
		Order("created_at DESC").
		Find(&students).Error
	return students, err
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&n).Error
	return n, err
}

func clampPage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
