package db

import (
	"context"
	"fmt"
	"testing"

	"college_library_backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 每个测试独立的内存库（命名 shared cache，避免连接池拿到空库）
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))
	return NewRepo(gdb)
}

func seedStudent(t *testing.T, r *Repo, name string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        fmt.Sprintf("%s@campus.test", uuid.NewString()),
		PasswordHash: "x",
		Role:         models.RoleStudent,
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedStudentIn(t *testing.T, r *Repo, name, departmentID, batchID string) *models.User {
	t.Helper()
	u := seedStudent(t, r, name)
	_, err := r.UpdateUserProfile(context.Background(), u.ID, UpdateProfileInput{
		DepartmentID: &departmentID,
		BatchID:      &batchID,
	})
	require.NoError(t, err)
	u.DepartmentID = &departmentID
	u.BatchID = &batchID
	return u
}

func seedCard(t *testing.T, r *Repo, studentID string) *models.LibraryCard {
	t.Helper()
	card, err := r.IssueLibraryCard(context.Background(), studentID)
	require.NoError(t, err)
	return card
}

func seedBook(t *testing.T, r *Repo, title string, copies int) (*models.Book, []models.BookCopy) {
	t.Helper()
	g, err := r.CreateGenre(context.Background(), "genre-"+uuid.NewString())
	require.NoError(t, err)
	book, cps, err := r.CreateBook(context.Background(), CreateBookInput{
		Title:   title,
		Author:  "Some Author",
		Copies:  copies,
		GenreID: g.ID,
	})
	require.NoError(t, err)
	return book, cps
}
