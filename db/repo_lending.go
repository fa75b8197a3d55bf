package db

import (
	"context"
	"time"

	"college_library_backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IssueCopy 借出：一笔事务 = 锁卡行 → 校验卡 → 限额 → 条件更新占用副本 → 建借阅记录。
// 卡行先做一次自更新，把同卡并发借出串行化，限额计数不会被并发绕过；
// 副本占用用 UPDATE ... WHERE status='available' 的影响行数判定，
// 并发下两个请求只有一个能占到；唯一部分索引兜底。
func (r *Repo) IssueCopy(ctx context.Context, bookCopyID, libraryCardID string, issueDate time.Time) (*models.BookCopyIssue, error) {
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}

	var issue *models.BookCopyIssue
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先写住卡行：同一张卡的并发借出在此排队，限额计数才作数
		lock := tx.Exec("UPDATE library_cards SET active = active WHERE id = ?", libraryCardID)
		if lock.Error != nil {
			return lock.Error
		}
		if lock.RowsAffected == 0 {
			return ErrNotFound
		}

		var card models.LibraryCard
		if err := tx.First(&card, "id = ?", libraryCardID).Error; err != nil {
			return asNotFound(err)
		}
		if !card.Active {
			return ErrCardInactive
		}

		var open int64
		if err := tx.Model(&models.BookCopyIssue{}).
			Where("library_card_id = ? AND return_date IS NULL", card.ID).
			Count(&open).Error; err != nil {
			return err
		}
		if open >= int64(card.IssueLimit) {
			return ErrLimitExceeded
		}

		var cp models.BookCopy
		if err := tx.First(&cp, "id = ?", bookCopyID).Error; err != nil {
			return asNotFound(err)
		}

		// 条件更新占位；0 行说明已被借走
		res := tx.Model(&models.BookCopy{}).
			Where("id = ? AND status = ?", bookCopyID, models.CopyStatusAvailable).
			Updates(map[string]any{
				"status":          models.CopyStatusIssued,
				"library_card_id": card.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCopyUnavailable
		}

		issue = &models.BookCopyIssue{
			ID:            uuid.NewString(),
			BookCopyID:    bookCopyID,
			LibraryCardID: card.ID,
			IssueDate:     issueDate,
			DueDate:       models.DueDateFor(issueDate),
			Status:        models.IssueStatusIssued,
		}
		return tx.Create(issue).Error
	})
	if err != nil {
		return nil, err
	}
	return issue, nil
}

type ReturnResult struct {
	Issue      *models.BookCopyIssue `json:"issue"`
	FineAmount int                   `json:"fineAmount"`
	Status     string                `json:"status"`
}

// ReturnCopy 归还：一笔事务 = 关闭借阅 → 逾期则记罚金 → 释放副本。
// 关闭同样走条件更新（return_date IS NULL），重复归还报 ErrAlreadyReturned。
func (r *Repo) ReturnCopy(ctx context.Context, issueID string) (*ReturnResult, error) {
	now := time.Now().UTC()

	var result *ReturnResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var issue models.BookCopyIssue
		if err := tx.First(&issue, "id = ?", issueID).Error; err != nil {
			return asNotFound(err)
		}

		fine := models.FineFor(issue.DueDate, now)
		status := models.IssueStatusReturned
		if fine > 0 {
			status = models.IssueStatusOverdue
		}

		res := tx.Model(&models.BookCopyIssue{}).
			Where("id = ? AND return_date IS NULL", issueID).
			Updates(map[string]any{
				"return_date": now,
				"status":      status,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReturned
		}

		// 只有真的逾期才落罚金记录
		if fine > 0 {
			f := models.Fine{
				ID:            uuid.NewString(),
				LibraryCardID: issue.LibraryCardID,
				IssueID:       issue.ID,
				Amount:        fine,
			}
			if err := tx.Create(&f).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.BookCopy{}).
			Where("id = ?", issue.BookCopyID).
			Updates(map[string]any{
				"status":          models.CopyStatusAvailable,
				"library_card_id": nil,
			}).Error; err != nil {
			return err
		}

		issue.ReturnDate = &now
		issue.Status = status
		result = &ReturnResult{Issue: &issue, FineAmount: fine, Status: status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type PagedIssues struct {
	Total  int64                  `json:"total"`
	Issues []models.BookCopyIssue `json:"issues"`
}

func (r *Repo) ListOpenIssues(ctx context.Context, page, size int) (*PagedIssues, error) {
	page, size = clampPage(page, size)

	tx := r.DB.WithContext(ctx).Model(&models.BookCopyIssue{}).
		Where("return_date IS NULL")
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}
	var issues []models.BookCopyIssue
	if err := tx.
		Order("issue_date DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&issues).Error; err != nil {
		return nil, err
	}
	return &PagedIssues{Total: total, Issues: issues}, nil
}

func (r *Repo) ListIssuesByCard(ctx context.Context, libraryCardID string, openOnly bool) ([]models.BookCopyIssue, error) {
	tx := r.DB.WithContext(ctx).
		Where("library_card_id = ?", libraryCardID).
		Order("issue_date DESC")
	if openOnly {
		tx = tx.Where("return_date IS NULL")
	}
	var issues []models.BookCopyIssue
	err := tx.Find(&issues).Error
	return issues, err
}

// DefaulterRow 逾期未还的展示行
type DefaulterRow struct {
	IssueID      string    `json:"id"`
	BookTitle    string    `json:"bookTitle"`
	UserName     string    `json:"userName"`
	DueDate      time.Time `json:"dueDate"`
	DepartmentID *string   `json:"departmentId,omitempty"`
}

func (r *Repo) ListDefaulters(ctx context.Context, departmentID string) ([]DefaulterRow, error) {
	tx := r.DB.WithContext(ctx).
		Table(models.IssueTable+" i").
		Select(`i.id AS issue_id, b.title AS book_title, u.name AS user_name,
			i.due_date, u.department_id`).
		Joins("JOIN book_copies bc ON bc.id = i.book_copy_id").
		Joins("JOIN books b ON b.id = bc.book_id").
		Joins("JOIN library_cards lc ON lc.id = i.library_card_id").
		Joins("JOIN users u ON u.id = lc.student_id").
		Where("i.return_date IS NULL AND i.due_date < ?", time.Now().UTC())
	if departmentID != "" {
		tx = tx.Where("u.department_id = ?", departmentID)
	}
	var rows []DefaulterRow
	err := tx.Order("i.due_date ASC").Scan(&rows).Error
	return rows, err
}
