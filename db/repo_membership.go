package db

import (
	"context"
	"strings"

	"college_library_backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Library cards

// IssueLibraryCard 幂等发卡：学生已有卡直接返回，没有就建一张。
// 靠 student_id 唯一索引 + ON CONFLICT DO NOTHING 保证并发下只会有一张。
func (r *Repo) IssueLibraryCard(ctx context.Context, studentID string) (*models.LibraryCard, error) {
	if _, err := r.FindUserByID(ctx, studentID); err != nil {
		return nil, err
	}

	card := models.LibraryCard{
		ID:         uuid.NewString(),
		StudentID:  studentID,
		Active:     true,
		IssueLimit: models.DefaultIssueLimit,
	}
	if err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}},
			DoNothing: true,
		}).
		Create(&card).Error; err != nil {
		return nil, err
	}

	// 无论插入与否都重新读一遍，拿到权威那张
	var got models.LibraryCard
	if err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&got).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &got, nil
}

func (r *Repo) FindCardByID(ctx context.Context, cardID string) (*models.LibraryCard, error) {
	var card models.LibraryCard
	if err := r.DB.WithContext(ctx).First(&card, "id = ?", cardID).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &card, nil
}

func (r *Repo) FindCardByStudent(ctx context.Context, studentID string) (*models.LibraryCard, error) {
	var card models.LibraryCard
	if err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&card).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &card, nil
}

// CardSearchRow 按持卡人姓名搜卡的结果行
type CardSearchRow struct {
	CardID      string `json:"cardId"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Active      bool   `json:"active"`
}

func (r *Repo) SearchCards(ctx context.Context, q string) ([]CardSearchRow, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	var rows []CardSearchRow
	err := r.DB.WithContext(ctx).
		Table("library_cards lc").
		Select("lc.id AS card_id, lc.student_id, u.name AS student_name, lc.active").
		Joins("JOIN users u ON u.id = lc.student_id").
		Where("LOWER(u.name) LIKE ?", like).
		Order("u.name ASC").
		Scan(&rows).Error
	return rows, err
}

const cardEventDeactivated = "deactivated"

// DeactivateCardByStudent 单人停卡；停卡和审计在同一笔事务里落库，
// 已停的卡不重复写审计。
func (r *Repo) DeactivateCardByStudent(ctx context.Context, studentID, actorID string, reason *string) (*models.LibraryCard, error) {
	card, err := r.FindCardByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LibraryCard{}).
			Where("id = ? AND active = ?", card.ID, true).
			Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return logCardEvent(tx, card.ID, actorID, reason)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	card.Active = false
	return card, nil
}

// DeactivateCardsByDeptBatch 按院系+届别批量停卡。
// 停卡和逐卡审计是一笔事务，半途失败整体回滚；
// 返回停掉的张数和对应学生 ID（调用方用来踢会话）。
// 没有命中任何在用卡时返回 0，由调用方提示。
func (r *Repo) DeactivateCardsByDeptBatch(ctx context.Context, departmentID, batchID, actorID string, reason *string) (int64, []string, error) {
	var (
		count      int64
		studentIDs []string
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		type cardRef struct {
			ID        string
			StudentID string
		}
		var refs []cardRef
		if err := tx.
			Table("library_cards lc").
			Select("lc.id, lc.student_id").
			Joins("JOIN users u ON u.id = lc.student_id").
			Where("lc.active = ? AND u.department_id = ? AND u.batch_id = ?",
				true, departmentID, batchID).
			Scan(&refs).Error; err != nil {
			return err
		}
		if len(refs) == 0 {
			return nil
		}

		cardIDs := make([]string, 0, len(refs))
		for _, ref := range refs {
			cardIDs = append(cardIDs, ref.ID)
			studentIDs = append(studentIDs, ref.StudentID)
		}

		res := tx.Model(&models.LibraryCard{}).
			Where("id IN ? AND active = ?", cardIDs, true).
			Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		count = res.RowsAffected

		for _, id := range cardIDs {
			if err := logCardEvent(tx, id, actorID, reason); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return count, studentIDs, nil
}

func logCardEvent(tx *gorm.DB, cardID, actorID string, reason *string) error {
	ev := models.CardEvent{
		ID:            uuid.NewString(),
		LibraryCardID: cardID,
		ActorID:       actorID,
		Action:        cardEventDeactivated,
		Reason:        reason,
	}
	return tx.Create(&ev).Error
}

// Departments / batches

func (r *Repo) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Department{}).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrConflict
	}
	d := &models.Department{ID: uuid.NewString(), Name: name, Batches: []models.Batch{}}
	return d, r.DB.WithContext(ctx).Create(d).Error
}

func (r *Repo) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var ds []models.Department
	err := r.DB.WithContext(ctx).
		Preload("Batches").
		Order("name ASC").
		Find(&ds).Error
	return ds, err
}

func (r *Repo) CreateBatch(ctx context.Context, departmentID, name string) (*models.Batch, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Department{}).
		Where("id = ?", departmentID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	b := &models.Batch{ID: uuid.NewString(), Name: name, DepartmentID: departmentID}
	return b, r.DB.WithContext(ctx).Create(b).Error
}

func (r *Repo) ListBatches(ctx context.Context) ([]models.Batch, error) {
	var bs []models.Batch
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&bs).Error
	return bs, err
}

func (r *Repo) RenameBatch(ctx context.Context, batchID, name string) (*models.Batch, error) {
	res := r.DB.WithContext(ctx).Model(&models.Batch{}).
		Where("id = ?", batchID).
		Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var b models.Batch
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", batchID).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &b, nil
}
