package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"college_library_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueCopy_Succeeds(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	student := seedStudent(t, r, "Ada")
	card := seedCard(t, r, student.ID)
	_, copies := seedBook(t, r, "Clean Code", 2)

	issued := time.Now().UTC()
	issue, err := r.IssueCopy(ctx, copies[0].ID, card.ID, issued)
	require.NoError(t, err)

	assert.Equal(t, models.IssueStatusIssued, issue.Status)
	assert.WithinDuration(t, issued.Add(models.LoanPeriod), issue.DueDate, time.Second)

	var cp models.BookCopy
	require.NoError(t, r.DB.First(&cp, "id = ?", copies[0].ID).Error)
	assert.Equal(t, models.CopyStatusIssued, cp.Status)
	require.NotNil(t, cp.LibraryCardID)
	assert.Equal(t, card.ID, *cp.LibraryCardID)

	open, err := r.ListIssuesByCard(ctx, card.ID, true)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestIssueCopy_DefaultsIssueDateToNow(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	card := seedCard(t, r, seedStudent(t, r, "Ada").ID)
	_, copies := seedBook(t, r, "SICP", 1)

	issue, err := r.IssueCopy(ctx, copies[0].ID, card.ID, time.Time{})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), issue.IssueDate, 5*time.Second)
}

func TestIssueCopy_CopyAlreadyIssued(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	cardA := seedCard(t, r, seedStudent(t, r, "Ada").ID)
	cardB := seedCard(t, r, seedStudent(t, r, "Grace").ID)
	_, copies := seedBook(t, r, "Clean Code", 2)

	_, err := r.IssueCopy(ctx, copies[0].ID, cardA.ID, time.Time{})
	require.NoError(t, err)

	_, err = r.IssueCopy(ctx, copies[0].ID, cardB.ID, time.Time{})
	assert.ErrorIs(t, err, ErrCopyUnavailable)

	// 失败调用不留半截状态
	var cp models.BookCopy
	require.NoError(t, r.DB.First(&cp, "id = ?", copies[0].ID).Error)
	assert.Equal(t, models.CopyStatusIssued, cp.Status)
	assert.Equal(t, cardA.ID, *cp.LibraryCardID)

	open, err := r.ListIssuesByCard(ctx, cardB.ID, true)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestIssueCopy_LimitExceeded(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	card := seedCard(t, r, seedStudent(t, r, "Ada").ID)
	require.NoError(t, r.DB.Model(&models.LibraryCard{}).
		Where("id = ?", card.ID).
		Update("issue_limit", 1).Error)

	_, copies := seedBook(t, r, "Clean Code", 2)

	_, err := r.IssueCopy(ctx, copies[0].ID, card.ID, time.Time{})
	require.NoError(t, err)

	_, err = r.IssueCopy(ctx, copies[1].ID, card.ID, time.Time{})
	assert.ErrorIs(t, err, ErrLimitExceeded)

	// 第二本副本必须原样留在货架上
	var cp models.BookCopy
	require.NoError(t, r.DB.First(&cp, "id = ?", copies[1].ID).Error)
	assert.Equal(t, models.CopyStatusAvailable, cp.Status)
}

// 限额在并发借出下也不能被突破：同一张卡同时借多本，
// 成功的笔数不得超过 issue_limit（卡行锁把计数串行化）。
func TestIssueCopy_ConcurrentIssuesRespectLimit(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	card := seedCard(t, r, seedStudent(t, r, "Ada").ID)
	require.NoError(t, r.DB.Model(&models.LibraryCard{}).
		Where("id = ?", card.ID).
		Update("issue_limit", 2).Error)
	_, copies := seedBook(t, r, "Clean Code", 4)

	var wg sync.WaitGroup
	for _, cp := range copies {
		wg.Add(1)
		go func(copyID string) {
			defer wg.Done()
			// 超限/锁冲突都允许失败，这里只关心不变量
			_, _ = r.IssueCopy(ctx, copyID, card.ID, time.Time{})
		}(cp.ID)
	}
	wg.Wait()

	open, err := r.ListIssuesByCard(ctx, card.ID, true)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(open), 2)

	var issuedCopies int64
	require.NoError(t, r.DB.Model(&models.BookCopy{}).
		Where("status = ?", models.CopyStatusIssued).
		Count(&issuedCopies).Error)
	assert.EqualValues(t, len(open), issuedCopies)
}

func TestIssueCopy_CardMissing(t *testing.T) {
	r := newTestRepo(t)
	_, copies := seedBook(t, r, "Clean Code", 1)

	_, err := r.IssueCopy(context.Background(), copies[0].ID, "no-such-card", time.Time{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueCopy_InactiveCard(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	student := seedStudent(t, r, "Ada")
	card := seedCard(t, r, student.ID)
	_, err := r.DeactivateCardByStudent(ctx, student.ID, "", nil)
	require.NoError(t, err)

	_, copies := seedBook(t, r, "Clean Code", 1)
	_, err = r.IssueCopy(ctx, copies[0].ID, card.ID, time.Time{})
	assert.ErrorIs(t, err, ErrCardInactive)
}

func TestIssueCopy_CopyMissing(t *testing.T) {
	r := newTestRepo(t)
	card := seedCard(t, r, seedStudent(t, r, "Ada").ID)

	_, err := r.IssueCopy(context.Background(), "no-such-copy", card.ID, time.Time{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturnCopy_OnTime(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	card := seedCard(t, r, seedStudent(t, r, "Ada").ID)
	_, copies := seedBook(t, r, "Clean Code", 1)
	issue, err := r.IssueCopy(ctx, copies[0].ID, card.ID, time.Time{})
	require.NoError(t, err)

	res, err := r.ReturnCopy(ctx, issue.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, res.FineAmount)
	assert.Equal(t, models.IssueStatusReturned, res.Status)
	require.NotNil(t, res.Issue.ReturnDate)

	// 按期归还不落罚金记录
	var fines int64
	require.NoError(t, r.DB.Model(&models.Fine{}).Count(&fines).Error)
	assert.Zero(t, fines)

	var cp models.BookCopy
	require.NoError(t, r.DB.First(&cp, "id = ?", copies[0].ID).Error)
	assert.Equal(t, models.CopyStatusAvailable, cp.Status)
	assert.Nil(t, cp.LibraryCardID)
}

func TestReturnCopy_OverdueCreatesFine(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	card := seedCard(t, r, seedStudent(t, r, "Ada").ID)
	_, copies := seedBook(t, r, "Clean Code", 1)

	// 20 天前借出（加一分钟缓冲避免整除边界），窗口 14 天 → 逾期 6 天
	issuedAt := time.Now().UTC().Add(-20*24*time.Hour + time.Minute)
	issue, err := r.IssueCopy(ctx, copies[0].ID, card.ID, issuedAt)
	require.NoError(t, err)

	res, err := r.ReturnCopy(ctx, issue.ID)
	require.NoError(t, err)

	assert.Equal(t, 6, res.FineAmount)
	assert.Equal(t, models.IssueStatusOverdue, res.Status)

	var fine models.Fine
	require.NoError(t, r.DB.First(&fine, "issue_id = ?", issue.ID).Error)
	assert.Equal(t, 6, fine.Amount)
	assert.Equal(t, card.ID, fine.LibraryCardID)
}

func TestReturnCopy_Twice(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	card := seedCard(t, r, seedStudent(t, r, "Ada").ID)
	_, copies := seedBook(t, r, "Clean Code", 1)
	issue, err := r.IssueCopy(ctx, copies[0].ID, card.ID, time.Time{})
	require.NoError(t, err)

	_, err = r.ReturnCopy(ctx, issue.ID)
	require.NoError(t, err)

	_, err = r.ReturnCopy(ctx, issue.ID)
	assert.ErrorIs(t, err, ErrAlreadyReturned)
}

func TestReturnCopy_NotFound(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.ReturnCopy(context.Background(), "no-such-issue")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturnedCopyCanBeReissued(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	cardA := seedCard(t, r, seedStudent(t, r, "Ada").ID)
	cardB := seedCard(t, r, seedStudent(t, r, "Grace").ID)
	_, copies := seedBook(t, r, "Clean Code", 1)

	issue, err := r.IssueCopy(ctx, copies[0].ID, cardA.ID, time.Time{})
	require.NoError(t, err)
	_, err = r.ReturnCopy(ctx, issue.ID)
	require.NoError(t, err)

	again, err := r.IssueCopy(ctx, copies[0].ID, cardB.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, cardB.ID, again.LibraryCardID)
}

func TestListOpenIssues_PagedNewestFirst(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	card := seedCard(t, r, seedStudent(t, r, "Ada").ID)
	require.NoError(t, r.DB.Model(&models.LibraryCard{}).
		Where("id = ?", card.ID).
		Update("issue_limit", 10).Error)
	_, copies := seedBook(t, r, "Clean Code", 3)

	base := time.Now().UTC().Add(-3 * 24 * time.Hour)
	for i, cp := range copies {
		_, err := r.IssueCopy(ctx, cp.ID, card.ID, base.Add(time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
	}

	page, err := r.ListOpenIssues(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Issues, 2)
	assert.True(t, page.Issues[0].IssueDate.After(page.Issues[1].IssueDate))

	page2, err := r.ListOpenIssues(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Issues, 1)
}

func TestListDefaulters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	dept, err := r.CreateDepartment(ctx, "CSE")
	require.NoError(t, err)
	batch, err := r.CreateBatch(ctx, dept.ID, "2026")
	require.NoError(t, err)
	otherDept, err := r.CreateDepartment(ctx, "EEE")
	require.NoError(t, err)
	otherBatch, err := r.CreateBatch(ctx, otherDept.ID, "2026")
	require.NoError(t, err)

	late := seedStudentIn(t, r, "Ada", dept.ID, batch.ID)
	onTime := seedStudentIn(t, r, "Grace", otherDept.ID, otherBatch.ID)
	lateCard := seedCard(t, r, late.ID)
	onTimeCard := seedCard(t, r, onTime.ID)

	_, copies := seedBook(t, r, "Clean Code", 2)

	// 一条已逾期，一条未到期
	_, err = r.IssueCopy(ctx, copies[0].ID, lateCard.ID,
		time.Now().UTC().Add(-20*24*time.Hour))
	require.NoError(t, err)
	_, err = r.IssueCopy(ctx, copies[1].ID, onTimeCard.ID, time.Time{})
	require.NoError(t, err)

	all, err := r.ListDefaulters(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ada", all[0].UserName)
	assert.Equal(t, "Clean Code", all[0].BookTitle)

	filtered, err := r.ListDefaulters(ctx, dept.ID)
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	none, err := r.ListDefaulters(ctx, otherDept.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
