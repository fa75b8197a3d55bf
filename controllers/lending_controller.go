// controllers/lending_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"college_library_backend/app"

	"github.com/gin-gonic/gin"
)

type LendingController struct{ *Srv }

func NewLendingController(s *Srv) *LendingController { return &LendingController{Srv: s} }

// POST /api/issues  借出一本副本
func (lc *LendingController) IssueBook(c *gin.Context) {
	var in struct {
		BookCopyID    string     `json:"bookCopyId" binding:"required"`
		LibraryCardID string     `json:"libraryCardId" binding:"required"`
		IssueDate     *time.Time `json:"issueDate"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	issueDate := time.Time{}
	if in.IssueDate != nil {
		issueDate = *in.IssueDate
	}
	issue, err := lc.Repo.IssueCopy(c.Request.Context(), in.BookCopyID, in.LibraryCardID, issueDate)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{
		"issueId": issue.ID,
		"dueDate": issue.DueDate,
		"issue":   issue,
	})
}

// POST /api/issues/:id/return
func (lc *LendingController) ReturnBook(c *gin.Context) {
	res, err := lc.Repo.ReturnCopy(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"fineAmount": res.FineAmount,
		"status":     res.Status,
		"issue":      res.Issue,
	})
}

// GET /api/issues/open?page=&size=
func (lc *LendingController) ListOpenIssues(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := lc.Repo.ListOpenIssues(c.Request.Context(), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/defaulters?departmentId=
func (lc *LendingController) ListDefaulters(c *gin.Context) {
	rows, err := lc.Repo.ListDefaulters(c.Request.Context(), c.Query("departmentId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"defaulters": rows})
}
