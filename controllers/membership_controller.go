// controllers/membership_controller.go
package controllers

import (
	"net/http"

	"college_library_backend/app"
	"college_library_backend/models"

	"github.com/gin-gonic/gin"
)

type MembershipController struct{ *Srv }

func NewMembershipController(s *Srv) *MembershipController {
	return &MembershipController{Srv: s}
}

// POST /api/students/:id/card  幂等：已有卡就直接返回那张
func (mc *MembershipController) GenerateCard(c *gin.Context) {
	studentID := c.Param("id")

	// 学生本人只能给自己发卡；工作人员可代发
	if v, ok := c.Get("role"); ok {
		role, _ := v.(string)
		if role == models.RoleStudent {
			if uidV, ok := c.Get("userID"); ok {
				if uid, _ := uidV.(string); uid != studentID {
					c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
					return
				}
			}
		}
	}

	card, err := mc.Repo.IssueLibraryCard(c.Request.Context(), studentID)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	issues, err := mc.Repo.ListIssuesByCard(c.Request.Context(), card.ID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"cardId":     card.ID,
		"issueLimit": card.IssueLimit,
		"active":     card.Active,
		"openIssues": issues,
	})
}

// GET /api/cards/:id  卡详情：持卡人 + 当前借阅
func (mc *MembershipController) GetCard(c *gin.Context) {
	card, err := mc.Repo.FindCardByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRepoError(c, err)
		return
	}
	holder, err := mc.Repo.FindUserByID(c.Request.Context(), card.StudentID)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	issues, err := mc.Repo.ListIssuesByCard(c.Request.Context(), card.ID, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"card": card,
		"user": app.H{"id": holder.ID, "name": holder.Name, "email": holder.Email},
		"issues": issues,
	})
}

// GET /api/cards/search?q=
func (mc *MembershipController) SearchCards(c *gin.Context) {
	rows, err := mc.Repo.SearchCards(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"cards": rows})
}

// POST /api/cards/deactivate
// 传 studentId 停一张；传 departmentId+batchId 批量停
func (mc *MembershipController) DeactivateCards(c *gin.Context) {
	var in struct {
		StudentID    string  `json:"studentId"`
		DepartmentID string  `json:"departmentId"`
		BatchID      string  `json:"batchId"`
		Reason       *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	actorID := ""
	if v, ok := c.Get("userID"); ok {
		actorID, _ = v.(string)
	}

	if in.StudentID != "" {
		card, err := mc.Repo.DeactivateCardByStudent(c.Request.Context(), in.StudentID, actorID, in.Reason)
		if err != nil {
			respondRepoError(c, err)
			return
		}
		// 停卡即下线：该学生的会话全部作废
		_ = mc.AppSess.RevokeAllForUser(c.Request.Context(), in.StudentID)
		c.JSON(http.StatusOK, app.H{"ok": true, "count": 1, "card": card})
		return
	}

	if in.DepartmentID == "" || in.BatchID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "studentId or departmentId+batchId required"})
		return
	}
	count, studentIDs, err := mc.Repo.DeactivateCardsByDeptBatch(c.Request.Context(),
		in.DepartmentID, in.BatchID, actorID, in.Reason)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	for _, sid := range studentIDs {
		_ = mc.AppSess.RevokeAllForUser(c.Request.Context(), sid)
	}
	if count == 0 {
		c.JSON(http.StatusOK, app.H{"ok": false, "count": 0, "message": "no active cards found"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "count": count})
}

// Departments / batches

// GET /api/departments
func (mc *MembershipController) ListDepartments(c *gin.Context) {
	ds, err := mc.Repo.ListDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"departments": ds})
}

// POST /api/departments
func (mc *MembershipController) CreateDepartment(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	d, err := mc.Repo.CreateDepartment(c.Request.Context(), in.Name)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"department": d})
}

// POST /api/departments/:id/batches
func (mc *MembershipController) CreateBatch(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	b, err := mc.Repo.CreateBatch(c.Request.Context(), c.Param("id"), in.Name)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"batch": b})
}

// GET /api/batches
func (mc *MembershipController) ListBatches(c *gin.Context) {
	bs, err := mc.Repo.ListBatches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"batches": bs})
}

// PUT /api/batches/:id
func (mc *MembershipController) RenameBatch(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	b, err := mc.Repo.RenameBatch(c.Request.Context(), c.Param("id"), in.Name)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"batch": b})
}
