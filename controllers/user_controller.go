package controllers

import (
	"net/http"
	"strconv"

	"college_library_backend/app"
	"college_library_backend/db"
	"college_library_backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserController struct{ *Srv }

func GetUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsers(c.Request.Context(), q, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"total": res.Total,
		"users": res.Users,
	})
}

// GET /api/users/students?departmentId=&batchId=
func (uc *UserController) ListStudents(c *gin.Context) {
	departmentID := c.Query("departmentId")
	batchID := c.Query("batchId")
	if departmentID == "" || batchID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "departmentId and batchId are required"})
		return
	}
	students, err := uc.Repo.ListStudents(c.Request.Context(), departmentID, batchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"students": students})
}

// POST /api/users/management  管理员添加 MANAGEMENT 账号
func (uc *UserController) CreateManagementUser(c *gin.Context) {
	var in struct {
		Name     string `json:"name" binding:"required,min=1"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8,max=32"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         models.RoleManagement,
	}
	if err := uc.Repo.CreateUser(c.Request.Context(), u); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"user": u})
}

// POST /api/users  管理员添加学生账号
func (uc *UserController) CreateStudent(c *gin.Context) {
	var in struct {
		Name         string `json:"name" binding:"required,min=1"`
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=8,max=32"`
		DepartmentID string `json:"departmentId" binding:"required"`
		BatchID      string `json:"batchId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		DepartmentID: &in.DepartmentID,
		BatchID:      &in.BatchID,
	}
	if err := uc.Repo.CreateUser(c.Request.Context(), u); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"user": u})
}

// PUT /api/users/:id  更新个人资料（姓名/头像/院系/届别）
func (uc *UserController) UpdateProfile(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}

	var in struct {
		Name         *string `json:"name"`
		Image        *string `json:"image"`
		DepartmentID *string `json:"departmentId"`
		BatchID      *string `json:"batchId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := uc.Repo.UpdateUserProfile(c.Request.Context(), id, db.UpdateProfileInput{
		Name:         in.Name,
		Image:        in.Image,
		DepartmentID: in.DepartmentID,
		BatchID:      in.BatchID,
	})
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}
