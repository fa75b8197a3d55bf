package controllers

import (
	"net/http"

	"college_library_backend/app"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct{ *Srv }

func GetAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := ac.Repo.FindUserByEmail(c.Request.Context(), in.Email)
	if err != nil {
		// 不区分“用户不存在”和“密码错误”
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}

	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, u.Role,
		c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"user": app.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role},
	})
}

// POST /auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	ac.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /auth/whoami
func (ac *AuthController) WhoAmI(c *gin.Context) {
	v, _ := c.Get("userID")
	uid, _ := v.(string)

	u, err := ac.Repo.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"user": app.H{
			"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role,
			"departmentId": u.DepartmentID, "batchId": u.BatchID, "image": u.Image,
		},
	})
}
