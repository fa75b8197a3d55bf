// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"college_library_backend/app"
	"college_library_backend/db"
	"college_library_backend/session"

	"github.com/google/uuid"
)

type Srv struct {
	Repo      *db.Repo
	AppSess   *session.AppSessionStore
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      db.NewRepo(a.DB),
		AppSess:   a.AppSessions(),
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

func (s *Srv) clearAppCookie(w http.ResponseWriter) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// 登录成功：创建会话 + 触发登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID, role, ip, ua string) error {
	_ = s.Repo.TouchUserLogin(ctx, userID, ip, ua) // 不阻塞
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userID, role); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.Cfg.SessionTTL)
	return nil
}

// respondRepoError 把 db 哨兵错误映射成 HTTP 状态码；
// 其它错误一律 500，不向客户端透出底层细节。
func respondRepoError(c *app.Ctx, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrCopyUnavailable),
		errors.Is(err, db.ErrAlreadyReturned),
		errors.Is(err, db.ErrConflict):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrLimitExceeded),
		errors.Is(err, db.ErrCardInactive):
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
	}
}
