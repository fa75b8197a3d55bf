// app/seenmw.go
package app

import (
	"college_library_backend/db"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const lastSeenKeyPrefix = "lib:lastseen:"

// TouchLastSeen 给已登录用户刷 last_seen_at，用 Redis SetNX 节流：
// 同一用户 throttle 窗口内最多落一次库。
func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := ""
		if v, ok := c.Get("userID"); ok {
			uid, _ = v.(string)
		}
		if uid == "" {
			c.Next()
			return
		}

		if ok, _ := rdb.SetNX(c, lastSeenKeyPrefix+uid, "1", throttle).Result(); ok {
			_ = repo.TouchUserSeen(c, uid) // 忽略错误，不阻塞请求
		}
		c.Next()
	}
}
