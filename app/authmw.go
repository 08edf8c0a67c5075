package app

import (
	"Gin_postgres_redis_clearance_tool/db"
	"Gin_postgres_redis_clearance_tool/models"
	"Gin_postgres_redis_clearance_tool/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认用户仍存在，角色以数据库为准（会话里的只是快照）
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set("userID", u.ID)
		c.Set("username", u.Username)
		c.Set("role", u.Role)

		c.Next()
	}
}

// RoleRequired 只放行指定角色；必须排在 AuthRequired 之后
func RoleRequired(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("role")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if r, _ := v.(string); r != role {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden: requires " + role + " role"})
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc { return RoleRequired(models.RoleAdmin) }

func StorekeeperOnly() gin.HandlerFunc { return RoleRequired(models.RoleStorekeeper) }
