package routes

import (
	"Gin_postgres_redis_clearance_tool/app"
	"Gin_postgres_redis_clearance_tool/controllers"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	uc := controllers.GetUserController(s.Repo, s.AppSess)
	inviteCtl := controllers.GetInviteController(s)
	equipCtl := controllers.NewEquipmentController(s)
	issueCtl := controllers.NewIssueController(s)
	clearCtl := controllers.NewClearanceController(s)
	notifCtl := controllers.NewNotificationController(s)
	reportCtl := controllers.NewReportController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	adminMW := app.AdminOnly()
	keeperMW := app.StorekeeperOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)
	secureCookie := strings.HasPrefix(a.Config.WebOrigin, "https://")

	// ------------------------------
	// WebAuthn（公开+受保护）
	// ------------------------------
	wa := r.Group("/webauthn")
	{
		wa.POST("/register/begin", s.BeginRegistration)
		wa.POST("/register/finish", s.FinishRegistration)

		wa.POST("/login/begin", s.BeginLogin)
		wa.POST("/login/finish", s.FinishLogin)
	}

	waAuth := wa.Group("", authMW, seenMW)
	{
		waAuth.GET("/whoami", s.WhoAmI)

		waAuth.POST("/logout", func(c *app.Ctx) {
			if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
				_ = s.AppSess.Delete(c.Request.Context(), ck.Value)
			}
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     app.AppSessionCookie,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   secureCookie,
			})
			c.JSON(http.StatusOK, app.H{"ok": true})
		})
	}

	// 已登录用户添加新凭据
	creds := r.Group("/api/credentials", authMW, seenMW)
	{
		creds.POST("/add/begin", s.BeginAddCredential)
		creds.POST("/add/finish", s.FinishAddCredential)
	}

	// ------------------------------
	// 邀请 + 用户管理（仅管理员）
	// ------------------------------
	admin := r.Group("/admin", authMW, adminMW)
	{
		admin.POST("/invites", inviteCtl.CreateInvite)
		admin.GET("/clearance-report", reportCtl.ClearanceReport)
		admin.GET("/clearance-report/export", reportCtl.ExportClearanceReport)
	}

	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", uc.ListUsers)
		users.GET("/:id", uc.GetUser)
		users.DELETE("/:id", uc.DeleteUser)
	}

	// ------------------------------
	// 设备目录（查看共用，增改仅管理员）
	// ------------------------------
	equipAdmin := r.Group("/api/equipment", authMW, adminMW)
	{
		equipAdmin.POST("", equipCtl.CreateEquipment)
		equipAdmin.PUT("/:id", equipCtl.UpdateEquipment)
		equipAdmin.POST("/:id/active", equipCtl.SetActive)
	}
	equip := r.Group("/api/equipment", authMW, seenMW)
	{
		equip.GET("", equipCtl.ListEquipment)
		equip.GET("/:id", equipCtl.GetEquipment)
	}

	// ------------------------------
	// 发放/归还（库管操作）
	// ------------------------------
	issuesKeeper := r.Group("/api/issues", authMW, keeperMW)
	{
		issuesKeeper.POST("", issueCtl.IssueEquipment)
		issuesKeeper.POST("/:id/return", issueCtl.ReturnEquipment)
	}
	issues := r.Group("/api/issues", authMW, seenMW)
	{
		issues.GET("", issueCtl.ListIssues)
		issues.GET("/:id", issueCtl.GetIssue)
	}

	// ------------------------------
	// 清退工作流（两个角色都进，动作由状态机按角色把关）
	// ------------------------------
	cl := r.Group("/api/clearance", authMW, seenMW)
	{
		cl.GET("/queue", clearCtl.ListActionable)
		cl.GET("/items/:id/audit", clearCtl.ListAudit)
		cl.POST("/items/:id/transition", clearCtl.Transition)
		cl.GET("/:recipientType/:recipientId", clearCtl.GetClearanceStatus)
	}

	// ------------------------------
	// 通知
	// ------------------------------
	notif := r.Group("/api/notifications", authMW, seenMW)
	{
		notif.GET("", notifCtl.List)
		notif.POST("/:id/read", notifCtl.MarkRead)
		notif.POST("/read-all", notifCtl.MarkAllRead)
	}
}
