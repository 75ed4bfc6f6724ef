package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dormhub/config"
	"dormhub/internal/api/handler"
	"dormhub/internal/api/middleware"
	"dormhub/internal/model"
)

// Deps 路由所需的外部协作者
// Limiter 为 nil 时不限流
type Deps struct {
	Verifier middleware.TokenVerifier
	Resolver middleware.UserResolver
	Limiter  middleware.RateLimiter
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxUploadSize

	maxMultipart := cfg.Server.MaxUploadSize*int64(cfg.Server.MaxUploadFile) + cfg.Server.MaxBodyBytes

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, maxMultipart))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := deps.Limiter
	if !cfg.RateLimit.Enabled {
		limiter = nil
	}
	rateLimit := middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window)

	owner := middleware.RoleAuth(model.MemberTypeOwner)
	member := middleware.RoleAuth(model.MemberTypeMember)
	admin := middleware.RoleAuth(model.MemberTypeAdmin)

	v1 := r.Group("/api/v1")
	{
		// 公开接口，带凭证时识别当前用户
		public := v1.Group("")
		public.Use(middleware.OptionalAuth(deps.Verifier, deps.Resolver, logger))
		{
			public.GET("/zones", h.Catalog.Zones)
			public.GET("/amenities", h.Catalog.Amenities)
			public.GET("/dormitories", h.Dormitory.List)
			public.GET("/dormitories/:id", h.Dormitory.Get)
			public.GET("/dormitories/:id/room-types", h.RoomType.List)
			public.GET("/dormitories/:id/reviews", h.Review.List)
			public.GET("/users/username-available", h.User.CheckUsername)
		}

		// 只要求身份已验证（尚未建档也可访问）
		identified := v1.Group("/auth")
		identified.Use(middleware.Authenticate(deps.Verifier), rateLimit)
		{
			identified.POST("/register", h.Auth.Register)
			identified.PUT("/profile", h.Auth.CompleteProfile)
			identified.GET("/me", h.Auth.Me)
		}

		// 需要已建档用户
		authorized := v1.Group("")
		authorized.Use(
			middleware.Authenticate(deps.Verifier),
			middleware.RequireUser(deps.Resolver, logger),
			rateLimit,
		)
		{
			// 用户资料
			authorized.PATCH("/users/me", h.User.UpdateProfile)
			authorized.POST("/users/me/avatar", h.User.UploadAvatar)

			// 宿舍（房东）
			authorized.POST("/dormitories", owner, h.Dormitory.Create)
			authorized.PUT("/dormitories/:id", owner, h.Dormitory.Update)
			authorized.DELETE("/dormitories/:id", owner, h.Dormitory.Delete)
			authorized.POST("/dormitories/:id/room-types", owner, h.RoomType.Create)
			authorized.PUT("/room-types/:id", owner, h.RoomType.Update)
			authorized.DELETE("/room-types/:id", owner, h.RoomType.Delete)
			authorized.POST("/dormitories/:id/images", owner, h.Image.Upload)
			authorized.PUT("/images/:id/primary", owner, h.Image.SetPrimary)
			authorized.DELETE("/images/:id", owner, h.Image.Delete)

			ownerGroup := authorized.Group("/owner", owner)
			{
				ownerGroup.GET("/dormitories", h.Dormitory.ListMine)
				ownerGroup.GET("/dormitories/:id/requests", h.Membership.ListForOwner)
				ownerGroup.POST("/member-requests/:id/approve", h.Membership.Approve)
				ownerGroup.POST("/member-requests/:id/reject", h.Membership.Reject)
			}

			// 入住申请与居住记录（住户）
			authorized.POST("/member-requests", member, h.Membership.Request)
			authorized.GET("/member-requests/me", h.Membership.ListMine)
			authorized.DELETE("/member-requests/:id", h.Membership.Cancel)
			authorized.POST("/members/me/move", member, h.Membership.Move)
			authorized.GET("/members/me/stays", h.Membership.ListStays)
			authorized.GET("/members/me/stays/calendar", h.Export.ExportStayCalendar)

			// 评价
			authorized.POST("/dormitories/:id/reviews", member, h.Review.Create)
			authorized.PUT("/reviews/:id", h.Review.Update)
			authorized.DELETE("/reviews/:id", h.Review.Delete)

			// 管理员
			adminGroup := authorized.Group("/admin", admin)
			{
				adminGroup.GET("/dormitories", h.Dormitory.AdminList)
				adminGroup.POST("/dormitories/:id/approve", h.Dormitory.Approve)
				adminGroup.POST("/dormitories/:id/reject", h.Dormitory.Reject)
				adminGroup.DELETE("/dormitories/:id", h.Dormitory.AdminDelete)
				adminGroup.POST("/users/:id/revoke-sessions", h.Auth.RevokeSessions)
				adminGroup.GET("/export/dormitories", h.Export.ExportDormitories)
			}
		}
	}

	return r
}
