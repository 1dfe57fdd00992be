package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"threadline/internal/handlers"
	"threadline/internal/middleware"
	"threadline/internal/services"
	"threadline/internal/store"
)

const sessionName = "threadline_session"

type Deps struct {
	Store         store.Store
	Comments      *services.CommentService
	Votes         *services.VoteService
	Ranking       services.ScoreScheduler
	Log           zerolog.Logger
	SessionSecret string
	SecureCookie  bool
}

// New builds the engine with sessions, access logging and every route.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))

	sessionStore := cookie.NewStore([]byte(d.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		Secure:   d.SecureCookie,
	})
	r.Use(sessions.Sessions(sessionName, sessionStore))
	r.Use(middleware.LoadUser(d.Store))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler(d.Store)
	communityHandler := handlers.NewCommunityHandler(d.Store)
	postHandler := handlers.NewPostHandler(d.Store, d.Comments, d.Votes, d.Ranking)
	commentHandler := handlers.NewCommentHandler(d.Store, d.Comments)
	voteHandler := handlers.NewVoteHandler(d.Store, d.Votes)

	r.GET("/health", handlers.Health)

	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.POST("/auth/register", authHandler.Register)     // 注册并登录
	api.POST("/auth/login", authHandler.Login)           // 登录
	api.POST("/auth/logout", authHandler.Logout)         // 退出登录
	api.GET("/me", authHandler.Me)                       // 当前用户
	api.GET("/communities", communityHandler.List)       // 社区列表
	api.GET("/communities/:id", communityHandler.Detail) // 社区下的帖子
	api.GET("/posts", postHandler.List)                  // 帖子列表
	api.GET("/posts/:id", postHandler.Detail)            // 帖子详情 + 评论树
	api.GET("/posts/:id/comments", commentHandler.List)  // 评论树
	api.GET("/posts/:id/vote", voteHandler.Get)          // 赞踩统计

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/communities", communityHandler.Create)      // 创建社区
		authorized.POST("/posts", postHandler.Create)                 // 发布帖子
		authorized.POST("/posts/:id/comments", commentHandler.Create) // 发表评论/回复
		authorized.POST("/posts/:id/vote", voteHandler.Vote)          // 点赞/点踩
	}
}
