package routes

import (
	"college_library_backend/app"
	"college_library_backend/controllers"
	"college_library_backend/models"
	"time"
)

func RegisterRoutes(r *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(r)
	authCtl := controllers.GetAuthController(s)
	bookCtl := controllers.NewBookController(s)
	lendCtl := controllers.NewLendingController(s)
	memberCtl := controllers.NewMembershipController(s)
	userCtl := controllers.GetUserController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	adminMW := app.RoleRequired(models.RoleAdmin)
	staffMW := app.RoleRequired(models.RoleAdmin, models.RoleManagement)
	issuerMW := app.RoleRequired(models.RoleAdmin, models.RoleManagement, models.RoleIssuer)
	seenMW := app.TouchLastSeen(s.Repo, r.RDB, 5*time.Minute)

	engine := r.Router

	// ------------------------------
	// 认证
	// ------------------------------
	auth := engine.Group("/auth")
	{
		auth.POST("/login", authCtl.Login)
		auth.POST("/logout", authCtl.Logout)
		auth.GET("/whoami", authMW, seenMW, authCtl.WhoAmI)
	}

	// ------------------------------
	// 目录：书 / 副本 / 类别
	// ------------------------------
	books := engine.Group("/api/books", authMW, seenMW)
	{
		books.GET("", bookCtl.ListBooks)
		books.GET("/search", bookCtl.SearchBooks)
		books.GET("/filter", bookCtl.FilterBooks)
		books.GET("/:id", bookCtl.GetBook)
		books.GET("/:id/copies", bookCtl.ListCopies)
	}
	engine.POST("/api/books", authMW, staffMW, bookCtl.CreateBook)
	engine.GET("/api/copies/available", authMW, seenMW, bookCtl.ListAvailableCopies)

	genres := engine.Group("/api/genres", authMW)
	{
		genres.GET("", bookCtl.ListGenres)
		genres.POST("", staffMW, bookCtl.CreateGenre)
		genres.PUT("/:id", staffMW, bookCtl.RenameGenre)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	issues := engine.Group("/api/issues", authMW, seenMW, issuerMW)
	{
		issues.POST("", lendCtl.IssueBook)
		issues.POST("/:id/return", lendCtl.ReturnBook)
		issues.GET("/open", lendCtl.ListOpenIssues)
	}
	engine.GET("/api/defaulters", authMW, lendCtl.ListDefaulters)

	// ------------------------------
	// 借书卡 / 院系
	// ------------------------------
	cards := engine.Group("/api", authMW, seenMW)
	{
		cards.POST("/students/:id/card", memberCtl.GenerateCard)
		cards.GET("/cards/search", memberCtl.SearchCards)
		cards.GET("/cards/:id", memberCtl.GetCard)
	}
	engine.POST("/api/cards/deactivate", authMW, adminMW, memberCtl.DeactivateCards)

	depts := engine.Group("/api", authMW)
	{
		depts.GET("/departments", memberCtl.ListDepartments)
		depts.GET("/batches", memberCtl.ListBatches)
		depts.POST("/departments", adminMW, memberCtl.CreateDepartment)
		depts.POST("/departments/:id/batches", adminMW, memberCtl.CreateBatch)
		depts.PUT("/batches/:id", adminMW, memberCtl.RenameBatch)
	}

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := engine.Group("/api/users", authMW, adminMW)
	{
		users.GET("", userCtl.ListUsers)
		users.GET("/students", userCtl.ListStudents)
		users.POST("", userCtl.CreateStudent)
		users.POST("/management", userCtl.CreateManagementUser)
		users.PUT("/:id", userCtl.UpdateProfile)
	}
}
