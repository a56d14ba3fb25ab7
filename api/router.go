package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fyerfyer/doc-analyzer-system/api/handler"
	"github.com/fyerfyer/doc-analyzer-system/api/middleware"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(analyzeHandler *handler.AnalyzeHandler) *gin.Engine {
	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.SetTraceID())

	// 在调试模式下记录请求体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
	}

	api := router.Group("/api")
	{
		analyzeGroup := api.Group("/analyze")
		{
			// 上传并分析文档 - POST /api/analyze
			analyzeGroup.POST("", analyzeHandler.AnalyzeFile)

			// 直接分析文本 - POST /api/analyze/text
			analyzeGroup.POST("/text", analyzeHandler.AnalyzeText)

			// 列出分析结果 - GET /api/analyze
			analyzeGroup.GET("", analyzeHandler.ListAnalyses)

			// 导出CSV - GET /api/analyze/export/csv
			analyzeGroup.GET("/export/csv", analyzeHandler.ExportCSV)

			// 交叉引用分析 - POST /api/analyze/crossref
			analyzeGroup.POST("/crossref", analyzeHandler.CrossReference)

			// 查询分析结果 - GET /api/analyze/:id
			analyzeGroup.GET("/:id", analyzeHandler.GetAnalysis)
		}

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}

// Cors 跨域资源共享中间件
// 如果需要支持跨域请求，可以启用此中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
