package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-analyzer-system/api/middleware"
	"github.com/fyerfyer/doc-analyzer-system/api/model"
	"github.com/fyerfyer/doc-analyzer-system/internal/services"
)

// AnalyzeHandler 处理文档分析相关的API请求
type AnalyzeHandler struct {
	analysisService *services.AnalysisService // 分析服务
	logger          *logrus.Logger            // 日志记录器
}

// NewAnalyzeHandler 创建文档分析处理器
func NewAnalyzeHandler(analysisService *services.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{
		analysisService: analysisService,
		logger:          middleware.GetLogger(),
	}
}

// AnalyzeFile 处理文档上传分析请求
// POST /api/analyze
func (h *AnalyzeHandler) AnalyzeFile(c *gin.Context) {
	var req model.AnalyzeFileRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Invalid analyze request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"未提供文件",
		))
		return
	}

	filename := req.File.Filename
	if !isValidFileType(filepath.Ext(filename)) {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"不支持的文件类型，仅支持 .pdf, .md, .markdown, .txt",
		))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Error("Failed to open uploaded file")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"无法打开上传的文件",
		))
		return
	}
	defer file.Close()

	start := time.Now()
	id, result, err := h.analysisService.AnalyzeFile(c.Request.Context(), file, filename)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Error("Failed to analyze document")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"文档分析失败",
		))
		return
	}

	h.logger.WithFields(logrus.Fields{
		"analysis_id": id,
		"filename":    filename,
		"method":      result.AnalysisMethod,
		"chunks":      result.ChunkCount,
		"elapsed":     time.Since(start).String(),
	}).Info("Document analyzed")

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.AnalyzeResponse{
		AnalysisID: id,
		Result:     result,
	}))
}

// AnalyzeText 处理文本分析请求
// POST /api/analyze/text
func (h *AnalyzeHandler) AnalyzeText(c *gin.Context) {
	var req model.AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	id, result, err := h.analysisService.AnalyzeText(c.Request.Context(), req.Content, req.Filename)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to analyze text")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"文本分析失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.AnalyzeResponse{
		AnalysisID: id,
		Result:     result,
	}))
}

// GetAnalysis 查询分析结果
// GET /api/analyze/:id
func (h *AnalyzeHandler) GetAnalysis(c *gin.Context) {
	var req model.AnalysisGetRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的分析ID",
		))
		return
	}

	result, err := h.analysisService.GetResult(req.ID)
	if err != nil {
		if errors.Is(err, services.ErrAnalysisNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"分析结果不存在",
			))
			return
		}

		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.AnalyzeResponse{
		AnalysisID: req.ID,
		Result:     result,
	}))
}

// ListAnalyses 列出所有分析结果
// GET /api/analyze
func (h *AnalyzeHandler) ListAnalyses(c *gin.Context) {
	results := h.analysisService.ListResults()

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.AnalysisListResponse{
		Total:   len(results),
		Results: results,
	}))
}

// ExportCSV 导出所有分析结果为CSV
// GET /api/analyze/export/csv
func (h *AnalyzeHandler) ExportCSV(c *gin.Context) {
	filename := fmt.Sprintf("analysis_%s.csv", time.Now().Format("20060102_150405"))

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if err := h.analysisService.ExportCSV(c.Writer); err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to export analyses to csv")
		// 响应头已经写出，只能记录错误
		return
	}
}

// CrossReference 对所有已分析文档做交叉引用分析
// POST /api/analyze/crossref
func (h *AnalyzeHandler) CrossReference(c *gin.Context) {
	result := h.analysisService.CrossReference(c.Request.Context())

	c.JSON(http.StatusOK, model.NewSuccessResponse(result))
}

// isValidFileType 检查文件类型是否支持分析
func isValidFileType(ext string) bool {
	switch ext {
	case ".pdf", ".md", ".markdown", ".txt", ".text", ".log":
		return true
	default:
		return false
	}
}
