package v1

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"prodline/internal/model"
	"prodline/internal/parser"
)

// UploadResponse 上传提取结果
type UploadResponse struct {
	SourceID    string             `json:"sourceId"`
	SourceFile  string             `json:"sourceFile"`
	Extracted   int                `json:"extracted"`
	Persisted   int                `json:"persisted"`
	Diagnostics []model.Diagnostic `json:"diagnostics"`
}

// Upload 上传表格文件并提取生产行项目
// POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" && ext != ".xlsm" && ext != ".xls" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "仅支持 Excel 文件 (.xlsx/.xlsm/.xls)"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
		return
	}

	batch, err := h.engine.Extract(c.Request.Context(), data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, parser.ErrFileFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "文件格式错误，无法解析工作簿"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "提取失败: " + err.Error()})
		return
	}

	persisted, err := h.store.UpsertBatch(batch.Items)
	if err != nil {
		// 提取成功但入库失败，报告中附带已提取条数
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "保存失败: " + err.Error(),
			"extracted": len(batch.Items),
		})
		return
	}

	diagnostics := batch.Diagnostics
	if diagnostics == nil {
		diagnostics = []model.Diagnostic{}
	}

	c.JSON(http.StatusOK, UploadResponse{
		SourceID:    batch.SourceID,
		SourceFile:  batch.SourceFile,
		Extracted:   len(batch.Items),
		Persisted:   persisted,
		Diagnostics: diagnostics,
	})
}
