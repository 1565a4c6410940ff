package v1

import (
	"github.com/gin-gonic/gin"

	"prodline/internal/parser"
	"prodline/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store  store.ItemStore
	engine *parser.Engine
}

// NewHandler 创建 V1 API 处理器
func NewHandler(store store.ItemStore, engine *parser.Engine) *Handler {
	return &Handler{
		store:  store,
		engine: engine,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 文件上传与提取
	router.POST("/upload", h.Upload)

	// 生产行项目查询
	router.GET("/production-items", h.ListItems)
	router.GET("/production-items/:id", h.GetItem)
	router.DELETE("/production-items/:id", h.DeleteItem)

	// 状态统计
	router.GET("/status-counts", h.StatusCounts)
}
