package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prodline/internal/model"
	"prodline/internal/store"
)

// ListItemsResponse 分页查询结果
type ListItemsResponse struct {
	Items []*model.ProductionLineItem `json:"items"`
	Total int                         `json:"total"`
	Skip  int                         `json:"skip"`
	Limit int                         `json:"limit"`
}

// ListItems 分页查询生产行项目
// GET /api/production-items?skip=0&limit=100&style=&status=&order_number=
func (h *Handler) ListItems(c *gin.Context) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skip 必须是非负整数"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 必须在 1 到 1000 之间"})
		return
	}

	opts := store.ListOptions{
		Style:       c.Query("style"),
		OrderNumber: c.Query("order_number"),
		Status:      model.Status(c.Query("status")),
		Limit:       limit,
		Offset:      skip,
	}

	items, err := h.store.List(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败: " + err.Error()})
		return
	}
	total, err := h.store.Count(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计失败: " + err.Error()})
		return
	}

	if items == nil {
		items = []*model.ProductionLineItem{}
	}

	c.JSON(http.StatusOK, ListItemsResponse{
		Items: items,
		Total: total,
		Skip:  skip,
		Limit: limit,
	})
}

// GetItem 按 id 查询单条
// GET /api/production-items/:id
func (h *Handler) GetItem(c *gin.Context) {
	item, err := h.store.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem 按 id 删除
// DELETE /api/production-items/:id
func (h *Handler) DeleteItem(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
