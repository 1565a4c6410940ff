package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prodline/internal/model"
)

// StatusCountsResponse 各状态条数
// 四个状态始终全部返回，没有记录的状态计为 0
type StatusCountsResponse struct {
	Pending      int `json:"pending"`
	InProduction int `json:"in_production"`
	Completed    int `json:"completed"`
	Delayed      int `json:"delayed"`
	Total        int `json:"total"`
}

// StatusCounts 按状态统计生产行项目
// GET /api/status-counts
func (h *Handler) StatusCounts(c *gin.Context) {
	counts, err := h.store.StatusCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计失败: " + err.Error()})
		return
	}

	resp := StatusCountsResponse{
		Pending:      counts[model.StatusPending],
		InProduction: counts[model.StatusInProduction],
		Completed:    counts[model.StatusCompleted],
		Delayed:      counts[model.StatusDelayed],
	}
	resp.Total = resp.Pending + resp.InProduction + resp.Completed + resp.Delayed
	c.JSON(http.StatusOK, resp)
}
