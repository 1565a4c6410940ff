package parser

import (
	"fmt"

	"prodline/internal/model"
)

// FlatRow 展平后的单条变体行，可直接进入规范化
type FlatRow struct {
	Sheet    string
	RowIndex int // 1 基物理行号
	GroupRow int // 组标识来源行（未继承时等于 RowIndex）
	Cells    []RawCell
}

// carried 组标识字段的携带值
type carried struct {
	cell      RawCell
	originRow int
}

// GroupRows 按序扫描数据行，展开“款号跨多行颜色变体”的分组
//
// 规则：组标识字段（order_number/style）为空时继承本表内最近一个
// 非空值；变体字段（颜色、数量、阶段日期）从不继承。
// 累加器是本次扫描的局部值，逐表重置，不共享可变状态。
// 继承后仍无任何组标识的行被丢弃并记录诊断
func GroupRows(grid SheetGrid, headers []HeaderSpec, anchorRow int) ([]FlatRow, []model.Diagnostic) {
	var flats []FlatRow
	var diags []model.Diagnostic

	// 组标识列
	groupCols := make([]int, 0, 2)
	for _, h := range headers {
		if h.IsGroupField() {
			groupCols = append(groupCols, h.ColumnIndex)
		}
	}

	carry := make(map[int]carried, len(groupCols))

	for i := anchorRow + 1; i < len(grid.Rows); i++ {
		row := grid.Rows[i]
		if rowEmpty(row) {
			continue
		}

		rowNum := i + 1 // 物理行号
		cells := make([]RawCell, len(headers))
		copy(cells, row)

		groupRow := rowNum
		hasIdentity := false
		for _, col := range groupCols {
			cell := cellAt(cells, col)
			if cell.IsEmpty() {
				if c, ok := carry[col]; ok {
					cells[col] = c.cell
					if c.originRow < groupRow {
						groupRow = c.originRow
					}
					hasIdentity = true
				}
				continue
			}
			carry[col] = carried{cell: cell, originRow: rowNum}
			hasIdentity = true
		}

		if len(groupCols) == 0 || !hasIdentity {
			diags = append(diags, model.Diagnostic{
				Sheet:   grid.Name,
				Row:     rowNum,
				Code:    model.DiagGroupIdentityMissing,
				Message: fmt.Sprintf("row %d: no order number or style, row dropped", rowNum),
			})
			continue
		}

		flats = append(flats, FlatRow{
			Sheet:    grid.Name,
			RowIndex: rowNum,
			GroupRow: groupRow,
			Cells:    cells,
		})
	}

	return flats, diags
}

// rowEmpty 整行为空
func rowEmpty(row []RawCell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
