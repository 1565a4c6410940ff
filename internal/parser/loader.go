package parser

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook 将工作簿字节解码为逐表网格
// 仅做结构解码和原始类型标注，不做任何语义解释
func LoadWorkbook(data []byte) ([]SheetGrid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileFormat, err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	grids := make([]SheetGrid, 0, len(sheetNames))

	for idx, name := range sheetNames {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %q: %v", ErrFileFormat, name, err)
		}

		grid := SheetGrid{Index: idx, Name: name, Rows: make([][]RawCell, 0, len(rows))}
		for _, row := range rows {
			cells := make([]RawCell, len(row))
			for i, v := range row {
				cells[i] = tagCell(v)
			}
			grid.Rows = append(grid.Rows, cells)
		}
		grids = append(grids, grid)
	}

	return grids, nil
}

// tagCell 标注单元格原始类型
func tagCell(value string) RawCell {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return RawCell{Value: value, Kind: CellEmpty}
	}

	if _, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64); err == nil {
		return RawCell{Value: value, Kind: CellNumeric}
	}

	if looksLikeDate(trimmed) {
		return RawCell{Value: value, Kind: CellDate}
	}

	return RawCell{Value: value, Kind: CellText}
}

// looksLikeDate 是否匹配任一文本日期格式
func looksLikeDate(s string) bool {
	if _, ok := ParseDate(RawCell{Value: s, Kind: CellText}); ok {
		return true
	}
	return false
}
