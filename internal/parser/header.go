package parser

import "fmt"

// HeaderResolver 表头定位与合并
// 在前 ScanRows 行内找词表命中数最多的行作为表头锚点；
// 锚点上一行的非空单元格与锚点单元格拼接，覆盖跨行/合并单元格表头
type HeaderResolver struct {
	vocab    *Vocabulary
	scanRows int // 扫描的最大行数
	minHits  int // 表头行的最低词表命中数
}

// NewHeaderResolver 创建表头解析器
func NewHeaderResolver(vocab *Vocabulary, scanRows, minHits int) *HeaderResolver {
	if scanRows <= 0 {
		scanRows = 5
	}
	if minHits <= 0 {
		minHits = 2
	}
	return &HeaderResolver{vocab: vocab, scanRows: scanRows, minHits: minHits}
}

// Resolve 解析工作表表头
// 返回每列一个 raw_label、表头锚点行号（0 基）
// 找不到满足阈值的行返回 ErrHeaderNotFound
func (r *HeaderResolver) Resolve(grid SheetGrid) (labels []string, anchorRow int, err error) {
	if len(grid.Rows) == 0 {
		return nil, 0, fmt.Errorf("%w: sheet %q is empty", ErrHeaderNotFound, grid.Name)
	}

	tokens := r.vocab.allTokens()

	limit := r.scanRows
	if limit > len(grid.Rows) {
		limit = len(grid.Rows)
	}

	bestRow := -1
	bestHits := 0
	for i := 0; i < limit; i++ {
		hits := r.countHits(grid.Rows[i], tokens)
		if hits > bestHits {
			bestHits = hits
			bestRow = i
		}
	}

	if bestRow < 0 || bestHits < r.minHits {
		return nil, 0, fmt.Errorf("%w: sheet %q (best row matched %d tokens, need %d)",
			ErrHeaderNotFound, grid.Name, bestHits, r.minHits)
	}

	anchor := grid.Rows[bestRow]
	var parent []RawCell
	if bestRow > 0 {
		parent = grid.Rows[bestRow-1]
	}

	width := len(anchor)
	if len(parent) > width {
		width = len(parent)
	}

	labels = make([]string, width)
	for col := 0; col < width; col++ {
		child := cellAt(anchor, col)
		above := cellAt(parent, col)

		switch {
		case !above.IsEmpty() && !child.IsEmpty():
			// 合并表头：上行是阶段名，本行是 plan/actual 等子类别
			labels[col] = fmt.Sprintf("%s | %s", NormalizeLabel(above.Value), NormalizeLabel(child.Value))
		case !child.IsEmpty():
			labels[col] = NormalizeLabel(child.Value)
		default:
			labels[col] = fmt.Sprintf("col_%d", col)
		}
	}

	return labels, bestRow, nil
}

// countHits 词表命中数（大小写与空白不敏感）
// 只按词边界匹配，正文行里 "information" 不算 "io" 的命中
func (r *HeaderResolver) countHits(row []RawCell, tokens []string) int {
	hits := 0
	for _, cell := range row {
		if cell.IsEmpty() {
			continue
		}
		label := NormalizeLabel(cell.Value)
		if ContainsAnyWord(label, tokens) {
			hits++
		}
	}
	return hits
}

func cellAt(row []RawCell, col int) RawCell {
	if col < 0 || col >= len(row) {
		return RawCell{Kind: CellEmpty}
	}
	return row[col]
}
