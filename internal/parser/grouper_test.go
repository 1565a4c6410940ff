package parser

import (
	"testing"

	"prodline/internal/model"
)

func groupHeaders() []HeaderSpec {
	return []HeaderSpec{
		{ColumnIndex: 0, RawLabel: "order no", Field: FieldOrderNumber},
		{ColumnIndex: 1, RawLabel: "style", Field: FieldStyle},
		{ColumnIndex: 2, RawLabel: "color", Field: FieldColor},
		{ColumnIndex: 3, RawLabel: "qty", Field: FieldQuantity},
	}
}

func TestGroupRows_CarryForward(t *testing.T) {
	t.Parallel()

	grid := SheetGrid{
		Name: "TNA",
		Rows: [][]RawCell{
			textRow("Order No", "Style", "Color", "Qty"),
			textRow("IO-1001", "ST-88", "Navy", "1200"),
			textRow("", "", "White", "800"),
			textRow("", "", "Black", "500"),
			textRow("IO-1002", "ST-91", "Red", "300"),
		},
	}

	flats, diags := GroupRows(grid, groupHeaders(), 0)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(flats) != 4 {
		t.Fatalf("flats = %d, want 4", len(flats))
	}

	// 空白组标识继承最近的非空值
	if got := flats[1].Cells[0].Value; got != "IO-1001" {
		t.Fatalf("row 3 order = %q, want IO-1001", got)
	}
	if got := flats[1].Cells[1].Value; got != "ST-88" {
		t.Fatalf("row 3 style = %q, want ST-88", got)
	}
	// 变体字段不继承
	if got := flats[1].Cells[2].Value; got != "White" {
		t.Fatalf("row 3 color = %q, want White", got)
	}

	// 组标识来源行
	if flats[0].GroupRow != 2 || flats[1].GroupRow != 2 || flats[2].GroupRow != 2 {
		t.Fatalf("group rows = %d/%d/%d, want 2/2/2", flats[0].GroupRow, flats[1].GroupRow, flats[2].GroupRow)
	}

	// 新组重置携带值
	if got := flats[3].Cells[0].Value; got != "IO-1002" {
		t.Fatalf("row 5 order = %q, want IO-1002", got)
	}
	if flats[3].GroupRow != 5 {
		t.Fatalf("row 5 group row = %d, want 5", flats[3].GroupRow)
	}
}

func TestGroupRows_IdentityMissing(t *testing.T) {
	t.Parallel()

	// 继承前没有任何组标识的行被丢弃并记录诊断
	grid := SheetGrid{
		Name: "TNA",
		Rows: [][]RawCell{
			textRow("Order No", "Style", "Color", "Qty"),
			textRow("", "", "Navy", "1200"),
			textRow("IO-1001", "ST-88", "White", "800"),
		},
	}

	flats, diags := GroupRows(grid, groupHeaders(), 0)
	if len(flats) != 1 {
		t.Fatalf("flats = %d, want 1", len(flats))
	}
	if len(diags) != 1 {
		t.Fatalf("diags = %d, want 1", len(diags))
	}
	if diags[0].Code != model.DiagGroupIdentityMissing {
		t.Fatalf("diag code = %q", diags[0].Code)
	}
	if diags[0].Row != 2 {
		t.Fatalf("diag row = %d, want 2", diags[0].Row)
	}
}

func TestGroupRows_SkipsEmptyRows(t *testing.T) {
	t.Parallel()

	grid := SheetGrid{
		Name: "TNA",
		Rows: [][]RawCell{
			textRow("Order No", "Style", "Color", "Qty"),
			textRow("IO-1001", "ST-88", "Navy", "1200"),
			textRow("", "", "", ""),
			textRow("", "", "White", "800"),
		},
	}

	flats, diags := GroupRows(grid, groupHeaders(), 0)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(flats) != 2 {
		t.Fatalf("flats = %d, want 2", len(flats))
	}
	// 空行不打断携带
	if got := flats[1].Cells[0].Value; got != "IO-1001" {
		t.Fatalf("carry across empty row: order = %q", got)
	}
}
