package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"prodline/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore SQLite 存储实现
type SQLiteStore struct {
	db *sql.DB
}

var _ ItemStore = (*SQLiteStore)(nil)

// NewSQLite 打开数据库并初始化表结构
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite 建议单连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema 执行建表语句
func (s *SQLiteStore) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// UpsertBatch 批量写入，指纹冲突时替换旧值（保留原 id 与 created_at）
// 同批并发上传同一指纹由 SQLite 序列化为 last-write-wins
func (s *SQLiteStore) UpsertBatch(items []*model.ProductionLineItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO production_items (
			id, fingerprint, order_number, style, color, quantity, fabric,
			status, dates_json, extensions_json,
			source_file, source_sheet, row_start, row_end,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			order_number    = excluded.order_number,
			style           = excluded.style,
			color           = excluded.color,
			quantity        = excluded.quantity,
			fabric          = excluded.fabric,
			status          = excluded.status,
			dates_json      = excluded.dates_json,
			extensions_json = excluded.extensions_json,
			source_file     = excluded.source_file,
			source_sheet    = excluded.source_sheet,
			row_start       = excluded.row_start,
			row_end         = excluded.row_end,
			updated_at      = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, item := range items {
		datesJSON, err := json.Marshal(item.Dates)
		if err != nil {
			return count, fmt.Errorf("failed to encode dates for %s: %w", item.ID, err)
		}
		var extJSON []byte
		if len(item.Extensions) > 0 {
			if extJSON, err = json.Marshal(item.Extensions); err != nil {
				return count, fmt.Errorf("failed to encode extensions for %s: %w", item.ID, err)
			}
		}

		_, err = stmt.Exec(
			item.ID, item.Fingerprint, item.OrderNumber, item.Style, item.Color,
			nullableInt(item.Quantity), item.Fabric,
			string(item.Status), string(datesJSON), nullableText(extJSON),
			item.SourceFile, item.Source.Sheet, item.Source.RowStart, item.Source.RowEnd,
			item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return count, fmt.Errorf("failed to upsert record %s: %w", item.ID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, nil
}

const itemColumns = `id, fingerprint, order_number, style, color, quantity, fabric,
	status, dates_json, extensions_json,
	source_file, source_sheet, row_start, row_end, created_at, updated_at`

// List 按条件查询，按导入时间倒序
func (s *SQLiteStore) List(opts ListOptions) ([]*model.ProductionLineItem, error) {
	query := "SELECT " + itemColumns + " FROM production_items WHERE 1=1"
	query, args := applyFilters(query, nil, opts)
	query += " ORDER BY created_at DESC, id"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*model.ProductionLineItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Count 查询匹配条数
func (s *SQLiteStore) Count(opts ListOptions) (int, error) {
	query := "SELECT COUNT(*) FROM production_items WHERE 1=1"
	query, args := applyFilters(query, nil, opts)

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// GetByID 按 id 查询单条
func (s *SQLiteStore) GetByID(id string) (*model.ProductionLineItem, error) {
	row := s.db.QueryRow("SELECT "+itemColumns+" FROM production_items WHERE id = ?", id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return item, err
}

// Delete 按 id 删除
func (s *SQLiteStore) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM production_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// StatusCounts 按状态统计条数
func (s *SQLiteStore) StatusCounts() (map[model.Status]int, error) {
	rows, err := s.db.Query("SELECT status, COUNT(*) FROM production_items GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[model.Status(status)] = count
	}
	return counts, rows.Err()
}

// applyFilters 拼接查询条件
func applyFilters(query string, args []interface{}, opts ListOptions) (string, []interface{}) {
	if opts.Style != "" {
		query += " AND style LIKE ?"
		args = append(args, "%"+opts.Style+"%")
	}
	if opts.OrderNumber != "" {
		query += " AND order_number LIKE ?"
		args = append(args, "%"+opts.OrderNumber+"%")
	}
	if opts.Status != "" {
		query += " AND status = ?"
		args = append(args, string(opts.Status))
	}
	return query, args
}

// rowScanner sql.Row 与 sql.Rows 的公共扫描接口
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanItem 扫描单条记录
func scanItem(row rowScanner) (*model.ProductionLineItem, error) {
	item := &model.ProductionLineItem{}
	var quantity sql.NullInt64
	var datesJSON string
	var extJSON sql.NullString
	var status string

	err := row.Scan(
		&item.ID, &item.Fingerprint, &item.OrderNumber, &item.Style, &item.Color,
		&quantity, &item.Fabric, &status, &datesJSON, &extJSON,
		&item.SourceFile, &item.Source.Sheet, &item.Source.RowStart, &item.Source.RowEnd,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Status = model.Status(status)
	if quantity.Valid {
		q := int(quantity.Int64)
		item.Quantity = &q
	}
	if err := json.Unmarshal([]byte(datesJSON), &item.Dates); err != nil {
		return nil, fmt.Errorf("failed to decode dates for %s: %w", item.ID, err)
	}
	if extJSON.Valid && extJSON.String != "" {
		if err := json.Unmarshal([]byte(extJSON.String), &item.Extensions); err != nil {
			return nil, fmt.Errorf("failed to decode extensions for %s: %w", item.ID, err)
		}
	}
	return item, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableText(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
