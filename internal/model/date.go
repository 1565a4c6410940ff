package model

import (
	"fmt"
	"strings"
	"time"
)

// Date 仅保留年月日的日期值
// 对外序列化固定为 ISO-8601 (YYYY-MM-DD)
type Date struct {
	time.Time
}

// NewDate 创建日期
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf 截断时间部分
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ISO 返回 YYYY-MM-DD
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Before 严格早于
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// MarshalJSON 输出 "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.ISO())), nil
}

// UnmarshalJSON 解析 "YYYY-MM-DD"
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = Date{t}
	return nil
}
