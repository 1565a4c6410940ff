package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"prodline/internal/model"
)

// SourceHash 源文件内容哈希
func SourceHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint 计算记录的稳定内容指纹
//
// 输入为 (源文件哈希, 订单号, 款号, 颜色, 全部阶段日期)，
// 是纯函数：相同输入恒产生相同指纹，任一阶段日期变化即改变指纹。
// 存储层按指纹做幂等 upsert
func Fingerprint(sourceHash string, item *model.ProductionLineItem) string {
	var b strings.Builder
	b.WriteString(sourceHash)
	b.WriteByte(0x1f)
	b.WriteString(item.OrderNumber)
	b.WriteByte(0x1f)
	b.WriteString(item.Style)
	b.WriteByte(0x1f)
	b.WriteString(item.Color)

	stages := make([]string, 0, len(item.Dates))
	for stage := range item.Dates {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	for _, stage := range stages {
		sd := item.Dates[stage]
		fmt.Fprintf(&b, "\x1f%s=%s/%s", stage, isoOrEmpty(sd.Planned), isoOrEmpty(sd.Actual))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func isoOrEmpty(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.ISO()
}
