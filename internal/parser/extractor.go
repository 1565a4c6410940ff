package parser

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"prodline/internal/model"
)

// sampleValues 每列送入分类器的最大采样值数量
const sampleValues = 5

// Options 引擎参数
// HeaderScanRows 默认 5，MinHeaderHits 默认 2，FuzzyThreshold 默认 0.75；
// Strategy 为可选的外部分类策略（如 LLM），nil 时仅用规则分类；
// Now 是状态评估时钟，测试注入用
type Options struct {
	Vocabulary     *Vocabulary
	HeaderScanRows int
	MinHeaderHits  int
	FuzzyThreshold float64
	Strategy       Strategy
	Now            func() time.Time
}

// Engine 提取引擎
// 提取过程无副作用、不读共享可变状态，工作表之间可并行
type Engine struct {
	vocab     *Vocabulary
	resolver  *HeaderResolver
	rules     *RuleClassifier
	strategy  Strategy
	threshold float64
	now       func() time.Time
}

// NewEngine 创建提取引擎
func NewEngine(opts Options) *Engine {
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	threshold := opts.FuzzyThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.75
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		vocab:     vocab,
		resolver:  NewHeaderResolver(vocab, opts.HeaderScanRows, opts.MinHeaderHits),
		rules:     NewRuleClassifier(vocab, threshold),
		strategy:  opts.Strategy,
		threshold: threshold,
		now:       now,
	}
}

// sheetResult 单表提取结果
type sheetResult struct {
	index int
	items []*model.ProductionLineItem
	diags []model.Diagnostic
}

// Extract 提取整个工作簿
//
// 工作簿级失败（ErrFileFormat）终止整批，不产出任何记录；
// 工作表级失败仅记录诊断并跳过该表；行/单元格级问题降级为诊断。
// 输出按来源工作表顺序重排，与并行调度顺序无关
func (e *Engine) Extract(ctx context.Context, data []byte, sourceFile string) (*model.ExtractionBatch, error) {
	grids, err := LoadWorkbook(data)
	if err != nil {
		return nil, err
	}

	sourceHash := SourceHash(data)
	createdAt := e.now().UTC()
	today := model.DateOf(e.now())

	results := make([]sheetResult, len(grids))
	var wg sync.WaitGroup
	for i := range grids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.extractSheet(ctx, grids[i], sourceHash, today)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })

	batch := &model.ExtractionBatch{
		SourceID:   uuid.New().String(),
		SourceFile: sourceFile,
		SourceHash: sourceHash,
		CreatedAt:  createdAt,
	}
	for _, r := range results {
		for _, item := range r.items {
			item.SourceFile = sourceFile
			item.CreatedAt = createdAt
			item.UpdatedAt = createdAt
			batch.Items = append(batch.Items, item)
		}
		batch.Diagnostics = append(batch.Diagnostics, r.diags...)
	}

	return batch, nil
}

// extractSheet 单表流水线：表头 -> 分类 -> 分组 -> 规范化 -> 指纹
func (e *Engine) extractSheet(ctx context.Context, grid SheetGrid, sourceHash string, today model.Date) sheetResult {
	result := sheetResult{index: grid.Index}

	labels, anchorRow, err := e.resolver.Resolve(grid)
	if err != nil {
		code := model.DiagHeaderNotFound
		if len(grid.Rows) == 0 {
			code = model.DiagSheetEmpty
		}
		result.diags = append(result.diags, model.Diagnostic{
			Sheet:   grid.Name,
			Code:    code,
			Message: err.Error(),
		})
		return result
	}

	headers := e.classify(ctx, grid, labels, anchorRow)

	flats, groupDiags := GroupRows(grid, headers, anchorRow)
	result.diags = append(result.diags, groupDiags...)

	normalizer := NewNormalizer(e.vocab, today)
	for _, flat := range flats {
		item, diags := normalizer.Normalize(flat, headers)
		result.diags = append(result.diags, diags...)
		if !item.Identity() {
			// 分组阶段已兜底，这里只是防御空白标识值
			continue
		}
		item.Fingerprint = Fingerprint(sourceHash, item)
		result.items = append(result.items, item)
	}

	return result
}

// classify 执行分类策略，外部策略失败或低置信度时逐列回退到规则
func (e *Engine) classify(ctx context.Context, grid SheetGrid, labels []string, anchorRow int) []HeaderSpec {
	req := ClassifyRequest{
		SheetName: grid.Name,
		Labels:    labels,
		Samples:   sampleColumns(grid, anchorRow, len(labels)),
	}

	ruleSpecs, _ := e.rules.Classify(ctx, req)
	if e.strategy == nil {
		return ruleSpecs
	}

	specs, err := e.strategy.Classify(ctx, req)
	if err != nil || len(specs) != len(labels) {
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("external classifier failed for sheet %q, falling back to rules: %v", grid.Name, err)
		}
		return ruleSpecs
	}

	// 逐列回退：外部结果低置信度或未映射时采用规则结果
	// 词表外的字段名和阶段名一律清除，封闭词表不因外部策略扩大
	for i := range specs {
		specs[i].ColumnIndex = i
		specs[i].RawLabel = labels[i]
		if specs[i].Field != "" && !e.vocab.KnownField(specs[i].Field) {
			specs[i].Field = ""
		}
		if specs[i].Stage != "" && !e.vocab.KnownStage(specs[i].Stage) {
			specs[i].Stage = ""
			specs[i].SubKind = ""
		}
		if specs[i].Confidence < e.threshold || !specs[i].IsMapped() {
			specs[i] = ruleSpecs[i]
		}
	}
	return specs
}

// sampleColumns 从数据区为每列采样非空值
func sampleColumns(grid SheetGrid, anchorRow, width int) [][]string {
	samples := make([][]string, width)
	for i := anchorRow + 1; i < len(grid.Rows); i++ {
		for col := 0; col < width; col++ {
			if len(samples[col]) >= sampleValues {
				continue
			}
			cell := cellAt(grid.Rows[i], col)
			if !cell.IsEmpty() {
				samples[col] = append(samples[col], cell.Value)
			}
		}
	}
	return samples
}
