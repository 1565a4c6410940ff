// Package llm 提供基于 OpenAI 的表头分类策略
// 它实现 parser.Strategy，仅在配置了 API Key 时启用；
// 调用失败或返回低置信度时由引擎回退到规则分类器，
// 核心提取流程始终可离线运行
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"prodline/internal/parser"
)

// Config 分类器配置
type Config struct {
	APIKey         string
	BaseURL        string // 自定义网关/代理地址，空则用官方端点
	Model          string
	TimeoutSeconds int
	MaxSampleChars int
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Model:          openai.GPT4oMini,
		TimeoutSeconds: 30,
		MaxSampleChars: 2000,
	}
}

// Classifier OpenAI 表头分类器
type Classifier struct {
	client *openai.Client
	config Config
}

// NewClassifier 创建分类器
func NewClassifier(config Config) (*Classifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = 30
	}

	return &Classifier{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// columnResult LLM 返回的单列映射
type columnResult struct {
	Column     int     `json:"column"`
	Field      string  `json:"field,omitempty"`
	Stage      string  `json:"stage,omitempty"`
	SubKind    string  `json:"subKind,omitempty"`
	Confidence float64 `json:"confidence"`
}

// classifyResponse LLM 返回的完整映射
type classifyResponse struct {
	Columns []columnResult `json:"columns"`
}

// Classify 实现 parser.Strategy
// 单次请求发送全部列标签与采样值，要求返回严格 JSON 映射
func (c *Classifier) Classify(ctx context.Context, req parser.ClassifyRequest) ([]parser.HeaderSpec, error) {
	timeout := time.Duration(c.config.TimeoutSeconds) * time.Second
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(req, c.config.MaxSampleChars),
			},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = stripCodeFence(content)

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("malformed classifier reply: %w", err)
	}

	specs := make([]parser.HeaderSpec, len(req.Labels))
	for i, label := range req.Labels {
		specs[i] = parser.HeaderSpec{ColumnIndex: i, RawLabel: label}
	}
	for _, col := range parsed.Columns {
		if col.Column < 0 || col.Column >= len(specs) {
			continue
		}
		spec := &specs[col.Column]
		spec.Field = parser.CanonicalField(col.Field)
		spec.Stage = col.Stage
		spec.SubKind = parser.SubKind(col.SubKind)
		spec.Confidence = col.Confidence
	}

	return specs, nil
}

const systemPrompt = `You map spreadsheet column headers from textile "Time & Action" production sheets to a canonical schema.

Canonical fields: order_number, style, color, quantity, fabric.
Stages: fabric, cutting, sewing, embroidery, size_set, vap, feeding, processing, finishing, shipping.
Stage sub-kinds: planned_date, actual_date, planned_qty, actual_qty.

Reply with strict JSON only:
{"columns":[{"column":<index>,"field":"<canonical field>","confidence":<0-1>} or {"column":<index>,"stage":"<stage>","subKind":"<sub-kind>","confidence":<0-1>}]}

Omit columns you cannot map. Never invent fields or stages outside the lists above.`

// buildPrompt 组装单次请求的用户消息
func buildPrompt(req parser.ClassifyRequest, maxSampleChars int) string {
	if maxSampleChars <= 0 {
		maxSampleChars = 2000
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sheet: %s\nColumns:\n", req.SheetName)

	sampleBudget := maxSampleChars
	for i, label := range req.Labels {
		fmt.Fprintf(&b, "%d: %q", i, label)
		if i < len(req.Samples) && len(req.Samples[i]) > 0 && sampleBudget > 0 {
			joined := strings.Join(req.Samples[i], ", ")
			if len(joined) > sampleBudget {
				joined = joined[:sampleBudget]
			}
			sampleBudget -= len(joined)
			fmt.Fprintf(&b, " (samples: %s)", joined)
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// stripCodeFence 去掉模型偶尔包裹的 ``` 围栏
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
