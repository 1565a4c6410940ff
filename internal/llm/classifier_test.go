package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"prodline/internal/parser"
)

// fakeOpenAI 返回固定列映射的 chat completions 端点
func fakeOpenAI(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index": 0,
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClassifier(t *testing.T, baseURL string) *Classifier {
	t.Helper()
	config := DefaultConfig()
	config.APIKey = "test-key"
	config.BaseURL = baseURL + "/v1"
	c, err := NewClassifier(config)
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	return c
}

func TestNewClassifier_RequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewClassifier(Config{}); err == nil {
		t.Fatalf("expected error without API key")
	}
}

func TestClassify_MapsColumns(t *testing.T) {
	t.Parallel()

	reply := `{"columns":[
		{"column":0,"field":"order_number","confidence":0.98},
		{"column":1,"field":"style","confidence":0.97},
		{"column":2,"stage":"cutting","subKind":"planned_date","confidence":0.91}
	]}`
	srv := fakeOpenAI(t, reply)
	defer srv.Close()

	c := newTestClassifier(t, srv.URL)
	specs, err := c.Classify(context.Background(), parser.ClassifyRequest{
		SheetName: "TNA",
		Labels:    []string{"order no", "style", "cutting plan", "remarks"},
		Samples:   [][]string{{"IO-1001"}, {"ST-88"}, {"05-01-2026"}, {"rush"}},
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(specs) != 4 {
		t.Fatalf("specs = %d, want 4", len(specs))
	}

	if specs[0].Field != parser.FieldOrderNumber || specs[0].Confidence != 0.98 {
		t.Fatalf("spec 0: %+v", specs[0])
	}
	if specs[2].Stage != "cutting" || specs[2].SubKind != parser.SubPlannedDate {
		t.Fatalf("spec 2: %+v", specs[2])
	}
	// 模型未返回的列保持未映射
	if specs[3].IsMapped() {
		t.Fatalf("spec 3 should stay unmapped: %+v", specs[3])
	}
	if specs[3].RawLabel != "remarks" || specs[3].ColumnIndex != 3 {
		t.Fatalf("spec 3 identity: %+v", specs[3])
	}
}

func TestClassify_StripsCodeFence(t *testing.T) {
	t.Parallel()

	reply := "```json\n{\"columns\":[{\"column\":0,\"field\":\"style\",\"confidence\":0.9}]}\n```"
	srv := fakeOpenAI(t, reply)
	defer srv.Close()

	c := newTestClassifier(t, srv.URL)
	specs, err := c.Classify(context.Background(), parser.ClassifyRequest{
		SheetName: "TNA",
		Labels:    []string{"style no."},
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if specs[0].Field != parser.FieldStyle {
		t.Fatalf("spec 0: %+v", specs[0])
	}
}

func TestClassify_OutOfRangeColumnIgnored(t *testing.T) {
	t.Parallel()

	reply := `{"columns":[{"column":9,"field":"style","confidence":0.9}]}`
	srv := fakeOpenAI(t, reply)
	defer srv.Close()

	c := newTestClassifier(t, srv.URL)
	specs, err := c.Classify(context.Background(), parser.ClassifyRequest{
		SheetName: "TNA",
		Labels:    []string{"style no."},
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if specs[0].IsMapped() {
		t.Fatalf("out-of-range mapping applied: %+v", specs[0])
	}
}

func TestClassify_MalformedReply(t *testing.T) {
	t.Parallel()

	srv := fakeOpenAI(t, "the cutting column is probably column 2")
	defer srv.Close()

	c := newTestClassifier(t, srv.URL)
	_, err := c.Classify(context.Background(), parser.ClassifyRequest{
		SheetName: "TNA",
		Labels:    []string{"cutting plan"},
	})
	if err == nil {
		t.Fatalf("expected error for non-JSON reply")
	}
}

func TestBuildPrompt_SampleBudget(t *testing.T) {
	t.Parallel()

	req := parser.ClassifyRequest{
		SheetName: "TNA",
		Labels:    []string{"order no", "style"},
		Samples:   [][]string{{"IO-1001", "IO-1002"}, {"ST-88"}},
	}
	prompt := buildPrompt(req, 2000)
	for _, want := range []string{"Sheet: TNA", `0: "order no"`, "IO-1001", "ST-88"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}

	// 采样预算耗尽后不再附带采样值
	tight := buildPrompt(req, 1)
	if strings.Contains(tight, "ST-88") {
		t.Fatalf("sample budget not enforced:\n%s", tight)
	}
}
