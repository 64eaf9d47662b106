// Package sentiment classifies short Chinese texts into coarse emotion
// labels with a keyword rule engine. It is consumed by the API layer to
// annotate trends; the scoring engine never depends on it.
package sentiment

import "strings"

// Label is a coarse emotion class.
type Label string

const (
	LabelAngry   Label = "angry"
	LabelHappy   Label = "happy"
	LabelSad     Label = "sad"
	LabelNeutral Label = "neutral"
)

// Result is one classified text.
type Result struct {
	Text       string  `json:"text"`
	Label      Label   `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	RawScore   float64 `json:"raw_score"`
	Method     string  `json:"method"`
}

var angryKeywords = []string{
	"愤怒", "怒", "骂", "烂", "垃圾", "崩", "傻", "蠢", "恶心",
	"讨厌", "滚", "去死", "无耻", "可恶", "气死", "操", "妈的",
	"黑心", "坑", "骗", "假", "渣", "恨", "混蛋", "无语",
}

var happyKeywords = []string{
	"哈哈", "开心", "太棒", "牛", "赞", "厉害", "爱", "喜欢",
	"感谢", "幸福", "欢乐", "可爱", "哇", "耶", "好看", "优秀",
	"帅", "美", "甜", "暖", "支持", "期待", "激动", "感动",
	"泪目", "破防", "yyds", "绝绝子", "无敌", "顶",
}

var sadKeywords = []string{
	"哭", "难过", "心疼", "悲", "伤心", "遗憾", "可怜", "唉",
	"累", "丧", "emo", "抑郁", "焦虑", "绝望", "痛", "苦",
	"无奈", "心酸", "叹气", "泪", "别了", "再见", "结束",
}

// Analyzer is the rule-based classifier. It is stateless and safe for
// concurrent use.
type Analyzer struct{}

// NewAnalyzer creates an analyzer.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze classifies one text. The class with the most keyword hits wins,
// with angry taking precedence over happy over sad on ties; texts without
// any hit are neutral at confidence 0.5.
func (a *Analyzer) Analyze(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Text: text, Label: LabelNeutral, Confidence: 0.5, RawScore: 0.5, Method: "empty"}
	}

	lower := strings.ToLower(text)
	angry := countMatches(lower, angryKeywords)
	happy := countMatches(lower, happyKeywords)
	sad := countMatches(lower, sadKeywords)

	if angry+happy+sad == 0 {
		return Result{Text: text, Label: LabelNeutral, Confidence: 0.5, RawScore: 0.5, Method: "default"}
	}

	max := angry
	if happy > max {
		max = happy
	}
	if sad > max {
		max = sad
	}

	var label Label
	var raw float64
	switch {
	case angry == max:
		label, raw = LabelAngry, 0.2
	case happy == max:
		label, raw = LabelHappy, 0.85
	default:
		label, raw = LabelSad, 0.4
	}

	confidence := 0.6 + float64(max)*0.1
	if confidence > 0.95 {
		confidence = 0.95
	}

	return Result{Text: text, Label: label, Confidence: confidence, RawScore: raw, Method: "rules"}
}

// AnalyzeBatch classifies each text independently.
func (a *Analyzer) AnalyzeBatch(texts []string) []Result {
	out := make([]Result, 0, len(texts))
	for _, t := range texts {
		out = append(out, a.Analyze(t))
	}
	return out
}

// Dominant returns the most frequent label across texts together with the
// average confidence. Empty input is neutral.
func (a *Analyzer) Dominant(texts []string) (Label, float64) {
	if len(texts) == 0 {
		return LabelNeutral, 0.5
	}

	counts := make(map[Label]int)
	total := 0.0
	for _, r := range a.AnalyzeBatch(texts) {
		counts[r.Label]++
		total += r.Confidence
	}

	dominant := LabelNeutral
	best := 0
	for _, label := range []Label{LabelAngry, LabelHappy, LabelSad, LabelNeutral} {
		if counts[label] > best {
			dominant = label
			best = counts[label]
		}
	}
	return dominant, total / float64(len(texts))
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		n += strings.Count(text, kw)
	}
	return n
}
