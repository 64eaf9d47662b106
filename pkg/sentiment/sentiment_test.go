package sentiment

import "testing"

func TestAnalyze(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name       string
		text       string
		wantLabel  Label
		wantMethod string
	}{
		{"empty", "", LabelNeutral, "empty"},
		{"whitespace only", "   ", LabelNeutral, "empty"},
		{"no keywords", "今天去了图书馆", LabelNeutral, "default"},
		{"angry", "气死我了真是垃圾", LabelAngry, "rules"},
		{"happy", "哈哈太棒了", LabelHappy, "rules"},
		{"sad", "好难过想哭", LabelSad, "rules"},
		{"internet slang happy", "这操作yyds", LabelHappy, "rules"},
		{"uppercase folded", "YYDS", LabelHappy, "rules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.text)
			if got.Label != tt.wantLabel {
				t.Errorf("Analyze(%q).Label = %s, want %s", tt.text, got.Label, tt.wantLabel)
			}
			if got.Method != tt.wantMethod {
				t.Errorf("Analyze(%q).Method = %s, want %s", tt.text, got.Method, tt.wantMethod)
			}
		})
	}
}

func TestAnalyzeTiePrecedence(t *testing.T) {
	a := NewAnalyzer()

	// One angry hit and one happy hit: angry wins the tie.
	got := a.Analyze("又爱又恨")
	if got.Label != LabelAngry {
		t.Errorf("tie resolved to %s, want angry", got.Label)
	}

	// One happy hit and one sad hit: happy outranks sad.
	got = a.Analyze("爱哭")
	if got.Label != LabelHappy {
		t.Errorf("tie resolved to %s, want happy", got.Label)
	}
}

func TestAnalyzeConfidence(t *testing.T) {
	a := NewAnalyzer()

	one := a.Analyze("真帅")
	if one.Confidence != 0.7 {
		t.Errorf("single hit confidence = %v, want 0.7", one.Confidence)
	}

	many := a.Analyze("哈哈开心太棒厉害可爱优秀甜")
	if many.Confidence != 0.95 {
		t.Errorf("many hits confidence = %v, want capped 0.95", many.Confidence)
	}

	if got := a.Analyze("随便说说").Confidence; got != 0.5 {
		t.Errorf("neutral confidence = %v, want 0.5", got)
	}
}

func TestAnalyzeRawScores(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		text string
		want float64
	}{
		{"垃圾", 0.2},
		{"开心", 0.85},
		{"难过", 0.4},
	}
	for _, tt := range tests {
		if got := a.Analyze(tt.text).RawScore; got != tt.want {
			t.Errorf("Analyze(%q).RawScore = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestAnalyzeBatch(t *testing.T) {
	a := NewAnalyzer()
	results := a.AnalyzeBatch([]string{"开心", "垃圾", ""})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wantLabels := []Label{LabelHappy, LabelAngry, LabelNeutral}
	for i, w := range wantLabels {
		if results[i].Label != w {
			t.Errorf("result %d = %s, want %s", i, results[i].Label, w)
		}
	}
}

func TestDominant(t *testing.T) {
	a := NewAnalyzer()

	label, conf := a.Dominant(nil)
	if label != LabelNeutral || conf != 0.5 {
		t.Errorf("empty input: %s/%v, want neutral/0.5", label, conf)
	}

	label, _ = a.Dominant([]string{"开心", "太棒了", "垃圾"})
	if label != LabelHappy {
		t.Errorf("dominant = %s, want happy", label)
	}
}
