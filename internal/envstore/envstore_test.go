package envstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	text := strings.Join([]string{
		"# comment",
		"",
		"export OPENAI_API_KEY=sk-abc123",
		`QUOTED="value # not a comment"`,
		`SINGLE='single'`,
		"INLINE=plain # trailing comment",
		"HASH=a#b",
		"  SPACED  =  spaced value  ",
		"malformed line",
		"EMPTY=",
		"URL=postgres://u:p@h/db?x=1",
		`"ODD=`,
	}, "\n")

	rec := Parse(text)

	expected := map[string]string{
		"OPENAI_API_KEY": "sk-abc123",
		"QUOTED":         "value # not a comment",
		"SINGLE":         "single",
		"INLINE":         "plain",
		"HASH":           "a#b",
		"SPACED":         "spaced value",
		"EMPTY":          "",
		"URL":            "postgres://u:p@h/db?x=1",
		`"ODD`:           "",
	}
	if len(rec) != len(expected) {
		t.Errorf("Expected %d entries, got %d: %v", len(expected), len(rec), rec)
	}
	for k, v := range expected {
		got, ok := rec[k]
		if !ok {
			t.Errorf("Expected key %q to be present", k)
			continue
		}
		if got != v {
			t.Errorf("Key %q: expected %q, got %q", k, v, got)
		}
	}
	if _, ok := rec["malformed line"]; ok {
		t.Error("Expected malformed line to be skipped")
	}
}

func TestParseNeverFails(t *testing.T) {
	inputs := []string{"", "\n\n", "=", "==", "export ", "'", "\"\"", "#=x", "\x00\xff=\xfe"}
	for _, in := range inputs {
		rec := Parse(in)
		if rec == nil {
			t.Errorf("Parse(%q) returned nil record", in)
		}
	}
	if got := Parse(""); len(got) != 0 {
		t.Errorf("Expected empty record for empty input, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	rec := Load(filepath.Join(t.TempDir(), "does-not-exist.env"))
	if len(rec) != 0 {
		t.Errorf("Expected empty record, got %v", rec)
	}
}

func TestInferProvider(t *testing.T) {
	testCases := []struct {
		model    string
		provider string
		key      string
	}{
		{"gpt-4o", "OpenAI", "OPENAI_API_KEY"},
		{"GPT-4", "OpenAI", "OPENAI_API_KEY"},
		{"o3-mini", "OpenAI", "OPENAI_API_KEY"},
		{"claude-3-5-sonnet-20241022", "Anthropic", "ANTHROPIC_API_KEY"},
		{"gemini-1.5-pro", "Google", "GOOGLE_API_KEY"},
		{"mistral-large-latest", "Mistral", "MISTRAL_API_KEY"},
		{"sonar-pro", "Perplexity", "PERPLEXITY_API_KEY"},
		{"deepseek-chat", "DeepSeek", "DEEPSEEK_API_KEY"},
		{"llama3", "", ""},
		{"", "", ""},
		{"my-custom-model", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.model, func(t *testing.T) {
			p := InferProvider(tc.model)
			if tc.provider == "" {
				if p != nil {
					t.Errorf("Expected nil provider, got %+v", p)
				}
				return
			}
			if p == nil {
				t.Fatalf("Expected provider %s, got nil", tc.provider)
			}
			if p.Name != tc.provider {
				t.Errorf("Expected provider %s, got %s", tc.provider, p.Name)
			}
			if p.AcceptableKeys[0] != tc.key {
				t.Errorf("Expected first key %s, got %v", tc.key, p.AcceptableKeys)
			}
		})
	}
}

func TestInferProviderAnthropicAlias(t *testing.T) {
	p := InferProvider("claude-sonnet-4")
	if p == nil {
		t.Fatal("Expected Anthropic provider")
	}
	found := false
	for _, k := range p.AcceptableKeys {
		if k == "ANTROPIC_API_KEY" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected misspelled alias to be accepted, got %v", p.AcceptableKeys)
	}

	// Callers must not be able to mutate the table
	p.AcceptableKeys[0] = "MUTATED"
	if again := InferProvider("claude-sonnet-4"); again.AcceptableKeys[0] != "ANTHROPIC_API_KEY" {
		t.Errorf("Provider table was mutated through a returned value: %v", again.AcceptableKeys)
	}
}

func TestDiscoverMissingKey(t *testing.T) {
	rec := Parse("OPENAI_PROD_MODEL=gpt-4o\nANTHROPIC_API_KEY=sk-ant-xyz123\n")
	d := Discover(rec)

	missing := d.Missing()
	if len(missing) != 1 {
		t.Fatalf("Expected exactly one MISSING_KEY binding, got %d: %+v", len(missing), d.Bindings)
	}
	if missing[0].Variable != "OPENAI_PROD_MODEL" {
		t.Errorf("Expected OPENAI_PROD_MODEL, got %s", missing[0].Variable)
	}
	if !strings.Contains(missing[0].Message(), "OPENAI_API_KEY") {
		t.Errorf("Expected message to name OPENAI_API_KEY, got %q", missing[0].Message())
	}
	if len(d.Keys) != 1 || d.Keys[0] != "ANTHROPIC_API_KEY" {
		t.Errorf("Expected ANTHROPIC_API_KEY as the only key var, got %v", d.Keys)
	}
}

func TestDiscoverStatuses(t *testing.T) {
	rec := Parse(strings.Join([]string{
		"DEFAULT_LLM_MODEL=claude-3-haiku",
		"ANTROPIC_API_KEY=sk-ant-typo-key",
		"LOCAL_MODEL=llama3",
		"OPENAI_MODEL=gpt-4",
		"OPENAI_API_KEY=short",
		"STRIPE_SECRET=whsec_123456",
	}, "\n"))
	d := Discover(rec)

	want := map[string]Status{
		"DEFAULT_LLM_MODEL": StatusOK,
		"LOCAL_MODEL":       StatusUnknownProvider,
		"OPENAI_MODEL":      StatusMissingKey, // key too short to count
	}
	if len(d.Bindings) != len(want) {
		t.Fatalf("Expected %d bindings, got %d", len(want), len(d.Bindings))
	}
	for _, b := range d.Bindings {
		if b.Status != want[b.Variable] {
			t.Errorf("%s: expected %s, got %s", b.Variable, want[b.Variable], b.Status)
		}
	}
	if len(d.Keys) != 3 {
		t.Errorf("Expected 3 key vars, got %v", d.Keys)
	}
}

func TestSummarize(t *testing.T) {
	ok := Parse("OPENAI_MODEL=gpt-4o\nOPENAI_API_KEY=sk-1234567890")
	summary := Summarize(ok, Discover(ok))
	if !strings.Contains(summary, "OPENAI_MODEL=gpt-4o") || !strings.Contains(summary, "All model-key pairings validated") {
		t.Errorf("Unexpected summary: %q", summary)
	}
	if strings.Contains(summary, "\n") {
		t.Errorf("Summary must be a single line: %q", summary)
	}

	bad := Parse("OPENAI_MODEL=gpt-4o\nGEMINI_MODEL=gemini-pro")
	summary = Summarize(bad, Discover(bad))
	if strings.Contains(summary, "All model-key pairings validated") {
		t.Errorf("Expected missing key messages, got %q", summary)
	}
	if !strings.Contains(summary, "OPENAI_API_KEY") || !strings.Contains(summary, "GOOGLE_API_KEY") {
		t.Errorf("Expected both missing keys in summary, got %q", summary)
	}

	empty := Record{}
	if got := Summarize(empty, Discover(empty)); got != "No model variables configured" {
		t.Errorf("Unexpected empty summary: %q", got)
	}
}

func TestEnsureFile(t *testing.T) {
	t.Run("template", func(t *testing.T) {
		dir := t.TempDir()
		res := EnsureFile(dir)
		if !res.Created || res.Source != SourceTemplate {
			t.Fatalf("Expected template creation, got %+v", res)
		}
		data, err := os.ReadFile(filepath.Join(dir, ".env"))
		if err != nil {
			t.Fatalf("Expected .env to exist: %v", err)
		}
		if len(Parse(string(data))) != 0 {
			t.Errorf("Template should contain only comments, got %q", data)
		}
	})

	t.Run("example", func(t *testing.T) {
		dir := t.TempDir()
		example := "OPENAI_MODEL=gpt-4o\n"
		if err := os.WriteFile(filepath.Join(dir, ".env.example"), []byte(example), 0o600); err != nil {
			t.Fatal(err)
		}
		res := EnsureFile(dir)
		if !res.Created || res.Source != SourceExample {
			t.Fatalf("Expected example copy, got %+v", res)
		}
		data, _ := os.ReadFile(filepath.Join(dir, ".env"))
		if string(data) != example {
			t.Errorf("Expected verbatim copy, got %q", data)
		}
	})

	t.Run("existing is never overwritten", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		if err := os.WriteFile(path, []byte("KEEP=1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		res := EnsureFile(dir)
		if res.Created || res.Source != SourceExisting {
			t.Errorf("Expected existing, got %+v", res)
		}
		data, _ := os.ReadFile(path)
		if string(data) != "KEEP=1\n" {
			t.Errorf("Existing file was modified: %q", data)
		}
	})

	t.Run("failure is reported not returned", func(t *testing.T) {
		res := EnsureFile(filepath.Join(t.TempDir(), "missing", "dir"))
		if res.Created || res.Source != SourceFailed {
			t.Errorf("Expected failed source, got %+v", res)
		}
	})
}
