package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/cpl/internal/core/models"
	"github.com/neilberkman/cpl/internal/core/sanitize"
	"github.com/neilberkman/cpl/pkg/ccsessions"
)

// fakeProvider records prompts and replays a canned response
type fakeProvider struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeProvider) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeProvider) Name() string { return "fake" }

func TestFormatSessionContent(t *testing.T) {
	entries := []ccsessions.Entry{
		ccsessions.UserEntry{Content: "fix the <bug>", Timestamp: "1"},
		ccsessions.AssistantEntry{Content: "on it", Timestamp: "2"},
		ccsessions.ToolUseEntry{ToolName: "Bash", ToolInput: map[string]any{"command": "go test ./...", "timeout": float64(60)}, Timestamp: "3"},
		ccsessions.ToolResultEntry{ToolName: "Bash", Output: "PASS", Timestamp: "4"},
	}

	want := "[user]\nfix the <bug>\n\n" +
		"[assistant]\non it\n\n" +
		"[tool_use: Bash]\n{\n  \"command\": \"go test ./...\",\n  \"timeout\": 60\n}\n\n" +
		"[tool_result: Bash]\nPASS"
	assert.Equal(t, want, FormatSessionContent(entries))
	assert.Equal(t, "", FormatSessionContent(nil))
}

func TestFormatSessionContent_TruncatesEachResult(t *testing.T) {
	long := strings.Repeat("x", 10000)
	entries := []ccsessions.Entry{
		ccsessions.ToolResultEntry{ToolName: "Read", Output: long},
		ccsessions.ToolResultEntry{ToolName: "Read", Output: strings.Repeat("é", 600)},
		ccsessions.ToolResultEntry{ToolName: "Read", Output: strings.Repeat("y", 500)},
	}

	blocks := strings.Split(FormatSessionContent(entries), "\n\n")
	require.Len(t, blocks, 3)

	label := "[tool_result: Read]\n"
	assert.LessOrEqual(t, len(blocks[0]), len(label)+MaxToolResultLength+len(ellipsis))
	assert.Equal(t, label+strings.Repeat("x", 500)+"...", blocks[0])
	assert.Equal(t, label+strings.Repeat("é", 500)+"...", blocks[1])
	assert.Equal(t, label+strings.Repeat("y", 500), blocks[2], "exactly at the limit is not cut")
}

func TestParseExtractResponse(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantNames []string
	}{
		{
			name: "fenced yaml",
			response: "Here you go:\n```yaml\npatterns:\n  - name: A\n    type: code\n    context: c\n    solution: s\n```\nthanks",
			wantNames: []string{"A"},
		},
		{
			name:      "bare yaml",
			response:  "patterns:\n  - name: B\n    type: prompt\n    context: c\n    solution: s\n",
			wantNames: []string{"B"},
		},
		{
			name:      "fenced json",
			response:  "```json\n{\"patterns\": [{\"name\": \"C\", \"type\": \"solution\", \"context\": \"c\", \"solution\": \"s\"}]}\n```",
			wantNames: []string{"C"},
		},
		{
			name:      "fence without info string",
			response:  "```\npatterns:\n  - {name: D, type: code, context: c, solution: s}\n```",
			wantNames: []string{"D"},
		},
		{
			name: "bad items dropped individually",
			response: `patterns:
  - name: keep
    type: code
    context: c
    solution: s
  - name: wrong type
    type: recipe
    context: c
    solution: s
  - name: no solution
    type: code
    context: c
  - name: "   "
    type: code
    context: c
    solution: s
  - name: 42
    type: code
    context: c
    solution: s
  - just a string
  - name: also keep
    type: solution
    context: c
    solution: s
`,
			wantNames: []string{"keep", "also keep"},
		},
		{name: "not yaml", response: "patterns: [unclosed", wantNames: []string{}},
		{name: "prose", response: "I could not find any patterns.", wantNames: []string{}},
		{name: "patterns not a list", response: "patterns: nope", wantNames: []string{}},
		{name: "top level list", response: "- name: x", wantNames: []string{}},
		{name: "empty", response: "", wantNames: []string{}},
		{name: "empty list", response: "```yaml\npatterns: []\n```", wantNames: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseExtractResponse(tt.response)
			require.NotNil(t, got)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestParseExtractResponse_OptionalFields(t *testing.T) {
	got := ParseExtractResponse(`patterns:
  - name: Full
    type: prompt
    context: ctx
    problem: prob
    solution: sol
    example: ex
    example_prompt: "Please review {file}"
    related: [Other, 7, Another]
    tags: [go, true, testing]
`)
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, models.PatternTypePrompt, p.Type)
	assert.Equal(t, "prob", p.Problem)
	assert.Equal(t, "ex", p.Example)
	assert.Equal(t, "Please review {file}", p.ExamplePrompt)
	assert.Equal(t, []string{"Other", "Another"}, p.Related)
	assert.Equal(t, []string{"go", "testing"}, p.Tags)
}

func TestParseExtractResponse_KeepsAtMostFive(t *testing.T) {
	var b strings.Builder
	b.WriteString("patterns:\n")
	for _, n := range []string{"bad", "p1", "p2", "p3", "p4", "p5", "p6"} {
		typ := "code"
		if n == "bad" {
			typ = "nope"
		}
		b.WriteString("  - {name: " + n + ", type: " + typ + ", context: c, solution: s}\n")
	}

	got := ParseExtractResponse(b.String())
	require.Len(t, got, 5)
	assert.Equal(t, "p1", got[0].Name)
	assert.Equal(t, "p5", got[4].Name)
}

func TestExtract_EmptyEntriesSkipsProvider(t *testing.T) {
	fake := &fakeProvider{response: "patterns: []"}
	got, err := New(fake).Extract(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, fake.prompts)
}

func TestExtract_SanitizesAndDedups(t *testing.T) {
	fake := &fakeProvider{response: "```yaml\npatterns:\n" +
		"  - {name: retry WITH backoff, type: solution, context: c, solution: s}\n" +
		"  - {name: Table tests, type: code, context: c, solution: s}\n" +
		"  - {name: Config loading, type: code, context: c, solution: s}\n" +
		"```"}

	existing := []models.Pattern{{ID: "1", Name: "Retry with backoff"}}
	entries := []ccsessions.Entry{
		ccsessions.UserEntry{Content: "connect with api_key=sk-ABC123XYZ"},
		ccsessions.ToolResultEntry{ToolName: "Bash", Output: "Authorization: Bearer abc.def.ghi"},
	}

	got, err := New(fake).Extract(context.Background(), entries, existing)
	require.NoError(t, err)

	require.Len(t, fake.prompts, 1, "provider must be called exactly once")
	prompt := fake.prompts[0]
	assert.NotContains(t, prompt, "sk-ABC123XYZ")
	assert.NotContains(t, prompt, "abc.def.ghi")
	assert.Contains(t, prompt, sanitize.Redacted)
	assert.Contains(t, prompt, "[tool_result: Bash]")

	names := []string{got[0].Name, got[1].Name}
	assert.Equal(t, []string{"Table tests", "Config loading"}, names)
	for _, p := range got {
		for _, e := range existing {
			assert.NotEqual(t, strings.ToLower(e.Name), strings.ToLower(p.Name))
		}
	}
}

func TestExtract_ProviderErrorPropagatesUnchanged(t *testing.T) {
	boom := errors.New("503 from upstream")
	fake := &fakeProvider{err: boom}

	got, err := New(fake).Extract(context.Background(), []ccsessions.Entry{ccsessions.UserEntry{Content: "hi"}}, nil)
	assert.Nil(t, got)
	assert.Same(t, boom, err)
}

func TestExtract_MalformedResponseDegrades(t *testing.T) {
	fake := &fakeProvider{response: "```yaml\n: : :\n```"}
	got, err := New(fake).Extract(context.Background(), []ccsessions.Entry{ccsessions.UserEntry{Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterDuplicates(t *testing.T) {
	candidates := []models.PatternInput{{Name: "Foo"}, {Name: "bar"}, {Name: "BAZ"}}
	existing := []models.Pattern{{Name: "foo"}, {Name: "baz"}}
	got := FilterDuplicates(candidates, existing)
	require.Len(t, got, 1)
	assert.Equal(t, "bar", got[0].Name)

	assert.Len(t, FilterDuplicates(candidates, nil), 3)
}
