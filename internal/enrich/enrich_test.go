package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/smart-resume/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM records prompts and answers with a fixed reply or error.
type fakeLLM struct {
	reply   string
	err     error
	block   bool
	prompts []string
	tiers   []llm.ModelTier
}

func (f *fakeLLM) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	if f.block {
		<-ctx.Done()
		return "", fmt.Errorf("failed to generate content: %w", ctx.Err())
	}
	return f.reply, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake" }
func (f *fakeLLM) Close() error                  { return nil }

func TestBuildPrompt_SummarizeExperience(t *testing.T) {
	prompt, err := BuildPrompt(TaskSummarizeExperience, Input{Description: "Built pipelines."})
	require.NoError(t, err)
	assert.Equal(t,
		"Summarize the following job description in 3 concise bullet points, highlighting accomplishments and quantifiable results.  Focus on keywords that would be relevant to recruiters:\n\nBuilt pipelines.",
		prompt)
}

func TestBuildPrompt_CoverLetter(t *testing.T) {
	prompt, err := BuildPrompt(TaskGenerateCoverLetter, Input{Name: "Ada", JobDescription: "Go engineer"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(prompt, "Write a cover letter for Ada based on"))
	assert.True(t, strings.HasSuffix(prompt, "\n\nGo engineer"))
}

func TestBuildPrompt_MissingSkills(t *testing.T) {
	prompt, err := BuildPrompt(TaskHighlightMissingSkills, Input{Skills: "Go, SQL", RequiredSkills: "Go, Kafka"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "the candidate posesses: Go, SQL, and")
	assert.Contains(t, prompt, "required by a job description: Go, Kafka, what skills")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	in := Input{JobDescription: "{{.Skills}}", Skills: "Go"}
	first, err := BuildPrompt(TaskSuggestImprovements, in)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := BuildPrompt(TaskSuggestImprovements, in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Contains(t, first, "Job Description: {{.Skills}}\nSkills: Go")
}

func TestBuildPrompt_EveryTaskHasTemplate(t *testing.T) {
	for _, task := range AllTasks() {
		prompt, err := BuildPrompt(task, Input{})
		require.NoError(t, err, task)
		assert.NotContains(t, prompt, "{{.", task)
		assert.NotEmpty(t, task.Title(), task)
	}
}

func TestRender_UnknownPlaceholder(t *testing.T) {
	_, err := render(TaskGenerateCoverLetter, "Dear {{.Name}}, salary {{.Salary}}", Input{Name: "Ada"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Salary"`)

	prompt, err := render(TaskGenerateCoverLetter, "Dear {{.Name}}", Input{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Dear Ada", prompt)
}

func TestBuildPrompt_UnknownTask(t *testing.T) {
	_, err := BuildPrompt(Task("write-poem"), Input{})
	var ite *InvalidTaskError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "write-poem", ite.Task)
}

func TestParseTask(t *testing.T) {
	task, err := ParseTask("extract-skills")
	require.NoError(t, err)
	assert.Equal(t, TaskExtractSkills, task)

	_, err = ParseTask("nope")
	assert.Error(t, err)
}

func TestClient_Enrich_Success(t *testing.T) {
	fake := &fakeLLM{reply: "- Led migration\n- Cut cost 30%"}
	client := NewClient(fake)

	res := client.Enrich(context.Background(), TaskSummarizeExperience, Input{Description: "did things"})

	assert.True(t, res.OK())
	assert.Equal(t, "- Led migration\n- Cut cost 30%", res.Display())
	assert.Equal(t, Reason(""), res.Reason())
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "did things")
	assert.Equal(t, llm.TierStandard, fake.tiers[0])
}

func TestClient_Enrich_SendsEmptyPayload(t *testing.T) {
	fake := &fakeLLM{reply: "ok"}
	res := NewClient(fake).Enrich(context.Background(), TaskExtractSkills, Input{})

	assert.True(t, res.OK())
	require.Len(t, fake.prompts, 1)
	assert.True(t, strings.HasSuffix(fake.prompts[0], "job description:\n\n"))
}

func TestClient_Enrich_TransportFailure(t *testing.T) {
	fake := &fakeLLM{err: errors.New("connection refused")}
	res := NewClient(fake).Enrich(context.Background(), TaskSummarizeExperience, Input{Description: "x"})

	assert.False(t, res.OK())
	assert.Equal(t, ReasonTransport, res.Reason())
	assert.Equal(t, "Error summarizing experience: connection refused", res.Display())
}

func TestClient_Enrich_EmptyResponse(t *testing.T) {
	fake := &fakeLLM{err: llm.ErrEmptyResponse}
	res := NewClient(fake).Enrich(context.Background(), TaskGenerateCoverLetter, Input{})

	assert.Equal(t, ReasonEmptyResponse, res.Reason())
	assert.True(t, strings.HasPrefix(res.Display(), "Error generating cover letter: "))
}

func TestClient_Enrich_Timeout(t *testing.T) {
	fake := &fakeLLM{block: true}
	client := NewClient(fake, WithTimeout(20*time.Millisecond))

	res := client.Enrich(context.Background(), TaskAnalyzeStrengthsWeaknesses, Input{ResumeText: "r"})

	assert.False(t, res.OK())
	assert.Equal(t, ReasonTimeout, res.Reason())
	assert.True(t, strings.HasPrefix(res.Display(), "Error analyzing strengths and weaknesses: "))
}

func TestClient_Enrich_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewClient(&fakeLLM{block: true}).Enrich(ctx, TaskExtractSkills, Input{})
	assert.Equal(t, ReasonCanceled, res.Reason())
}

func TestClient_Enrich_InvalidTask(t *testing.T) {
	fake := &fakeLLM{reply: "unused"}
	res := NewClient(fake).Enrich(context.Background(), Task("bogus"), Input{})

	assert.Equal(t, ReasonInvalidTask, res.Reason())
	assert.Empty(t, fake.prompts)
	assert.Contains(t, res.Display(), "unknown enrichment task")
}

func TestResult_DisplayMessages(t *testing.T) {
	cause := errors.New("boom")
	want := map[Task]string{
		TaskSummarizeExperience:        "Error summarizing experience: boom",
		TaskExtractSkills:              "Error generating skills: boom",
		TaskGenerateCoverLetter:        "Error generating cover letter: boom",
		TaskSuggestImprovements:        "Error generating suggestions: boom",
		TaskExtractQualifications:      "Error extracting skills and qualifications: boom",
		TaskHighlightMissingSkills:     "Error highlighting missing skills: boom",
		TaskSuggestProfileImprovements: "Error suggesting profile improvements: boom",
		TaskGenerateInterviewQuestions: "Error generating interview questions: boom",
		TaskAnalyzeStrengthsWeaknesses: "Error analyzing strengths and weaknesses: boom",
	}

	for task, msg := range want {
		res := Result{Task: task, Err: &Error{Task: task, Reason: ReasonTransport, Cause: cause}}
		assert.Equal(t, msg, res.Display())
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	res := Result{Task: TaskExtractSkills, Err: &Error{Task: TaskExtractSkills, Reason: ReasonTimeout, Cause: context.DeadlineExceeded}}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "extract-skills", out["task"])
	assert.Equal(t, false, out["ok"])
	assert.Equal(t, "timeout", out["reason"])
	assert.Equal(t, "Error generating skills: context deadline exceeded", out["display"])
}

func TestFunc_Enricher(t *testing.T) {
	var e Enricher = Func(func(_ context.Context, task Task, _ Input) Result {
		return Result{Task: task, Text: "OK"}
	})
	assert.Equal(t, "OK", e.Enrich(context.Background(), TaskExtractSkills, Input{}).Text)
}
