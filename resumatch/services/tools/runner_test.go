package tools

import (
	"context"
	"strings"
	"testing"

	"resumatch/resumatch/services/contextres"
	"resumatch/resumatch/sources/psql/dao"
	"resumatch/resumatch/sources/psql/models"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newRunner(t *testing.T, client *stubLLM, pool []types.Resume) *Runner {
	t.Helper()
	logging.InitLogger()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.ResumeMetadata{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	resumes := dao.NewResumeDAO(db)
	for _, r := range pool {
		if err := resumes.SaveMetadata(context.Background(), r.Name, r.SourceFile, r); err != nil {
			t.Fatalf("seed resume %s: %v", r.Name, err)
		}
	}

	cfg := testCfg()
	parser := NewResumeParser(client, cfg)
	comparer := NewComparisonEngine(client, nil, cfg)
	blogger := NewBlogGenerator(client, cfg)
	return NewRunner(parser, comparer, blogger, resumes)
}

func TestRunnerAskNoResumes(t *testing.T) {
	runner := newRunner(t, &stubLLM{}, nil)

	response, err := runner.Execute(context.Background(), contextres.ToolAsk, types.Resolution{
		ResolvedQuery: "What are Sriram's skills?",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(response, "No resumes") {
		t.Errorf("expected upload hint, got %q", response)
	}
}

func TestRunnerAskMatchesCandidate(t *testing.T) {
	client := &stubLLM{responses: []string{"Go, Postgres and Kafka."}}
	runner := newRunner(t, client, []types.Resume{
		{Name: "Sriram Kumar", TechStack: []string{"Go"}},
		{Name: "Alice Chen", TechStack: []string{"Python"}},
	})

	response, err := runner.Execute(context.Background(), contextres.ToolAsk, types.Resolution{
		ResolvedQuery: "What are Sriram's skills?",
		Entities: []types.Entity{
			{Name: "Sriram", Type: contextres.CandidateType},
		},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if response != "Go, Postgres and Kafka." {
		t.Errorf("unexpected response %q", response)
	}
	// The single-candidate prompt must carry only the matched resume.
	if client.calls != 1 {
		t.Fatalf("expected 1 llm call, got %d", client.calls)
	}
}

func TestRunnerComparePrecondition(t *testing.T) {
	runner := newRunner(t, &stubLLM{}, []types.Resume{{Name: "Solo", TechStack: []string{"Go"}}})

	for _, tool := range []string{contextres.ToolCompare, contextres.ToolBlog} {
		response, err := runner.Execute(context.Background(), tool, types.Resolution{ResolvedQuery: "compare them"})
		if err != nil {
			t.Fatalf("%s: precondition failure must not be an error: %v", tool, err)
		}
		if !strings.Contains(response, "at least 2 resumes") {
			t.Errorf("%s: expected friendly precondition message, got %q", tool, response)
		}
	}
}

func TestRunnerStats(t *testing.T) {
	runner := newRunner(t, &stubLLM{}, []types.Resume{
		{Name: "Alice", TechStack: []string{"Go", "Postgres"}},
	})

	response, err := runner.Execute(context.Background(), contextres.ToolStats, types.Resolution{ResolvedQuery: "show stats"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(response, "Alice") || !strings.Contains(response, "Technical") {
		t.Errorf("expected per-candidate scores, got %q", response)
	}
}
