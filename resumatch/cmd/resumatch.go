// Command-line REPL for asking about stored candidates without the
// HTTP server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"resumatch/resumatch/config"
	"resumatch/resumatch/services/chat"
	"resumatch/resumatch/services/contextres"
	"resumatch/resumatch/services/embeddings"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/services/tools"
	"resumatch/resumatch/sources/psql"
	"resumatch/resumatch/sources/psql/dao"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/logging"

	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	llmClient, err := llm.New(cfg.LLM)
	if err != nil {
		logging.ErrorLogger.Error("llm client setup error", zap.Error(err))
		os.Exit(1)
	}
	embedder := embeddings.NewOllamaEmbedder(cfg.LLM.BaseURL, cfg.LLM.EmbedModel)

	chatDAO := dao.NewChatMessageDAO(db.DB)
	resumeDAO := dao.NewResumeDAO(db.DB)
	searchDAO := dao.NewSearchHistoryDAO(db.DB)

	extractor := contextres.NewEntityExtractor(llmClient, resumeDAO, cfg.LLM)
	resolver := contextres.NewContextResolver(llmClient, extractor, chatDAO, cfg.LLM)
	router := contextres.NewToolRouter(llmClient, cfg.LLM)
	parser := tools.NewResumeParser(llmClient, cfg.LLM)
	comparer := tools.NewComparisonEngine(llmClient, embedder, cfg.LLM)
	blogger := tools.NewBlogGenerator(llmClient, cfg.LLM)
	runner := tools.NewRunner(parser, comparer, blogger, resumeDAO)
	orchestrator := chat.NewOrchestrator(resolver, router, chatDAO, searchDAO, runner)

	sessionID, err := orchestrator.CreateSession(context.Background(), map[string]interface{}{"transport": "cli"})
	if err != nil {
		logging.ErrorLogger.Error("session create error", zap.Error(err))
		os.Exit(1)
	}

	fmt.Println("Resume analysis chat. Session:", sessionID)
	fmt.Println("Ask about candidates, or try 'compare the candidates' / 'show me the stats'.")
	fmt.Println("Type 'exit' to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("resumatch> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			continue
		}

		result, err := orchestrator.ProcessTurn(context.Background(), types.ChatRequest{
			Query:     line,
			SessionID: sessionID,
		})
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		if result.ContextApplied && result.ResolvedQuery != result.OriginalQuery {
			fmt.Printf("(resolved: %s)\n", result.ResolvedQuery)
		}
		if result.NeedsClarification {
			fmt.Println("(not sure who you mean - answering with my best guess)")
		}
		fmt.Printf("[%s] %s\n\n", result.Tool, result.Response)
	}
}
