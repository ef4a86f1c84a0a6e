package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumatch/resumatch/config"
	"resumatch/resumatch/controllers"
	"resumatch/resumatch/routes"
	"resumatch/resumatch/services/chat"
	"resumatch/resumatch/services/contextres"
	"resumatch/resumatch/services/embeddings"
	"resumatch/resumatch/services/llm"
	"resumatch/resumatch/services/tools"
	"resumatch/resumatch/sources/psql"
	"resumatch/resumatch/sources/psql/dao"
	"resumatch/resumatch/sources/storage"
	"resumatch/resumatch/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
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

	chatDAO := dao.NewChatMessageDAO(db.DB)
	resumeDAO := dao.NewResumeDAO(db.DB)
	searchDAO := dao.NewSearchHistoryDAO(db.DB)

	llmClient, err := llm.New(cfg.LLM)
	if err != nil {
		logging.ErrorLogger.Error("llm client setup error", zap.Error(err))
		os.Exit(1)
	}
	embedder := embeddings.NewOllamaEmbedder(cfg.LLM.BaseURL, cfg.LLM.EmbedModel)

	// Raw-document archival is optional: without MinIO the parsed
	// records still work, uploads just aren't kept in object storage.
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error, uploads will not be archived", zap.Error(err))
		minioClient = nil
	}

	extractor := contextres.NewEntityExtractor(llmClient, resumeDAO, cfg.LLM)
	resolver := contextres.NewContextResolver(llmClient, extractor, chatDAO, cfg.LLM)
	router := contextres.NewToolRouter(llmClient, cfg.LLM)

	parser := tools.NewResumeParser(llmClient, cfg.LLM)
	comparer := tools.NewComparisonEngine(llmClient, embedder, cfg.LLM)
	blogger := tools.NewBlogGenerator(llmClient, cfg.LLM)
	runner := tools.NewRunner(parser, comparer, blogger, resumeDAO)

	orchestrator := chat.NewOrchestrator(resolver, router, chatDAO, searchDAO, runner)

	chatCtrl := controllers.NewChatController(orchestrator)
	resumeCtrl := controllers.NewResumeController(parser, resumeDAO, minioClient)
	toolsCtrl := controllers.NewToolsController(parser, comparer, blogger, resumeDAO)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Mount("/chat", routes.ChatRoutes(chatCtrl, cfg))
	r.Mount("/resumes", routes.ResumeRoutes(resumeCtrl, cfg))
	r.Mount("/tools", routes.ToolsRoutes(toolsCtrl, cfg))
	r.Mount("/health", routes.HealthRoutes(healthCtrl))

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
