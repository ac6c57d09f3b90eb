package main

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kokorolog/internal/export"
	"kokorolog/internal/journal"
	"kokorolog/internal/reply"
	"kokorolog/internal/report"
	"kokorolog/internal/server"
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the journaling HTTP API",
	Long: `Starts the JSON API: submission endpoints for students
(/analyze, /ask) and aggregate endpoints for teachers
(/summary, /weekly_report, /teacher_dashboard, /export).`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	llmClient, err := buildLLM(ctx)
	if err != nil {
		return err
	}
	resolver := buildResolver(llmClient)

	replyWeight := 0.0
	if cfg.Reply.UseLLM {
		replyWeight = 1.0
	}

	srv := server.New(cfg,
		journal.NewService(st, resolver, cfg.EmotionParams()),
		report.NewGenerator(st, cfg.GetCacheTTL()),
		export.NewExporter(st),
		reply.NewReplier(llmClient, replyWeight),
		cfg.Version)

	logger.Info("serving",
		zap.String("addr", cfg.Server.Addr),
		zap.String("engine", cfg.Emotion.Engine),
		zap.String("llm", cfg.LLM.Provider),
		zap.String("db", cfg.Store.DatabasePath))

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
