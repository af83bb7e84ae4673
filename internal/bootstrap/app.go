package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docmind-backend/internal/analyses"
	googleauth "docmind-backend/internal/auth"
	"docmind-backend/internal/extract"
	"docmind-backend/internal/llm"
	"docmind-backend/internal/llm/ollama"
	"docmind-backend/internal/models"
	"docmind-backend/internal/services/health"
	"docmind-backend/internal/shared/config"
	"docmind-backend/internal/shared/server"
	"docmind-backend/internal/shared/storage/db"
	"docmind-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	UsersRepo       users.Repo
	ResetsRepo      users.ResetRepo
	UsersService    *users.Service
	AnalysesService *analyses.Service
	UsersHandler    *users.Handler
	AnalysisHandler *analyses.Handler
	ModelsHandler   *models.Handler
	GoogleAuth      *googleauth.GoogleService
	Health          *health.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AnalysisHandler: app.AnalysisHandler,
		UsersHandler:    app.UsersHandler,
		ModelsHandler:   app.ModelsHandler,
		GoogleAuth:      app.GoogleAuth,
		Health:          app.Health,
	})

	return app, nil
}

// buildDB connects and migrates the database. In dev-like environments a
// missing or unreachable database degrades to in-memory repositories so
// the analysis pipeline still works without infrastructure.
func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			sqlDB.Close()
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var userRepo users.Repo
	var resetRepo users.ResetRepo
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		resetRepo = &users.ResetPGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		resetRepo = users.NewMemoryResetRepo()
	}

	userSvc := users.NewService(userRepo, resetRepo)
	if app.Config.TokenTTLMinutes > 0 {
		userSvc.TokenTTL = time.Duration(app.Config.TokenTTLMinutes) * time.Minute
	}
	if app.Config.ResetTokenTTL > 0 {
		userSvc.ResetTTL = app.Config.ResetTokenTTL
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if strings.TrimSpace(app.Config.OllamaURL) != "" {
		llmClient = ollama.NewClient(app.Config.OllamaURL, time.Duration(app.Config.LLMTimeoutSeconds)*time.Second)
	}

	analysisSvc := &analyses.Service{
		Extractor:      extract.New(app.Config.ExtractFormats...),
		LLM:            llmClient,
		Model:          app.Config.LLMModel,
		ChunkSize:      app.Config.ChunkSize,
		ChunkOverlap:   app.Config.ChunkOverlap,
		PromptMaxChars: app.Config.PromptMaxChars,
	}

	analysisHandler := analyses.NewHandler(analysisSvc)
	if app.Config.MaxUploadMB > 0 {
		analysisHandler.MaxUploadBytes = app.Config.MaxUploadMB << 20
	}

	app.UsersRepo = userRepo
	app.ResetsRepo = resetRepo
	app.UsersService = userSvc
	app.AnalysesService = analysisSvc
	app.UsersHandler = users.NewHandler(userSvc)
	app.AnalysisHandler = analysisHandler
	app.ModelsHandler = models.NewHandler()
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)
	app.Health = health.NewService()
}
