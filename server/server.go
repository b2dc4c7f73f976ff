package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FrameFlow/cache"
	"FrameFlow/config"
	"FrameFlow/core/ingest"
	"FrameFlow/core/mediastore"
	"FrameFlow/core/session"
	"FrameFlow/db"
	"FrameFlow/logger"
	"FrameFlow/model"
	"FrameFlow/repository"
	"FrameFlow/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(getEnvOr("LOG_LEVEL", "info")),
		OutputPath: getEnvOr("LOG_PATH", "logs/frameflow.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // 导出可能要拉很多素材
		IdleTimeout:  120 * time.Second,
	}

	// 初始化 MinIO 客户端
	if err := storage.InitMinio(cfg); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	defer db.CloseGormDB()

	// Connect to Redis（会话状态走 v8，文档缓存走 v9）
	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()
	if err := cache.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis (cache): %v", err)
	}
	defer cache.Close()
	log.Println("Successfully connected to Redis")

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := db.AutoMigrateModels(&model.Project{}, &model.MediaNode{}, &model.TimelineRecord{}); err != nil {
		log.Fatalf("Failed to migrate models: %v", err)
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	projectRepo := repository.NewGormProjectRepository(db.GormDB)
	nodeRepo := repository.NewGormNodeRepository(db.GormDB)
	timelineRepo := repository.NewGormTimelineRepository(db.GormDB)

	assets := storage.NewAssetStore(storage.GetMinioClient(), cfg.MinioBucket)
	store := mediastore.New(nodeRepo, assets)
	hub := session.NewHub(store, timelineRepo, cfg.DefaultFPS)

	apiHandler := NewAPIHandler(userRepo, projectRepo, nodeRepo, timelineRepo, store, assets, hub, cfg)

	// 素材投递目录监听
	ingestCtx, stopIngest := context.WithCancel(context.Background())
	defer stopIngest()
	watcher := ingest.NewWatcher(cfg.IngestDir, cfg.FFprobePath, nodeRepo, assets)
	go func() {
		if err := watcher.Run(ingestCtx); err != nil && err != context.Canceled {
			logger.Error("素材入库监听退出", logger.ErrorField(err))
		}
	}()

	// 使用 gorilla/mux 创建路由器
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// 用户认证相关的API端点
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// 项目相关的API端点
	router.HandleFunc("/api/projects", apiHandler.AuthMiddleware(apiHandler.CreateProjectHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects", apiHandler.AuthMiddleware(apiHandler.ListProjectsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}", apiHandler.AuthMiddleware(apiHandler.GetProjectHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteProjectHandler)).Methods(http.MethodDelete)

	// 素材节点相关的API端点
	router.HandleFunc("/api/projects/{id}/nodes", apiHandler.AuthMiddleware(apiHandler.ListNodesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}/nodes", apiHandler.AuthMiddleware(apiHandler.CreateNodeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/nodes/upload", apiHandler.AuthMiddleware(apiHandler.UploadNodeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/nodes/{node_id}/media", apiHandler.AuthMiddleware(apiHandler.NodeMediaURLHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/nodes/{node_id}", apiHandler.AuthMiddleware(apiHandler.DeleteNodeHandler)).Methods(http.MethodDelete)

	// 时间轴相关的API端点
	router.HandleFunc("/api/projects/{id}/timeline", apiHandler.AuthMiddleware(apiHandler.GetTimelineHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}/timeline/{op}", apiHandler.AuthMiddleware(apiHandler.EditTimelineHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/export", apiHandler.AuthMiddleware(apiHandler.ExportTimelineHandler)).Methods(http.MethodPost)

	// 播放会话 WebSocket
	router.HandleFunc("/ws/session/{id}", apiHandler.SessionHandler).Methods(http.MethodGet)

	server.Handler = router

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		log.Printf("Server starting on :%s...", cfg.ServerPort)
		log.Println("Manage projects via /api/projects endpoints")
		log.Println("Edit timelines via POST /api/projects/{id}/timeline/{op}")
		log.Println("Export drafts via POST /api/projects/{id}/export")
		log.Println("Join playback sessions via /ws/session/{id}")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待中断信号
	<-stop
	log.Println("Shutting down server...")

	stopIngest()

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
