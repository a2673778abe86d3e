package pkg

import (
	"context"
	"fmt"
	"time"

	"tigerstorage/internal/app/config"
	"tigerstorage/internal/app/dsn"
	"tigerstorage/internal/app/handler"
	"tigerstorage/internal/app/middleware"
	"tigerstorage/internal/app/redis"
	"tigerstorage/internal/app/repository"
	"tigerstorage/internal/app/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Период фоновой зачистки просроченных заявок
const expireSweepInterval = time.Hour

type Application struct {
	Config      *config.Config
	Router      *gin.Engine
	Repository  *repository.Repository
	RedisClient *redis.Client
	APIHandler  *handler.APIHandler
}

func NewApp(ctx context.Context) (*Application, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	// Без MinIO приложение работает, изображения получают fallback-имена
	var minioClient *storage.MinIOClient
	if cfg.MinIO.Endpoint != "" {
		minioClient, err = storage.NewMinIOClient(
			cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
			cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
		if err != nil {
			logrus.Warnf("MinIO unavailable, images disabled: %v", err)
		}
	}

	authHandler := handler.NewAuthHandler(repo, redisClient, cfg)
	apiHandler := handler.NewAPIHandler(repo, minioClient, authHandler)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	authMiddleware := middleware.NewAuthMiddleware(redisClient, cfg)
	apiHandler.RegisterAPIRoutes(router, authMiddleware)

	return &Application{
		Config:      cfg,
		Router:      router,
		Repository:  repo,
		RedisClient: redisClient,
		APIHandler:  apiHandler,
	}, nil
}

// runExpireSweep периодически переводит в expired ожидающие заявки,
// чьё контрактное окно уже закрылось
func (a *Application) runExpireSweep(ctx context.Context) {
	ticker := time.NewTicker(expireSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.APIHandler.Reservations.ExpireStale(ctx)
			if err != nil {
				logrus.Errorf("expire sweep: %v", err)
				continue
			}
			if n > 0 {
				logrus.Infof("expire sweep: %d requests expired", n)
			}
		}
	}
}

func (a *Application) RunApp(ctx context.Context) {
	logrus.Info("Server start up")

	go a.runExpireSweep(ctx)

	serverAddress := fmt.Sprintf("%s:%d", a.Config.ServiceHost, a.Config.ServicePort)
	logrus.Infof("Starting server on %s", serverAddress)

	if err := a.Router.Run(serverAddress); err != nil {
		logrus.Fatal(err)
	}

	logrus.Info("Server down")
}
