package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/queue"
	"clipforge/internal/router"
	"clipforge/internal/service"
	"clipforge/internal/storage"
	"clipforge/internal/taskrunner"
	"clipforge/log"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	var err error
	if !config.LoadConfig() {
		return
	}

	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("加载配置失败 invalid config", zap.Error(err))
		return
	}

	storage.InitDB()

	// Exports left running by a previous process cannot resume.
	if count, err := storage.MarkStaleJobs(); err != nil {
		log.GetLogger().Warn("Failed to mark stale export jobs", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("Marked stale export jobs as failed", zap.Int64("count", count))
	}

	svc := service.NewService()
	if svc == nil {
		log.GetLogger().Error("服务初始化失败 service init failed")
		os.Exit(1)
	}

	runner := taskrunner.New(svc, taskrunner.Config{Concurrency: config.Conf.Queue.Concurrency})
	defer runner.Close()

	var q *queue.Queue
	if config.Conf.Queue.Provider == "redis" {
		q = queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		defer q.Close()

		go func() {
			if err := queue.StartWorker(q, svc); err != nil {
				log.GetLogger().Error("队列工作进程退出 queue worker exited", zap.Error(err))
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()
	engine.MaxMultipartMemory = config.Conf.App.MaxUploadMB << 20
	router.SetupRouter(engine, svc, runner, q)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("服务启动 server starting", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- engine.Run(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.GetLogger().Error("后端服务启动失败 server failed", zap.Error(err))
		os.Exit(1)
	case sig := <-quit:
		log.GetLogger().Info("收到退出信号 shutting down", zap.String("signal", sig.String()))
	}

	if err := svc.Blobs.ReleaseAll(); err != nil {
		log.GetLogger().Warn("failed to release blob handles", zap.Error(err))
	}
}
