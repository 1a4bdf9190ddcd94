package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/api/handler"
	"resume-analyzer/internal/api/router"
	"resume-analyzer/internal/catalog"
	"resume-analyzer/internal/config"
	"resume-analyzer/internal/constants"
	appCoreLogger "resume-analyzer/internal/logger"
	"resume-analyzer/internal/outbox"
	"resume-analyzer/internal/parser"
	"resume-analyzer/internal/processor"
	"resume-analyzer/internal/storage"
	"resume-analyzer/internal/tracing"
	"resume-analyzer/pkg/ratelimit"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("加载配置失败")
	}

	logCloser, err := appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
		File:         cfg.Logger.File,
	})
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("初始化日志失败")
	}
	if logCloser != nil {
		defer logCloser.Close()
	}
	// Hertz 的 hlog 走同一个 zerolog 实例
	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("初始化链路追踪失败")
	}

	cat := catalog.Default()
	if cfg.Analyzer.CatalogPath != "" {
		cat, err = catalog.Load(cfg.Analyzer.CatalogPath)
		if err != nil {
			appCoreLogger.Fatal().Err(err).Str("path", cfg.Analyzer.CatalogPath).Msg("加载分析目录失败")
		}
	}

	extractor, err := parser.NewEinoPDFTextExtractor(ctx,
		parser.WithEinoLogger(appCoreLogger.Component("pdf-extractor")),
		parser.WithExtractionTimeout(config.GetDuration(cfg.Analyzer.ExtractionTimeout, parser.DefaultExtractionTimeout)),
	)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("创建Eino PDF提取器失败")
	}

	analyzerOpts := []analyzer.Option{analyzer.WithTextExtractor(extractor)}
	if !cfg.Analyzer.DisableNER {
		analyzerOpts = append(analyzerOpts, analyzer.WithEntityRecognizer(parser.NewProseNameRecognizer()))
	}
	resumeAnalyzer := analyzer.New(cat, analyzerOpts...)

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer storageManager.Close()

	compOpts := []processor.ComponentOpt{
		processor.WithAnalyzer(resumeAnalyzer),
		processor.WithRecordStore(storageManager.MySQL),
	}
	if storageManager.Redis != nil {
		compOpts = append(compOpts, processor.WithReportCache(storageManager.Redis))
	}
	if storageManager.MinIO != nil {
		compOpts = append(compOpts, processor.WithObjectArchive(storageManager.MinIO))
	}
	setOpts := []processor.SettingOpt{
		processor.WithCacheTTL(config.GetDuration(cfg.Analyzer.CacheTTL, constants.DefaultReportCacheTTL)),
		processor.WithCacheNamespace(resumeAnalyzer.Catalog().Fingerprint()),
	}
	if cfg.RabbitMQ.URL != "" {
		setOpts = append(setOpts, processor.WithEventTarget(cfg.RabbitMQ.ResumeEventsExchange, cfg.RabbitMQ.AnalyzedRoutingKey))
	}
	resumeProcessor, err := processor.NewResumeProcessor(compOpts, setOpts...)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("初始化ResumeProcessor失败")
	}

	var messageRelay *outbox.MessageRelay
	if storageManager.RabbitMQ != nil {
		messageRelay = outbox.NewMessageRelay(storageManager.MySQL.DB(), storageManager.RabbitMQ,
			outbox.WithPollingInterval(config.GetDuration(cfg.RabbitMQ.RelayInterval, 5*time.Second)))
		messageRelay.Start()
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(cfg.Server.MaxUploadBytes+(1<<20)),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	var analyzeLimiter *ratelimit.TokenBucket
	if cfg.Server.AnalyzeQPM > 0 {
		analyzeLimiter = ratelimit.NewTokenBucket(cfg.Server.AnalyzeQPM, cfg.Server.AnalyzeBurst)
	}

	router.RegisterRoutes(h,
		handler.NewResumeHandler(resumeProcessor, int64(cfg.Server.MaxUploadBytes)),
		handler.NewAdminHandler(storageManager.MySQL),
		cfg.Admin.APIKeys,
		analyzeLimiter,
	)

	appCoreLogger.Info().Str("address", cfg.Server.Address).Msg("HTTP 服务器启动中")
	go func() {
		if err := h.Run(); err != nil {
			appCoreLogger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appCoreLogger.Info().Msg("接收到终止信号，正在优雅退出...")

	if messageRelay != nil {
		messageRelay.Stop()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		appCoreLogger.Error().Err(err).Msg("服务器关闭失败")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appCoreLogger.Error().Err(err).Msg("关闭链路追踪失败")
	}
	appCoreLogger.Info().Msg("优雅退出完成")
}
