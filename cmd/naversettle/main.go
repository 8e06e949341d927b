package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smc020412/naverSmartStore/internal/config"
	"github.com/smc020412/naverSmartStore/internal/server"
	"github.com/smc020412/naverSmartStore/internal/trace"
	"github.com/smc020412/naverSmartStore/internal/util"
)

var version = "dev"

var (
	port     = flag.Int("port", 0, "서버 포트 (config.toml 에 port 가 없을 때만 적용)")
	devMode  = flag.Bool("dev", false, "개발 모드")
	prices   = flag.String("prices", "", "상품목록 엑셀 (배송비/단가)")
	password = flag.String("password", "", "암호화된 엑셀 비밀번호")
	from     = flag.String("from", "", "시작일 YYYY-MM-DD")
	to       = flag.String("to", "", "종료일 YYYY-MM-DD")
	products = flag.String("products", "", "상품번호 목록 (쉼표 구분)")
	fee      = flag.Int64("fee", -1, "상품목록에 없는 상품의 개당 택배비 (기본: 설정값)")
	out      = flag.String("out", "", "결과 엑셀 경로")
	open     = flag.Bool("open", false, "결과 엑셀을 기본 프로그램으로 열기")
	initConf = flag.Bool("init-config", false, "현재 설정을 config.toml 로 저장하고 종료")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load(".env")

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "설정 로드 실패, 기본값 사용: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *initConf {
		path := config.DefaultPath()
		if err := config.SaveConfig(cfg, path); err != nil {
			fmt.Fprintf(os.Stderr, "설정 저장 실패: %v\n", err)
			return 1
		}
		fmt.Printf("설정 저장: %s\n", path)
		return 0
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	if err := trace.Init(cfg.Trace.Enabled, version); err != nil {
		logger.Warn("trace init failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flag.NArg() > 0 {
		return batch(ctx, logger, cfg)
	}

	logger.Info("starting naversettle",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("dev_mode", cfg.Server.DevMode),
		zap.Bool("tracing", trace.Enabled()),
		zap.String("config", info.Path),
	)
	srv := server.NewServer(cfg, logger, version)
	if err := srv.Run(ctx, fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logger.Error("server failed", zap.Error(err))
		return 1
	}
	return 0
}

func batch(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) int {
	opts := batchOptions{
		Files:    flag.Args(),
		Prices:   *prices,
		Password: *password,
		From:     *from,
		To:       *to,
		Products: *products,
		Fee:      *fee,
		Out:      *out,
	}
	path, err := runBatch(ctx, logger, cfg, opts, os.Stdout)
	if err != nil {
		logger.Error("batch failed", zap.Error(err))
		return exitCode(err)
	}

	if *open {
		if err := util.OpenFile(path); err != nil {
			logger.Warn("could not open report", zap.String("path", path), zap.Error(err))
		}
	}
	return 0
}

func newLogger(cfg *config.AppConfig) *zap.Logger {
	var zc zap.Config
	if cfg.Server.DevMode {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if lvl, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Log.Level)); err == nil && cfg.Log.Level != "" {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
