package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"worldview/client"
	"worldview/raster"
	"worldview/viewer"
)

// worldview 入口：连接世界服务器，镜像服务端推送的玩家状态并渲染视口
func main() {
	cfg, err := client.LoadConfig("", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := client.InitLogger(cfg.LogFile, cfg.Debug); err != nil {
		panic(err)
	}

	if err := run(cfg); err != nil {
		client.Log.Errorf("worldview: %v", err)
		client.SyncLogger()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	client.SyncLogger()
}

func run(cfg client.Config) error {
	opts := client.SessionOptions{
		ViewportWidth:  float64(cfg.ViewportWidth),
		ViewportHeight: float64(cfg.ViewportHeight),
		SpriteSize:     float64(cfg.SpriteSize),
		AssetWorkers:   cfg.AssetWorkers,
		ReadLimit:      cfg.ReadLimit,
	}

	var snapshot *raster.Surface
	if cfg.Headless {
		snapshot = raster.New(cfg.ViewportWidth, cfg.ViewportHeight)
		opts.Surface = snapshot
		if cfg.Background != "" {
			bg, err := client.DecodeImageSource(cfg.Background)
			if err != nil {
				return fmt.Errorf("background: %w", err)
			}
			opts.Background = bg
		}
	} else {
		opts.Decode = viewer.Decode
		if cfg.Background != "" {
			bg, err := viewer.LoadBackground(cfg.Background)
			if err != nil {
				return fmt.Errorf("background: %w", err)
			}
			opts.Background = bg
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if cfg.Headless {
		// 无窗口模式下由 Ctrl+C 退出；窗口模式由窗口关闭或 Esc 退出
		ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	s, err := client.Connect(dialCtx, cfg.ServerURL, cfg.Username, opts)
	cancel()
	if err != nil {
		return err
	}
	defer s.Close()

	if cfg.DebugAddr != "" {
		srv := &http.Server{Addr: cfg.DebugAddr, Handler: client.NewDebugMux(s)}
		go func() {
			client.Log.Infof("debug endpoint listening on %s", cfg.DebugAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				client.Log.Warnf("debug listen: %v", err)
			}
		}()
		defer srv.Close()
	}

	if !cfg.Headless {
		return viewer.Run(s, "worldview - "+cfg.Username, cfg.ViewportWidth, cfg.ViewportHeight)
	}

	err = s.Run(ctx)
	if cfg.SnapshotPath != "" {
		if werr := snapshot.WritePNG(cfg.SnapshotPath); werr != nil {
			client.Log.Warnf("snapshot: %v", werr)
		} else {
			client.Log.Infof("snapshot written to %s", cfg.SnapshotPath)
		}
	}
	client.Log.Info("Shutting down...")
	return err
}
