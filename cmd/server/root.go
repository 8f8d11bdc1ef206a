// cmd/server/root.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"codeshare/internal/classroom"
	"codeshare/internal/config"
	"codeshare/internal/server"
	"codeshare/internal/storage"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "codeshare",
		Short: "Classroom code-sharing server",
		Long: `codeshare serves a shared code editor for a classroom session:
versioned snapshots of the code, a question board with instructor
replies, and a quick comprehension poll.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.ReadFile(v, cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	config.SetDefaults(v)

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	f.String("addr", ":8080", "HTTP listen address")
	f.String("log-level", "info", "log level: debug, info, warn, error")
	f.String("log-format", "json", "log format: json or text")
	f.String("storage", "memory", "storage backend: memory, json or sqlite")
	f.String("seed", "", "YAML file describing the initial code and question thread")

	_ = v.BindPFlag("server.addr", f.Lookup("addr"))
	_ = v.BindPFlag("log.level", f.Lookup("log-level"))
	_ = v.BindPFlag("log.format", f.Lookup("log-format"))
	_ = v.BindPFlag("storage.backend", f.Lookup("storage"))
	_ = v.BindPFlag("seed.file", f.Lookup("seed"))

	return cmd
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}

	backend, err := storage.Open(cfg.Backend, cfg.JSONPath, cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	// 初始化教室；若後端有上次保存的狀態則還原，否則以一個預設 session 啟動
	c := classroom.New(classroom.WithSeed(seed))
	st, err := backend.Load(parent)
	switch {
	case errors.Is(err, storage.ErrNoState):
		s := c.Create(classroom.DefaultSessionName)
		logger.Info("starting with fresh classroom", "session", s.ID)
	case err != nil:
		return fmt.Errorf("load state: %w", err)
	default:
		if err := c.Restore(st); err != nil {
			return err
		}
		logger.Info("restored classroom", "sessions", c.Len(), "backend", cfg.Backend)
	}

	// persist：將目前教室狀態交給儲存後端；handler 可能並行呼叫，故以鎖序列化
	var persistMu sync.Mutex
	persist := func() error {
		persistMu.Lock()
		defer persistMu.Unlock()
		return backend.Save(context.Background(), c.Export())
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.NewServer(c, persist, logger).Router(),
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("codeshare server listening", "addr", cfg.Addr, "storage", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		// 結束前保存最後狀態
		if err := persist(); err != nil {
			return fmt.Errorf("final persist: %w", err)
		}
		return nil
	})

	return g.Wait()
}
