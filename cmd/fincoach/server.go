package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/fincoach/internal/advisor"
	"github.com/kalambet/fincoach/internal/api"
	"github.com/kalambet/fincoach/internal/composer"
	"github.com/kalambet/fincoach/internal/config"
	"github.com/kalambet/fincoach/internal/profile"
	"github.com/kalambet/fincoach/internal/storage"
)

const (
	defaultMaxInsights = 3
	shutdownTimeout    = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and MCP stdio server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running fincoach server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show fincoach server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "fincoach.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// newAdvisor opens the configured store and builds the advisor over it. The
// returned cleanup closes both.
func newAdvisor(cfg config.Config) (*advisor.Advisor, func(), error) {
	backend, err := storage.New(cfg.Storage.Driver, cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}

	mgr, err := profile.NewManager(backend, cfg.Cache.TTLDuration())
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	cleanup := func() {
		mgr.Close()
		if err := backend.Close(); err != nil {
			slog.Warn("closing storage", "error", err)
		}
	}
	return advisor.New(mgr, composer.New(defaultMaxInsights)), cleanup, nil
}

func serverRunning(addr string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func runServer(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// stdout carries the MCP stdio transport, so logs go to stderr.
	setupLogging(os.Stderr, cfg.Log.Level)
	slog.Info("starting fincoach", "version", version, "storage", cfg.Storage.Driver, "mcp", cfg.MCP.Enabled)

	token, err := config.EnsureAPIToken(&cfg, config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}

	addr := cfg.Server.Addr()
	pidPath := pidFilePath(cfg.Storage.DataDir)
	if serverRunning(addr) {
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("fincoach is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("fincoach is already running on %s", addr)
		return fmt.Errorf("server already running on %s", addr)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	adv, cleanup, err := newAdvisor(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewAppHandler(api.AppDeps{Advisor: adv, Token: token}),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.MCP.Enabled {
		mcpSrv := api.NewMCPServer(api.MCPDeps{Advisor: adv, Version: version})
		stdioSrv := server.NewStdioServer(mcpSrv)
		g.Go(func() error {
			slog.Info("MCP server started (stdio transport)")
			// A closed stdin ends MCP but leaves the HTTP API running.
			if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("fincoach is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop fincoach (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to fincoach (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	addr := cfg.Server.Addr()
	if serverRunning(addr) {
		if pid, err := readPIDFile(pidFilePath(cfg.Storage.DataDir)); err == nil {
			printStatus("Server", "running on %s (PID %d)", addr, pid)
		} else {
			printStatus("Server", "running on %s", addr)
		}
	} else {
		printStatus("Server", "stopped")
	}

	printStatus("MCP", "%s", enabledLabel(cfg.MCP.Enabled))
	printStatus("Storage", "%s", cfg.Storage.Driver)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	printStatus("Cache TTL", "%s", cfg.Cache.TTLDuration())
	return nil
}

func enabledLabel(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
