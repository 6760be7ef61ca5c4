package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/programtest/internal/config"
	"github.com/LeJamon/programtest/internal/programtest"
	"github.com/LeJamon/programtest/internal/rpc"
	"github.com/LeJamon/programtest/internal/storage/accountstore"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulated ledger",
	Long: `Start a simulated ledger seeded from configuration and serve it over
JSON-RPC:
- POST /        JSON-RPC methods (getLatestBlockhash, sendTransaction, ...)
- GET  /health  health check

The server stops on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "address to listen on (overrides server.listen)")
}

// ledger is a started ledger and the HTTP handler serving it.
type ledger struct {
	env      *programtest.Context
	keypairs []solana.PrivateKey
	handler  http.Handler
}

// startLedger opens the store, seeds and starts the ledger, and builds its
// HTTP handler.
func startLedger(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ledger, error) {
	store, err := accountstore.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open account store: %w", err)
	}

	pt := programtest.New(
		programtest.WithGenesis(cfg.Genesis),
		programtest.WithStore(store),
		programtest.WithLogger(log),
	)
	keys, err := cfg.Seed(pt)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed ledger: %w", err)
	}
	env, err := pt.Start(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	for i, k := range keys {
		log.Info().
			Str("name", cfg.Keypairs[i]).
			Str("address", k.PublicKey().String()).
			Msg("funded keypair")
	}

	srv := rpc.NewServer(env.Banks, env.Warper, env.Genesis,
		rpc.WithTimeout(cfg.Server.RequestTimeout),
		rpc.WithLogger(log),
	)
	mux := http.NewServeMux()
	mux.Handle("/", srv)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"programtest"}`))
	})

	return &ledger{env: env, keypairs: keys, handler: mux}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}
	log := newLogger(cfg.Log, os.Stderr).With().Str("component", "serve").Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := startLedger(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.env.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ledger")
		}
	}()

	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Listen, err)
	}
	return serve(ctx, ln, l.handler, cfg.Server, log)
}

// serve runs an HTTP server on ln until ctx is done, then shuts it down
// gracefully.
func serve(ctx context.Context, ln net.Listener, h http.Handler, cfg config.ServerConfig, log zerolog.Logger) error {
	httpServer := &http.Server{Handler: h}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("listen", ln.Addr().String()).Msg("json-rpc server started")
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
