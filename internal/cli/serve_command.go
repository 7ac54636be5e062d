package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"todo-list/internal/api"
	"todo-list/internal/auth"
)

// ServeCommand runs the HTTP API until the context is cancelled or the
// process receives SIGINT or SIGTERM.
type ServeCommand struct {
	rt      *runtime
	signals []os.Signal
}

// NewServeCommand creates a serve command over rt.
func NewServeCommand(rt *runtime) *ServeCommand {
	return &ServeCommand{rt: rt, signals: []os.Signal{os.Interrupt, syscall.SIGTERM}}
}

// Execute runs the serve command
func (c *ServeCommand) Execute(ctx context.Context, args []string) error {
	cfg := c.rt.config
	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		return err
	}
	defer verifier.Close()

	server := api.NewServer(cfg.Server, c.rt.services.TaskService, verifier, c.rt.repo, c.rt.logger, c.rt.metrics)

	ctx, stop := signal.NotifyContext(ctx, c.signals...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.rt.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
