package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mshel/waypoint/internal/history"
	"github.com/Mshel/waypoint/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
)

const (
	host string = "0.0.0.0"
	port string = "6996"

	maxConnectionsPerIP = 2
)

func main() {
	level, err := log.ParseLevel(os.Getenv("WAYPOINT_LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	sshPKeyPath := os.Getenv("WAYPOINT_PRIVATE_KEY_PATH")

	dbPath := os.Getenv("WAYPOINT_DB_PATH")
	if dbPath == "" {
		dbPath = history.DefaultPath
	}
	store, err := history.Open(dbPath, log.Default())
	if err != nil {
		log.Warn("Run history disabled", "path", dbPath, "error", err)
	} else {
		defer store.Close()
	}

	limiter := newConnectionLimiter(maxConnectionsPerIP)
	sshServer, serverCreateErr := wish.NewServer(
		wish.WithAddress(host+":"+port),
		wish.WithHostKeyPath(sshPKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(newViewHandler(store)),
			logging.Middleware(),
			activeterm.Middleware(),
			limiter.Middleware,
		),
	)
	if serverCreateErr != nil {
		log.Error("Failed to create ssh server", "error", serverCreateErr)
		return
	}

	serverDoneChannel := make(chan os.Signal, 1)
	// Capturing system signal to kill server
	signal.Notify(serverDoneChannel, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	log.Info("Starting SSH server", "host", host, "port", port, "history", dbPath)
	go func() {
		if err := sshServer.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Error("Could not start server", "error", err)
			serverDoneChannel <- nil
		}
	}()

	<-serverDoneChannel

	log.Info("Stopping SSH server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sshServer.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		log.Error("Could not stop server", "error", err)
	}
}

// newViewHandler gives every session its own controller. Searches started in
// a session stop when the session closes.
func newViewHandler(store *history.Store) bubbletea.Handler {
	options := ui.Options{Logger: log.Default()}
	if store != nil {
		options.Recorder = store
		options.History = store
	}

	return func(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
		pty, _, _ := sshSession.Pty()
		controllerModel := ui.NewControllerModel(sshSession.Context(), options, pty.Window.Width, pty.Window.Height)
		return controllerModel, []tea.ProgramOption{tea.WithAltScreen()}
	}
}
