package subcmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/store"
	"github.com/suntrap/buildboard/kernel/stub"
)

func init() {
	RootCmd.AddCommand(NewStubCommand())
}

func NewStubCommand() *cobra.Command {
	stubCmd := &StubCommand{}

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve fixture data over the backend endpoints for local development",
		Args:  cobra.NoArgs,
		RunE:  stubCmd.run,
	}

	cmd.Flags().StringVarP(&stubCmd.Listen, "listen", "l", "127.0.0.1:8787", "listen address")
	cmd.Flags().BoolVar(&stubCmd.RequireSession, "require-session", false, "reject API calls until /saml/login is visited")
	cmd.Flags().StringVar(&stubCmd.SessionKey, "session-key", "buildboard-dev", "session cookie signing key")
	cmd.Flags().BoolVar(&stubCmd.Save, "save", false, "write assignments and pushes back to the fixtures file on exit")

	return cmd
}

type StubCommand struct {
	Listen         string
	RequireSession bool
	SessionKey     string
	Save           bool
}

func (s *StubCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := store.Open(cfg.FixturesPath)
	if err != nil {
		return err
	}
	fileStore, isFile := data.(*store.FileStore)
	if s.Save && !isFile {
		return errors.New("--save requires --fixtures")
	}

	srv := &http.Server{
		Addr: s.Listen,
		Handler: stub.NewServer(data, stub.Options{
			SessionKey:     []byte(s.SessionKey),
			RequireSession: s.RequireSession,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logrus.Infof("stub backend listening on http://%s", s.Listen)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Warnf("stub shutdown (%v)", err)
		}
	}

	if s.Save {
		if err := fileStore.Save(); err != nil {
			return err
		}
		logrus.Infof("saved fixtures to [%s]", fileStore.Path)
	}
	return nil
}
