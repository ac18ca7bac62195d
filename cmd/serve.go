package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tablescope/internal/httpserver"
	"github.com/KaramelBytes/tablescope/internal/logger"
	"github.com/KaramelBytes/tablescope/internal/screen"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the data screens over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		if cmd.Flags().Changed("addr") {
			c.Addr = serveAddr
		}
		env, err := screen.NewEnv(c)
		if err != nil {
			return err
		}
		srv, err := httpserver.NewServer(httpserver.Config{
			Addr:           c.Addr,
			Env:            env,
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
		})
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger.Infof("data dir %s", c.DataDir)
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config addr, :8501)")
}
