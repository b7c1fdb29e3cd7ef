package main

import (
	"github.com/spf13/cobra"

	"token-minter/internal/logger"
)

func init() {
	RootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fee transaction and minting API",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("serve")

		if err = conf.Validate(); err != nil {
			return
		}

		app, err := newApp(ctx, conf)
		if err != nil {
			return
		}
		defer app.Close()

		done := make(chan error, 1)
		go func() {
			done <- app.server.Run()
		}()

		select {
		case err = <-done:
			return
		case <-ctx.Done():
			log.Info("Shutting down")
		}

		app.server.Stop()
		return <-done
	},
}
