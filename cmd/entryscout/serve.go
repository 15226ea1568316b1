package main

import (
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, fixturePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /v1/insights and POST /v1/reports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fixturePath != "" {
				useFixture(a.cfg, fixturePath)
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			rt, err := openRuntime(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := api.NewServer(rt.svc, a.cfg.Language, a.logger)
			return srv.ListenAndServe(cmd.Context(), a.cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address; defaults to server.addr from config")
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "serve collaborators from a JSON fixture")
	return cmd
}
