package main

import (
	"github.com/spf13/cobra"

	"github.com/poi-xref/internal/web"
)

func createServeCmd() *cobra.Command {
	var (
		webConfigPath string
		host          string
		port          int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the matching JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			webConfig := web.DefaultConfig()
			if webConfigPath != "" {
				loaded, err := web.LoadConfig(webConfigPath)
				if err != nil {
					return err
				}
				webConfig = loaded
			} else {
				cfg, err := loadMatchConfig()
				if err != nil {
					return err
				}
				webConfig.Match = cfg
			}
			if host != "" {
				webConfig.Server.Host = host
			}
			if port > 0 {
				webConfig.Server.Port = port
			}

			enc, err := openEncoder(webConfig.Match.Embedder)
			if err != nil {
				return err
			}
			if enc != nil {
				defer enc.Close()
			}

			server, err := web.NewServer(webConfig, enc, logger)
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&webConfigPath, "web-config", "", "Server config JSON (includes the match section)")
	cmd.Flags().StringVar(&host, "host", "", "Listen host")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port")
	return cmd
}
