/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/microsoft/devtools-rdp/internal/config"
	"github.com/microsoft/devtools-rdp/internal/devtools"
	"github.com/microsoft/devtools-rdp/internal/discovery"
	"github.com/microsoft/devtools-rdp/internal/rdp"
)

func NewServeCommand(log logr.Logger) *cobra.Command {
	cfg := &config.Config{}

	serveCmd := &cobra.Command{
		Use:   "serve [--address host:port] [--http-address host:port] [--tabs-file path]",
		Short: "Serves debugger connections until interrupted",
		Long: `Serves debugger connections until interrupted.

	Every connection gets its own set of actors, starting with the tabs listed in the tabs file
	(or a single blank tab). Clients speaking length-prefixed RDP connect to --address;
	WebSocket clients and discovery requests go to --http-address.`,
		RunE: runServe(log, cfg),
		Args: cobra.NoArgs,
	}

	cfg.AddFlags(serveCmd.Flags())

	return serveCmd
}

func runServe(log logr.Logger, cfg *config.Config) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		log = log.WithName("serve")

		if configErr := cfg.Validate(); configErr != nil {
			log.Error(configErr, "Invocation parameters are invalid")
			return configErr
		}

		tabs, tabsErr := cfg.Tabs()
		if tabsErr != nil {
			log.Error(tabsErr, "Could not load tabs", "TabsFile", cfg.TabsFile)
			return tabsErr
		}

		ctx := cmd.Context()
		server := devtools.NewServer(log.WithName("devtools"), tabs)

		rdpListener, listenErr := rdp.Listen(ctx, cfg.Address, log)
		if listenErr != nil {
			log.Error(listenErr, "Failed to create RDP listener", "Address", cfg.Address)
			return listenErr
		}

		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			return server.Serve(egCtx, rdpListener)
		})

		if cfg.HTTPAddress != "" {
			httpListener, httpListenErr := rdp.Listen(ctx, cfg.HTTPAddress, log)
			if httpListenErr != nil {
				log.Error(httpListenErr, "Failed to create discovery listener", "Address", cfg.HTTPAddress)
				_ = rdpListener.Close()
				_ = eg.Wait()
				return httpListenErr
			}

			discoveryLog := log.WithName("discovery")
			eg.Go(func() error {
				return discovery.Serve(egCtx, httpListener, discovery.NewHandler(server, discoveryLog), discoveryLog)
			})
		}

		serveErr := eg.Wait()
		if serveErr != nil {
			log.Error(serveErr, "RDP server stopped with an error")
		} else {
			log.Info("RDP server stopped")
		}
		return serveErr
	}
}
