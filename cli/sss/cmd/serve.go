package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ainvaltin/httpsrv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sss-org/sss-engine/logger"
	"github.com/sss-org/sss-engine/rpc"
)

type serveFlags struct {
	engineFlags
	Address        string
	MetricsAddress string
	MaxBodySize    int64
	EventsPageSize int
}

func newServeCmd(baseConfig *baseConfiguration) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the REST API server of the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), baseConfig, flags)
		},
	}
	flags.addFlags(cmd)
	cmd.Flags().StringVar(&flags.Address, "address", "localhost:8080", "address (host:port) of the REST API server")
	cmd.Flags().StringVar(&flags.MetricsAddress, "metrics-address", "localhost:9090", "address of the Prometheus scrape endpoint, used when metrics exporter is \"prometheus\"")
	cmd.Flags().Int64Var(&flags.MaxBodySize, "max-body-size", rpc.DefaultMaxBodyBytes, "maximum size of the request body in bytes")
	cmd.Flags().IntVar(&flags.EventsPageSize, "events-page-size", 100, "maximum number of event records returned by single request")
	return cmd
}

func serve(ctx context.Context, base *baseConfiguration, flags *serveFlags) (rErr error) {
	eng, err := openEngine(base, &flags.engineFlags)
	if err != nil {
		return err
	}
	defer func() { rErr = errors.Join(rErr, eng.Close()) }()

	obs := base.observe
	log := obs.Logger()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		server := rpc.NewRESTServer(flags.Address, flags.MaxBodySize, obs,
			rpc.StablecoinEndpoints(eng.sys, log),
			rpc.EventEndpoints(eng.journal, log, rpc.WithMaxEventsPageSize(flags.EventsPageSize)),
		)
		log.InfoContext(ctx, fmt.Sprintf("REST API server starting on %s", server.Addr))
		return httpsrv.Run(ctx, *server, httpsrv.ShutdownTimeout(5*time.Second))
	})

	if h := obs.MetricsHandler(); h != nil && flags.MetricsAddress != "" {
		g.Go(func() error {
			mux := http.NewServeMux()
			mux.Handle("/metrics", h)
			server := http.Server{
				Addr:              flags.MetricsAddress,
				Handler:           mux,
				ReadTimeout:       3 * time.Second,
				ReadHeaderTimeout: time.Second,
				WriteTimeout:      5 * time.Second,
			}
			log.InfoContext(ctx, fmt.Sprintf("metrics server starting on %s", server.Addr))
			return httpsrv.Run(ctx, server, httpsrv.ShutdownTimeout(time.Second))
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.InfoContext(ctx, "engine stopped")
		return nil
	}
	if err != nil {
		log.ErrorContext(ctx, "engine stopped", logger.Error(err))
	}
	return err
}
