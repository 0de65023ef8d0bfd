// Command transitcat builds and serves a bus-network transport
// catalogue: make_base compiles stop/bus/distance input plus routing
// settings into a binary snapshot; process_requests and serve_http
// answer Bus/Stop/Map/Route queries against a previously built one.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/antigravity/transitcat/internal/catalogue"
	"github.com/antigravity/transitcat/internal/geo"
	"github.com/antigravity/transitcat/internal/httpapi"
	"github.com/antigravity/transitcat/internal/loader"
	"github.com/antigravity/transitcat/internal/logging"
	"github.com/antigravity/transitcat/internal/query"
	"github.com/antigravity/transitcat/internal/render"
	"github.com/antigravity/transitcat/internal/routing"
	"github.com/antigravity/transitcat/internal/snapshot"
)

func main() {
	root := &cobra.Command{
		Use:           "transitcat",
		Short:         "Bus-network transport catalogue: build, batch-query, or serve a snapshot.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("usage: transitcat make_base|process_requests|serve_http")
		},
	}

	root.AddCommand(newMakeBaseCommand())
	root.AddCommand(newProcessRequestsCommand())
	root.AddCommand(newServeHTTPCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newMakeBaseCommand() *cobra.Command {
	var fromPostgres string

	cmd := &cobra.Command{
		Use:   "make_base",
		Short: "Build a catalogue from stdin JSON (or Postgres) and write a snapshot.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("make_base")

			var req loader.BuildRequest
			var err error
			if fromPostgres != "" {
				req, err = loadFromPostgres(cmd.Context(), fromPostgres)
			} else {
				req, err = loader.LoadStdin(os.Stdin)
			}
			if err != nil {
				log.Error().Err(err).Str("stage", "load").Msg("make_base failed")
				return err
			}

			cat, err := buildCatalogue(req)
			if err != nil {
				log.Error().Err(err).Str("stage", "catalogue").Msg("make_base failed")
				return err
			}

			rtr := routing.New(cat)
			rtr.Build(req.Routing.BusVelocity, req.Routing.BusWaitTime)

			renderSettings := req.Render
			if renderSettings.Width == 0 && renderSettings.Height == 0 {
				renderSettings = render.DefaultSettings()
			}

			state := snapshot.State{Catalogue: cat, Render: renderSettings, Router: rtr}
			if err := snapshot.WriteFile(req.SnapshotFile, state); err != nil {
				log.Error().Err(err).Str("stage", "snapshot").Msg("make_base failed")
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromPostgres, "from-postgres", "", "Postgres DSN to load stops/buses/road_distances from, instead of stdin JSON")
	return cmd
}

func loadFromPostgres(ctx context.Context, dsn string) (loader.BuildRequest, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return loader.BuildRequest{}, fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	return loader.LoadPostgres(ctx, pool)
}

func buildCatalogue(req loader.BuildRequest) (*catalogue.Catalogue, error) {
	cat := catalogue.New()
	for _, s := range req.Stops {
		if err := cat.AddStop(s.Name, geo.Coordinate{Lat: s.Latitude, Lng: s.Longitude}); err != nil {
			return nil, fmt.Errorf("add stop %q: %w", s.Name, err)
		}
	}
	for _, b := range req.Buses {
		if err := cat.AddBus(b.Name, b.IsLoop(), b.Stops); err != nil {
			return nil, fmt.Errorf("add bus %q: %w", b.Name, err)
		}
	}
	for _, s := range req.Stops {
		for other, meters := range s.RoadDistances {
			if err := cat.AddDistance(s.Name, other, meters); err != nil {
				return nil, fmt.Errorf("add distance %s->%s: %w", s.Name, other, err)
			}
		}
	}
	for _, b := range req.Buses {
		if _, err := cat.BusInfo(b.Name); err != nil {
			return nil, fmt.Errorf("bus %q: %w", b.Name, err)
		}
	}
	if err := cat.Seal(); err != nil {
		return nil, fmt.Errorf("seal catalogue: %w", err)
	}
	return cat, nil
}

type processRequestsDocument struct {
	SerializationSettings struct {
		File string `json:"file"`
	} `json:"serialization_settings"`
	StatRequests []query.Request `json:"stat_requests"`
}

func newProcessRequestsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "process_requests",
		Short: "Load a snapshot and answer stdin stat_requests as a JSON array on stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("process_requests")

			var doc processRequestsDocument
			if err := json.NewDecoder(os.Stdin).Decode(&doc); err != nil {
				log.Error().Err(err).Str("stage", "decode").Msg("process_requests failed")
				return fmt.Errorf("decode stdin: %w", err)
			}

			state, err := snapshot.ReadFile(doc.SerializationSettings.File)
			if err != nil {
				log.Error().Err(err).Str("stage", "snapshot").Msg("process_requests failed")
				return fmt.Errorf("read snapshot: %w", err)
			}

			answerer := query.Answerer{
				Cat: state.Catalogue, Router: state.Router, Renderer: render.New(state.Render),
			}
			responses := answerer.Answer(doc.StatRequests)

			return json.NewEncoder(os.Stdout).Encode(responses)
		},
	}
}

func newServeHTTPCommand() *cobra.Command {
	var addr string
	var snapshotFile string

	cmd := &cobra.Command{
		Use:   "serve_http",
		Short: "Load a snapshot and serve Bus/Stop/Map/Route queries over HTTP until killed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("serve_http")

			state, err := snapshot.ReadFile(snapshotFile)
			if err != nil {
				log.Error().Err(err).Str("stage", "snapshot").Msg("serve_http failed")
				return fmt.Errorf("read snapshot: %w", err)
			}

			server := httpapi.New(state.Catalogue, state.Router, state.Render)
			log.Info().Str("addr", addr).Msg("serving")
			return http.ListenAndServe(addr, server.Router())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().StringVar(&snapshotFile, "snapshot", "", "snapshot file to load (required)")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}
