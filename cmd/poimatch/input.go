package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poi-xref/internal/config"
	"github.com/poi-xref/internal/db"
	"github.com/poi-xref/internal/ingest"
	"github.com/poi-xref/internal/match"
)

// inputFlags select the reference and comparison collections, each from a
// file or from a SQL query.
type inputFlags struct {
	refPath, cmpPath         string
	refProvider, cmpProvider string
	refQuery, cmpQuery       string
	sheet                    string
	dbDriver, dsn            string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.refPath, "ref", "", "Reference POI file (.csv, .geojson, .xlsx)")
	fl.StringVar(&f.cmpPath, "cmp", "", "Comparison POI file (.csv, .geojson, .xlsx)")
	fl.StringVar(&f.refProvider, "ref-provider", "google", "Provider of the reference; selects the column preset (google, osm, others use default columns)")
	fl.StringVar(&f.cmpProvider, "cmp-provider", "overture", "Provider of the comparison; selects the column preset (google, osm, others use default columns)")
	fl.StringVar(&f.refQuery, "ref-query", "", "SQL query producing the reference rows")
	fl.StringVar(&f.cmpQuery, "cmp-query", "", "SQL query producing the comparison rows")
	fl.StringVar(&f.sheet, "sheet", "", "Worksheet name for .xlsx inputs")
	fl.StringVar(&f.dbDriver, "db-driver", config.GetEnv("POI_DB_DRIVER", db.DriverPostgres), "SQL driver: postgres or sqlite")
	fl.StringVar(&f.dsn, "dsn", config.GetEnv("POI_DB_DSN", ""), "SQL data source name")
}

func (f *inputFlags) load(ctx context.Context) (ref, cmp match.Collection, err error) {
	ref, err = f.loadOne(ctx, f.refPath, f.refQuery, f.refProvider, "reference", "ref")
	if err != nil {
		return ref, cmp, err
	}
	cmp, err = f.loadOne(ctx, f.cmpPath, f.cmpQuery, f.cmpProvider, "comparison", "cmp")
	if err != nil {
		return ref, cmp, err
	}
	logger.Info().
		Str("reference", ref.Source).Int("reference_rows", len(ref.POIs)).
		Str("comparison", cmp.Source).Int("comparison_rows", len(cmp.POIs)).
		Msg("inputs loaded")
	return ref, cmp, nil
}

func (f *inputFlags) loadOne(ctx context.Context, path, query, provider, role, flag string) (match.Collection, error) {
	m := ingest.MappingFor(provider)

	switch {
	case query != "":
		conn, err := f.connect()
		if err != nil {
			return match.Collection{}, err
		}
		defer conn.Close()
		c, err := ingest.ReadSQL(ctx, conn.DB, query, provider, m)
		if err != nil {
			return c, fmt.Errorf("failed to load %s: %w", role, err)
		}
		return c, nil

	case path != "":
		var (
			c   match.Collection
			err error
		)
		if f.sheet != "" && strings.EqualFold(filepath.Ext(path), ".xlsx") {
			c, err = ingest.LoadXLSX(path, f.sheet, provider, m)
		} else {
			c, err = ingest.Load(path, provider, m)
		}
		if err != nil {
			return c, fmt.Errorf("failed to load %s: %w", role, err)
		}
		return c, nil

	default:
		return match.Collection{}, fmt.Errorf("no %s input: pass --%s or --%s-query", role, flag, flag)
	}
}

func (f *inputFlags) connect() (*db.Connection, error) {
	if f.dsn == "" {
		return db.NewConnection()
	}
	return db.Open(f.dbDriver, f.dsn)
}
