// Package iopixmap builds pixel maps: the persisted association between
// survey observations and the grid cells their geometries overlap.
package iopixmap

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/ecoclim/pixlink/internal/iolayers"
	"github.com/ecoclim/pixlink/pkg/config"
	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/grid"
	"github.com/ecoclim/pixlink/pkg/lifecycle"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/ecoclim/pixlink/pkg/survey"
	"github.com/gnames/gn"
	"golang.org/x/sync/errgroup"
)

type builder struct {
	cfg      *config.Config
	operator db.Operator
	sources  *sources.SourcesConfig
}

// New creates a MapBuilder.
func New(
	cfg *config.Config,
	op db.Operator,
	srcCfg *sources.SourcesConfig,
) lifecycle.MapBuilder {
	return &builder{cfg: cfg, operator: op, sources: srcCfg}
}

// Build maps all requested layers onto all requested climate sources.
// Existing (source, layer) pixel maps are left untouched.
func (b *builder) Build(ctx context.Context) error {
	srcs, err := b.sources.FilterSources(b.cfg.Run.SourceNames)
	if err != nil {
		return err
	}
	layers, err := b.sources.FilterLayers(b.cfg.Run.Layers)
	if err != nil {
		return err
	}

	for _, src := range srcs {
		for _, layerCfg := range layers {
			if err := b.buildOne(ctx, src, layerCfg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) buildOne(
	ctx context.Context,
	src sources.ClimateSourceConfig,
	layerCfg sources.LayerConfig,
) error {
	exists, err := b.pixelMapExists(ctx, src.Name, layerCfg.Name)
	if err != nil {
		return err
	}
	if exists {
		gn.Info("Pixel map for <em>%s/%s</em> exists, skipping",
			src.Name, layerCfg.Name)
		return nil
	}

	layer, err := iolayers.Load(layerCfg, src.Grid.SRID)
	if err != nil {
		return err
	}

	rows, err := b.layerRows(ctx, &src, &layerCfg, layer.Observations)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		gn.Warn("No observations of <em>%s</em> inside <em>%s</em> coverage, "+
			"nothing to store", layerCfg.Name, src.Name)
		return nil
	}

	if err := b.insertRows(ctx, rows); err != nil {
		return err
	}

	gn.Info("Stored %d pixel associations for <em>%s/%s</em>",
		len(rows), src.Name, layerCfg.Name)
	return nil
}

// layerRows maps one layer onto one source grid and expands the result
// to pixel map rows. A layer left without observations after coverage
// filtering is an empty result, not a failure; observations that exist
// but map to zero cells mean the layer and the grid disagree on the
// reference system.
func (b *builder) layerRows(
	ctx context.Context,
	src *sources.ClimateSourceConfig,
	layerCfg *sources.LayerConfig,
	obs []survey.Observation,
) ([]pixelMapRow, error) {
	if src.ConusOnly {
		var skipped int
		obs, skipped = filterConus(obs)
		if skipped > 0 {
			slog.Info("Filtered observations outside CONUS coverage",
				"source", src.Name,
				"layer", layerCfg.Name,
				"skipped", skipped,
			)
		}
	}
	if len(obs) == 0 {
		return nil, nil
	}

	uniq, expand := survey.UniqueGeometries(obs)

	gn.Info("Mapping <em>%s</em> onto <em>%s</em>: %d records, %d geometries",
		layerCfg.Name, src.Name, len(obs), len(uniq))

	mapped, unrepairable, err := b.mapGeometries(ctx, &src.Grid, uniq)
	if err != nil {
		return nil, err
	}
	if unrepairable > 0 {
		slog.Warn("Some geometries could not be repaired",
			"source", src.Name,
			"layer", layerCfg.Name,
			"unrepairable", unrepairable,
		)
	}

	rows := expandRows(src.Name, layerCfg.Name, mapped, expand)
	if len(rows) == 0 {
		return nil, GridMismatchError(src.Name, layerCfg.Name)
	}
	return rows, nil
}

// geomCells is the mapping result of one distinct geometry.
type geomCells struct {
	GeometryID string
	Cells      []grid.CellCoverage
}

// mapGeometries decomposes distinct geometries into grid cells using a
// pool of JobsNumber workers. Unrepairable geometries are counted and
// logged, never silently dropped.
func (b *builder) mapGeometries(
	ctx context.Context,
	g *grid.Grid,
	uniq []survey.Observation,
) ([]geomCells, int, error) {
	chIn := make(chan survey.Observation)
	chOut := make(chan geomCells)

	eg, ctx := errgroup.WithContext(ctx)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var unrepairable int

	for range b.cfg.JobsNumber {
		wg.Add(1)
		eg.Go(func() error {
			defer wg.Done()
			for o := range chIn {
				cells, err := g.MapGeometry(o.Geom)
				if err != nil {
					if errors.Is(err, grid.ErrUnrepairable) {
						mu.Lock()
						unrepairable++
						mu.Unlock()
						slog.Warn("Skipping unrepairable geometry",
							"geometry_id", o.GeometryID,
							"observation_id", o.ObservationID,
						)
						continue
					}
					return err
				}
				select {
				case chOut <- geomCells{GeometryID: o.GeometryID, Cells: cells}:
				case <-ctx.Done():
					return CancelledError(ctx.Err())
				}
			}
			return nil
		})
	}

	var res []geomCells
	eg.Go(func() error {
		bar := pb.Full.Start(len(uniq))
		bar.Set("prefix", "Mapping geometries: ")
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
		for gc := range chOut {
			res = append(res, gc)
			bar.Increment()
		}
		return nil
	})

	go func() {
		wg.Wait()
		close(chOut)
	}()

	feedErr := func() error {
		defer close(chIn)
		for _, o := range uniq {
			select {
			case chIn <- o:
			case <-ctx.Done():
				return CancelledError(ctx.Err())
			}
		}
		return nil
	}()

	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}
	if feedErr != nil {
		return nil, 0, feedErr
	}

	return res, unrepairable, nil
}

// pixelMapExists reports whether a pixel map was already built for the
// (source, layer) pair.
func (b *builder) pixelMapExists(
	ctx context.Context,
	source, layer string,
) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT FROM pixel_maps
			WHERE source = $1 AND layer = $2
		)
	`
	var exists bool
	err := b.operator.Pool().QueryRow(ctx, q, source, layer).Scan(&exists)
	if err != nil {
		return false, QueryError(source, layer, err)
	}
	return exists, nil
}
