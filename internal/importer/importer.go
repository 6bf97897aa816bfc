// Package importer drives the one-shot shop-item import: collect the
// three XML datasets of a language, then upsert every record into the
// database and report per-dataset failure counts.
package importer

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/teralab/backoffice/internal/model"
	"github.com/teralab/backoffice/internal/sheet"
)

// ShopStore is the persistence surface the importer writes to.
type ShopStore interface {
	UpsertItemString(ctx context.Context, s model.ItemString) error
	UpsertItemTemplate(ctx context.Context, t model.ItemTemplate) error
	UpsertItemConversion(ctx context.Context, c model.ItemConversion) error
}

// Datasets holds the three collected sheets of one language.
type Datasets struct {
	Strings     []model.ItemString
	Templates   []model.ItemTemplate
	Conversions []model.ItemConversion
}

// Counts summarizes one dataset's upsert outcome.
type Counts struct {
	Total  int
	Failed int
}

// Report summarizes a whole run. A run with FailedTotal() > 0 completed
// but left some records unwritten.
type Report struct {
	Strings     Counts
	Templates   Counts
	Conversions Counts
}

// FailedTotal returns the number of records that failed to upsert.
func (r Report) FailedTotal() int {
	return r.Strings.Failed + r.Templates.Failed + r.Conversions.Failed
}

// Collect loads and collects all three datasets for language from
// <shareRoot>/shopitems/<language>. A missing sheet directory is logged
// and yields an empty dataset; the remaining sheets still load.
// Malformed XML fails the whole collection. No database work happens
// here, so a bad sheet tree aborts the run before anything is written.
func Collect(shareRoot, language string) (Datasets, error) {
	base := filepath.Join(shareRoot, "shopitems", language)
	var ds Datasets

	strElems, err := loadOptional(filepath.Join(base, "StrSheet_Item"))
	if err != nil {
		return ds, err
	}
	ds.Strings, err = sheet.CollectItemStrings(strElems, language)
	if err != nil {
		return ds, err
	}

	dataElems, err := loadOptional(filepath.Join(base, "ItemData"))
	if err != nil {
		return ds, err
	}
	ds.Templates, err = sheet.CollectItemTemplates(dataElems)
	if err != nil {
		return ds, err
	}

	convElems, err := loadOptional(filepath.Join(base, "ItemConversion"))
	if err != nil {
		return ds, err
	}
	ds.Conversions, err = sheet.CollectItemConversions(convElems)
	if err != nil {
		return ds, err
	}

	return ds, nil
}

func loadOptional(dir string) ([]sheet.Element, error) {
	elems, err := sheet.LoadDir(dir)
	if err != nil {
		if errors.Is(err, sheet.ErrDirNotFound) {
			slog.Error("sheet directory missing, dataset skipped", "dir", dir)
			return nil, nil
		}
		return nil, err
	}
	return elems, nil
}

// Importer upserts collected datasets through a ShopStore with bounded
// concurrency.
type Importer struct {
	store   ShopStore
	workers int
}

// New creates an Importer. workers bounds the number of in-flight
// upserts; values below 1 are treated as 1.
func New(store ShopStore, workers int) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{store: store, workers: workers}
}

// Run upserts every record of ds and waits for all upserts to finish.
// A rejected upsert is logged and counted, not fatal; cancelling ctx
// makes the remaining upserts fail and count as rejected.
func (im *Importer) Run(ctx context.Context, ds Datasets) Report {
	var rep Report
	rep.Strings = im.upsertAll(ctx, "item strings", len(ds.Strings), func(ctx context.Context, i int) error {
		return im.store.UpsertItemString(ctx, ds.Strings[i])
	})
	rep.Templates = im.upsertAll(ctx, "item templates", len(ds.Templates), func(ctx context.Context, i int) error {
		return im.store.UpsertItemTemplate(ctx, ds.Templates[i])
	})
	rep.Conversions = im.upsertAll(ctx, "item conversions", len(ds.Conversions), func(ctx context.Context, i int) error {
		return im.store.UpsertItemConversion(ctx, ds.Conversions[i])
	})
	return rep
}

func (im *Importer) upsertAll(ctx context.Context, dataset string, n int, upsert func(context.Context, int) error) Counts {
	var failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(im.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := upsert(ctx, i); err != nil {
				slog.Error("upsert rejected", "dataset", dataset, "err", err)
				failed.Add(1)
			}
			return nil
		})
	}
	// Goroutines never return an error; failures are counted instead so
	// one rejected record cannot cancel the rest of the batch.
	_ = g.Wait()

	counts := Counts{Total: n, Failed: int(failed.Load())}
	slog.Info("dataset imported", "dataset", dataset, "total", counts.Total, "failed", counts.Failed)
	return counts
}
