package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dcode-github/six_cities/backend/models"
	"github.com/dcode-github/six_cities/backend/tsv"
)

// OfferSource yields stored offers with their owners attached.
type OfferSource interface {
	Each(ctx context.Context, fn func(models.OfferEntity) error) error
}

// ExportFile writes every offer from src to path in the import format and
// returns how many records were written. The file is re-importable.
func ExportFile(ctx context.Context, src OfferSource, path string, logger *slog.Logger) (n int, err error) {
	w, err := tsv.CreateWriter(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	err = src.Each(ctx, func(e models.OfferEntity) error {
		if e.Owner == nil {
			logger.Warn("Skipping offer without owner", "offer", e.ID.Hex())
			return nil
		}
		return w.Write(models.OfferFromEntity(e))
	})
	if err != nil {
		return w.Count(), fmt.Errorf("export offers: %w", err)
	}
	logger.Info("Export finished", "path", path, "offers", w.Count())
	return w.Count(), nil
}
