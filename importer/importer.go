package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dcode-github/six_cities/backend/models"
	"github.com/dcode-github/six_cities/backend/tsv"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is what an import writes to. FindUserByEmail returns nil, nil for an unknown email.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	CreateOffer(ctx context.Context, offer models.Offer, ownerID primitive.ObjectID) (*models.OfferEntity, error)
	Close(ctx context.Context) error
}

type Config struct {
	// PasswordHash is stored for every user the import creates.
	PasswordHash string
	ChunkSize    int
	// OnLine, if set, is called after each line with the running totals.
	OnLine func(Summary)
}

type Summary struct {
	Lines        int
	Imported     int
	Failed       int
	UsersCreated int
}

type Importer struct {
	store  Store
	logger *slog.Logger
	cfg    Config
}

func New(store Store, logger *slog.Logger, cfg Config) *Importer {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = tsv.DefaultChunkSize
	}
	return &Importer{store: store, logger: logger, cfg: cfg}
}

// ImportFile reads path one record at a time and writes its owners and offers.
// A bad record is logged and skipped. Only a file or stream failure, or a
// cancelled ctx, is returned as an error. The store is closed before returning.
func (im *Importer) ImportFile(ctx context.Context, path string) (sum Summary, err error) {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if cerr := im.store.Close(closeCtx); cerr != nil {
			im.logger.Error("Failed to close store", "error", cerr)
			if err == nil {
				err = fmt.Errorf("close store: %w", cerr)
			}
		}
	}()

	reader, err := tsv.OpenLineReader(path, im.cfg.ChunkSize)
	if err != nil {
		im.logger.Error("Cannot open import file", "path", path, "error", err)
		return sum, err
	}

	im.logger.Info("Import started", "path", path)
	started := time.Now()

	lines, done := reader.Stream(ctx)
	for line := range lines {
		sum.Lines++
		if lerr := im.importLine(ctx, line, &sum); lerr != nil {
			sum.Failed++
			im.logger.Error("Skipping line", "line", line.Number, "error", lerr)
		}
		if im.cfg.OnLine != nil {
			im.cfg.OnLine(sum)
		}
		line.Done()
	}

	res := <-done
	if res.Lines != sum.Lines {
		im.logger.Warn("Line count mismatch", "read", res.Lines, "processed", sum.Lines)
	}
	if res.Err != nil {
		im.logger.Error("Import aborted", "path", path, "lines", sum.Lines, "error", res.Err)
		return sum, fmt.Errorf("import %s: %w", path, res.Err)
	}

	im.logger.Info("Import finished",
		"path", path,
		"lines", sum.Lines,
		"imported", sum.Imported,
		"failed", sum.Failed,
		"users_created", sum.UsersCreated,
		"duration", time.Since(started),
	)
	return sum, nil
}

func (im *Importer) importLine(ctx context.Context, line tsv.Line, sum *Summary) error {
	offer, err := tsv.ParseOffer(line.Text)
	if err != nil {
		return &LineParseError{Line: line.Number, Err: err}
	}

	ownerID, created, err := im.resolveOwner(ctx, offer.Owner)
	if err != nil {
		return &PersistenceError{Line: line.Number, Op: "resolve owner", Err: err}
	}
	if created {
		sum.UsersCreated++
	}

	entity, err := im.store.CreateOffer(ctx, offer, ownerID)
	if err != nil {
		return &PersistenceError{Line: line.Number, Op: "create offer", Err: err}
	}

	sum.Imported++
	im.logger.Debug("Offer imported", "line", line.Number, "offer_id", entity.ID.Hex(), "title", offer.Title)
	return nil
}

// resolveOwner finds the owner by email or creates it. Existing users are never modified.
func (im *Importer) resolveOwner(ctx context.Context, owner models.Owner) (primitive.ObjectID, bool, error) {
	user, err := im.store.FindUserByEmail(ctx, owner.Email)
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	if user != nil {
		return user.ID, false, nil
	}

	user, err = im.store.CreateUser(ctx, models.NewUserFromOwner(owner, im.cfg.PasswordHash))
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	if user == nil {
		return primitive.NilObjectID, false, errors.New("store returned no user")
	}

	im.logger.Info("New user created", "email", user.Email)
	return user.ID, true, nil
}
