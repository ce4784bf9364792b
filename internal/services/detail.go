package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/dbx"
	"github.com/adboardapp/adboard/internal/logging"
	"github.com/adboardapp/adboard/internal/models"
	adsrepo "github.com/adboardapp/adboard/internal/repositories/ads"
	usersrepo "github.com/adboardapp/adboard/internal/repositories/users"
)

// AdDetail is one ad expanded for the public detail view, together with
// its seller.
type AdDetail struct {
	Ad models.Ad
	// Seller is nil when the seller account no longer exists.
	Seller *models.User
}

// DetailService loads single ads for the public detail view. The ad and
// its seller are read inside one transaction so the pair comes from a
// consistent snapshot.
type DetailService struct {
	db      *sql.DB
	log     logging.Logger
	timeout time.Duration
}

// NewDetailService constructs a DetailService over the record store
// connection. timeout bounds each remote attempt.
func NewDetailService(db *sql.DB, log logging.Logger, timeout time.Duration) *DetailService {
	return &DetailService{db: db, log: log, timeout: timeout}
}

// Get returns the active ad identified by adID plus its seller. An unknown
// or deactivated ad yields common.ErrNotFound. A missing seller account
// does not fail the view; Seller is left nil.
func (s *DetailService) Get(ctx context.Context, adID string) (*AdDetail, error) {
	var det *AdDetail

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		d, err := s.load(attemptCtx, adID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return err
			}
			return retry.RetryableError(err)
		}
		det = d
		return nil
	})
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Error(ctx, "ad detail query failed", "ad", adID, "err", err)
		}
		return nil, err
	}

	return det, nil
}

func (s *DetailService) load(ctx context.Context, adID string) (*AdDetail, error) {
	var det AdDetail

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ad, err := adsrepo.NewPostgresRepository(tx).GetByID(ctx, adID)
		if err != nil {
			return err
		}
		// Only active ads are publicly viewable.
		if !ad.Active {
			return common.ErrNotFound
		}
		det.Ad = *ad

		seller, err := usersrepo.NewPostgresRepository(tx).GetByID(ctx, ad.UserID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil
			}
			return err
		}
		det.Seller = seller
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &det, nil
}
