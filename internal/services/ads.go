// Package services contains the application services of the adboard
// client. This file defines the ad lifecycle service: creating ads,
// listing the owner's dashboard, and the confirmed toggle/delete
// mutations.
package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/confirm"
	"github.com/adboardapp/adboard/internal/logging"
	"github.com/adboardapp/adboard/internal/models"
	adsrepo "github.com/adboardapp/adboard/internal/repositories/ads"
)

// OwnerStats summarizes an owner's dashboard.
type OwnerStats struct {
	Active   int
	Inactive int
}

// AdService owns the ad lifecycle. All toggle/delete mutations route
// through the confirmation gate; Apply* are the gate's callbacks and
// enforce ownership.
type AdService struct {
	ads     adsrepo.Repository
	log     logging.Logger
	timeout time.Duration
	gate    *confirm.Gate

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewAdService constructs an AdService. timeout bounds each remote call.
// Call UseGate before Request* is used.
func NewAdService(repo adsrepo.Repository, log logging.Logger, timeout time.Duration) *AdService {
	return &AdService{
		ads:      repo,
		log:      log,
		timeout:  timeout,
		inFlight: make(map[string]bool),
	}
}

// UseGate attaches the confirmation gate the Request* operations hand
// their actions to. Set once during wiring.
func (s *AdService) UseGate(g *confirm.Gate) {
	s.gate = g
}

// acquire marks key as having an operation in flight, refusing a
// duplicate. Callers must pair it with release.
func (s *AdService) acquire(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[key] {
		return common.ErrBusy
	}
	s.inFlight[key] = true
	return nil
}

func (s *AdService) release(key string) {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}

// Create validates draft and inserts a new active ad owned by user.
// Validation failures are reported per field before any store call. A
// price that does not parse to a positive number is rejected; it is
// either stored as a positive number or omitted entirely.
func (s *AdService) Create(ctx context.Context, user *models.User, draft models.AdDraft) (*models.Ad, error) {
	if user == nil {
		return nil, common.ErrNotLoggedIn
	}

	ad, err := buildAd(user.ID, draft)
	if err != nil {
		return nil, err
	}

	if err := s.acquire("create"); err != nil {
		return nil, err
	}
	defer s.release("create")

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.ads.Insert(callCtx, ad)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "ad created", "id", created.ID, "category", created.Category)
	return created, nil
}

// ListOwned returns all ads owned by userID, active and inactive,
// newest first. A remote failure degrades to an empty result set together
// with the error.
func (s *AdService) ListOwned(ctx context.Context, userID string) ([]models.Ad, error) {
	var result []models.Ad

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		ads, err := s.ads.ListByOwner(attemptCtx, userID)
		if err != nil {
			return retry.RetryableError(err)
		}
		result = ads
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "owner listing failed", "user_id", userID, "err", err)
		return []models.Ad{}, err
	}

	return result, nil
}

// Stats summarizes a dashboard listing.
func Stats(ads []models.Ad) OwnerStats {
	var st OwnerStats
	for _, ad := range ads {
		if ad.Active {
			st.Active++
		} else {
			st.Inactive++
		}
	}
	return st
}

// RequestToggle hands ad to the confirmation gate for a visibility flip.
// Nothing is mutated until the gate's Confirm.
func (s *AdService) RequestToggle(ad *models.Ad) {
	s.gate.Request(ad, confirm.KindToggle)
}

// RequestDelete hands ad to the confirmation gate for removal. Nothing is
// mutated until the gate's Confirm.
func (s *AdService) RequestDelete(ad *models.Ad) {
	s.gate.Request(ad, confirm.KindDelete)
}

// ApplyToggle flips the ad's active flag in the store and then mirrors the
// flip on the caller's ad in place. On a store failure the local ad is
// left untouched and the caller is expected to re-fetch.
func (s *AdService) ApplyToggle(ctx context.Context, actingUserID string, ad *models.Ad) error {
	if ad.UserID != actingUserID {
		return common.ErrNotAuthorized
	}

	if err := s.acquire(ad.ID); err != nil {
		return err
	}
	defer s.release(ad.ID)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.ads.SetActive(callCtx, ad.ID, !ad.Active); err != nil {
		return err
	}

	ad.Active = !ad.Active
	s.log.Info(ctx, "ad toggled", "id", ad.ID, "active", ad.Active)
	return nil
}

// ApplyDelete removes the ad from the store. The caller drops its local
// entry afterwards (see Remove).
func (s *AdService) ApplyDelete(ctx context.Context, actingUserID string, ad *models.Ad) error {
	if ad.UserID != actingUserID {
		return common.ErrNotAuthorized
	}

	if err := s.acquire(ad.ID); err != nil {
		return err
	}
	defer s.release(ad.ID)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.ads.Delete(callCtx, ad.ID); err != nil {
		return err
	}

	s.log.Info(ctx, "ad deleted", "id", ad.ID)
	return nil
}

// Remove returns list without the ad identified by id, preserving order.
func Remove(list []models.Ad, id string) []models.Ad {
	result := make([]models.Ad, 0, len(list))
	for _, ad := range list {
		if ad.ID != id {
			result = append(result, ad)
		}
	}
	return result
}

// buildAd validates a draft and assembles the Ad to insert.
func buildAd(userID string, draft models.AdDraft) (*models.Ad, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, common.NewValidationError("title", "required")
	}
	description := strings.TrimSpace(draft.Description)
	if description == "" {
		return nil, common.NewValidationError("description", "required")
	}
	category := strings.TrimSpace(draft.Category)
	if category == "" {
		return nil, common.NewValidationError("category", "required")
	}
	if !models.KnownCategory(category) {
		return nil, common.NewValidationError("category", "unknown category")
	}
	city := strings.TrimSpace(draft.City)
	if city == "" {
		return nil, common.NewValidationError("city", "required")
	}

	var price *float64
	if raw := strings.TrimSpace(draft.Price); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return nil, common.NewValidationError("price", "must be a positive number")
		}
		price = &v
	}

	images := make([]string, 0, len(draft.Images))
	for _, url := range draft.Images {
		if u := strings.TrimSpace(url); u != "" {
			images = append(images, u)
		}
	}

	return &models.Ad{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Category:    category,
		Price:       price,
		City:        city,
		Images:      images,
		Active:      true,
		CreatedAt:   time.Now(),
	}, nil
}
