// Package verify implements the two-step phone verification flow that
// produces a logged-in user: request a code for a phone number, then submit
// it. Codes are persisted hashed in the local metadata store under a
// per-phone key, expire after a TTL, and allow a bounded number of wrong
// submissions.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/logging"
	"github.com/adboardapp/adboard/internal/models"
	"github.com/adboardapp/adboard/internal/repositories/metadata"
	"github.com/adboardapp/adboard/internal/repositories/users"
)

// State of a verification flow instance.
type State string

const (
	StateAwaitingPhone State = "awaiting_phone"
	StateAwaitingCode  State = "awaiting_code"
	StateVerified      State = "verified"
)

// codeKeyPrefix prefixes the per-phone metadata key holding the
// outstanding code.
const codeKeyPrefix = "verification_"

// codeRecord is the persisted form of an outstanding code. Only the hash
// of the code is stored.
type codeRecord struct {
	Hash      string    `json:"hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// Session is the slice of the session manager the flow needs.
type Session interface {
	Login(ctx context.Context, user *models.User) error
}

// Flow drives one phone-verification attempt from AwaitingPhone to
// Verified. A Flow is not reusable after Verified; start a new one.
type Flow struct {
	users       users.Repository
	meta        metadata.Repository
	session     Session
	deliver     Deliverer
	log         logging.Logger
	ttl         time.Duration
	maxAttempts int
	nowF        func() time.Time

	mu    sync.Mutex
	busy  bool
	state State
	phone string
	name  string
}

// NewFlow constructs a flow in AwaitingPhone.
func NewFlow(users users.Repository, meta metadata.Repository, session Session, deliver Deliverer, log logging.Logger, ttl time.Duration, maxAttempts int) *Flow {
	return &Flow{
		users:       users,
		meta:        meta,
		session:     session,
		deliver:     deliver,
		log:         log,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		nowF:        time.Now,
		state:       StateAwaitingPhone,
	}
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Phone returns the phone number the flow is verifying ("" before
// RequestCode).
func (f *Flow) Phone() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phone
}

// begin guards against a duplicate in-flight operation on the same flow and
// checks the state precondition. Callers must pair it with end.
func (f *Flow) begin(want State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return common.ErrBusy
	}
	if f.state != want {
		return fmt.Errorf("flow is %s, not %s", f.state, want)
	}
	f.busy = true
	return nil
}

func (f *Flow) end() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// RequestCode generates a verification code for phone, persists its hash
// and hands the plain code to the delivery channel. On success the flow
// moves to AwaitingCode. name is kept for the later account create/update.
func (f *Flow) RequestCode(ctx context.Context, phone, name string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return common.NewValidationError("phone", "required")
	}

	if err := f.begin(StateAwaitingPhone); err != nil {
		return err
	}
	defer f.end()

	if err := f.issueCode(ctx, phone); err != nil {
		return err
	}

	f.mu.Lock()
	f.phone = phone
	f.name = strings.TrimSpace(name)
	f.state = StateAwaitingCode
	f.mu.Unlock()
	return nil
}

// ResendCode regenerates and redelivers a code for the same phone. The
// flow stays in AwaitingCode; the previous code, its expiry and its attempt
// count are discarded.
func (f *Flow) ResendCode(ctx context.Context) error {
	if err := f.begin(StateAwaitingCode); err != nil {
		return err
	}
	defer f.end()

	return f.issueCode(ctx, f.phone)
}

// EditPhone discards the outstanding code and returns the flow to
// AwaitingPhone so a different number can be entered.
func (f *Flow) EditPhone(ctx context.Context) error {
	if err := f.begin(StateAwaitingCode); err != nil {
		return err
	}
	defer f.end()

	if err := f.meta.Delete(ctx, codeKeyPrefix+f.phone); err != nil {
		return err
	}

	f.mu.Lock()
	f.phone = ""
	f.name = ""
	f.state = StateAwaitingPhone
	f.mu.Unlock()
	return nil
}

// SubmitCode checks code against the outstanding one for the flow's phone.
// On a match it finds or creates the user for the phone, updates the name
// when one was provided, logs the session in and moves to Verified. On a
// mismatch the flow stays in AwaitingCode and the attempt is counted;
// common.ErrVerificationMismatch is returned. An expired or exhausted code
// yields common.ErrCodeExpired; resend to recover.
func (f *Flow) SubmitCode(ctx context.Context, code string) (*models.User, error) {
	if err := f.begin(StateAwaitingCode); err != nil {
		return nil, err
	}
	defer f.end()

	key := codeKeyPrefix + f.phone

	raw, err := f.meta.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("code read error: %w", err)
	}
	if raw == nil {
		return nil, common.ErrNoOutstandingCode
	}

	var rec codeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		_ = f.meta.Delete(ctx, key)
		return nil, fmt.Errorf("%w: %w", common.ErrStateCorrupt, err)
	}

	if f.nowF().After(rec.ExpiresAt) {
		_ = f.meta.Delete(ctx, key)
		return nil, common.ErrCodeExpired
	}

	if !CodeEqual(code, rec.Hash) {
		rec.Attempts++
		if rec.Attempts >= f.maxAttempts {
			_ = f.meta.Delete(ctx, key)
			return nil, common.ErrCodeExpired
		}
		if data, err := json.Marshal(rec); err == nil {
			_ = f.meta.Set(ctx, key, data)
		}
		return nil, common.ErrVerificationMismatch
	}

	user, err := f.findOrCreateUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := f.session.Login(ctx, user); err != nil {
		return nil, err
	}

	// The code is consumed only once the login fully succeeded.
	_ = f.meta.Delete(ctx, key)

	f.setState(StateVerified)
	return user, nil
}

// issueCode generates, persists and delivers a fresh code for phone.
func (f *Flow) issueCode(ctx context.Context, phone string) error {
	code, err := GenerateCode()
	if err != nil {
		return fmt.Errorf("code generation error: %w", err)
	}

	rec := codeRecord{
		Hash:      HashCode(code),
		ExpiresAt: f.nowF().Add(f.ttl),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("code encode error: %w", err)
	}
	if err := f.meta.Set(ctx, codeKeyPrefix+phone, data); err != nil {
		return fmt.Errorf("code persist error: %w", err)
	}

	if err := f.deliver.Deliver(ctx, phone, code); err != nil {
		_ = f.meta.Delete(ctx, codeKeyPrefix+phone)
		return fmt.Errorf("code delivery error: %w", err)
	}

	f.log.Info(ctx, "verification code issued", "phone", phone)
	return nil
}

// findOrCreateUser resolves the verified phone to an account: an existing
// user gets the provided name applied (when non-empty), a new user is
// created with the provided or derived name.
func (f *Flow) findOrCreateUser(ctx context.Context) (*models.User, error) {
	existing, err := f.users.GetByPhone(ctx, f.phone)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("user lookup error: %w", err)
	}

	if existing != nil {
		if f.name != "" && f.name != existing.Name {
			updated, err := f.users.UpdateName(ctx, existing.ID, f.name)
			if err != nil {
				return nil, fmt.Errorf("user update error: %w", err)
			}
			return updated, nil
		}
		return existing, nil
	}

	name := f.name
	if name == "" {
		name = models.DefaultName(f.phone)
	}
	now := f.nowF()
	created, err := f.users.Create(ctx, &models.User{
		ID:        uuid.NewString(),
		Phone:     f.phone,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("user create error: %w", err)
	}
	return created, nil
}
