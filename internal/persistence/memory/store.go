// Package memory provides an in-process domain.Store for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vibe-with-wyn/green-roots/internal/domain"
)

// Store keeps zones, users, submissions and activities in maps. Transactions
// are serialised and work on a copy that replaces the live state on commit.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	zones       map[int64]domain.Zone
	users       map[int64]domain.User
	submissions map[int64]domain.Submission
	activities  map[int64]domain.Activity
	nextID      int64
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		zones:       make(map[int64]domain.Zone),
		users:       make(map[int64]domain.User),
		submissions: make(map[int64]domain.Submission),
		activities:  make(map[int64]domain.Activity),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.zones {
		out.zones[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.submissions {
		out.submissions[k] = v
	}
	for k, v := range s.activities {
		out.activities[k] = v
	}
	out.nextID = s.nextID
	return out
}

func (s *state) assignID(id int64) int64 {
	if id == 0 {
		s.nextID++
		return s.nextID
	}
	if id > s.nextID {
		s.nextID = id
	}
	return id
}

// WithinTx implements domain.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, l domain.Ledgers) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, ledgers(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

func ledgers(st *state) domain.Ledgers {
	return domain.Ledgers{
		Submissions: submissionLedger{st: st},
		Activities:  activityLedger{st: st},
		Users:       userLedger{st: st},
	}
}

// PutZone inserts or replaces a zone and returns its id.
func (s *Store) PutZone(z domain.Zone) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	z.ID = s.state.assignID(z.ID)
	s.state.zones[z.ID] = z
	return z.ID
}

// PutUser inserts or replaces a user and returns its id.
func (s *Store) PutUser(u domain.User) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.state.assignID(u.ID)
	s.state.users[u.ID] = u
	return u.ID
}

// PutSubmission inserts or replaces a submission and returns its id.
func (s *Store) PutSubmission(sub domain.Submission) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = s.state.assignID(sub.ID)
	if sub.Status == "" {
		sub.Status = domain.StatusPending
	}
	s.state.submissions[sub.ID] = sub
	return sub.ID
}

// PutActivity inserts or replaces an activity and returns its id.
func (s *Store) PutActivity(a domain.Activity) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.state.assignID(a.ID)
	if a.Status == "" {
		a.Status = domain.StatusPending
	}
	s.state.activities[a.ID] = a
	return a.ID
}

// User returns a copy of the user row.
func (s *Store) User(id int64) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.state.users[id]
	return u, ok
}

// Submission returns a copy of the submission row.
func (s *Store) Submission(id int64) (domain.Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.state.submissions[id]
	return sub, ok
}

// Activity returns a copy of the activity row.
func (s *Store) Activity(id int64) (domain.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.state.activities[id]
	return a, ok
}

type submissionLedger struct{ st *state }

func (l submissionLedger) UpdateValidation(ctx context.Context, v domain.SubmissionValidation) (bool, error) {
	sub, ok := l.st.submissions[v.SubmissionID]
	if !ok {
		return false, nil
	}
	sub.Status = v.Status
	sub.ValidatedBy = v.ValidatedBy
	sub.ValidatedAt = v.ValidatedAt
	sub.RejectionReason = v.RejectionReason
	l.st.submissions[v.SubmissionID] = sub
	return true, nil
}

func (l submissionLedger) GetMeta(ctx context.Context, submissionID int64) (*domain.SubmissionMeta, error) {
	sub, ok := l.st.submissions[submissionID]
	if !ok {
		return nil, nil
	}
	meta := &domain.SubmissionMeta{SubmittedAt: sub.SubmittedAt}
	if sub.ZoneID != nil {
		if z, ok := l.st.zones[*sub.ZoneID]; ok {
			name := z.Name
			meta.ZoneName = &name
		}
	}
	return meta, nil
}

func (l submissionLedger) GetZone(ctx context.Context, submissionID int64) (int64, bool, error) {
	sub, ok := l.st.submissions[submissionID]
	if !ok || sub.ZoneID == nil {
		return 0, false, nil
	}
	return *sub.ZoneID, true, nil
}

func (l submissionLedger) GetPhoto(ctx context.Context, submissionID, zoneID int64) ([]byte, error) {
	sub, ok := l.st.submissions[submissionID]
	if !ok || sub.ZoneID == nil || *sub.ZoneID != zoneID {
		return nil, nil
	}
	return sub.Photo, nil
}

type activityLedger struct{ st *state }

func (l activityLedger) sortedIDs() []int64 {
	ids := make([]int64, 0, len(l.st.activities))
	for id := range l.st.activities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (l activityLedger) UpdateLinked(ctx context.Context, submissionID int64, userID *int64, status domain.Status, ecoPoints *int64) (int64, bool, error) {
	if userID == nil {
		return 0, false, nil
	}
	for _, id := range l.sortedIDs() {
		a := l.st.activities[id]
		if a.SubmissionID == nil || *a.SubmissionID != submissionID {
			continue
		}
		if a.UserID != *userID || a.Type != domain.ActivityTypeSubmission {
			continue
		}
		a.Status = status
		a.EcoPoints = copyInt(ecoPoints)
		l.st.activities[id] = a
		return id, true, nil
	}
	return 0, false, nil
}

func (l activityLedger) LockLegacyCandidates(ctx context.Context, userID int64, from, to time.Time) ([]domain.Activity, error) {
	out := make([]domain.Activity, 0)
	for _, id := range l.sortedIDs() {
		a := l.st.activities[id]
		if a.SubmissionID != nil || a.UserID != userID {
			continue
		}
		if a.Type != domain.ActivityTypeSubmission || a.Status != domain.StatusPending {
			continue
		}
		if a.CreatedAt.Before(from) || a.CreatedAt.After(to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (l activityLedger) ClaimLegacy(ctx context.Context, activityID, submissionID int64, status domain.Status, ecoPoints *int64) (bool, error) {
	a, ok := l.st.activities[activityID]
	if !ok || a.SubmissionID != nil || a.Status != domain.StatusPending {
		return false, nil
	}
	sid := submissionID
	a.SubmissionID = &sid
	a.Status = status
	a.EcoPoints = copyInt(ecoPoints)
	l.st.activities[activityID] = a
	return true, nil
}

type userLedger struct{ st *state }

func (l userLedger) GetZone(ctx context.Context, userID int64) (int64, bool, error) {
	u, ok := l.st.users[userID]
	if !ok || u.ZoneID == nil {
		return 0, false, nil
	}
	return *u.ZoneID, true, nil
}

func (l userLedger) Credit(ctx context.Context, userID, ecoPoints, treesPlanted int64) (bool, error) {
	u, ok := l.st.users[userID]
	if !ok {
		return false, nil
	}
	u.EcoPoints += ecoPoints
	u.TreesPlanted += treesPlanted
	l.st.users[userID] = u
	return true, nil
}

func copyInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
