// Package evidence exposes the evidence collaborator contract consumed by the
// hook ranker: fetching observed signals about a prospect and classifying them
// into typed outreach events.
package evidence

import (
	"context"
	"time"

	"github.com/cobaltline/outreach/internal/store"
)

// Classification is the typed reading of one evidence item.
type Classification struct {
	EventType   string  // one of the hook types, e.g. "review_win"
	Sentiment   string  // positive, neutral, negative
	Relevance   float64 // [0,1]
	Specificity float64 // [0,1]
}

// Store is the evidence collaborator interface.
type Store interface {
	FindFreshEvidence(ctx context.Context, prospectID string, maxDaysOld int) ([]store.Evidence, error)
	ClassifyEvidence(ev store.Evidence) (Classification, error)
	GetEvidenceForProspect(ctx context.Context, prospectID string, f store.EvidenceFilter) ([]store.Evidence, error)
	StoreEvidence(ctx context.Context, ev store.Evidence) (string, error)
	GetEvidenceByIDs(ctx context.Context, ids []string) ([]store.Evidence, error)
}

// dbStore backs the collaborator with the engine's own persistence layer and
// the rule-based classifier.
type dbStore struct {
	store      store.Store
	classifier *Classifier
	now        func() time.Time
}

// New returns a Store backed by db. A nil classifier uses the default rules.
func New(db store.Store, c *Classifier) Store {
	if c == nil {
		c = NewClassifier()
	}
	return &dbStore{store: db, classifier: c, now: time.Now}
}

func (s *dbStore) FindFreshEvidence(ctx context.Context, prospectID string, maxDaysOld int) ([]store.Evidence, error) {
	if maxDaysOld <= 0 {
		maxDaysOld = 14
	}
	since := s.now().UTC().AddDate(0, 0, -maxDaysOld)
	return s.store.ListEvidence(ctx, prospectID, store.EvidenceFilter{Since: &since})
}

func (s *dbStore) ClassifyEvidence(ev store.Evidence) (Classification, error) {
	return s.classifier.Classify(ev)
}

func (s *dbStore) GetEvidenceForProspect(ctx context.Context, prospectID string, f store.EvidenceFilter) ([]store.Evidence, error) {
	return s.store.ListEvidence(ctx, prospectID, f)
}

func (s *dbStore) StoreEvidence(ctx context.Context, ev store.Evidence) (string, error) {
	return s.store.CreateEvidence(ctx, ev)
}

func (s *dbStore) GetEvidenceByIDs(ctx context.Context, ids []string) ([]store.Evidence, error) {
	return s.store.GetEvidenceByIDs(ctx, ids)
}
