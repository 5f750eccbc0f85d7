// Package memory implements every repository and the cache port in process
// memory. It backs local development without Postgres or Redis and the
// application tests.
//
// Transactions take a snapshot of the whole data set and restore it when the
// function fails. Writes outside a transaction wait for running
// transactions, so a rollback never discards them.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/technology"
)

type txKey struct{}

type memberSet map[string]map[string]struct{}

func (m memberSet) clone() memberSet {
	out := make(memberSet, len(m))
	for k, set := range m {
		c := make(map[string]struct{}, len(set))
		for id := range set {
			c[id] = struct{}{}
		}
		out[k] = c
	}
	return out
}

// toggle flips member in the set under key and returns the new state.
func (m memberSet) toggle(key, member string) bool {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	if _, ok := set[member]; ok {
		delete(set, member)
		return false
	}
	set[member] = struct{}{}
	return true
}

// removeMember drops member from every set.
func (m memberSet) removeMember(member string) {
	for _, set := range m {
		delete(set, member)
	}
}

type data struct {
	profiles     map[string]*profile.Profile
	questions    map[string]*question.Question
	answers      map[string]*answer.Answer
	articles     map[string]*article.Article
	credentials  map[string]*credential.Credential
	technologies map[string]*technology.Technology
	ledger       []*reputation.Entry

	questionLikes memberSet
	articleLikes  memberSet
	answerUpvotes memberSet

	// order keeps insertion order to break created_at ties.
	order map[string]int64
	seq   int64
}

func newData() *data {
	return &data{
		profiles:      make(map[string]*profile.Profile),
		questions:     make(map[string]*question.Question),
		answers:       make(map[string]*answer.Answer),
		articles:      make(map[string]*article.Article),
		credentials:   make(map[string]*credential.Credential),
		technologies:  make(map[string]*technology.Technology),
		questionLikes: make(memberSet),
		articleLikes:  make(memberSet),
		answerUpvotes: make(memberSet),
		order:         make(map[string]int64),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.profiles {
		c.profiles[k] = copyProfile(v)
	}
	for k, v := range d.questions {
		c.questions[k] = copyQuestion(v)
	}
	for k, v := range d.answers {
		c.answers[k] = copyAnswer(v)
	}
	for k, v := range d.articles {
		c.articles[k] = copyArticle(v)
	}
	for k, v := range d.credentials {
		c.credentials[k] = copyCredential(v)
	}
	for k, v := range d.technologies {
		t := *v
		c.technologies[k] = &t
	}
	c.ledger = make([]*reputation.Entry, len(d.ledger))
	for i, e := range d.ledger {
		entry := *e
		c.ledger[i] = &entry
	}
	c.questionLikes = d.questionLikes.clone()
	c.articleLikes = d.articleLikes.clone()
	c.answerUpvotes = d.answerUpvotes.clone()
	for k, v := range d.order {
		c.order[k] = v
	}
	c.seq = d.seq
	return c
}

func (d *data) track(id string) {
	d.seq++
	d.order[id] = d.seq
}

// newerFirst orders by created_at descending, then by insertion.
func (d *data) newerFirst(aID string, aAt time.Time, bID string, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return d.order[aID] > d.order[bID]
}

// sortTechIDs orders tag ids by tag name, like the SQL store does.
func (d *data) sortTechIDs(ids []string) []string {
	name := func(id string) string {
		if t, ok := d.technologies[id]; ok {
			return t.Name
		}
		return ""
	}
	out := append([]string{}, ids...)
	sort.SliceStable(out, func(i, j int) bool {
		return name(out[i]) < name(out[j])
	})
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store holds all records. Use the accessor methods to get repositories.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	d    *data
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{d: newData()}
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// WithinTx runs fn atomically. When fn fails or panics every change it made
// is rolled back. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.d.clone()
	s.mu.RUnlock()

	restore := func() {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		restore()
	}
	return err
}

func (s *Store) write(ctx context.Context, fn func(d *data) error) error {
	if !s.inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.d)
}

func (s *Store) read(fn func(d *data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.d)
}

// Ping always succeeds. It lets the store stand in for the database in
// health checks.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Profiles returns the profile repository.
func (s *Store) Profiles() profile.Repository { return &profileRepo{s} }

// Questions returns the question repository.
func (s *Store) Questions() question.Repository { return &questionRepo{s} }

// Answers returns the answer repository.
func (s *Store) Answers() answer.Repository { return &answerRepo{s} }

// Articles returns the article repository.
func (s *Store) Articles() article.Repository { return &articleRepo{s} }

// Credentials returns the credential repository.
func (s *Store) Credentials() credential.Repository { return &credentialRepo{s} }

// Technologies returns the technology repository.
func (s *Store) Technologies() technology.Repository { return &technologyRepo{s} }

// Ledger returns the reputation ledger.
func (s *Store) Ledger() reputation.Ledger { return &ledgerRepo{s} }

// ══════════════════════════════════════════════════════════════════════════════
// COPY HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func copyProfile(p *profile.Profile) *profile.Profile {
	c := *p
	return &c
}

func copyQuestion(q *question.Question) *question.Question {
	c := *q
	c.TechnologyIDs = append([]string{}, q.TechnologyIDs...)
	return &c
}

func copyAnswer(a *answer.Answer) *answer.Answer {
	c := *a
	return &c
}

func copyArticle(a *article.Article) *article.Article {
	c := *a
	c.TechnologyIDs = append([]string{}, a.TechnologyIDs...)
	return &c
}

func copyCredential(cr *credential.Credential) *credential.Credential {
	c := *cr
	if cr.EndDate != nil {
		end := *cr.EndDate
		c.EndDate = &end
	}
	return &c
}
