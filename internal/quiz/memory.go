package quiz

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[int64]Quiz
	nextID  int64
	favs    map[string]map[int64]struct{} // user id -> quiz ids

	rmu sync.Mutex
	rnd *rand.Rand
}

// NewMemoryStore returns an in-process Repository. A nil rnd seeds from the clock.
func NewMemoryStore(rnd *rand.Rand) Repository {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &memoryStore{quizzes: map[int64]Quiz{}, favs: map[string]map[int64]struct{}{}, rnd: rnd}
}

func (m *memoryStore) intn(n int) int {
	m.rmu.Lock()
	defer m.rmu.Unlock()
	return m.rnd.Intn(n)
}

// sorted keeps candidate order stable so a seeded rnd gives repeatable draws.
func (m *memoryStore) sorted() []Quiz {
	out := lo.Values(m.quizzes)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memoryStore) RandomQuiz(_ context.Context, excludeIDs []int64) (Quiz, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	skip := lo.SliceToMap(excludeIDs, func(id int64) (int64, struct{}) { return id, struct{}{} })
	candidates := lo.Filter(m.sorted(), func(q Quiz, _ int) bool {
		_, excluded := skip[q.ID]
		return !excluded
	})
	if len(candidates) == 0 {
		return Quiz{}, false, nil
	}
	return candidates[m.intn(len(candidates))], true, nil
}

func (m *memoryStore) RandomAnswers(_ context.Context, exclude []string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	answers := lo.Uniq(lo.Map(m.sorted(), func(q Quiz, _ int) string { return q.Answer }))
	m.mu.RUnlock()

	answers = lo.Without(answers, exclude...)
	m.rmu.Lock()
	m.rnd.Shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })
	m.rmu.Unlock()
	if len(answers) > n {
		answers = answers[:n]
	}
	return answers, nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id int64) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) CreateQuiz(_ context.Context, q Quiz) (Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	q.ID = m.nextID
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	m.quizzes[q.ID] = q
	return q, nil
}

func (m *memoryStore) UpdateQuiz(_ context.Context, q Quiz) (Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.quizzes[q.ID]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	cur.Question, cur.Answer = q.Question, q.Answer
	m.quizzes[q.ID] = cur
	return cur, nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrNotFound
	}
	delete(m.quizzes, id)
	for _, set := range m.favs {
		delete(set, id)
	}
	return nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, opts ListOpts) ([]Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(opts.Q))
	out := lo.Filter(m.sorted(), func(x Quiz, _ int) bool {
		if opts.AuthorID != "" && x.AuthorID != opts.AuthorID {
			return false
		}
		if opts.FavouritesOf != "" {
			if _, ok := m.favs[opts.FavouritesOf][x.ID]; !ok {
				return false
			}
		}
		return q == "" || strings.Contains(strings.ToLower(x.Question), q)
	})
	if opts.Offset >= len(out) {
		return []Quiz{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) CountByAuthorSince(_ context.Context, authorID string, since int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.CountBy(lo.Values(m.quizzes), func(q Quiz) bool {
		return q.AuthorID == authorID && q.CreatedAt >= since
	}), nil
}

func (m *memoryStore) SetAttachment(_ context.Context, id int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return ErrNotFound
	}
	q.AttachmentKey = key
	m.quizzes[id] = q
	return nil
}

func (m *memoryStore) SetFavourite(_ context.Context, userID string, quizID int64, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[quizID]; !ok {
		return ErrNotFound
	}
	set := m.favs[userID]
	if set == nil {
		set = map[int64]struct{}{}
		m.favs[userID] = set
	}
	if on {
		set[quizID] = struct{}{}
	} else {
		delete(set, quizID)
	}
	return nil
}

func (m *memoryStore) Favourites(_ context.Context, userID string, quizIDs []int64) (map[int64]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.favs[userID]
	out := map[int64]bool{}
	for _, id := range quizIDs {
		if _, ok := set[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}
