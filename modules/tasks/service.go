package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/example/task-api/docstore"
	domain "github.com/example/task-api/domain/task"
	"github.com/example/task-api/modules/cache"
)

// Collection is the document collection holding tasks.
const Collection = "tasks"

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidStatus is returned when a status is outside the enumeration.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrInvalidDate is returned when a date cannot be parsed as ISO-8601.
	ErrInvalidDate = errors.New("invalid task date")
)

// Service orchestrates task CRUD against the document store. Not-found is a
// normal return value here; only store failures surface as errors.
type Service struct {
	store *docstore.Store
	cache *cache.Cache // nil when caching is disabled
	group singleflight.Group
}

// NewService creates a task service. cache may be nil.
func NewService(store *docstore.Store, c *cache.Cache) *Service {
	return &Service{
		store: store,
		cache: c,
	}
}

// ListAll returns every stored task, for all users. There is no ownership
// filter on this path; the caller decides who may reach it.
func (s *Service) ListAll(ctx context.Context) ([]domain.Task, error) {
	docs, err := s.store.GetAll(ctx, Collection)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, domain.FromDocument(doc.ID, doc.Fields))
	}
	return tasks, nil
}

// Create generates a fresh id, converts the date to the stored timestamp form
// and writes the full document. Invalid input is rejected before any store
// write happens.
func (s *Service) Create(ctx context.Context, userID, title, description, date string, status domain.Status) (domain.Task, error) {
	if !status.IsValid() {
		return domain.Task{}, ErrInvalidStatus
	}
	dateMillis, err := domain.ParseDate(date)
	if err != nil {
		return domain.Task{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	id := uuid.New().String()
	fields := domain.ToDocument(userID, title, description, dateMillis, status)
	if err := s.store.Put(ctx, Collection, id, fields); err != nil {
		return domain.Task{}, err
	}

	s.invalidateUser(ctx, userID)

	return domain.Task{
		ID:          id,
		Title:       title,
		Description: description,
		Date:        domain.FormatDate(dateMillis),
		Status:      status,
		UserID:      userID,
	}, nil
}

// UpdateStatus merges only the status field of an existing task and returns
// the merged task. Returns ErrNotFound when the id does not exist.
func (s *Service) UpdateStatus(ctx context.Context, taskID string, status domain.Status) (domain.Task, error) {
	if !status.IsValid() {
		return domain.Task{}, ErrInvalidStatus
	}
	return s.merge(ctx, taskID, map[string]any{
		domain.FieldStatus: string(status),
	})
}

// UpdateDetails merges title, description and date of an existing task. The
// status field is never touched. Returns ErrNotFound when the id does not
// exist.
func (s *Service) UpdateDetails(ctx context.Context, taskID, title, description, date string) (domain.Task, error) {
	dateMillis, err := domain.ParseDate(date)
	if err != nil {
		return domain.Task{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return s.merge(ctx, taskID, map[string]any{
		domain.FieldTitle:       title,
		domain.FieldDescription: description,
		domain.FieldDate:        dateMillis,
	})
}

// Delete removes a task and reports whether a deletion occurred.
func (s *Service) Delete(ctx context.Context, taskID string) (bool, error) {
	fields, err := s.store.GetByID(ctx, Collection, taskID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	deleted, err := s.store.Delete(ctx, Collection, taskID)
	if err != nil {
		return false, err
	}
	if owner, ok := fields[domain.FieldUserID].(string); ok {
		s.invalidateUser(ctx, owner)
	}
	return deleted, nil
}

// ListByUser returns the caller's tasks ordered by date descending.
// Cache-aside: a Redis hit short-circuits the store; concurrent misses for the
// same user collapse into a single store query.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	key := userListKey(userID)

	if s.cache != nil {
		var cached []domain.Task
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("[tasks] cache read failed, falling back to store: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	// The deduplicated query runs on a detached context: the leader caller
	// canceling mid-flight must not fail the followers sharing its result.
	qctx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (any, error) {
		docs, err := s.store.QueryByField(qctx, Collection, domain.FieldUserID, userID, domain.FieldDate, true)
		if err != nil {
			return nil, err
		}

		tasks := make([]domain.Task, 0, len(docs))
		for _, doc := range docs {
			tasks = append(tasks, domain.FromDocument(doc.ID, doc.Fields))
		}

		if s.cache != nil {
			if err := s.cache.Set(qctx, key, tasks); err != nil {
				log.Printf("[tasks] cache write failed: %v", err)
			}
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Task), nil
}

// merge is the shared existence-check-then-partial-update path. The store's
// partial update is a silent no-op on absent documents, so existence is
// checked here first to turn "absent" into ErrNotFound.
func (s *Service) merge(ctx context.Context, taskID string, fields map[string]any) (domain.Task, error) {
	if _, err := s.store.GetByID(ctx, Collection, taskID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.Task{}, ErrNotFound
		}
		return domain.Task{}, err
	}

	if err := s.store.UpdatePartial(ctx, Collection, taskID, fields); err != nil {
		return domain.Task{}, err
	}

	merged, err := s.store.GetByID(ctx, Collection, taskID)
	if err != nil {
		return domain.Task{}, err
	}

	t := domain.FromDocument(taskID, merged)
	s.invalidateUser(ctx, t.UserID)
	return t, nil
}

// invalidateUser drops the cached listing of a user. Best effort: a failed
// invalidation leaves a stale listing until the TTL expires.
func (s *Service) invalidateUser(ctx context.Context, userID string) {
	if s.cache == nil || userID == "" {
		return
	}
	if err := s.cache.Delete(ctx, userListKey(userID)); err != nil {
		log.Printf("[tasks] cache invalidation failed for user %s: %v", userID, err)
	}
}

func userListKey(userID string) string {
	return "user:" + userID
}
