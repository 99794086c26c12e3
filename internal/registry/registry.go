package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/colocapp/colocourses/internal/domain"
	"github.com/colocapp/colocourses/internal/logger"
	"github.com/colocapp/colocourses/internal/store"
)

// maxCodeAttempts caps the optimistic code-sampling loop. With the default
// word list the code space is 12×90 entries, so hitting this means the
// registry is effectively full.
const maxCodeAttempts = 100

// Registry creates and mutates colocs. Uniqueness of join codes is enforced
// against the durable store per attempt, not in-memory, so two racing
// creations can never register the same code.
type Registry struct {
	store  store.Store
	codes  *domain.CodeGenerator
	logger logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-coloc validation locks
}

func New(st store.Store, codes *domain.CodeGenerator, log logger.Logger) *Registry {
	return &Registry{
		store:  st,
		codes:  codes,
		logger: log,
		locks:  make(map[string]*sync.Mutex),
	}
}

// CreateGroup registers a new coloc with a fresh unique code and the creator
// as first member.
func (r *Registry) CreateGroup(ctx context.Context, name, emoji, creator string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	creator = strings.TrimSpace(creator)
	if name == "" || creator == "" {
		return nil, domain.Validationf("nom de coloc et username requis")
	}
	if len([]rune(name)) > domain.MaxGroupNameLength {
		return nil, domain.Validationf("nom trop long (max %d caractères)", domain.MaxGroupNameLength)
	}
	if emoji == "" {
		emoji = domain.DefaultGroupEmoji
	}

	code, err := r.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	g := &domain.Group{
		ID:         uuid.NewString(),
		Code:       code,
		Name:       name,
		Emoji:      emoji,
		Members:    []string{creator},
		ListStatus: domain.ListStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.store.InsertGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to insert coloc: %w", err)
	}

	r.logger.Info("coloc created",
		logger.String("coloc_id", g.ID),
		logger.String("code", g.Code),
		logger.String("name", g.Name))
	return g, nil
}

// uniqueCode samples codes until one is absent from the store. The check
// runs against durable storage per attempt, so ties are impossible.
func (r *Registry) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := r.codes.Next()
		_, err := r.store.GroupByCode(ctx, code)
		if domain.IsNotFound(err) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check code %s: %w", code, err)
		}
		// Code taken, sample again.
	}
	return "", fmt.Errorf("no free coloc code after %d attempts", maxCodeAttempts)
}

// JoinGroup adds username to the coloc identified by code. Joining is
// idempotent: a name already in the membership set is not appended again.
func (r *Registry) JoinGroup(ctx context.Context, code, username string) (*domain.Group, error) {
	username = strings.TrimSpace(username)
	if strings.TrimSpace(code) == "" || username == "" {
		return nil, domain.Validationf("code et username requis")
	}

	g, err := r.store.GroupByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !g.HasMember(username) {
		g.Members = append(g.Members, username)
		g.UpdatedAt = time.Now()
		if err := r.store.UpdateGroup(ctx, g); err != nil {
			return nil, fmt.Errorf("failed to add member: %w", err)
		}
		r.logger.Info("member joined coloc",
			logger.String("coloc_id", g.ID),
			logger.String("username", username))
	}
	return g, nil
}

// GroupByID fetches a coloc by id.
func (r *Registry) GroupByID(ctx context.Context, id string) (*domain.Group, error) {
	return r.store.GroupByID(ctx, id)
}

// ValidateList ends a shopping run: it deletes every bought item, stamps the
// validator and immediately resets the list status to active so a new list
// can start. Validation is serialized per coloc; an item added while the
// deletion runs simply survives into the fresh list (clients re-fetch after
// validation, eventual consistency is accepted here).
func (r *Registry) ValidateList(ctx context.Context, groupID, username string) (int, *domain.Group, error) {
	lock := r.validationLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	g, err := r.store.GroupByID(ctx, groupID)
	if err != nil {
		return 0, nil, err
	}

	deleted, err := r.store.DeleteBoughtItems(ctx, groupID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to clear bought items: %w", err)
	}

	if username == "" {
		username = "Anonyme"
	}
	now := time.Now()
	g.ValidatedBy = username
	g.ValidatedAt = &now
	g.ListStatus = domain.ListStatusActive // immediately ready for a new list
	g.UpdatedAt = now
	if err := r.store.UpdateGroup(ctx, g); err != nil {
		return 0, nil, fmt.Errorf("failed to stamp validation: %w", err)
	}

	r.logger.Info("list validated",
		logger.String("coloc_id", g.ID),
		logger.String("validated_by", username),
		logger.Int("deleted", deleted))
	return deleted, g, nil
}

func (r *Registry) validationLock(groupID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[groupID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[groupID] = lock
	}
	return lock
}
