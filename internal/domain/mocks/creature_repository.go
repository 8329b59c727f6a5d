package mocks

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/domain/entity"
	"github.com/daffahilmyf/creature-catalog/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CreatureRepository is an in-memory repository.CreatureRepository that enforces
// the unique name constraint the way the database does.
type CreatureRepository struct {
	mu        sync.Mutex
	Creatures map[uuid.UUID]entity.Creature
	Keys      map[string]entity.IdempotencyKey

	// Err, when set, is returned by every method.
	Err error
	// DeleteErr is returned by Delete after the existence check.
	DeleteErr error
	// Inserts counts successful inserts.
	Inserts int
}

var _ repository.CreatureRepository = (*CreatureRepository)(nil)

// NewCreatureRepository creates an empty in-memory repository.
func NewCreatureRepository() *CreatureRepository {
	return &CreatureRepository{
		Creatures: make(map[uuid.UUID]entity.Creature),
		Keys:      make(map[string]entity.IdempotencyKey),
	}
}

// Exists reports whether a creature holds name.
func (m *CreatureRepository) Exists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.byName(name)
	return ok, nil
}

// FindByName returns the creature holding name.
func (m *CreatureRepository) FindByName(_ context.Context, name string) (entity.Creature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return entity.Creature{}, m.Err
	}
	c, ok := m.byName(name)
	if !ok {
		return entity.Creature{}, repository.ErrNotFound
	}
	return c, nil
}

// Insert stores a new creature.
func (m *CreatureRepository) Insert(_ context.Context, name string, payload datatypes.JSON, idem *repository.IdempotencyRecord) (entity.Creature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return entity.Creature{}, m.Err
	}
	if _, ok := m.byName(name); ok {
		return entity.Creature{}, repository.ErrConstraintViolation
	}
	if idem != nil && idem.Key != "" {
		if _, ok := m.Keys[idem.Key]; ok {
			return entity.Creature{}, repository.ErrIdempotencyKeyConflict
		}
	}
	now := time.Now().UTC()
	c := entity.Creature{ID: uuid.New(), Name: name, Payload: payload, CreatedAt: now, UpdatedAt: now}
	m.Creatures[c.ID] = c
	if idem != nil && idem.Key != "" {
		m.Keys[idem.Key] = entity.IdempotencyKey{Key: idem.Key, RequestHash: idem.RequestHash, CreatureID: c.ID, CreatedAt: now}
	}
	m.Inserts++
	return c, nil
}

// FindAll returns creatures ordered by numeric payload id, then name.
func (m *CreatureRepository) FindAll(_ context.Context) ([]entity.Creature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]entity.Creature, 0, len(m.Creatures))
	for _, c := range m.Creatures {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aok := payloadID(out[i].Payload)
		bi, bok := payloadID(out[j].Payload)
		if aok != bok {
			return aok
		}
		if aok && ai != bi {
			return ai < bi
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// FindByID returns a creature by its string id.
func (m *CreatureRepository) FindByID(_ context.Context, id string) (entity.Creature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return entity.Creature{}, m.Err
	}
	return m.get(id)
}

// Replace overwrites name and payload of an existing creature.
func (m *CreatureRepository) Replace(_ context.Context, id, name string, payload datatypes.JSON) (entity.Creature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return entity.Creature{}, m.Err
	}
	c, err := m.get(id)
	if err != nil {
		return entity.Creature{}, err
	}
	if holder, ok := m.byName(name); ok && holder.ID != c.ID {
		return entity.Creature{}, repository.ErrConstraintViolation
	}
	c.Name = name
	c.Payload = payload
	c.UpdatedAt = time.Now().UTC()
	m.Creatures[c.ID] = c
	return c, nil
}

// Delete removes a creature.
func (m *CreatureRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	c, err := m.get(id)
	if err != nil {
		return err
	}
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Creatures, c.ID)
	for k, row := range m.Keys {
		if row.CreatureID == c.ID {
			delete(m.Keys, k)
		}
	}
	return nil
}

// FindIdempotencyKey returns a recorded idempotency key.
func (m *CreatureRepository) FindIdempotencyKey(_ context.Context, key string) (entity.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return entity.IdempotencyKey{}, m.Err
	}
	row, ok := m.Keys[key]
	if !ok {
		return entity.IdempotencyKey{}, repository.ErrNotFound
	}
	return row, nil
}

// Count returns the number of stored creatures.
func (m *CreatureRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Creatures)
}

func (m *CreatureRepository) get(id string) (entity.Creature, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return entity.Creature{}, repository.ErrInvalidID
	}
	c, ok := m.Creatures[uid]
	if !ok {
		return entity.Creature{}, repository.ErrNotFound
	}
	return c, nil
}

func (m *CreatureRepository) byName(name string) (entity.Creature, bool) {
	for _, c := range m.Creatures {
		if c.Name == name {
			return c, true
		}
	}
	return entity.Creature{}, false
}

func payloadID(payload datatypes.JSON) (float64, bool) {
	var doc struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil || doc.ID == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(doc.ID.String(), 64)
	return v, err == nil
}
