package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/daffahilmyf/creature-catalog/internal/infra/provider"
	"gorm.io/datatypes"
)

// Provider serves canned upstream documents. A document is reachable by its
// name and by its numeric id, case-insensitively, like PokeAPI.
type Provider struct {
	mu    sync.Mutex
	docs  map[string]datatypes.JSON
	Err   error
	Calls []string
}

// NewProvider creates an empty provider.
func NewProvider() *Provider {
	return &Provider{docs: make(map[string]datatypes.JSON)}
}

// Add registers a document under its name and numeric id.
func (p *Provider) Add(id int, name string, extra string) *Provider {
	doc := fmt.Sprintf(`{"id":%d,"name":%q`, id, name)
	if extra != "" {
		doc += "," + extra
	}
	doc += "}"
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[strings.ToLower(name)] = datatypes.JSON(doc)
	p.docs[fmt.Sprintf("%d", id)] = datatypes.JSON(doc)
	return p
}

// FetchByKey returns the document for key or a provider not-found error.
func (p *Provider) FetchByKey(_ context.Context, key string) (datatypes.JSON, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, key)
	if p.Err != nil {
		return nil, &provider.Error{Key: key, Err: p.Err}
	}
	doc, ok := p.docs[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, &provider.Error{Key: key, Err: provider.ErrNotFound}
	}
	return doc, nil
}
