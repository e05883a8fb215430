package schema

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrNotPrepared is returned when validating against a schema that was never prepared
var ErrNotPrepared = errors.New("schema not prepared")

type entry struct {
	raw      []byte
	compiled *js.Schema
}

type Compiler struct {
	cache *expirable.LRU[string, entry]

	mu sync.RWMutex
	// sources keeps the raw documents so evicted entries can be recompiled
	sources map[string][]byte
}

// NewCompilerWithCache creates a new compiler with cache
func NewCompilerWithCache(maxSize int) *Compiler {
	return &Compiler{
		cache:   expirable.NewLRU[string, entry](maxSize, nil, time.Hour),
		sources: make(map[string][]byte),
	}
}

// Prepare compiles and caches a named schema
func (c *Compiler) Prepare(ctx context.Context, name string, raw []byte) error {
	if e, ok := c.cache.Get(name); ok && bytes.Equal(e.raw, raw) {
		return nil // Already cached
	}

	compiled, err := compile(raw)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.sources[name] = raw
	c.mu.Unlock()

	c.cache.Add(name, entry{raw: raw, compiled: compiled})
	return nil
}

func compile(raw []byte) (*js.Schema, error) {
	// Use a hash-based URL so distinct documents never collide
	sum := sha256.Sum256(raw)
	resourceURL := fmt.Sprintf("mem://schema/%s.json", hex.EncodeToString(sum[:8]))

	compiler := js.NewCompiler()
	compiler.ExtractAnnotations = true
	if err := compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}

	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return compiled, nil
}

// Validate validates a value against a prepared schema
func (c *Compiler) Validate(ctx context.Context, name string, value interface{}) error {
	e, ok := c.cache.Get(name)
	if !ok {
		c.mu.RLock()
		raw, known := c.sources[name]
		c.mu.RUnlock()
		if !known {
			return fmt.Errorf("%w: %s", ErrNotPrepared, name)
		}
		if err := c.Prepare(ctx, name, raw); err != nil {
			return err
		}
		e, _ = c.cache.Get(name)
		if e.compiled == nil {
			return fmt.Errorf("schema not found in cache after preparation")
		}
	}

	// Convert value to its JSON form for validation
	valueBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	var valueRaw interface{}
	if err := json.Unmarshal(valueBytes, &valueRaw); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	if err := e.compiled.Validate(valueRaw); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// Violations flattens a validation error into human readable messages
func Violations(err error) []string {
	var ve *js.ValidationError
	if !errors.As(err, &ve) {
		if err == nil {
			return nil
		}
		return []string{err.Error()}
	}

	var out []string
	var walk func(*js.ValidationError)
	walk = func(v *js.ValidationError) {
		if len(v.Causes) == 0 {
			loc := v.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, loc+": "+v.Message)
			return
		}
		for _, cause := range v.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return out
}
