package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"qecgraph/pkg/closure"
	"qecgraph/pkg/domain"
)

// Recorder получает результаты обращений к кэшу путей
type Recorder interface {
	RecordCacheLookup(hit bool)
}

// PathCache кэш результатов ShortestPath для одного графа
type PathCache struct {
	cache      Cache
	graphHash  string
	defaultTTL time.Duration
	recorder   Recorder
}

// NewPathCache создаёт кэш путей графа in поверх cache
func NewPathCache(cache Cache, in *domain.Initializer, defaultTTL time.Duration) *PathCache {
	return &PathCache{
		cache:      cache,
		graphHash:  GraphHash(in),
		defaultTTL: defaultTTL,
	}
}

// WithRecorder подключает учёт попаданий
func (pc *PathCache) WithRecorder(r Recorder) *PathCache {
	pc.recorder = r
	return pc
}

// GraphHash возвращает хеш графа, к которому привязан кэш
func (pc *PathCache) GraphHash() string { return pc.graphHash }

// Get получает путь a -> b. Повреждённая запись удаляется и считается промахом.
func (pc *PathCache) Get(ctx context.Context, a, b closure.VertexIndex) (closure.Path, bool, error) {
	key := BuildPathKey(pc.graphHash, a, b)

	data, err := pc.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			pc.record(false)
			return closure.Path{}, false, nil
		}
		return closure.Path{}, false, err
	}

	var p closure.Path
	if err := json.Unmarshal(data, &p); err != nil {
		_ = pc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		pc.record(false)
		return closure.Path{}, false, nil
	}

	pc.record(true)
	return p, true, nil
}

// Set сохраняет путь a -> b
func (pc *PathCache) Set(ctx context.Context, a, b closure.VertexIndex, p closure.Path, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = pc.defaultTTL
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return pc.cache.Set(ctx, BuildPathKey(pc.graphHash, a, b), data, ttl)
}

// ShortestPath возвращает путь из кэша или вычисляет его на g и сохраняет.
// Ошибки движка не кэшируются.
func (pc *PathCache) ShortestPath(ctx context.Context, g *closure.CompleteGraph, a, b closure.VertexIndex) (closure.Path, error) {
	if p, ok, err := pc.Get(ctx, a, b); err != nil {
		return closure.Path{}, err
	} else if ok {
		return p, nil
	}

	p, err := g.ShortestPath(a, b)
	if err != nil {
		return closure.Path{}, err
	}
	if err := pc.Set(ctx, a, b, p, 0); err != nil {
		return closure.Path{}, err
	}
	return p, nil
}

// Invalidate удаляет все пути графа
func (pc *PathCache) Invalidate(ctx context.Context) (int64, error) {
	return pc.cache.DeleteByPattern(ctx, BuildGraphPattern(pc.graphHash))
}

func (pc *PathCache) record(hit bool) {
	if pc.recorder != nil {
		pc.recorder.RecordCacheLookup(hit)
	}
}
