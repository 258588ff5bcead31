package engine

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/protounify/protounify/pkg/config"
	"github.com/protounify/protounify/pkg/conflict"
	"github.com/protounify/protounify/pkg/contract"
	"github.com/protounify/protounify/pkg/merger"
	"github.com/protounify/protounify/pkg/schema"
)

// Provider merges messages across a loaded set of version schemas and
// memoizes the results for the lifetime of the schema set.
type Provider struct {
	generation string
	schemas    map[string]*schema.VersionSchema
	merger     *merger.Merger
	cache      *lru.Cache[string, *merger.MergedMessage]
	metrics    *Metrics
	logger     *logrus.Logger
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	cfg     *config.Config
	metrics *Metrics
	logger  *logrus.Logger
}

// WithConfig sets the runtime configuration (merge policy, cache size,
// metrics gate, default logger level).
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger. A supplied logger keeps its own level; the
// configured log level only applies to the default logger.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a provider over a loaded schema set. The set is treated as
// immutable; load a new provider to pick up schema changes.
func New(schemas map[string]*schema.VersionSchema, opts ...Option) (*Provider, error) {
	if len(schemas) == 0 {
		return nil, ErrNoSchemas
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg == nil {
		o.cfg = config.DefaultConfig()
	}
	if o.logger == nil {
		o.logger = logrus.New()
		if level, err := logrus.ParseLevel(o.cfg.Observability.LogLevel); err == nil {
			o.logger.SetLevel(level)
		}
	}
	if !o.cfg.Engine.MetricsEnabled {
		o.metrics = nil
	}

	cache, err := lru.New[string, *merger.MergedMessage](o.cfg.Engine.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating contract cache: %w", err)
	}

	p := &Provider{
		generation: uuid.NewString(),
		schemas:    schemas,
		merger:     merger.New(&o.cfg.Merge, o.logger),
		cache:      cache,
		metrics:    o.metrics,
		logger:     o.logger,
	}

	versions := make([]string, 0, len(schemas))
	for v := range schemas {
		versions = append(versions, v)
	}
	p.logger.WithFields(logrus.Fields{
		"generation": p.generation,
		"versions":   len(versions),
	}).Info("schema set loaded")

	return p, nil
}

// Generation returns the schema set's generation id.
func (p *Provider) Generation() string {
	return p.generation
}

// Message returns the merged view of one message, computing and caching it
// on first use.
func (p *Provider) Message(fullName string) (*merger.MergedMessage, error) {
	key := p.generation + "/" + fullName

	if mm, ok := p.cache.Get(key); ok {
		p.countCacheHit()
		return mm, nil
	}
	p.countCacheMiss()

	mm, err := p.merger.MergeMessage(fullName, p.schemas)
	if err != nil {
		p.countMerge("error")
		return nil, err
	}
	p.countMerge("ok")
	p.countResolutions(mm)

	p.cache.Add(key, mm)
	return mm, nil
}

// MergeAll merges every message and enum in the schema set, populating the
// cache along the way.
func (p *Provider) MergeAll() (*merger.MergedSchema, error) {
	ms, err := p.merger.Merge(p.schemas)
	if err != nil {
		p.countMerge("error")
		return nil, err
	}
	for name, mm := range ms.Messages {
		p.countMerge("ok")
		p.countResolutions(mm)
		p.cache.Add(p.generation+"/"+name, mm)
	}
	return ms, nil
}

// FieldContract returns the merged contract of one field.
func (p *Provider) FieldContract(message string, number int32) (*contract.MergedFieldContract, error) {
	mf, err := p.field(message, number)
	if err != nil {
		return nil, err
	}
	return mf.Contract, nil
}

// Resolve returns the handler resolution of one field: its unified type
// and the per-version value converter.
func (p *Provider) Resolve(message string, number int32) (*conflict.Resolution, error) {
	mf, err := p.field(message, number)
	if err != nil {
		return nil, err
	}
	return mf.Resolution, nil
}

func (p *Provider) field(message string, number int32) (*merger.MergedField, error) {
	mm, err := p.Message(message)
	if err != nil {
		return nil, err
	}
	mf, ok := mm.Field(number)
	if !ok {
		return nil, fmt.Errorf("%s field %d: %w", message, number, ErrFieldNotFound)
	}
	return mf, nil
}

func (p *Provider) countCacheHit() {
	if p.metrics != nil {
		p.metrics.CacheHitsTotal.Inc()
	}
}

func (p *Provider) countCacheMiss() {
	if p.metrics != nil {
		p.metrics.CacheMissesTotal.Inc()
	}
}

func (p *Provider) countMerge(status string) {
	if p.metrics != nil {
		p.metrics.MergesTotal.WithLabelValues(status).Inc()
	}
}

func (p *Provider) countResolutions(mm *merger.MergedMessage) {
	if p.metrics == nil {
		return
	}
	for _, mf := range mm.Fields {
		if ct := mf.Conflict(); ct != contract.ConflictNone {
			p.metrics.ConflictsTotal.WithLabelValues(ct.String()).Inc()
		}
		p.metrics.HandlersTotal.WithLabelValues(mf.Resolution.Handler.String()).Inc()
	}
}
