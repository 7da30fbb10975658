package tutor

import (
	"time"

	"github.com/kevinraymond/homeschool/internal/llm"
	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/store"
)

type options struct {
	log           *logger.Logger
	events        store.EventRepo
	cache         llm.Cache
	cacheTTL      time.Duration
	cloudProvider llm.Provider
}

// Option customizes tutor construction.
type Option func(*options)

// WithLogger sets the logger used for backend selection and request logs.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithEventRepo records every backend call as an LLM request event.
func WithEventRepo(r store.EventRepo) Option {
	return func(o *options) { o.events = r }
}

// WithCache serves repeated identical prompts from c.
func WithCache(c llm.Cache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = c
		o.cacheTTL = ttl
	}
}

// WithCloudProvider uses p as the cloud backend instead of building one
// from Config.Cloud.
func WithCloudProvider(p llm.Provider) Option {
	return func(o *options) { o.cloudProvider = p }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	return o
}

// decorate adds request logging and caching. The tutor path never retries.
func (o options) decorate(p llm.Provider) llm.Provider {
	p = llm.WithLogging(p, o.events, o.log)
	return llm.WithCache(p, o.cache, o.cacheTTL)
}
