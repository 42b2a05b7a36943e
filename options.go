package gridex

import (
	"log/slog"

	"github.com/hupe1980/gridex/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
	maxRecords       int
}

// Option configures a Collection.
type Option func(*options)

// WithMetricsCollector reports builds, reindexes and publications to mc.
// A nil mc turns reporting off.
//
//	metrics := &gridex.BasicMetricsCollector{}
//	coll, _ := gridex.NewCollection[model.Ref]("temperature", specs, gridex.WithMetricsCollector(metrics))
//	g, _ := coll.Build(ctx, records)
//	fmt.Println(metrics.GetStats().BuildAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger sends build and publish events to logger. A nil logger turns
// logging off.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel is WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController bounds concurrent builds and the number of grid
// cells they hold in memory. BuildPartitions also uses the controller's
// build limit as its fan-out width.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.controller = rc }
}

// WithMaxRecords bounds the number of records a single build accepts.
// A scan that yields more fails with ErrTooManyRecords. 0 means unlimited.
func WithMaxRecords(n int) Option {
	return func(o *options) { o.maxRecords = n }
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
