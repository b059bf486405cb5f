package rpc

type (
	Options struct {
		maxEventsPageSize int
	}

	Option func(*Options)
)

func defaultOptions() *Options {
	return &Options{
		maxEventsPageSize: 100,
	}
}

// WithMaxEventsPageSize limits the number of event records returned by a single events request.
func WithMaxEventsPageSize(size int) Option {
	return func(c *Options) {
		if size > 0 {
			c.maxEventsPageSize = size
		}
	}
}
