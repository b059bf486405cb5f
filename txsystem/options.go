package txsystem

import (
	"context"
	"time"

	"github.com/sss-org/sss-engine/types"
)

type (
	Options struct {
		clock         func() time.Time
		epochDuration uint64
		sink          EventSink
	}

	Option func(*Options)

	/*
	EventSink receives receipts of successfully executed commands, after the
	changes have been committed.
	*/
	EventSink interface {
		Publish(ctx context.Context, rcpt *types.Receipt) error
	}
)

func DefaultOptions() *Options {
	return &Options{
		clock:         time.Now,
		epochDuration: types.DefaultEpochPeriod,
	}
}

// WithClock sets the clock commands are executed at, time.Now by default.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithEpochDuration sets the length (in seconds) of the mint epoch quota window.
func WithEpochDuration(seconds uint64) Option {
	return func(o *Options) {
		o.epochDuration = seconds
	}
}

func WithEventSink(sink EventSink) Option {
	return func(o *Options) {
		o.sink = sink
	}
}
