package journal

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	DefaultBuffer        = 1024
	DefaultBatchSize     = 64
	DefaultFlushInterval = time.Second
	flushTimeout         = 5 * time.Second
)

type WriterConfig struct {
	Buffer        int
	BatchSize     int
	FlushInterval time.Duration
	Clock         clock.Clock
	Log           *zap.Logger
}

// Writer batches entries on its own goroutine. Record never blocks: when
// the buffer is full the entry is dropped and counted.
type Writer struct {
	sink    Sink
	entries chan Entry
	batch   int
	every   time.Duration
	clock   clock.Clock
	log     *zap.Logger
	dropped atomic.Uint64
}

func NewWriter(sink Sink, cfg WriterConfig) *Writer {
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultBuffer
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Writer{
		sink:    sink,
		entries: make(chan Entry, cfg.Buffer),
		batch:   cfg.BatchSize,
		every:   cfg.FlushInterval,
		clock:   cfg.Clock,
		log:     cfg.Log.Named("journal"),
	}
}

func (w *Writer) Record(surface, action string, raw []byte, outcome string) {
	e := Entry{
		Surface:    surface,
		Action:     action,
		Outcome:    outcome,
		Payload:    string(raw),
		ReceivedAt: w.clock.Now().UTC(),
	}
	select {
	case w.entries <- e:
	default:
		if w.dropped.Add(1) == 1 {
			w.log.Warn("journal buffer full, dropping entries")
		}
	}
}

func (w *Writer) Dropped() uint64 { return w.dropped.Load() }

// Run flushes until ctx ends, then writes whatever is still buffered.
func (w *Writer) Run(ctx context.Context) error {
	ticker := w.clock.Ticker(w.every)
	defer ticker.Stop()

	pending := make([]Entry, 0, w.batch)
	flush := func(ctx context.Context) {
		if len(pending) == 0 {
			return
		}
		if err := w.sink.Insert(ctx, pending); err != nil {
			w.log.Warn("journal flush failed", zap.Int("entries", len(pending)), zap.Error(err))
		}
		pending = make([]Entry, 0, w.batch)
	}

	for {
		select {
		case <-ctx.Done():
		drain:
			for {
				select {
				case e := <-w.entries:
					pending = append(pending, e)
				default:
					break drain
				}
			}
			fctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			flush(fctx)
			cancel()
			return nil

		case e := <-w.entries:
			pending = append(pending, e)
			if len(pending) >= w.batch {
				flush(ctx)
			}

		case <-ticker.C:
			flush(ctx)
		}
	}
}

// Nop records nothing.
type Nop struct{}

func (Nop) Record(string, string, []byte, string) {}

func (Nop) Recent(context.Context, string, int) ([]Entry, error) { return nil, nil }
