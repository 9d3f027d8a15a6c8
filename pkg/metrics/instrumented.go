package metrics

import (
	"context"
	"time"

	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/solver"
)

// ProbeEmitter receives the backend name, status label and duration of
// every call made through an InstrumentedBackend.
type ProbeEmitter func(backend, status string, d time.Duration)

type InstrumentedBackend struct {
	backend solver.Backend
	emit    ProbeEmitter
}

var _ solver.Backend = &InstrumentedBackend{}

// InstrumentedOptimizer is returned for backends that can optimize.
type InstrumentedOptimizer struct {
	*InstrumentedBackend
	optimizer solver.Optimizer
}

var _ solver.Optimizer = &InstrumentedOptimizer{}

// NewInstrumentedBackend wraps backend so every call is reported to
// emit. The result keeps implementing solver.Optimizer if backend does.
func NewInstrumentedBackend(backend solver.Backend, emit ProbeEmitter) solver.Backend {
	ib := &InstrumentedBackend{backend: backend, emit: emit}
	if o, ok := backend.(solver.Optimizer); ok {
		return &InstrumentedOptimizer{InstrumentedBackend: ib, optimizer: o}
	}
	return ib
}

// Instrument wraps backend with the package's probe metrics.
func Instrument(backend solver.Backend) solver.Backend {
	return NewInstrumentedBackend(backend, EmitProbe)
}

func (ib *InstrumentedBackend) Name() string {
	return ib.backend.Name()
}

func (ib *InstrumentedBackend) Check(ctx context.Context, f *encoding.Formula) (solver.Result, error) {
	start := time.Now()
	res, err := ib.backend.Check(ctx, f)
	ib.emit(ib.backend.Name(), ProbeStatus(res, err), time.Since(start))
	return res, err
}

func (o *InstrumentedOptimizer) Optimize(ctx context.Context, f *encoding.Formula) (solver.Result, error) {
	start := time.Now()
	res, err := o.optimizer.Optimize(ctx, f)
	o.emit(o.backend.Name(), ProbeStatus(res, err), time.Since(start))
	return res, err
}
