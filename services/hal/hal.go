// services/hal/hal.go
package hal

import (
	"context"
	"errors"

	"isrcell-go/errcode"
	"isrcell-go/services/hal/internal/cell"
	"isrcell-go/services/hal/internal/critical"
	"isrcell-go/services/hal/internal/dispatch"
	"isrcell-go/services/hal/internal/halerr"
	"isrcell-go/services/hal/internal/periph"
	"isrcell-go/services/hal/internal/platform"
	"isrcell-go/services/hal/internal/poll"
	"isrcell-go/services/hal/internal/toggle"
	"isrcell-go/types"
	"isrcell-go/x/logx"
	"isrcell-go/x/timex"
)

// -----------------------------------------------------------------------------
// Entry points
// -----------------------------------------------------------------------------

// Main boots program p on the platform's default board, logging to the
// platform console. It never returns.
func Main(p types.Program) {
	cfg := types.DefaultConfig()
	cfg.Program = p
	Boot(platform.DefaultBoard(), cfg, logx.New(platform.Console()))
}

// Boot runs cfg.Program on board. Any startup error or fatal fault halts.
// On hardware it never returns.
func Boot(board periph.Board, cfg types.Config, log *logx.Logger) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = asError(r)
			}
		}()
		return Run(context.Background(), board, cfg, log)
	}()
	halt(log, err)
}

// Run is Boot without the halt: it returns the startup error, or ctx's error
// once the program loop notices cancellation.
func Run(ctx context.Context, board periph.Board, cfg types.Config, log *logx.Logger, opts ...Option) error {
	rt, err := Start(board, cfg, log, opts...)
	if err != nil {
		return err
	}
	return rt.Loop(ctx)
}

func halt(log *logx.Logger, err error) {
	if err == nil {
		err = errcode.Error
	}
	log.Fatal("halt", logx.Err(err))
	platform.Halt(err)
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	if s, ok := r.(string); ok {
		return errcode.Wrap(errcode.Error, "panic", s)
	}
	return errcode.Error
}

// -----------------------------------------------------------------------------
// Runtime
// -----------------------------------------------------------------------------

// Option adjusts a Runtime before the program is set up.
type Option func(*Runtime)

// WithTracer reports dispatch table activity to tr.
func WithTracer(tr dispatch.Tracer) Option {
	return func(rt *Runtime) { rt.table.SetTracer(tr) }
}

// WithProbe observes every critical section.
func WithProbe(p critical.Probe) Option {
	return func(rt *Runtime) { rt.ex.SetProbe(p) }
}

// Runtime is a booted program: the executor, the dispatch table, the cells
// holding shared handles, and the state machine or poll loop the program runs.
type Runtime struct {
	cfg   types.Config
	log   *logx.Logger
	board periph.Board
	clock timex.Clock
	src   periph.Sources

	ex    *critical.Executor
	table *dispatch.Table
	p     *periph.Peripherals

	gpio *cell.Cell[periph.GPIOPort]
	exti *cell.Cell[periph.EdgeUnit]
	tim  *cell.Cell[periph.Timer]

	edge   *toggle.EdgeToggle
	timer  *toggle.PeriodicToggle
	thresh *poll.Threshold
	ramp   *poll.Ramp

	loop func(ctx context.Context) error
}

// Start takes the board's peripherals and runs the program's boot sequence up
// to, and including, arming its interrupt sources.
func Start(board periph.Board, cfg types.Config, log *logx.Logger, opts ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := board.Take()
	if err != nil {
		return nil, err
	}

	ctrl := board.Controller()
	ex := critical.New(ctrl)
	rt := &Runtime{
		cfg:   cfg,
		log:   log,
		board: board,
		clock: board.Clock(),
		src:   board.Sources(),
		ex:    ex,
		table: dispatch.New(ctrl, ex),
		p:     p,
		gpio:  cell.New[periph.GPIOPort]("gpio"),
		exti:  cell.New[periph.EdgeUnit]("exti"),
		tim:   cell.New[periph.Timer]("tim"),
	}
	for _, o := range opts {
		o(rt)
	}
	board.Route(rt.table.Invoke)

	log.Info("boot", logx.Str("program", string(cfg.Program)))
	if err := rt.setup(); err != nil {
		return nil, err
	}
	return rt, nil
}

// Loop runs the program's main-context loop until ctx is done.
func (rt *Runtime) Loop(ctx context.Context) error { return rt.loop(ctx) }

func (rt *Runtime) setup() error {
	switch rt.cfg.Program {
	case types.ProgramBlink:
		return rt.setupBlink()
	case types.ProgramInput:
		return rt.setupInput()
	case types.ProgramEdgeToggle:
		return rt.setupEdgeToggle()
	case types.ProgramTimerToggle:
		return rt.setupTimerToggle()
	case types.ProgramADCThreshold:
		return rt.setupADCThreshold()
	case types.ProgramPWMRamp:
		return rt.setupPWMRamp()
	}
	return errcode.Wrap(errcode.InvalidConfig, "hal.setup", string(rt.cfg.Program))
}

// -----------------------------------------------------------------------------
// Boot helpers
// -----------------------------------------------------------------------------

type storeFn func(tok critical.Token) (name string, replaced bool)

func put[T any](c *cell.Cell[T], v T) storeFn {
	return func(tok critical.Token) (string, bool) {
		_, replaced := c.Store(tok, v)
		return c.Name(), replaced
	}
}

// populate moves handles into their cells inside one critical section.
// Replaced handles are reported once the section has closed.
func (rt *Runtime) populate(stores ...storeFn) {
	var replaced [4]string
	n := 0
	rt.ex.Run(func(tok critical.Token) {
		for _, s := range stores {
			if name, r := s(tok); r && n < len(replaced) {
				replaced[n] = name
				n++
			}
		}
	})
	for _, name := range replaced[:n] {
		rt.log.Warn("cell replaced", logx.Str("cell", name))
	}
	rt.log.Info("populated", logx.Uint("cells", uint64(len(stores))))
}

// arm registers h for src and unmasks it. deps must already be populated.
func (rt *Runtime) arm(src periph.Source, name string, h dispatch.Handler, deps ...dispatch.Dependency) error {
	if err := rt.table.Register(src, name, h, deps...); err != nil {
		return err
	}
	if err := rt.table.Arm(src); err != nil {
		return err
	}
	rt.log.Info("armed", logx.Uint("source", uint64(src)), logx.Str("name", name))
	return nil
}

func (rt *Runtime) led() toggle.Output {
	return toggle.Output{Port: rt.gpio, Pin: periph.Pin(rt.cfg.LEDPin)}
}

func pull(p types.Pull) periph.Pull {
	switch p {
	case types.PullUp:
		return periph.PullUp
	case types.PullDown:
		return periph.PullDown
	default:
		return periph.PullNone
	}
}

// idle is the main loop of the interrupt-driven programs.
func (rt *Runtime) idle(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		timex.Sleep(rt.clock, rt.cfg.IdlePeriod)
	}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	c := errcode.Of(err)
	switch {
	case errors.Is(err, halerr.ErrUnknownPin):
		c = errcode.UnknownPin
	case errors.Is(err, halerr.ErrUnsupported):
		c = errcode.Unsupported
	case errors.Is(err, halerr.ErrInvalidPeriod):
		c = errcode.InvalidConfig
	}
	return &errcode.E{C: c, Op: op, Err: err}
}
