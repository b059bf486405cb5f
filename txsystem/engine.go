package txsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sss-org/sss-engine/logger"
	"github.com/sss-org/sss-engine/observability"
	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/types"
)

type Observability interface {
	Meter(name string, opts ...metric.MeterOption) metric.Meter
	Logger() *slog.Logger
}

/*
Engine executes commands against the state. Every command is executed in
its own store transaction: either all the changes made by the command are
committed or, when the command fails, none of them.
*/
type Engine struct {
	store         *state.Store
	executors     TxExecutors
	clock         func() time.Time
	epochDuration uint64
	sink          EventSink
	log           *slog.Logger

	cmdCount     metric.Int64Counter
	cmdDuration  metric.Float64Histogram
	feeCollected metric.Int64Counter
}

func NewEngine(store *state.Store, modules []Module, observe Observability, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("state store is nil")
	}
	options := DefaultOptions()
	for _, option := range opts {
		option(options)
	}
	if options.epochDuration == 0 {
		return nil, errors.New("epoch duration must be greater than zero")
	}

	e := &Engine{
		store:         store,
		executors:     make(TxExecutors),
		clock:         options.clock,
		epochDuration: options.epochDuration,
		sink:          options.sink,
		log:           observe.Logger(),
	}
	for _, module := range modules {
		if err := e.executors.Add(module.TxHandlers()); err != nil {
			return nil, fmt.Errorf("registering command executors: %w", err)
		}
	}
	if err := e.initMetrics(observe.Meter("txsystem")); err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}
	return e, nil
}

/*
Execute validates and executes the command. On success the receipt with
events emitted by the command is returned and published to the event sink
(when configured). Error returned carries the kind (see types.KindOf) of
the rejection.
*/
func (e *Engine) Execute(ctx context.Context, cmd *types.Command) (rcpt *types.Receipt, rErr error) {
	if err := cmd.IsValid(); err != nil {
		return nil, fmt.Errorf("%w: invalid command: %w", types.ErrInvalidInstruction, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { e.recordMetrics(ctx, cmd.Type, rErr, time.Since(start)) }()

	now := e.Now()

	handler, err := e.executors.Get(cmd.Type)
	if err != nil {
		return nil, e.rejected(ctx, cmd, err)
	}
	attr, err := handler.DecodeAttributes(cmd)
	if err != nil {
		return nil, e.rejected(ctx, cmd, err)
	}

	e.log.DebugContext(ctx, fmt.Sprintf("execute %s", cmd.Type), logger.Mint(cmd.Mint), logger.Identity("caller", cmd.Caller), logger.Data(attr))
	var events []types.Event
	err = e.store.Update(func(accounts *state.Accounts) error {
		events = nil
		exeCtx := &cmdExecutionContext{
			engine:   e,
			accounts: accounts,
			now:      now,
			events:   &events,
		}
		if err := e.checkGovernance(exeCtx, cmd, handler); err != nil {
			return err
		}
		return handler.ExecuteWithAttr(cmd, attr, exeCtx)
	})
	if err != nil {
		return nil, e.rejected(ctx, cmd, err)
	}

	rcpt = &types.Receipt{
		Command:   cmd.Type,
		Mint:      cmd.Mint,
		Caller:    cmd.Caller,
		Timestamp: now,
		Events:    events,
	}
	e.log.InfoContext(ctx, fmt.Sprintf("executed %s", cmd.Type), logger.Mint(cmd.Mint), logger.Data(eventTypes(events)))
	e.recordFees(ctx, cmd.Mint, events)

	if e.sink != nil {
		// the changes are committed, sink failure can't undo them
		if err := e.sink.Publish(ctx, rcpt); err != nil {
			e.log.ErrorContext(ctx, "publishing events", logger.Error(err), logger.Mint(cmd.Mint), logger.Command(cmd.Type))
		}
	}
	return rcpt, nil
}

func (e *Engine) rejected(ctx context.Context, cmd *types.Command, err error) error {
	err = fmt.Errorf("'%s' execution failed: %w", cmd.Type, err)
	kind := types.KindOf(err)
	lvl := slog.LevelWarn
	if kind == types.ErrInternal {
		lvl = slog.LevelError
	}
	e.log.Log(ctx, lvl, "command rejected", logger.Command(cmd.Type), logger.Mint(cmd.Mint), logger.Kind(kind), logger.Error(err))
	return err
}

/*
checkGovernance rejects direct execution of the commands which must go through
the multisig governor when the mint has one configured.
*/
func (e *Engine) checkGovernance(exeCtx ExecutionContext, cmd *types.Command, handler TxExecutor) error {
	if handler.GovernancePolicy() != GovernanceRequired {
		return nil
	}
	_, found, err := exeCtx.Accounts().MultisigConfig(cmd.Mint)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: command %q must be executed through a multisig proposal", types.ErrUnauthorized, cmd.Type)
	}
	return nil
}

// View runs fn with read-only access to the committed state.
func (e *Engine) View(fn func(*state.Accounts) error) error {
	return e.store.View(fn)
}

// Now returns the current time of the engine clock, unix seconds.
func (e *Engine) Now() uint64 {
	return uint64(e.clock().Unix())
}

func (e *Engine) EpochDuration() uint64 {
	return e.epochDuration
}

// Commands returns the registered command types and their governance policy.
func (e *Engine) Commands() map[string]Governance {
	cmds := make(map[string]Governance, len(e.executors))
	for name, h := range e.executors {
		cmds[name] = h.GovernancePolicy()
	}
	return cmds
}

func (e *Engine) initMetrics(mtr metric.Meter) (err error) {
	if e.cmdCount, err = mtr.Int64Counter("command.count", metric.WithDescription("Number of executed commands")); err != nil {
		return fmt.Errorf("creating command counter: %w", err)
	}
	if e.cmdDuration, err = mtr.Float64Histogram("command.duration",
		metric.WithDescription("How long it took to execute the command"),
		metric.WithUnit("s")); err != nil {
		return fmt.Errorf("creating command duration histogram: %w", err)
	}
	if e.feeCollected, err = mtr.Int64Counter("fee.collected",
		metric.WithDescription("Transfer fees collected"),
		metric.WithUnit("{token}")); err != nil {
		return fmt.Errorf("creating fee counter: %w", err)
	}
	return nil
}

func (e *Engine) recordMetrics(ctx context.Context, cmdType string, err error, d time.Duration) {
	attrs := metric.WithAttributeSet(attribute.NewSet(
		observability.Command(cmdType),
		observability.ErrStatus(err),
		observability.Kind(err),
	))
	e.cmdCount.Add(ctx, 1, attrs)
	e.cmdDuration.Record(ctx, d.Seconds(), metric.WithAttributes(observability.Command(cmdType)))
}

func (e *Engine) recordFees(ctx context.Context, mint types.Identity, events []types.Event) {
	for _, ev := range events {
		if te, ok := ev.(*types.TransferExecuted); ok && te.Fee > 0 {
			e.feeCollected.Add(ctx, int64(te.Fee), metric.WithAttributes(observability.Mint(mint))) /* #nosec G115 fee of a single transfer fits into int64 */
		}
	}
}

func eventTypes(events []types.Event) []string {
	s := make([]string, 0, len(events))
	for _, ev := range events {
		s = append(s, ev.EventType())
	}
	return s
}
