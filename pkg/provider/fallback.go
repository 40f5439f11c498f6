package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// DefaultStallTimeout is how long a member may stay silent before the next
// member is asked in parallel.
const DefaultStallTimeout = 750 * time.Millisecond

var (
	ErrNoMembers      = errors.New("fallback provider needs at least one member")
	ErrQuorumNotMet   = errors.New("providers did not reach quorum")
	errQuorumTooLarge = errors.New("quorum exceeds total member weight")
)

// Member is one backend of a Fallback provider. Lower priority values are
// asked first.
type Member struct {
	Provider Provider
	Priority int
	Weight   int
}

// Fallback fans a call out over several providers and returns the first
// output that reached Quorum total weight. With a quorum of 1 the first
// successful responder wins and nothing is cross-checked.
type Fallback struct {
	members      []Member
	quorum       int
	stallTimeout time.Duration
	logger       log.FieldLogger
}

type Option func(*Fallback)

// WithStallTimeout overrides DefaultStallTimeout. A non-positive value
// turns the provider strictly sequential.
func WithStallTimeout(d time.Duration) Option {
	return func(f *Fallback) { f.stallTimeout = d }
}

func WithLogger(logger log.FieldLogger) Option {
	return func(f *Fallback) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFallback sorts members by priority (stable, so equal priorities keep
// list order). A zero weight counts as 1.
func NewFallback(members []Member, quorum int, opts ...Option) (*Fallback, error) {
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	if quorum < 1 {
		return nil, fmt.Errorf("invalid quorum %d", quorum)
	}

	sorted := make([]Member, len(members))
	copy(sorted, members)
	total := 0
	for i := range sorted {
		if sorted[i].Provider == nil {
			return nil, fmt.Errorf("member %d has no provider", i)
		}
		if sorted[i].Weight <= 0 {
			sorted[i].Weight = 1
		}
		total += sorted[i].Weight
	}
	if quorum > total {
		return nil, fmt.Errorf("%w: quorum %d, weight %d", errQuorumTooLarge, quorum, total)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	f := &Fallback{
		members:      sorted,
		quorum:       quorum,
		stallTimeout: DefaultStallTimeout,
		logger:       discardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Members returns the members in the order they are asked.
func (f *Fallback) Members() []Member {
	out := make([]Member, len(f.members))
	copy(out, f.members)
	return out
}

func (f *Fallback) Quorum() int { return f.quorum }

func (f *Fallback) Name() string {
	names := make([]string, len(f.members))
	for i, m := range f.members {
		names[i] = m.Provider.Name()
	}
	return "fallback(" + strings.Join(names, ",") + ")"
}

func (f *Fallback) Close() {
	for _, m := range f.members {
		m.Provider.Close()
	}
}

func (f *Fallback) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return f.perform(ctx, "eth_call", func(ctx context.Context, p Provider) ([]byte, error) {
		return p.CallContract(ctx, msg, blockNumber)
	})
}

func (f *Fallback) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return f.perform(ctx, "eth_getCode", func(ctx context.Context, p Provider) ([]byte, error) {
		return p.CodeAt(ctx, contract, blockNumber)
	})
}

type outcome struct {
	member int
	output []byte
	err    error
}

func (f *Fallback) perform(ctx context.Context, method string, call func(context.Context, Provider) ([]byte, error)) ([]byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// buffered so late responders never block after we returned
	results := make(chan outcome, len(f.members))
	next, inflight := 0, 0
	launch := func() {
		i := next
		next++
		inflight++
		go func() {
			out, err := call(ctx, f.members[i].Provider)
			results <- outcome{member: i, output: out, err: err}
		}()
	}

	var (
		timer  *time.Timer
		stallC <-chan time.Time
	)
	arm := func() {
		if timer != nil {
			timer.Stop()
		}
		stallC = nil
		if f.stallTimeout > 0 && next < len(f.members) {
			timer = time.NewTimer(f.stallTimeout)
			stallC = timer.C
		}
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	launch()
	arm()

	var errs []error
	tally := make(map[string]int)
	for inflight > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-stallC:
			f.logger.Debugf("%s: %s stalled, asking %s", method, f.members[next-1].Provider.Name(), f.members[next].Provider.Name())
			launch()
			arm()

		case r := <-results:
			inflight--
			m := f.members[r.member]
			if r.err != nil {
				if IsRevert(r.err) {
					return nil, r.err
				}
				f.logger.Debugf("%s via %s failed: %v", method, m.Provider.Name(), r.err)
				errs = append(errs, fmt.Errorf("%s: %w", m.Provider.Name(), r.err))
			} else {
				key := string(r.output)
				tally[key] += m.Weight
				if tally[key] >= f.quorum {
					f.logger.Debugf("%s answered by %s", method, m.Provider.Name())
					return r.output, nil
				}
			}
			if next < len(f.members) {
				launch()
				arm()
			}
		}
	}

	if len(errs) == len(f.members) {
		return nil, fmt.Errorf("all %d providers failed: %w", len(f.members), errors.Join(errs...))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrQuorumNotMet, errors.Join(errs...))
	}
	return nil, ErrQuorumNotMet
}

func discardLogger() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
