package provider

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name   string
	delay  time.Duration
	output []byte
	err    error

	calls  atomic.Int32
	closed atomic.Bool
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Close() { f.closed.Store(true) }

func (f *fakeProvider) CallContract(ctx context.Context, _ ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return f.respond(ctx)
}

func (f *fakeProvider) CodeAt(ctx context.Context, _ common.Address, _ *big.Int) ([]byte, error) {
	return f.respond(ctx)
}

func (f *fakeProvider) respond(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.output, f.err
}

func members(ps ...*fakeProvider) []Member {
	out := make([]Member, len(ps))
	for i, p := range ps {
		out[i] = Member{Provider: p, Priority: i + 1, Weight: 1}
	}
	return out
}

func call(t *testing.T, f *Fallback) ([]byte, error) {
	t.Helper()
	to := common.HexToAddress("0x1")
	return f.CallContract(context.Background(), ethereum.CallMsg{To: &to}, nil)
}

func TestFallbackFirstSuccessWins(t *testing.T) {
	a := &fakeProvider{name: "a", output: []byte("a")}
	b := &fakeProvider{name: "b", output: []byte("b")}
	f, err := NewFallback(members(a, b), 1, WithStallTimeout(0))
	require.NoError(t, err)

	out, err := call(t, f)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), out)
	assert.EqualValues(t, 1, a.calls.Load())
	assert.EqualValues(t, 0, b.calls.Load())
}

func TestFallbackOrdersByPriority(t *testing.T) {
	a := &fakeProvider{name: "a", output: []byte("a")}
	b := &fakeProvider{name: "b", output: []byte("b")}
	c := &fakeProvider{name: "c", output: []byte("c")}
	f, err := NewFallback([]Member{
		{Provider: b, Priority: 2},
		{Provider: c, Priority: 2},
		{Provider: a, Priority: 1},
	}, 1, WithStallTimeout(0))
	require.NoError(t, err)

	ms := f.Members()
	require.Len(t, ms, 3)
	assert.Equal(t, "a", ms[0].Provider.Name())
	assert.Equal(t, "b", ms[1].Provider.Name())
	assert.Equal(t, "c", ms[2].Provider.Name())
	assert.Equal(t, 1, ms[1].Weight, "zero weight counts as one")

	out, err := call(t, f)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), out)
}

func TestFallbackErrorHandsOver(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("connection refused")}
	b := &fakeProvider{name: "b", output: []byte("b")}
	f, err := NewFallback(members(a, b), 1, WithStallTimeout(0))
	require.NoError(t, err)

	out, err := call(t, f)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), out)
	assert.EqualValues(t, 1, a.calls.Load())
	assert.EqualValues(t, 1, b.calls.Load())
}

func TestFallbackLogsOutcomes(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	a := &fakeProvider{name: "a", err: errors.New("connection refused")}
	b := &fakeProvider{name: "b", output: []byte("b")}
	f, err := NewFallback(members(a, b), 1, WithStallTimeout(0), WithLogger(logger))
	require.NoError(t, err)

	_, err = call(t, f)
	require.NoError(t, err)
	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "eth_call via a failed: connection refused", entries[0].Message)
	assert.Equal(t, "eth_call answered by b", entries[1].Message)
	for _, e := range entries {
		assert.Equal(t, log.DebugLevel, e.Level)
	}
}

func TestFallbackRevertIsFinal(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("execution reverted")}
	b := &fakeProvider{name: "b", output: []byte("b")}
	f, err := NewFallback(members(a, b), 1, WithStallTimeout(0))
	require.NoError(t, err)

	_, err = call(t, f)
	require.Error(t, err)
	assert.True(t, IsRevert(err))
	assert.EqualValues(t, 0, b.calls.Load())
}

func TestFallbackStallStartsNextMember(t *testing.T) {
	a := &fakeProvider{name: "a", delay: time.Second, output: []byte("slow")}
	b := &fakeProvider{name: "b", output: []byte("fast")}
	f, err := NewFallback(members(a, b), 1, WithStallTimeout(20*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	out, err := call(t, f)
	require.NoError(t, err)
	assert.Equal(t, []byte("fast"), out)
	assert.Less(t, time.Since(start), time.Second)
	assert.EqualValues(t, 1, a.calls.Load())
}

func TestFallbackAllMembersFail(t *testing.T) {
	errA := errors.New("a is down")
	errB := errors.New("b is rate limited")
	a := &fakeProvider{name: "a", err: errA}
	b := &fakeProvider{name: "b", err: errB}
	f, err := NewFallback(members(a, b), 1)
	require.NoError(t, err)

	_, err = call(t, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Contains(t, err.Error(), "all 2 providers failed")
}

func TestFallbackQuorum(t *testing.T) {
	a := &fakeProvider{name: "a", output: []byte("x")}
	b := &fakeProvider{name: "b", output: []byte("y")}
	c := &fakeProvider{name: "c", output: []byte("x")}
	f, err := NewFallback(members(a, b, c), 2, WithStallTimeout(0))
	require.NoError(t, err)

	out, err := call(t, f)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), out)
	assert.EqualValues(t, 1, c.calls.Load())
}

func TestFallbackQuorumNotMet(t *testing.T) {
	a := &fakeProvider{name: "a", output: []byte("x")}
	b := &fakeProvider{name: "b", output: []byte("y")}
	f, err := NewFallback(members(a, b), 2, WithStallTimeout(0))
	require.NoError(t, err)

	_, err = call(t, f)
	assert.ErrorIs(t, err, ErrQuorumNotMet)
}

func TestFallbackContextDeadline(t *testing.T) {
	a := &fakeProvider{name: "a", delay: time.Second, output: []byte("a")}
	f, err := NewFallback(members(a), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.CodeAt(ctx, common.HexToAddress("0x1"), nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewFallbackValidation(t *testing.T) {
	a := &fakeProvider{name: "a"}
	b := &fakeProvider{name: "b"}

	_, err := NewFallback(nil, 1)
	assert.ErrorIs(t, err, ErrNoMembers)

	_, err = NewFallback(members(a), 0)
	assert.Error(t, err)

	_, err = NewFallback(members(a, b), 3)
	assert.Error(t, err)

	_, err = NewFallback([]Member{{Priority: 1}}, 1)
	assert.Error(t, err)
}

func TestFallbackClose(t *testing.T) {
	a := &fakeProvider{name: "a"}
	b := &fakeProvider{name: "b"}
	f, err := NewFallback(members(a, b), 1)
	require.NoError(t, err)

	assert.Equal(t, "fallback(a,b)", f.Name())
	f.Close()
	assert.True(t, a.closed.Load())
	assert.True(t, b.closed.Load())
}
