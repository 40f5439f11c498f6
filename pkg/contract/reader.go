package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnknownMethod = errors.New("method not in ABI")
	ErrNotView       = errors.New("method is not view or pure")
)

// Reader calls the read-only methods of one contract. It has no signer.
type Reader struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

// New binds address to contractABI. Short addresses such as "0x1" are left
// padded; anything that is not 0x-prefixed hex of at most 20 bytes is
// rejected.
func New(address string, contractABI abi.ABI, caller bind.ContractCaller) (*Reader, error) {
	if caller == nil {
		return nil, errors.New("contract reader needs a caller")
	}
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	return &Reader{
		address:  addr,
		abi:      contractABI,
		contract: bind.NewBoundContract(addr, contractABI, caller, nil, nil),
	}, nil
}

func parseAddress(s string) (common.Address, error) {
	if !has0xPrefix(s) {
		return common.Address{}, fmt.Errorf("invalid address %q: missing 0x prefix", s)
	}
	digits := s[2:]
	if len(digits) == 0 || len(digits) > 2*common.AddressLength {
		return common.Address{}, fmt.Errorf("invalid address %q: bad length", s)
	}
	for _, c := range []byte(digits) {
		if !isHexCharacter(c) {
			return common.Address{}, fmt.Errorf("invalid address %q: not hex", s)
		}
	}
	return common.HexToAddress(s), nil
}

// has0xPrefix validates str begins with '0x' or '0X'.
func has0xPrefix(str string) bool {
	return len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X')
}

func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func (r *Reader) Address() common.Address { return r.address }

// Methods lists the view and pure functions of the ABI, sorted by name.
func (r *Reader) Methods() []string {
	names := make([]string, 0, len(r.abi.Methods))
	for name, m := range r.abi.Methods {
		if m.IsConstant() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Inputs describes the arguments of method as "type name". It is nil for
// methods without arguments and unknown methods.
func (r *Reader) Inputs(method string) []string {
	m, ok := r.abi.Methods[method]
	if !ok || len(m.Inputs) == 0 {
		return nil
	}
	out := make([]string, len(m.Inputs))
	for i, in := range m.Inputs {
		out[i] = in.Type.String()
		if in.Name != "" {
			out[i] += " " + in.Name
		}
	}
	return out
}

// ParseArgs converts text arguments of method with ParseArg.
func (r *Reader) ParseArgs(method string, args []string) ([]interface{}, error) {
	m, ok := r.abi.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	if len(args) != len(m.Inputs) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", method, len(m.Inputs), len(args))
	}
	out := make([]interface{}, len(args))
	for i, in := range m.Inputs {
		v, err := ParseArg(in.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, method, err)
		}
		out[i] = v
	}
	return out, nil
}

// Call runs a view call and returns the unpacked outputs. A contract without
// code fails with bind.ErrNoCode; one whose code does not implement the
// method fails while unpacking the empty return.
func (r *Reader) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	m, ok := r.abi.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	if !m.IsConstant() {
		return nil, fmt.Errorf("%w: %s", ErrNotView, method)
	}

	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s on %s: %w", method, r.address.Hex(), err)
	}
	return out, nil
}

// CallFormatted is Call with every output rendered by FormatValue.
func (r *Reader) CallFormatted(ctx context.Context, method string, args ...interface{}) ([]string, error) {
	out, err := r.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	outputs := r.abi.Methods[method].Outputs
	result := make([]string, len(out))
	for i, v := range out {
		s, err := FormatValue(outputs[i].Type, v)
		if err != nil {
			return nil, fmt.Errorf("%s output %d: %w", method, i, err)
		}
		result[i] = s
	}
	return result, nil
}

func (r *Reader) Name(ctx context.Context) (string, error) {
	return callSingle[string](ctx, r, "name")
}

func (r *Reader) Symbol(ctx context.Context) (string, error) {
	return callSingle[string](ctx, r, "symbol")
}

func (r *Reader) TotalSupply(ctx context.Context) (*big.Int, error) {
	return callSingle[*big.Int](ctx, r, "totalSupply")
}

func callSingle[T any](ctx context.Context, r *Reader, method string) (T, error) {
	var zero T
	out, err := r.Call(ctx, method)
	if err != nil {
		return zero, err
	}
	if len(out) == 0 {
		return zero, fmt.Errorf("%s on %s: no output", method, r.address.Hex())
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s on %s: unexpected output type %T", method, r.address.Hex(), out[0])
	}
	return v, nil
}
