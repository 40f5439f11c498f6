package contract

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseArg converts a text argument to the Go value the ABI packs for t.
// Integers take decimal or 0x hex, bytes take 0x hex.
func ParseArg(t abi.Type, s string) (interface{}, error) {
	switch t.T {
	case abi.StringTy:
		return s, nil

	case abi.BoolTy:
		return strconv.ParseBool(s)

	case abi.AddressTy:
		return parseAddress(s)

	case abi.IntTy, abi.UintTy:
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, fmt.Errorf("invalid %s %q", t.String(), s)
		}
		return sizedInt(t, n)

	case abi.BytesTy:
		return hexutil.Decode(s)

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("invalid %s %q: want %d bytes", t.String(), s, t.Size)
		}
		v := reflect.New(t.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(b))
		return v.Interface(), nil
	}

	return nil, fmt.Errorf("unsupported argument type: %s", t.String())
}

func sizedInt(t abi.Type, n *big.Int) (interface{}, error) {
	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("%s cannot be negative", t.String())
	}
	if t.Size > 64 {
		// signed values need one bit for the sign
		if n.BitLen() > t.Size || (t.T == abi.IntTy && n.BitLen() == t.Size) {
			return nil, fmt.Errorf("%s overflows %s", n, t.String())
		}
		return n, nil
	}

	v := reflect.New(t.GetType()).Elem()
	if t.T == abi.UintTy {
		if !n.IsUint64() || v.OverflowUint(n.Uint64()) {
			return nil, fmt.Errorf("%s overflows %s", n, t.String())
		}
		v.SetUint(n.Uint64())
		return v.Interface(), nil
	}
	if !n.IsInt64() || v.OverflowInt(n.Int64()) {
		return nil, fmt.Errorf("%s overflows %s", n, t.String())
	}
	v.SetInt(n.Int64())
	return v.Interface(), nil
}
