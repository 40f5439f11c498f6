package contract

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// FormatValue renders an unpacked ABI value for display: numbers in decimal,
// bytes as 0x hex, addresses checksummed, arrays and tuples recursively.
func FormatValue(arg abi.Type, value interface{}) (string, error) {
	switch arg.T {
	case abi.StringTy:
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("expected string, got %T", value)
		}
		return s, nil

	case abi.IntTy, abi.UintTy, abi.FixedPointTy:
		return fmt.Sprintf("%v", value), nil

	case abi.BoolTy:
		b, ok := value.(bool)
		if !ok {
			return "", fmt.Errorf("expected bool, got %T", value)
		}
		return strconv.FormatBool(b), nil

	case abi.AddressTy:
		a, ok := value.(common.Address)
		if !ok {
			return "", fmt.Errorf("expected address, got %T", value)
		}
		return a.Hex(), nil

	case abi.BytesTy, abi.FixedBytesTy, abi.HashTy:
		return fmt.Sprintf("0x%x", value), nil

	case abi.SliceTy, abi.ArrayTy:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return "", fmt.Errorf("expected %s, got %T", arg.String(), value)
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			s, err := FormatValue(*arg.Elem, rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ",") + "]", nil

	case abi.TupleTy:
		rv := reflect.Indirect(reflect.ValueOf(value))
		if rv.Kind() != reflect.Struct || rv.NumField() != len(arg.TupleElems) {
			return "", fmt.Errorf("expected %s, got %T", arg.String(), value)
		}
		parts := make([]string, len(arg.TupleElems))
		for i, elem := range arg.TupleElems {
			s, err := FormatValue(*elem, rv.Field(i).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "(" + strings.Join(parts, ",") + ")", nil
	}

	return "", fmt.Errorf("unsupported type: %s", arg.String())
}
