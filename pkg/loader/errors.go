package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// User facing messages.
const (
	QuotaMessage       = "API quota exceeded, please try again later or use another Ethereum RPC provider"
	GenericMessage     = "Error connecting to Ethereum network, please try again later"
	RecordErrorMessage = "Failed to load contract data"

	InvalidArgumentsMessage = "Invalid arguments"
	UnknownMethodMessage    = "Not a view method of this contract"
)

// Kind is the class of a page level failure.
type Kind int

const (
	KindGeneric Kind = iota
	KindQuota
)

func (k Kind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	default:
		return "generic"
	}
}

// Message is the text shown to the user for k.
func (k Kind) Message() string {
	if k == KindQuota {
		return QuotaMessage
	}
	return GenericMessage
}

// Classify looks for "quota" in the error text, in the data of any JSON-RPC
// error in the chain and in the body of any HTTP error in the chain. The
// match is case sensitive.
func Classify(err error) Kind {
	if err == nil {
		return KindGeneric
	}
	if strings.Contains(err.Error(), "quota") {
		return KindQuota
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		if strings.Contains(fmt.Sprint(dataErr.ErrorData()), "quota") {
			return KindQuota
		}
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) && strings.Contains(string(httpErr.Body), "quota") {
		return KindQuota
	}
	return KindGeneric
}
