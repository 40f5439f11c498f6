package loader

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/ethstorage/contract-viewer/pkg/contract"
)

// MethodReader is what the method page asks of a contract.
type MethodReader interface {
	Methods() []string
	Inputs(method string) []string
	ParseArgs(method string, args []string) ([]interface{}, error)
	CallFormatted(ctx context.Context, method string, args ...interface{}) ([]string, error)
}

// MethodProps is the method page of one contract. Outputs is set once the
// picked method answered.
type MethodProps struct {
	Address string   `json:"address"`
	Label   string   `json:"label,omitempty"`
	Methods []string `json:"methods"`
	Method  string   `json:"method,omitempty"`
	Inputs  []string `json:"inputs,omitempty"`
	Args    []string `json:"args,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
	Error   *string  `json:"error"`
}

// LoadMethod lists the view methods of r and calls method when it is set.
// A method that takes arguments is only called once all of them are given.
func LoadMethod(ctx context.Context, r MethodReader, entry contract.Descriptor, method string, args []string, logger log.FieldLogger) MethodProps {
	logger = orStandard(logger)
	props := MethodProps{
		Address: entry.Address,
		Label:   entry.Label,
		Methods: r.Methods(),
		Method:  method,
		Args:    args,
	}
	if method == "" {
		return props
	}
	if !listed(props.Methods, method) {
		msg := UnknownMethodMessage + ": " + method
		props.Error = &msg
		return props
	}
	props.Inputs = r.Inputs(method)
	if len(args) == 0 && len(props.Inputs) > 0 {
		return props
	}

	values, err := r.ParseArgs(method, args)
	if err != nil {
		logger.WithError(err).Debugf("Rejected arguments of %s", method)
		msg := InvalidArgumentsMessage + ": " + err.Error()
		props.Error = &msg
		return props
	}
	out, err := r.CallFormatted(ctx, method, values...)
	if err != nil {
		msg := classified(err, logger.WithField("method", method))
		props.Error = &msg
		return props
	}
	logger.Debugf("%s returned %v", method, out)
	props.Outputs = out
	return props
}

func listed(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

// FailedMethod is the method page when the contract could not be bound.
func FailedMethod(err error, entry contract.Descriptor, logger log.FieldLogger) MethodProps {
	msg := classified(err, orStandard(logger))
	return MethodProps{Address: entry.Address, Label: entry.Label, Methods: []string{}, Error: &msg}
}
