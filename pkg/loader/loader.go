// Package loader builds the data behind each page. Loaders never return an
// error: failures end up as messages in the props so the page always
// renders.
package loader

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	log "github.com/sirupsen/logrus"

	"github.com/ethstorage/contract-viewer/pkg/contract"
	"github.com/ethstorage/contract-viewer/pkg/probe"
)

// ContractInfo is one card of the test page. A nil field means that one
// call failed; Error means the contract could not be read at all.
type ContractInfo struct {
	Name        *string `json:"name"`
	Address     string  `json:"address"`
	Symbol      *string `json:"symbol,omitempty"`
	TotalSupply *string `json:"totalSupply,omitempty"`
	Error       *string `json:"error,omitempty"`
	Label       string  `json:"label,omitempty"`
}

type HomeProps struct {
	ContractName string  `json:"contractName"`
	Error        *string `json:"error"`
}

type TestContractsProps struct {
	ContractInfos []ContractInfo `json:"contractInfos"`
	Error         *string        `json:"error"`
}

type NameReader interface {
	Name(ctx context.Context) (string, error)
}

// Reader is what the test page asks of every contract.
type Reader interface {
	NameReader
	Symbol(ctx context.Context) (string, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
}

type ReaderFactory func(address string) (Reader, error)

// ContractReaders binds every address to contractABI through caller.
func ContractReaders(contractABI abi.ABI, caller bind.ContractCaller) ReaderFactory {
	return func(address string) (Reader, error) {
		r, err := contract.New(address, contractABI, caller)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// LoadHome reads the name of the home contract.
func LoadHome(ctx context.Context, r NameReader, logger log.FieldLogger) HomeProps {
	logger = orStandard(logger)
	name, err := r.Name(ctx)
	if err != nil {
		return FailedHome(err, logger)
	}
	logger.Debugf("Contract name: %s", name)
	return HomeProps{ContractName: name}
}

// FailedHome is the home page for a failure that happened before the name
// could be read, such as the provider not being constructed.
func FailedHome(err error, logger log.FieldLogger) HomeProps {
	msg := classified(err, orStandard(logger))
	return HomeProps{Error: &msg}
}

// FailedTestContracts is the test page for a failure outside the per
// contract handling.
func FailedTestContracts(err error, logger log.FieldLogger) TestContractsProps {
	msg := classified(err, orStandard(logger))
	return TestContractsProps{ContractInfos: []ContractInfo{}, Error: &msg}
}

func classified(err error, logger log.FieldLogger) string {
	kind := Classify(err)
	logger.WithError(err).WithField("kind", kind).Error("Error fetching contract data")
	return kind.Message()
}

// ContractLoader reads every contract of a table, one after another so the
// provider is not hit by a burst.
type ContractLoader struct {
	NewReader ReaderFactory
	Logger    log.FieldLogger
}

// Load returns one record per entry in entry order.
func (l *ContractLoader) Load(ctx context.Context, entries []contract.Descriptor) TestContractsProps {
	logger := orStandard(l.Logger)
	if l.NewReader == nil {
		return FailedTestContracts(errors.New("no contract reader factory"), logger)
	}

	infos := make([]ContractInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return FailedTestContracts(err, logger)
		}
		infos = append(infos, l.loadOne(ctx, entry, logger))
	}
	return TestContractsProps{ContractInfos: infos}
}

func (l *ContractLoader) loadOne(ctx context.Context, entry contract.Descriptor, logger log.FieldLogger) ContractInfo {
	entryLog := logger.WithFields(log.Fields{"label": entry.Label, "address": entry.Address})

	r, err := l.NewReader(entry.Address)
	if err == nil && r == nil {
		err = errors.New("factory returned no reader")
	}
	if err != nil {
		entryLog.WithError(err).Warn("Failed to load contract")
		msg := RecordErrorMessage
		return ContractInfo{Address: entry.Address, Label: entry.Label, Error: &msg}
	}

	set := probe.Run(ctx, func(name string, err error) {
		entryLog.WithError(err).Debugf("%s unavailable", name)
	},
		probe.Probe{Name: "name", Run: r.Name},
		probe.Probe{Name: "symbol", Run: r.Symbol},
		probe.Probe{Name: "totalSupply", Run: func(ctx context.Context) (string, error) {
			supply, err := r.TotalSupply(ctx)
			if err != nil {
				return "", err
			}
			if supply == nil {
				return "", errors.New("empty total supply")
			}
			return supply.String(), nil
		}},
	)
	return ContractInfo{
		Name:        set.Get("name"),
		Address:     entry.Address,
		Symbol:      set.Get("symbol"),
		TotalSupply: set.Get("totalSupply"),
		Label:       entry.Label,
	}
}

func orStandard(logger log.FieldLogger) log.FieldLogger {
	if logger != nil {
		return logger
	}
	return log.StandardLogger()
}
