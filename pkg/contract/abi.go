package contract

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/bayc.abi.json
var baycABI []byte

var (
	defaultOnce sync.Once
	defaultABI  abi.ABI
	defaultErr  error
)

// DefaultABI returns the Bored Ape Yacht Club ERC-721 ABI every table
// contract is read with.
func DefaultABI() (abi.ABI, error) {
	defaultOnce.Do(func() {
		defaultABI, defaultErr = abi.JSON(bytes.NewReader(baycABI))
		if defaultErr != nil {
			defaultErr = fmt.Errorf("parse embedded ABI: %w", defaultErr)
		}
	})
	return defaultABI, defaultErr
}
