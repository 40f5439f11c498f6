package provider

import (
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Vendor is a hosted API service that aggregates Ethereum access.
type Vendor string

const (
	Infura          Vendor = "infura"
	Alchemy         Vendor = "alchemy"
	EtherscanVendor Vendor = "etherscan"
	Pocket          Vendor = "pocket"
	Ankr            Vendor = "ankr"
)

// Vendors lists every known vendor in the order the default provider asks
// them.
var Vendors = []Vendor{Infura, Alchemy, EtherscanVendor, Pocket, Ankr}

// communityKeys are shared demo keys. They run out of quota quickly, so
// configure real keys for anything beyond a demo.
var communityKeys = map[Vendor]string{
	Infura:          "84842078b09946638c03157f83405213",
	Alchemy:         "_gg7wSSi0KMBsdKnGVfHDueq6xMB9EkC",
	EtherscanVendor: "9D13ZE7XSBTJ94N9BNJ2MA33VMAY2YPIRB",
	Pocket:          "62e1ad51b37b8e00394bda3b",
	Ankr:            "9f7d929b018cdffb338517efa06f58359e86ff1ffd350bc889738523659e7972",
}

// BrowserVendors is the vendor set used when direct node access is not
// possible: two vendors on, three off.
func BrowserVendors() map[Vendor]bool {
	return map[Vendor]bool{
		Infura:          true,
		Alchemy:         false,
		EtherscanVendor: true,
		Pocket:          false,
		Ankr:            false,
	}
}

// VendorOptions selects the vendors of a default provider and their keys.
// Keys left empty fall back to the community keys. A zero Quorum asks two
// vendors to agree whenever more than one is enabled.
type VendorOptions struct {
	Enabled map[Vendor]bool
	Keys    map[Vendor]string
	Quorum  int

	HTTPClient   *http.Client
	StallTimeout time.Duration
	Logger       log.FieldLogger
}

func (o VendorOptions) key(v Vendor) string {
	if k := o.Keys[v]; k != "" {
		return k
	}
	return communityKeys[v]
}

// vendorURL returns the mainnet JSON-RPC URL of v. Etherscan has none.
func vendorURL(v Vendor, key string) (string, error) {
	switch v {
	case Infura:
		return "https://mainnet.infura.io/v3/" + key, nil
	case Alchemy:
		return "https://eth-mainnet.alchemyapi.io/v2/" + key, nil
	case Pocket:
		return "https://eth-mainnet.gateway.pokt.network/v1/lb/" + key, nil
	case Ankr:
		return "https://rpc.ankr.com/eth/" + key, nil
	default:
		return "", fmt.Errorf("vendor %q has no JSON-RPC endpoint", v)
	}
}

func newVendor(v Vendor, opts VendorOptions) (Provider, error) {
	if v == EtherscanVendor {
		return NewEtherscan(opts.HTTPClient, opts.key(v)), nil
	}
	u, err := vendorURL(v, opts.key(v))
	if err != nil {
		return nil, err
	}
	p, err := DialJSONRPC(u)
	if err != nil {
		return nil, err
	}
	return &vendorRPC{JSONRPC: p, vendor: v}, nil
}

// vendorRPC keeps API keys out of log lines.
type vendorRPC struct {
	*JSONRPC
	vendor Vendor
}

func (p *vendorRPC) Name() string { return string(p.vendor) }

// NewDefault builds a Fallback over the enabled vendors, asked in the order
// of Vendors.
func NewDefault(opts VendorOptions) (*Fallback, error) {
	var members []Member
	for _, v := range Vendors {
		if !opts.Enabled[v] {
			continue
		}
		p, err := newVendor(v, opts)
		if err != nil {
			for _, m := range members {
				m.Provider.Close()
			}
			return nil, fmt.Errorf("vendor %s: %w", v, err)
		}
		members = append(members, Member{Provider: p, Priority: len(members) + 1, Weight: 1})
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no vendor enabled: %w", ErrNoMembers)
	}

	fallbackOpts := []Option{WithLogger(opts.Logger)}
	if opts.StallTimeout != 0 {
		fallbackOpts = append(fallbackOpts, WithStallTimeout(opts.StallTimeout))
	}
	return NewFallback(members, opts.quorum(len(members)), fallbackOpts...)
}

func (o VendorOptions) quorum(members int) int {
	if o.Quorum > 0 {
		return o.Quorum
	}
	if members > 1 {
		return 2
	}
	return 1
}
