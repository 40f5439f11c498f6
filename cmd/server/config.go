package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/naoina/toml"

	"github.com/ethstorage/contract-viewer/pkg/contract"
	"github.com/ethstorage/contract-viewer/pkg/provider"
)

type Web3Config struct {
	ServerPort     string
	Verbosity      int
	Environment    string
	CORS           string
	RunAsHttp      bool
	SystemCertDir  string
	AutoCertEmail  string
	StallTimeoutMs int
	Endpoints      []string
	Vendors        VendorKeys
	HomeContract   contract.Descriptor
	Contracts      []contract.Descriptor
	Stats          StatsConfig
}

// VendorKeys are API keys of the hosted vendors. Empty keys use the shared
// community keys.
type VendorKeys struct {
	Infura    string
	Alchemy   string
	Etherscan string
	Pocket    string
	Ankr      string
}

func (k VendorKeys) byVendor() map[provider.Vendor]string {
	return map[provider.Vendor]string{
		provider.Infura:          k.Infura,
		provider.Alchemy:         k.Alchemy,
		provider.EtherscanVendor: k.Etherscan,
		provider.Pocket:          k.Pocket,
		provider.Ankr:            k.Ankr,
	}
}

type StatsConfig struct {
	URL    string
	Org    string
	Bucket string
}

type arrayFlags []string

func (i *arrayFlags) String() string {
	return strings.Join(*i, ",")
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

type stringFlags struct {
	set   bool
	value string
}

func (sf *stringFlags) String() string {
	return sf.value
}

func (sf *stringFlags) Set(value string) error {
	sf.value = value
	sf.set = true
	return nil
}

// loadConfig loads the TOML config file from provided path if it exists
func loadConfig(file string, cfg *Web3Config) error {
	if file == "" {
		return fmt.Errorf("config file not specified")
	}
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = toml.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = fmt.Errorf("%s, %w", file, err)
	}
	return err
}

// applyDefaults fills what neither the file nor the flags set and checks
// the environment.
func applyDefaults(cfg *Web3Config) error {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "80"
	}
	env, err := provider.ParseEnvironment(cfg.Environment)
	if err != nil {
		return err
	}
	cfg.Environment = string(env)
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = append([]string(nil), provider.PublicEndpoints...)
	}
	if cfg.HomeContract.Address == "" {
		cfg.HomeContract = contract.Home()
	}
	if len(cfg.Contracts) == 0 {
		cfg.Contracts = contract.Table()
	}
	if cfg.StallTimeoutMs == 0 {
		cfg.StallTimeoutMs = int(provider.DefaultStallTimeout / time.Millisecond)
	}
	if cfg.Stats.URL == "" {
		cfg.Stats.URL = "http://localhost:8086"
	}
	return nil
}

func (cfg *Web3Config) stallTimeout() time.Duration {
	return time.Duration(cfg.StallTimeoutMs) * time.Millisecond
}

func (cfg *Web3Config) selectorConfig() provider.SelectorConfig {
	return provider.SelectorConfig{
		Environment:  provider.Environment(cfg.Environment),
		Endpoints:    cfg.Endpoints,
		VendorKeys:   cfg.Vendors.byVendor(),
		StallTimeout: cfg.stallTimeout(),
	}
}
