package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/http2"

	"github.com/ethstorage/contract-viewer/pkg/provider"
)

var (
	verbosity         = flag.Int("verbosity", 4, "verbosity (0 = panic, 1 = fatal, 2 = error, 3 = warn, 4 = info, 5 = debug, 6 = trace")
	configurationFile = flag.String("config", "config.toml", "configuration file")
	versionCheck      = flag.Bool("version", false, "print version of contract viewer")
	dbToken           = flag.String("dbToken", "", "influxDB auth token")
	port              = stringFlags{value: "80"}
	environment       = stringFlags{value: string(provider.Server)}
	cors              = stringFlags{value: "*"}
	rpcURLs           arrayFlags
	config            Web3Config
	majorVersion      = "0"
	minorVersion      = "1"
	patchVersion      = "0"
	releaseInfo       = "beta"
	commitInfo        string
)

// versionInfo returns the semantic versioning info of the running server
func versionInfo() string {
	return fmt.Sprintf("%s.%s.%s-%s+%s", majorVersion, minorVersion, patchVersion, releaseInfo, commitInfo)
}

func initConfig() {
	flag.Var(&port, "port", "server port")
	flag.Var(&environment, "environment", "server or browser; browser reads through vendor APIs only")
	flag.Var(&cors, "cors", "comma separated list of domains from which to accept cross origin requests")
	flag.Var(&rpcURLs, "rpc", "JSON-RPC endpoint, repeat to build the fallback list in priority order")
	flag.Parse()
	if *versionCheck {
		return
	}

	// flag defaults first, the file overrides them, explicit flags override the file
	config = Web3Config{
		ServerPort:  port.value,
		Verbosity:   *verbosity,
		Environment: environment.value,
		CORS:        cors.value,
	}
	if err := loadConfig(*configurationFile, &config); err != nil {
		log.Fatalf("Cannot load config: %v\n", err)
	}
	applyFlags(&config)
	if err := applyDefaults(&config); err != nil {
		log.Fatalf("Invalid config: %v\n", err)
	}
}

func applyFlags(cfg *Web3Config) {
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "verbosity" {
			cfg.Verbosity = *verbosity
		}
	})
	if port.set {
		cfg.ServerPort = port.value
	}
	if environment.set {
		cfg.Environment = environment.value
	}
	if cors.set {
		cfg.CORS = cors.value
	}
	if len(rpcURLs) > 0 {
		cfg.Endpoints = append([]string(nil), rpcURLs...)
	}
}

func main() {
	initConfig()
	if *versionCheck {
		fmt.Println("contract viewer version", versionInfo())
		return
	}
	log.SetLevel(log.Level(config.Verbosity))
	log.SetFormatter(&log.TextFormatter{TimestampFormat: "2006-01-02 15:04:05", FullTimestamp: true})
	log.Infof("environment: %s, endpoints: %v, contracts: %d", config.Environment, config.Endpoints, len(config.Contracts))

	logger := log.StandardLogger()
	stats, client := initStats(config.Stats, *dbToken, config.Environment, logger)
	if client != nil {
		defer client.Close()
	}

	sc := config.selectorConfig()
	sc.Logger = logger
	selector := provider.NewSelector(sc)
	open := func() (provider.Provider, error) {
		p, err := selector.GetFallbackProvider()
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	pages, err := newPageServer(config, open, stats, logger)
	if err != nil {
		log.Fatalf("Cannot build pages: %v\n", err)
	}
	mux := pages.routes()

	if config.RunAsHttp {
		log.Infof("Serving on http://localhost:%v\n", config.ServerPort)
		log.Info("Running server in unsecure mode...")
		if err := http.ListenAndServe(":"+config.ServerPort, mux); err != nil {
			log.Fatalf("Cannot start server: %v\n", err)
		}
		return
	}

	log.Infof("Serving on https mode ")
	certs := newCertificates("certs", config.SystemCertDir, config.AutoCertEmail, logger)
	server := &http.Server{
		Addr:    ":https",
		Handler: mux,
		TLSConfig: &tls.Config{
			GetCertificate: certs.GetCertificate,
			NextProtos:     []string{http2.NextProtoTLS, "http/1.1"},
			MinVersion:     tls.VersionTLS12,
		},
		MaxHeaderBytes: 32 << 20,
	}

	// http-01 challenges
	go func() {
		if err := http.ListenAndServe(":http", certs.manager.HTTPHandler(nil)); err != nil {
			log.Errorf("ACME listener stopped: %v", err)
		}
	}()

	if err := server.ListenAndServeTLS("", ""); err != nil {
		log.Fatalf("Cannot start server: %v\n", err)
	}
}
