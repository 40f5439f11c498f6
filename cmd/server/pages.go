package main

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	log "github.com/sirupsen/logrus"

	"github.com/ethstorage/contract-viewer/pkg/contract"
	"github.com/ethstorage/contract-viewer/pkg/loader"
	"github.com/ethstorage/contract-viewer/pkg/provider"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"present": func(s *string) bool {
		return s != nil && *s != ""
	},
	"orUnknown": func(s *string) string {
		if s == nil || *s == "" {
			return "Unknown"
		}
		return *s
	},
	"argAt": func(args []string, i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	},
}

func parseTemplates() (*template.Template, error) {
	return template.New("pages").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

type pageError struct {
	code int
	err  string
}

func (e *pageError) Error() string {
	return e.err
}

// pageServer renders the pages. Every request opens its own provider and
// closes it once the page data is loaded.
type pageServer struct {
	cfg       Web3Config
	open      func() (provider.Provider, error)
	abi       abi.ABI
	templates *template.Template
	stats     *pageStats
	logger    log.FieldLogger
}

func newPageServer(cfg Web3Config, open func() (provider.Provider, error), stats *pageStats, logger log.FieldLogger) (*pageServer, error) {
	contractABI, err := contract.DefaultABI()
	if err != nil {
		return nil, err
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &pageServer{
		cfg:       cfg,
		open:      open,
		abi:       contractABI,
		templates: templates,
		stats:     stats,
		logger:    logger,
	}, nil
}

func (s *pageServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	mux.HandleFunc("/_version", func(w http.ResponseWriter, req *http.Request) {
		_, err := fmt.Fprintf(w, "contract viewer version %s", versionInfo())
		if err != nil {
			s.logger.Errorf("Cannot write version info: %v", err)
		}
	})
	return mux
}

func (s *pageServer) handle(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	// ban ico request
	if path == "/favicon.ico" {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORS)
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		respondWithErrorPage(w, pageError{http.StatusMethodNotAllowed, "only GET is supported"}, s.logger)
		return
	}
	s.logger.WithField("remote", req.RemoteAddr).Debugf("GET %s", path)

	start := time.Now()
	switch path {
	case "/", "/index.html":
		props := s.loadHome(req.Context())
		failed := 0
		if props.Error != nil {
			failed = 1
		}
		s.stats.record("home", 1, failed, time.Since(start))
		s.render(w, req, "home.html", props)

	case "/test-contracts":
		props := s.loadTestContracts(req.Context())
		failed := 0
		for _, info := range props.ContractInfos {
			if info.Error != nil {
				failed++
			}
		}
		s.stats.record("test-contracts", len(props.ContractInfos), failed, time.Since(start))
		s.render(w, req, "test-contracts.html", props)

	case "/contract":
		props, perr := s.loadMethod(req.Context(), req.URL.Query())
		if perr != nil {
			respondWithErrorPage(w, *perr, s.logger)
			return
		}
		failed := 0
		if props.Error != nil {
			failed = 1
		}
		s.stats.record("contract", 1, failed, time.Since(start))
		s.render(w, req, "contract.html", props)

	default:
		respondWithErrorPage(w, pageError{http.StatusNotFound, "no such page: " + path}, s.logger)
	}
}

func (s *pageServer) loadHome(ctx context.Context) loader.HomeProps {
	p, err := s.open()
	if err != nil {
		return loader.FailedHome(err, s.logger)
	}
	defer p.Close()

	r, err := contract.New(s.cfg.HomeContract.Address, s.abi, p)
	if err != nil {
		return loader.FailedHome(err, s.logger)
	}
	return loader.LoadHome(ctx, r, s.logger.WithField("contract", s.cfg.HomeContract.Label))
}

func (s *pageServer) loadTestContracts(ctx context.Context) loader.TestContractsProps {
	p, err := s.open()
	if err != nil {
		return loader.FailedTestContracts(err, s.logger)
	}
	defer p.Close()

	l := &loader.ContractLoader{
		NewReader: loader.ContractReaders(s.abi, p),
		Logger:    s.logger.WithField("provider", p.Name()),
	}
	return l.Load(ctx, s.cfg.Contracts)
}

// loadMethod serves /contract?address=..&method=..&arg=.. for the home
// contract when no address is given.
func (s *pageServer) loadMethod(ctx context.Context, query url.Values) (loader.MethodProps, *pageError) {
	entry := s.describe(query.Get("address"))
	p, err := s.open()
	if err != nil {
		return loader.FailedMethod(err, entry, s.logger), nil
	}
	defer p.Close()

	r, err := contract.New(entry.Address, s.abi, p)
	if err != nil {
		return loader.MethodProps{}, &pageError{http.StatusBadRequest, err.Error()}
	}
	logger := s.logger.WithFields(log.Fields{"contract": entry.Label, "provider": p.Name()})
	return loader.LoadMethod(ctx, r, entry, query.Get("method"), query["arg"], logger), nil
}

// describe labels address from the configured contracts.
func (s *pageServer) describe(address string) contract.Descriptor {
	if address == "" {
		return s.cfg.HomeContract
	}
	known := append([]contract.Descriptor{s.cfg.HomeContract}, s.cfg.Contracts...)
	for _, d := range known {
		if strings.EqualFold(d.Address, address) {
			return contract.Descriptor{Label: d.Label, Address: address}
		}
	}
	return contract.Descriptor{Address: address}
}

// render writes props as HTML, or as JSON with ?format=json.
func (s *pageServer) render(w http.ResponseWriter, req *http.Request, name string, props interface{}) {
	if req.URL.Query().Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(props); err != nil {
			s.logger.Errorf("Cannot write page data: %v", err)
		}
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, props); err != nil {
		respondWithErrorPage(w, pageError{http.StatusInternalServerError, err.Error()}, s.logger)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Errorf("Cannot write page: %v", err)
	}
}

func respondWithErrorPage(w http.ResponseWriter, err pageError, logger log.FieldLogger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(err.code)
	_, e := fmt.Fprintf(w, "<html><h1>%d: %s</h1>%s</html>", err.code, http.StatusText(err.code), html.EscapeString(err.Error()))
	if e != nil {
		logger.Errorf("Cannot write error page: %v", e)
	}
}
