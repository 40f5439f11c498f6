package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/acme/autocert"
)

// certificates serves certificates found under a system directory first and
// falls back to ACME. Paths of found certificates are remembered in the
// autocert cache.
type certificates struct {
	cache     autocert.DirCache
	manager   *autocert.Manager
	systemDir string
	logger    log.FieldLogger
}

func newCertificates(cacheDir, systemDir, email string, logger log.FieldLogger) *certificates {
	cache := autocert.DirCache(cacheDir)
	return &certificates{
		cache: cache,
		manager: &autocert.Manager{
			Prompt: autocert.AcceptTOS,
			HostPolicy: func(ctx context.Context, host string) error {
				return nil
			},
			Cache: cache,
			Email: email,
		},
		systemDir: systemDir,
		logger:    logger,
	}
}

func getCertFromPath(domain, path string, now time.Time) (*tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cert, err := tls.X509KeyPair(data, data)
	if err != nil {
		return nil, err
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("no certificate found in %s", path)
	}
	if cert.Leaf, err = x509.ParseCertificate(cert.Certificate[0]); err != nil {
		return nil, err
	}
	if cert.Leaf.VerifyHostname(domain) != nil {
		return nil, fmt.Errorf("certificate not match %s", domain)
	}
	if now.After(cert.Leaf.NotAfter) {
		return nil, fmt.Errorf("certificate expired %s", domain)
	}
	return &cert, nil
}

func domainSysCertPath(domain string) string {
	return strings.Join([]string{domain, "cert.path"}, "-")
}

func (c *certificates) findSystemCertificate(ctx context.Context, domain string) (*tls.Certificate, error) {
	key := domainSysCertPath(domain)
	if path, err := c.cache.Get(ctx, key); err == nil && len(path) > 0 {
		if cert, err := getCertFromPath(domain, string(path), time.Now()); err == nil {
			return cert, nil
		}
		_ = c.cache.Delete(ctx, key)
	}

	if c.systemDir == "" {
		return nil, fmt.Errorf("no certificate found for %s", domain)
	}
	if stat, err := os.Stat(c.systemDir); err != nil || !stat.IsDir() {
		return nil, fmt.Errorf("no certificate found for %s", domain)
	}

	var found *tls.Certificate
	_ = filepath.WalkDir(c.systemDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if cert, err := getCertFromPath(domain, path, time.Now()); err == nil {
			found = cert
			if err := c.cache.Put(ctx, key, []byte(path)); err != nil {
				c.logger.Warnf("Cannot cache certificate path %s: %v", path, err)
			}
			return filepath.SkipAll
		}
		return nil
	})
	if found == nil {
		return nil, fmt.Errorf("no certificate found for %s", domain)
	}
	return found, nil
}

func (c *certificates) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	ctx := hello.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cert, err := c.findSystemCertificate(ctx, hello.ServerName); err == nil {
		return cert, nil
	}
	return c.manager.GetCertificate(hello)
}
