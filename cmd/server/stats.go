package main

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	log "github.com/sirupsen/logrus"
)

// pageStats writes one page_load point per rendered page. A nil *pageStats
// records nothing.
type pageStats struct {
	writeAPI    api.WriteAPIBlocking
	environment string
	logger      log.FieldLogger
}

func initStats(cfg StatsConfig, token, environment string, logger log.FieldLogger) (*pageStats, influxdb2.Client) {
	if len(token) == 0 {
		return nil, nil
	}
	org, bucket := cfg.Org, cfg.Bucket
	if org == "" {
		org = "web3q"
	}
	if bucket == "" {
		bucket = "bucket0"
	}
	client := influxdb2.NewClient(cfg.URL, token)
	return &pageStats{
		writeAPI:    client.WriteAPIBlocking(org, bucket),
		environment: environment,
		logger:      logger,
	}, client
}

func (s *pageStats) record(route string, contracts, failed int, elapsed time.Duration) {
	if s == nil || s.writeAPI == nil {
		return
	}
	point := influxdb2.NewPointWithMeasurement("page_load").
		AddTag("environment", s.environment).
		AddTag("route", route).
		AddField("contracts", contracts).
		AddField("failed", failed).
		AddField("ms", elapsed.Milliseconds()).
		SetTime(time.Now())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.writeAPI.WritePoint(ctx, point); err != nil {
		s.logger.Errorln("db err", err)
	}
}
