package metrics

import (
	"context"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/modesim/core/metrics"
	"github.com/kilianp07/modesim/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxDB v2 bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes iteration statistics to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordIteration writes one iteration_stats point and one mode_share point per mode.
func (s *InfluxSink) RecordIteration(st coremetrics.IterationStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ts := st.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	points := []*write.Point{iterationPoint(st, ts)}
	modes := make([]string, 0, len(st.ModeShares))
	for m := range st.ModeShares {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	for _, m := range modes {
		points = append(points, write.NewPointWithMeasurement("mode_share").
			AddTag("run_id", st.RunID).
			AddTag("mode", m).
			AddField("iteration", st.Iteration).
			AddField("share", round3(st.ModeShares[m])).
			AddField("legs", st.ModeCounts[m]).
			SetTime(ts))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

func iterationPoint(st coremetrics.IterationStats, ts time.Time) *write.Point {
	return write.NewPointWithMeasurement("iteration_stats").
		AddTag("run_id", st.RunID).
		AddField("iteration", st.Iteration).
		AddField("persons", st.Persons).
		AddField("plans", st.PlanCount).
		AddField("avg_executed", round3(st.AvgExecuted)).
		AddField("avg_best", round3(st.AvgBest)).
		AddField("avg_worst", round3(st.AvgWorst)).
		AddField("avg_average", round3(st.AvgAverage)).
		SetTime(ts)
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
