package bench

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// SearchPoint is one (searchL, k0) measurement point over a built index.
// SearchL and K0 are recorded in the report as labels only; they are not
// passed to the method, which searches with whatever parameters it was
// built with, and every query is issued as a top-1 search. Recall and QPS
// are measured once per point. MaxQPS optionally caps the query rate during measurement, to emulate a
// production load ceiling rather than an open-loop best-case throughput
// test; zero means unthrottled.
type SearchPoint struct {
	SearchL int
	K0      int
	MaxQPS  float64
}

// GroundTruth maps a query index to its true nearest-neighbor id, used to
// compute recall@1.
type GroundTruth []int32

// Run builds method over vectors, measures construction time, then measures
// QPS and recall@1 for each search point over queries, and returns a filled
// Report. dataset is a free-form label carried through to the report.
func Run(dataset string, method Method, vectors, queries [][]float32, truth GroundTruth, points []SearchPoint, parameters map[string]any) (*Report, error) {
	start := time.Now()
	if err := method.Build(vectors); err != nil {
		return nil, fmt.Errorf("bench: building %s: %w", method.Name(), err)
	}
	construction := time.Since(start)

	report := &Report{
		Dataset:             dataset,
		Method:              method.Name(),
		Parameters:          parameters,
		ConstructionTimeSec: construction.Seconds(),
	}

	for _, p := range points {
		perf, err := measureSearchPoint(method, queries, truth, p)
		if err != nil {
			return nil, fmt.Errorf("bench: measuring %s at searchL=%d: %w", method.Name(), p.SearchL, err)
		}
		report.SearchPerformances = append(report.SearchPerformances, perf)
	}

	if rnn, ok := method.(*RNNDescentMethod); ok {
		props := rnn.index.GraphProperties()
		report.Properties = &GraphShapeProperties{
			ConnectedComponents: props.ConnectedComponents,
			DistIndegree:        props.MeanInDegree,
			DistOutdegree:       props.MeanOutDegree,
			TotalDegree:         props.TotalDegree,
		}
	}

	return report, nil
}

func measureSearchPoint(method Method, queries [][]float32, truth GroundTruth, p SearchPoint) (SearchPerformance, error) {
	if len(queries) == 0 {
		return SearchPerformance{SearchL: p.SearchL, K0: p.K0}, nil
	}

	var limiter *rate.Limiter
	if p.MaxQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(p.MaxQPS), 1)
	}

	start := time.Now()
	var hits int
	for i, q := range queries {
		if limiter != nil {
			if err := limiter.Wait(context.Background()); err != nil {
				return SearchPerformance{}, fmt.Errorf("rate limiter: %w", err)
			}
		}
		labels, _, err := method.SearchTopK(q, 1)
		if err != nil {
			return SearchPerformance{}, err
		}
		if len(truth) > i && len(labels) > 0 && labels[0] == truth[i] {
			hits++
		}
	}
	elapsed := time.Since(start)

	qps := float64(len(queries)) / elapsed.Seconds()
	recall := float64(hits) / float64(len(queries))
	return SearchPerformance{SearchL: p.SearchL, K0: p.K0, QPS: qps, RecallAt1: recall}, nil
}
