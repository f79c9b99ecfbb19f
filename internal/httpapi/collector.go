package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	viewportStateDesc = prometheus.NewDesc(
		prometheus.BuildFQName("viewerd", "viewports", "state"),
		"Number of viewports per lifecycle state",
		[]string{"state"}, nil,
	)
	loadsDesc = prometheus.NewDesc(
		prometheus.BuildFQName("viewerd", "viewports", "loads_total"),
		"Total completed image loads",
		nil, nil,
	)
	loadErrorsDesc = prometheus.NewDesc(
		prometheus.BuildFQName("viewerd", "viewports", "load_errors_total"),
		"Total failed image loads",
		nil, nil,
	)
)

// statusCollector exposes coordinator state as metrics by sampling the
// status snapshot at scrape time.
type statusCollector struct {
	svc Service
}

func (c *statusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- viewportStateDesc
	ch <- loadsDesc
	ch <- loadErrorsDesc
}

func (c *statusCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.svc.Status()
	byState := map[string]int{}
	for _, vp := range st.Viewports {
		byState[vp.State]++
	}
	for state, n := range byState {
		ch <- prometheus.MustNewConstMetric(viewportStateDesc, prometheus.GaugeValue, float64(n), state)
	}
	ch <- prometheus.MustNewConstMetric(loadsDesc, prometheus.CounterValue, float64(st.LoadsTotal))
	ch <- prometheus.MustNewConstMetric(loadErrorsDesc, prometheus.CounterValue, float64(st.LoadErrorsTotal))
}

// registerStatusCollector registers the sampler once; a second mux in the
// same process (tests) keeps the first registration.
func registerStatusCollector(svc Service) {
	_ = prometheus.Register(&statusCollector{svc: svc})
}
