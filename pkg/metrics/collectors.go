package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

// RuntimeCollector собирает метрики runtime на каждый scrape
type RuntimeCollector struct {
	goroutines  *prometheus.Desc
	heapAlloc   *prometheus.Desc
	heapObjects *prometheus.Desc
	totalAlloc  *prometheus.Desc
	sys         *prometheus.Desc
	gcPause     *prometheus.Desc
	gcRuns      *prometheus.Desc
}

// NewRuntimeCollector создаёт новый коллектор runtime метрик
func NewRuntimeCollector(namespace, subsystem string) *RuntimeCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil)
	}
	return &RuntimeCollector{
		goroutines:  desc("runtime_goroutines", "Number of goroutines"),
		heapAlloc:   desc("runtime_heap_alloc_bytes", "Bytes of allocated heap objects"),
		heapObjects: desc("runtime_heap_objects", "Number of allocated heap objects"),
		totalAlloc:  desc("runtime_total_alloc_bytes", "Cumulative bytes allocated"),
		sys:         desc("runtime_sys_bytes", "Bytes obtained from system"),
		gcPause:     desc("runtime_gc_last_pause_seconds", "Duration of the last GC pause"),
		gcRuns:      desc("runtime_gc_runs_total", "Total number of completed GC cycles"),
	}
}

// Describe implements prometheus.Collector
func (c *RuntimeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.goroutines
	ch <- c.heapAlloc
	ch <- c.heapObjects
	ch <- c.totalAlloc
	ch <- c.sys
	ch <- c.gcPause
	ch <- c.gcRuns
}

// Collect implements prometheus.Collector
func (c *RuntimeCollector) Collect(ch chan<- prometheus.Metric) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	gauge(c.goroutines, float64(runtime.NumGoroutine()))
	gauge(c.heapAlloc, float64(ms.HeapAlloc))
	gauge(c.heapObjects, float64(ms.HeapObjects))
	gauge(c.sys, float64(ms.Sys))
	ch <- prometheus.MustNewConstMetric(c.totalAlloc, prometheus.CounterValue, float64(ms.TotalAlloc))
	ch <- prometheus.MustNewConstMetric(c.gcRuns, prometheus.CounterValue, float64(ms.NumGC))

	if ms.NumGC > 0 {
		gauge(c.gcPause, float64(ms.PauseNs[(ms.NumGC+255)%256])/1e9)
	}
}

// WorkerTracker учитывает активных воркеров
type WorkerTracker struct {
	active prometheus.Gauge
}

// NewWorkerTracker создаёт трекер поверх gauge
func NewWorkerTracker(active prometheus.Gauge) *WorkerTracker {
	return &WorkerTracker{active: active}
}

// Track отмечает начало работы и возвращает функцию завершения
func (t *WorkerTracker) Track() func() {
	t.active.Inc()
	return t.active.Dec
}
