package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	PagesCrawled    uint64            `json:"pages_crawled"`
	QuotesScraped   uint64            `json:"quotes_scraped"`
	SerialFallbacks uint64            `json:"serial_fallbacks"`
	ErrorsTotal     uint64            `json:"errors_total"`
	CrawlSecondsAvg float64           `json:"crawl_seconds_avg"`
	ErrorsByType    map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByPart    map[string]uint64 `json:"errors_by_part,omitempty"`
}

var (
	pagesCrawled    uint64
	quotesScraped   uint64
	serialFallbacks uint64
	errorsTotal     uint64

	crawlCount uint64
	crawlNanos uint64

	statsMu      sync.Mutex
	errorsByType = map[string]uint64{}
	errorsByPart = map[string]uint64{}
)

func IncPagesCrawled() {
	atomic.AddUint64(&pagesCrawled, 1)
}

func AddQuotesScraped(n int) {
	if n <= 0 {
		return
	}
	atomic.AddUint64(&quotesScraped, uint64(n))
}

func IncSerialFallback() {
	atomic.AddUint64(&serialFallbacks, 1)
}

func ObserveCrawlDuration(seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&crawlCount, 1)
	atomic.AddUint64(&crawlNanos, uint64(seconds*1e9))
}

func IncError(errType, part string) {
	if errType == "" {
		errType = ErrorUnknown
	}
	if part == "" {
		part = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByPart[part]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	typeCopy := copyMap(errorsByType)
	partCopy := copyMap(errorsByPart)
	statsMu.Unlock()

	count := atomic.LoadUint64(&crawlCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&crawlNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		PagesCrawled:    atomic.LoadUint64(&pagesCrawled),
		QuotesScraped:   atomic.LoadUint64(&quotesScraped),
		SerialFallbacks: atomic.LoadUint64(&serialFallbacks),
		ErrorsTotal:     atomic.LoadUint64(&errorsTotal),
		CrawlSecondsAvg: avg,
		ErrorsByType:    typeCopy,
		ErrorsByPart:    partCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
