package benchmark

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

// IssueCounts defines the document sizes for benchmarking.
var IssueCounts = []int{100, 1000, 5000, 20000}

// SmallIssueCounts for quick benchmarks.
var SmallIssueCounts = []int{100, 1000}

// ObserverCounts defines the fan-out sizes for broadcast benchmarks.
var ObserverCounts = []int{1, 10, 100, 1000}

// buildDocument returns a document with count issues, each with a couple
// of comments.
func buildDocument(count int) *domain.Document {
	now := time.Now()
	doc := &domain.Document{NextID: int64(count) + 1, Issues: make([]*domain.Issue, 0, count)}
	for i := 1; i <= count; i++ {
		is := domain.NewIssue(int64(i),
			fmt.Sprintf("Issue %d", i),
			"Steps to reproduce: open the app, click save, observe the crash.",
			fmt.Sprintf("user-%d", i%50),
			now)
		is.AddComment("triage", "Confirmed on the latest build.", now)
		is.AddComment("dev", "Fix in progress.", now)
		doc.Issues = append(doc.Issues, is)
	}
	return doc
}

// nopPersister discards documents.
type nopPersister struct{}

func (nopPersister) Save(*domain.Document) error { return nil }

// countingObserver counts events without doing any I/O.
type countingObserver struct {
	id   string
	seen atomic.Int64
}

func (o *countingObserver) ID() string { return o.id }

func (o *countingObserver) Send(domain.Event) error {
	o.seen.Add(1)
	return nil
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithIssueCounts runs a benchmark function with various document sizes.
func runWithIssueCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("issues_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
