package policy_test

import (
	"math/rand/v2"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/pagetest"
	"github.com/IvanBrykalov/pagecache/policy"
)

const (
	benchCapacity = 4_096
	benchKeyspace = 1 << 14
)

// benchmarkKind replays a Zipf-distributed page reference string against a
// warm cache. Misses admit the page, so the reported hit ratio is the
// policy's quality on a skewed workload and ns/op its hot-path cost.
func benchmarkKind(b *testing.B, k policy.Kind) {
	c, err := policy.New[*pagetest.Page](k, cache.Options{Capacity: benchCapacity})
	if err != nil {
		b.Fatal(err)
	}
	pages := make([]*pagetest.Page, benchKeyspace)
	for i := range pages {
		pages[i] = pagetest.New(uint64(i))
		pages[i].Inner = i%64 == 0
	}
	for i := 0; i < benchCapacity; i++ {
		_ = c.Add(pages[i])
	}

	z := rand.NewZipf(rand.New(rand.NewPCG(1, 1)), 1.1, 1, benchKeyspace-1)
	b.ReportAllocs()
	b.ResetTimer()

	hitsBefore := c.Hits()
	for i := 0; i < b.N; i++ {
		id := z.Uint64()
		if _, ok := c.Get(id); !ok {
			if err := c.Add(pages[id]); err != nil {
				b.Fatal(err)
			}
		}
	}
	b.ReportMetric(float64(c.Hits()-hitsBefore)/float64(b.N), "hits/op")
}

func BenchmarkPolicy_Clock(b *testing.B)  { benchmarkKind(b, policy.Clock) }
func BenchmarkPolicy_GClock(b *testing.B) { benchmarkKind(b, policy.GClock) }
func BenchmarkPolicy_LRD(b *testing.B)    { benchmarkKind(b, policy.LRD) }
func BenchmarkPolicy_LRU(b *testing.B)    { benchmarkKind(b, policy.LRU) }
func BenchmarkPolicy_BTree(b *testing.B)  { benchmarkKind(b, policy.BTree) }

// The same workload against hashicorp's LRU as an external baseline.
// Its Get refreshes recency, unlike the write-order LRU above.
func BenchmarkBaseline_HashicorpLRU(b *testing.B) {
	c, err := lru.New[uint64, *pagetest.Page](benchCapacity)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < benchCapacity; i++ {
		c.Add(uint64(i), pagetest.New(uint64(i)))
	}

	z := rand.NewZipf(rand.New(rand.NewPCG(1, 1)), 1.1, 1, benchKeyspace-1)
	b.ReportAllocs()
	b.ResetTimer()

	hits := 0
	for i := 0; i < b.N; i++ {
		id := z.Uint64()
		if _, ok := c.Get(id); ok {
			hits++
			continue
		}
		c.Add(id, pagetest.New(id))
	}
	b.ReportMetric(float64(hits)/float64(b.N), "hits/op")
}
