// Command pricefeed-bench drives a pricefeed.Service with many
// concurrent producers and readers and reports throughput plus a
// compression-ratio estimate for the synthetic opaque payloads it
// generates. It is dev/test tooling: none of this runs on the
// coordinator's hot path.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"

	"github.com/sabbanivenugopal/latest-value-price/pkg/pricefeed"
)

func main() {
	producers := flag.Int("producers", 8, "concurrent producer goroutines")
	batchesPerProducer := flag.Int("batches", 200, "batches completed per producer")
	instrumentsPerBatch := flag.Int("instruments", 50, "distinct instruments staged per batch")
	readers := flag.Int("readers", 4, "concurrent reader goroutines polling GetAllLatestPrices")
	payloadFields := flag.Int("payload-fields", 12, "number of key/value fields in each synthetic payload")
	flag.Parse()

	svc := pricefeed.NewService(
		pricefeed.WithLogger(pricefeed.NewBasicLogger(pricefeed.LogLevelError)),
	)

	stopReaders := make(chan struct{})
	var readerWg sync.WaitGroup
	var reads int64
	var readsMu sync.Mutex
	for i := 0; i < *readers; i++ {
		readerWg.Add(1)
		go func() {
			defer readerWg.Done()
			for {
				select {
				case <-stopReaders:
					return
				default:
				}
				_ = svc.GetAllLatestPrices()
				readsMu.Lock()
				reads++
				readsMu.Unlock()
			}
		}()
	}

	var samplePayload pricefeed.Payload
	var sampleMu sync.Mutex

	start := time.Now()
	var producerWg sync.WaitGroup
	var uploads int64
	var uploadsMu sync.Mutex
	for p := 0; p < *producers; p++ {
		producerWg.Add(1)
		go func(seed int64) {
			defer producerWg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for bi := 0; bi < *batchesPerProducer; bi++ {
				batchID, err := svc.StartBatch()
				if err != nil {
					fmt.Println("start batch:", err)
					return
				}
				for ii := 0; ii < *instrumentsPerBatch; ii++ {
					payload := syntheticPayload(rnd, *payloadFields)
					sampleMu.Lock()
					if samplePayload == nil {
						samplePayload = payload
					}
					sampleMu.Unlock()

					rec, err := pricefeed.NewRecord(
						fmt.Sprintf("INSTR-%03d", ii),
						time.Now(),
						payload,
					)
					if err != nil {
						fmt.Println("new record:", err)
						return
					}
					if err := svc.UploadPrice(batchID, &rec); err != nil {
						fmt.Println("upload:", err)
						return
					}
				}
				if err := svc.CompleteBatch(batchID); err != nil {
					fmt.Println("complete:", err)
					return
				}
				uploadsMu.Lock()
				uploads += int64(*instrumentsPerBatch)
				uploadsMu.Unlock()
			}
		}(int64(p) + 1)
	}
	producerWg.Wait()
	elapsed := time.Since(start)

	close(stopReaders)
	readerWg.Wait()

	fmt.Printf("committed %d price uploads across %d batches in %s (%.0f uploads/sec)\n",
		uploads, *producers**batchesPerProducer, elapsed, float64(uploads)/elapsed.Seconds())
	fmt.Printf("readers completed %d GetAllLatestPrices calls\n", reads)
	fmt.Printf("final instrument count: %d\n", len(svc.GetAllLatestPrices()))

	if samplePayload != nil {
		reportCompressionRatio(samplePayload)
	}
}

func syntheticPayload(rnd *rand.Rand, fields int) pricefeed.Payload {
	p := make(pricefeed.Payload, fields)
	for i := 0; i < fields; i++ {
		p[fmt.Sprintf("f%d", i)] = rnd.Float64() * 1000
	}
	return p
}

// reportCompressionRatio encodes a representative payload as JSON and
// compares gzip vs lz4 compression ratios on it, giving operators a
// rough sense of how much a persistence or wire layer built on top of
// pricefeed could shrink its payloads by (the core itself never
// serializes payloads).
func reportCompressionRatio(payload pricefeed.Payload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		fmt.Println("marshal sample payload:", err)
		return
	}

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	if _, err := gw.Write(raw); err != nil {
		fmt.Println("gzip write:", err)
		return
	}
	if err := gw.Close(); err != nil {
		fmt.Println("gzip close:", err)
		return
	}

	lz4Compressed := make([]byte, lz4.CompressBlockBound(len(raw)))
	var lz4Writer lz4.Compressor
	n, err := lz4Writer.CompressBlock(raw, lz4Compressed)
	if err != nil {
		fmt.Println("lz4 compress:", err)
		return
	}

	fmt.Printf("sample payload: %d bytes raw, %d bytes gzip (%.1f%%), %d bytes lz4 (%.1f%%)\n",
		len(raw),
		gz.Len(), 100*float64(gz.Len())/float64(len(raw)),
		n, 100*float64(n)/float64(len(raw)),
	)
}
