package pipeline

import (
	"bytes"
	"log"
	"sync"

	"github.com/will-rowe/minnow/src/misc"
	"github.com/will-rowe/minnow/src/seqio"
	"github.com/will-rowe/minnow/src/sketch"
)

// readResult holds the ranked hits for a single read
type readResult struct {
	readID string
	hits   []sketch.Hit
}

// theBoss is used to orchestrate the minions
type theBoss struct {
	info              *Info                 // the runtime info for the pipeline
	reads             chan *seqio.FASTQread // the boss uses this channel to receive reads from the main pipeline
	results           chan *readResult      // used to send the screening results on for reporting
	filter            *sketch.Filter        // optional bloom filter prescreen, populated from the sketch store
	receivedReadCount int                   // the number of reads the boss is sent during its lifetime
	hitReadCount      int                   // the total number of reads with at least one hit
	totalHitCount     int                   // the total number of hits reported across all reads
	skippedReadCount  int                   // the number of reads skipped by the bloom filter prescreen
	sync.Mutex                              // allows sketching minions to update the boss's counts
}

// newBoss will initialise and return theBoss
func newBoss(runtimeInfo *Info, inputChan chan *seqio.FASTQread, resultChan chan *readResult) *theBoss {
	return &theBoss{
		info:              runtimeInfo,
		reads:             inputChan,
		results:           resultChan,
		receivedReadCount: 0,
		hitReadCount:      0,
		totalHitCount:     0,
		skippedReadCount:  0,
	}
}

// screenReads is a method to start off the minions, which sketch the reads and query the sketch store
func (theBoss *theBoss) screenReads() error {

	// set up the bloom filter prescreen if it was requested
	if theBoss.info.Screen.BloomFilter {
		theBoss.filter = sketch.NewStoreFilter(theBoss.info.db)
		log.Printf("\tusing a bloom filter to prescreen reads")
	}

	// launch the sketching minions (one per CPU)
	var wg sync.WaitGroup
	for i := 0; i < theBoss.info.NumProc; i++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()

			// keep a track of what this minion does
			receivedReads := 0
			hitReads := 0
			totalHits := 0
			skippedReads := 0

			// start the main processing loop
			for {

				// pull reads from queue until done
				read, ok := <-theBoss.reads
				if !ok {

					// update the counts
					theBoss.Lock()
					theBoss.receivedReadCount += receivedReads
					theBoss.hitReadCount += hitReads
					theBoss.totalHitCount += totalHits
					theBoss.skippedReadCount += skippedReads
					theBoss.Unlock()

					// end the sketching minion
					return
				}
				receivedReads++

				// get sketch for read
				readSketch, err := sketch.New(readName(read.ID), read.Seq, theBoss.info.KmerSize, theBoss.info.WindowSize)
				misc.ErrorCheck(err)

				// consult the prescreen, skipping the read if none of its minimisers were seen during indexing
				if theBoss.filter != nil {
					seen := false
					for _, value := range readSketch.Minimisers {
						if theBoss.filter.Check(value) {
							seen = true
							break
						}
					}
					if !seen {
						skippedReads++
						continue
					}
				}

				// query the read sketch against every reference sketch
				topHits := sketch.NewTopHits(theBoss.info.Screen.TopHits)
				for _, refSketch := range theBoss.info.db {
					containment, err := readSketch.Containment(refSketch)
					misc.ErrorCheck(err)
					if containment < theBoss.info.ContainmentThreshold {
						continue
					}
					shared, err := readSketch.Intersection(refSketch)
					misc.ErrorCheck(err)
					topHits.Add(sketch.Hit{Reference: refSketch.Name, Shared: shared, Containment: containment})
				}
				hits := topHits.Collect()

				// send the result on for reporting
				theBoss.results <- &readResult{readID: readSketch.Name, hits: hits}

				// update counts
				if len(hits) > 0 {
					hitReads++
				}
				totalHits += len(hits)
			}
		}(i)
	}

	// wait for the minions to finish
	wg.Wait()
	return nil
}

// readName strips the fastq marker and any comment from a read ID line
func readName(id []byte) string {
	fields := bytes.Fields(id)
	if len(fields) == 0 {
		return ""
	}
	return string(bytes.TrimPrefix(fields[0], []byte("@")))
}
