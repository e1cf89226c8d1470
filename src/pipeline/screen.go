package pipeline

/*
 this part of the pipeline will process reads, sketch them and screen the sketches against the indexed references
*/

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/will-rowe/minnow/src/misc"
	"github.com/will-rowe/minnow/src/seqio"
)

// DataStreamer is a pipeline process that streams data from STDIN/file
type DataStreamer struct {
	info   *Info
	input  []string
	output chan []byte
}

// NewDataStreamer is the constructor
func NewDataStreamer(info *Info) *DataStreamer {
	return &DataStreamer{info: info, output: make(chan []byte, BUFFERSIZE)}
}

// Connect is the method to connect the DataStreamer to some data source
func (proc *DataStreamer) Connect(input []string) {
	proc.input = input
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *DataStreamer) Run() {
	defer close(proc.output)
	var scanner *bufio.Scanner
	// if an input file path has not been provided, scan the contents of STDIN
	if len(proc.input) == 0 {
		scanner = bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			// important: copy content of scan to a new slice before sending, this avoids race conditions (as we are using multiple go routines) from concurrent slice access
			proc.output <- append([]byte(nil), scanner.Bytes()...)
		}
		if scanner.Err() != nil {
			log.Fatal(scanner.Err())
		}
	} else {
		for i := 0; i < len(proc.input); i++ {
			fh, err := os.Open(proc.input[i])
			misc.ErrorCheck(err)
			defer fh.Close()
			// handle gzipped input
			splitFilename := strings.Split(proc.input[i], ".")
			if splitFilename[len(splitFilename)-1] == "gz" {
				gz, err := gzip.NewReader(fh)
				misc.ErrorCheck(err)
				defer gz.Close()
				scanner = bufio.NewScanner(gz)
			} else {
				scanner = bufio.NewScanner(fh)
			}
			for scanner.Scan() {
				proc.output <- append([]byte(nil), scanner.Bytes()...)
			}
			if scanner.Err() != nil {
				log.Fatal(scanner.Err())
			}
		}
	}
}

// FastqHandler is a pipeline process to convert the data stream to the FASTQ type
type FastqHandler struct {
	info   *Info
	input  chan []byte
	output chan *seqio.FASTQread
}

// NewFastqHandler is the constructor
func NewFastqHandler(info *Info) *FastqHandler {
	return &FastqHandler{info: info, output: make(chan *seqio.FASTQread, BUFFERSIZE)}
}

// Connect is the method to join the input of this process with the output of a DataStreamer
func (proc *FastqHandler) Connect(previous *DataStreamer) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *FastqHandler) Run() {
	defer close(proc.output)
	var l1, l2, l3, l4 []byte
	if proc.info.Screen.Fasta {
		for line := range proc.input {
			if len(line) == 0 {
				break
			}

			// check for chevron
			if line[0] == 62 {
				if l1 != nil {

					// store current fasta entry (as FASTQ read)
					l1[0] = 64
					newRead, err := seqio.NewFASTQread(l1, l2, nil, nil)
					if err != nil {
						log.Fatal(err)
					}

					// send on the new read and reset the line stores
					proc.output <- newRead
				}
				l1, l2 = line, nil
			} else {
				l2 = append(l2, line...)
			}
		}

		// flush the final fasta entry, if there was one
		if l1 != nil {
			l1[0] = 64
			newRead, err := seqio.NewFASTQread(l1, l2, nil, nil)
			if err != nil {
				log.Fatal(err)
			}
			proc.output <- newRead
		}
	} else {

		// grab four lines and create a new FASTQread struct from them - perform some format checks and trim low quality bases
		for line := range proc.input {
			if l1 == nil {
				l1 = line
			} else if l2 == nil {
				l2 = line
			} else if l3 == nil {
				l3 = line
			} else if l4 == nil {
				l4 = line

				// create fastq read
				newRead, err := seqio.NewFASTQread(l1, l2, l3, l4)
				if err != nil {
					log.Fatal(err)
				}

				// send on the new read and reset the line stores
				proc.output <- newRead
				l1, l2, l3, l4 = nil, nil, nil, nil
			}
		}
	}
}

// ReadChecker is a process to quality check the reads and send them on for sketching
type ReadChecker struct {
	info   *Info
	input  chan *seqio.FASTQread
	output chan *seqio.FASTQread
}

// NewReadChecker is the constructor
func NewReadChecker(info *Info) *ReadChecker {
	return &ReadChecker{info: info, output: make(chan *seqio.FASTQread, BUFFERSIZE)}
}

// Connect is the method to join the input of this process with the output of FastqHandler
func (proc *ReadChecker) Connect(previous *FastqHandler) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *ReadChecker) Run() {
	log.Printf("now streaming reads...")

	// count the number of reads and their lengths as we go
	rawCount, lengthTotal, discardedCount := 0, 0, 0
	for read := range proc.input {
		rawCount++

		// tidy the bases up before sketching
		misc.ErrorCheck(read.BaseCheck())

		// quality trim the read if requested (fasta entries have no quality scores)
		if proc.info.Screen.Trim && len(read.Qual) != 0 {
			read.QualTrim(proc.info.Screen.MinBaseQuality)
			if len(read.Seq) < proc.info.Screen.MinReadLength {
				discardedCount++
				continue
			}
		}

		// a read shorter than the k-mer size can't be sketched at all
		if len(read.Seq) < int(proc.info.KmerSize) {
			discardedCount++
			continue
		}

		// tally the length so we can report the mean
		lengthTotal += len(read.Seq)

		// send the read onwards for sketching
		proc.output <- read
	}

	// check we have received reads & print stats
	if rawCount == 0 {
		misc.ErrorCheck(errors.New("no fastq reads received"))
	}
	log.Printf("\tnumber of reads received from input: %d\n", rawCount)
	if discardedCount != 0 {
		log.Printf("\treads discarded during quality checks: %d\n", discardedCount)
	}
	if rawCount != discardedCount {
		meanRL := float64(lengthTotal) / float64(rawCount-discardedCount)
		log.Printf("\tmean read length: %.0f\n", meanRL)
	}
	close(proc.output)
}

// ReadSketcher is a pipeline process to sketch the reads and query the sketch store
type ReadSketcher struct {
	info      *Info
	input     chan *seqio.FASTQread
	output    chan *readResult
	readStats [3]int // corresponds to num. reads sketched, num. reads with a hit, total num. hits
}

// NewReadSketcher is the constructor
func NewReadSketcher(info *Info) *ReadSketcher {
	return &ReadSketcher{info: info, output: make(chan *readResult, BUFFERSIZE), readStats: [3]int{0, 0, 0}}
}

// Connect is the method to join the input of this process with the output of ReadChecker
func (proc *ReadSketcher) Connect(previous *ReadChecker) {
	proc.input = previous.output
}

// CollectReadStats is a method to return the number of reads sketched, how many had a hit and the total number of hits
func (proc *ReadSketcher) CollectReadStats() [3]int {
	return proc.readStats
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *ReadSketcher) Run() {
	defer close(proc.output)

	// set up the boss/minion pool and run the screening
	theBoss := newBoss(proc.info, proc.input, proc.output)
	misc.ErrorCheck(theBoss.screenReads())

	// log some stuff
	if theBoss.receivedReadCount == 0 {
		misc.ErrorCheck(fmt.Errorf("no reads passed the quality checks"))
	}
	log.Printf("\tnumber of reads sketched: %d\n", theBoss.receivedReadCount)
	if theBoss.skippedReadCount != 0 {
		log.Printf("\treads skipped by the bloom filter prescreen: %d\n", theBoss.skippedReadCount)
	}
	proc.readStats[0] = theBoss.receivedReadCount
	proc.readStats[1] = theBoss.hitReadCount
	proc.readStats[2] = theBoss.totalHitCount

	// nothing may have hit the references, which isn't an error - so make minnow exit gracefully
	if proc.readStats[1] == 0 {
		log.Println("no reads contained in the reference sketches")
		return
	}
	log.Printf("\ttotal number of reads with hits: %d\n", theBoss.hitReadCount)
	log.Printf("\ttotal number of hits reported: %d\n", theBoss.totalHitCount)
}

// ScreenWriter is a pipeline process to report the hits and tally the reads assigned to each reference
type ScreenWriter struct {
	info      *Info
	input     chan *readResult
	foundRefs []string
}

// NewScreenWriter is the constructor
func NewScreenWriter(info *Info) *ScreenWriter {
	return &ScreenWriter{info: info}
}

// Connect is the method to join the input of this process with the output of ReadSketcher
func (proc *ScreenWriter) Connect(previous *ReadSketcher) {
	proc.input = previous.output
}

// CollectOutput is a method to return which references attracted reads
func (proc *ScreenWriter) CollectOutput() []string {
	return proc.foundRefs
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *ScreenWriter) Run() {

	// set up the output location
	outFH := os.Stdout
	if proc.info.Screen.OutFile != "" {
		fh, err := os.Create(proc.info.Screen.OutFile)
		misc.ErrorCheck(err)
		defer fh.Close()
		outFH = fh
	}
	writer := bufio.NewWriter(outFH)
	defer writer.Flush()

	// write one line per hit, best hit first, and tally the top hit for each read
	refTally := make(map[string]int)
	assignedReads := 0
	for result := range proc.input {
		if len(result.hits) == 0 {
			continue
		}
		assignedReads++
		refTally[result.hits[0].Reference]++
		for _, hit := range result.hits {
			fmt.Fprintf(writer, "%v\t%v\t%d\t%.4f\n", result.readID, hit.Reference, hit.Shared, hit.Containment)
		}
	}
	if assignedReads == 0 {
		return
	}

	// report the references that attracted reads
	for ref := range refTally {
		proc.foundRefs = append(proc.foundRefs, ref)
	}
	sort.Strings(proc.foundRefs)
	log.Printf("\treferences with assigned reads: %d\n", len(proc.foundRefs))
	for _, ref := range proc.foundRefs {
		log.Printf("\t- [%v] (%d reads)", ref, refTally[ref])
	}

	// plot the read tally if requested
	if proc.info.Screen.PlotFile != "" {
		misc.ErrorCheck(plotRefTally(proc.info.Screen.PlotFile, proc.foundRefs, refTally))
		log.Printf("\tsaved the read tally plot: %v", proc.info.Screen.PlotFile)
	}
}

// plotRefTally draws the number of reads assigned to each reference
func plotRefTally(plotFile string, refs []string, refTally map[string]int) error {
	tallyPlot, err := plot.New()
	if err != nil {
		return err
	}
	tallyPlot.Title.Text = "reads assigned per reference"
	tallyPlot.X.Label.Text = "reference"
	tallyPlot.Y.Label.Text = "assigned reads"
	pts := make(plotter.XYs, len(refs))
	for i, ref := range refs {
		pts[i].X = float64(i)
		pts[i].Y = float64(refTally[ref])
	}
	if err := plotutil.AddLinePoints(tallyPlot, "assigned reads", pts); err != nil {
		return err
	}
	return tallyPlot.Save(8*vg.Inch, 8*vg.Inch, plotFile)
}
