// Copyright © 2020 Will Rowe <will.rowe@stfc.ac.uk>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"log"
	"path/filepath"
	"runtime"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/will-rowe/minnow/src/misc"
	"github.com/will-rowe/minnow/src/pipeline"
	"github.com/will-rowe/minnow/src/sketch"
	"github.com/will-rowe/minnow/src/version"
)

// the command line arguments
var (
	indexDir    *string   // directory containing the index files
	fastq       *[]string // list of FASTQ files to screen
	fastaSwitch *bool     // treat the input as fasta sequence
	containment *float64  // containment threshold for reporting a reference hit
	maxHits     *int      // maximum number of hits to report per read
	trimSwitch  *bool     // enable quality based trimming of reads
	minQual     *int      // minimum base quality (used in quality based trimming)
	minRL       *int      // minimum read length (evaluated post trimming)
	bloomSwitch *bool     // use a bloom filter to prescreen reads
	outFile     *string   // file to write the screening report to
	plotFile    *string   // file to save a read tally plot to
)

// the screen command (used by cobra)
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen sequencing reads against an indexed reference collection",
	Long:  `Screen sequencing reads against an indexed reference collection`,
	Run: func(cmd *cobra.Command, args []string) {
		runScreen()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

/*
  A function to initialise the command line arguments
*/
func init() {
	RootCmd.AddCommand(screenCmd)
	fastq = screenCmd.Flags().StringSliceP("fastq", "f", []string{}, "FASTQ file(s) to screen (omit to read from STDIN)")
	fastaSwitch = screenCmd.Flags().Bool("fasta", false, "if set, the input will be treated as fasta sequence")
	indexDir = screenCmd.Flags().StringP("indexDir", "i", "", "directory containing the index files - required")
	containment = screenCmd.Flags().Float64P("containment", "t", 0.90, "containment threshold for reporting a reference hit")
	maxHits = screenCmd.Flags().IntP("maxHits", "n", 3, "maximum number of hits to report per read")
	trimSwitch = screenCmd.Flags().Bool("trim", false, "enable quality based trimming of reads")
	minQual = screenCmd.Flags().IntP("minQual", "q", 20, "minimum base quality (used in quality based trimming)")
	minRL = screenCmd.Flags().IntP("minRL", "l", 50, "minimum read length (evaluated post trimming)")
	bloomSwitch = screenCmd.Flags().Bool("bloomFilter", false, "use a bloom filter to prescreen reads before any sketch comparisons")
	outFile = screenCmd.Flags().StringP("outFile", "o", "", "file to write the screening report to (omit to write to STDOUT)")
	plotFile = screenCmd.Flags().String("plot", "", "file to save a read tally plot to (.png)")
	screenCmd.MarkFlagRequired("indexDir")
}

/*
  A function to check user supplied parameters
*/
func screenParamCheck() error {
	// check the supplied FASTQ file(s)
	if len(*fastq) == 0 {
		if err := misc.CheckSTDIN(); err != nil {
			return err
		}
		log.Printf("\tinput file: using STDIN")
	} else {
		allowedExts := []string{"fastq", "fq"}
		if *fastaSwitch {
			allowedExts = []string{"fasta", "fa", "fna"}
		}
		for _, fastqFile := range *fastq {
			if err := misc.CheckFile(fastqFile); err != nil {
				return err
			}
			if err := misc.CheckExt(fastqFile, allowedExts); err != nil {
				return err
			}
		}
	}

	// check the index directory and files
	if err := misc.CheckDir(*indexDir); err != nil {
		return err
	}
	for _, indexFile := range []string{"minnow.info", "minnow.sketches"} {
		if err := misc.CheckFile(filepath.Join(*indexDir, indexFile)); err != nil {
			return err
		}
	}

	// check the screening parameters
	if *containment <= 0.0 || *containment > 1.0 {
		return fmt.Errorf("containment threshold must be between 0 and 1: %.2f", *containment)
	}
	if *maxHits < 1 {
		return fmt.Errorf("maximum number of hits must be at least 1")
	}

	// set number of processors to use
	if *proc <= 0 || *proc > runtime.NumCPU() {
		*proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*proc)
	return nil
}

/*
  The main function for the screen sub-command
*/
func runScreen() {
	// set up profiling
	if *profiling == true {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}

	// start logging
	logFH := misc.StartLogging(*logFile)
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("this is minnow (version %s)", version.GetVersion())
	log.Printf("starting the screen subcommand")

	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	misc.ErrorCheck(screenParamCheck())
	log.Printf("\tprocessors: %d", *proc)
	log.Printf("\tcontainment threshold: %.2f", *containment)
	log.Printf("\tmax hits per read: %d", *maxHits)
	if *trimSwitch {
		log.Printf("\tread trimming: enabled")
		log.Printf("\tminimum base quality: %d", *minQual)
		log.Printf("\tminimum read length: %d", *minRL)
	} else {
		log.Printf("\tread trimming: disabled")
	}
	if *bloomSwitch {
		log.Printf("\tbloom filter prescreen: enabled")
	}
	for _, file := range *fastq {
		log.Printf("\tinput file: %v", file)
	}

	// load the index information
	log.Print("loading index information...")
	info := new(pipeline.Info)
	misc.ErrorCheck(info.Load(filepath.Join(*indexDir, "minnow.info")))
	log.Printf("\tk-mer size: %d\n", info.KmerSize)
	log.Printf("\twindow size: %d\n", info.WindowSize)
	log.Printf("\tindex version: %v\n", info.Version)
	if info.Version != version.GetVersion() {
		log.Printf("\tindex was built with a different version of minnow")
	}

	// load the reference sketches
	log.Print("loading the reference sketches...")
	store := make(sketch.SketchStore)
	misc.ErrorCheck(store.Load(filepath.Join(*indexDir, "minnow.sketches")))
	info.AttachDB(store)
	log.Printf("\tnumber of reference sketches: %d\n", len(store))

	// add the screen subcommand info to the runtime
	info.NumProc = *proc
	info.Profiling = *profiling
	info.ContainmentThreshold = *containment
	info.IndexDir = *indexDir
	info.Screen = pipeline.ScreenCmd{
		Fasta:          *fastaSwitch,
		BloomFilter:    *bloomSwitch,
		Trim:           *trimSwitch,
		MinBaseQuality: *minQual,
		MinReadLength:  *minRL,
		TopHits:        *maxHits,
		OutFile:        *outFile,
		PlotFile:       *plotFile,
	}

	// create the pipeline
	log.Printf("initialising screening pipeline...")
	screeningPipeline := pipeline.NewPipeline()

	// initialise processes
	log.Printf("\tinitialising the processes")
	dataStream := pipeline.NewDataStreamer(info)
	fastqHandler := pipeline.NewFastqHandler(info)
	readChecker := pipeline.NewReadChecker(info)
	readSketcher := pipeline.NewReadSketcher(info)
	screenWriter := pipeline.NewScreenWriter(info)

	// connect the pipeline processes
	log.Printf("\tconnecting data streams")
	dataStream.Connect(*fastq)
	fastqHandler.Connect(dataStream)
	readChecker.Connect(fastqHandler)
	readSketcher.Connect(readChecker)
	screenWriter.Connect(readSketcher)

	// submit each process to the pipeline and run it
	screeningPipeline.AddProcesses(dataStream, fastqHandler, readChecker, readSketcher, screenWriter)
	log.Printf("\tnumber of processes added to the screening pipeline: %d\n", screeningPipeline.GetNumProcesses())
	screeningPipeline.Run()
	log.Printf("\t%v", misc.PrintMemUsage())
	log.Println("finished")
}
