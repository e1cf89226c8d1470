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
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mholt/archiver"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/will-rowe/minnow/src/misc"
	"github.com/will-rowe/minnow/src/pipeline"
	"github.com/will-rowe/minnow/src/version"
)

// the command line arguments
var (
	kmerSize      *uint                                                             // size of k-mer
	windowSize    *int                                                              // number of adjacent k-mers per minimiser window
	refDir        *string                                                           // directory containing the reference sequences
	refFiles      []string                                                          // the collected reference files
	outDir        *string                                                           // directory to save index files and log to
	defaultOutDir = "./minnow-index-" + string(time.Now().Format("20060102150405")) // a default dir to store the index files
)

// the extensions that mark a file as holding reference sequences
var refExts = []string{"fasta", "fa", "fna", "gfa"}

// the index command (used by cobra)
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Sketch a collection of reference sequences and index the sketches",
	Long:  `Sketch a collection of reference sequences and index the sketches`,
	Run: func(cmd *cobra.Command, args []string) {
		runIndex()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	kmerSize = indexCmd.Flags().UintP("kmerSize", "k", 21, "size of k-mer")
	windowSize = indexCmd.Flags().IntP("windowSize", "w", 11, "number of adjacent k-mers per minimiser window")
	refDir = indexCmd.Flags().StringP("refDir", "i", "", "directory containing the reference sequences (FASTA/GFA, optionally gzipped or in tarballs) - required")
	outDir = indexCmd.PersistentFlags().StringP("outDir", "o", defaultOutDir, "directory to save index files to")
	indexCmd.MarkFlagRequired("refDir")
	RootCmd.AddCommand(indexCmd)
}

//  a function to check user supplied parameters
func indexParamCheck() error {
	if err := misc.CheckDir(*refDir); err != nil {
		return err
	}

	// setup the outDir
	if _, err := os.Stat(*outDir); os.IsNotExist(err) {
		if err := os.MkdirAll(*outDir, 0700); err != nil {
			return fmt.Errorf("can't create specified output directory")
		}
	}

	// collect the reference files, unpacking any archives into the output directory first
	unpackDir := filepath.Join(*outDir, "unpacked-refs")
	err := filepath.Walk(*refDir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}
		// ignore dot files
		if f.Name()[0] == 46 {
			return nil
		}
		// ignore empty files
		if f.Size() == 0 {
			return nil
		}
		// unpack archives so their contents can be collected afterwards
		if misc.CheckExt(path, []string{"tar", "tgz", "zip"}) == nil {
			log.Printf("\tunpacking archive: %v", path)
			return archiver.Unarchive(path, unpackDir)
		}
		// keep anything that looks like a reference file
		if misc.CheckExt(path, refExts) == nil {
			refFiles = append(refFiles, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// pick up any reference files that came out of the archives
	if _, err := os.Stat(unpackDir); err == nil {
		err := filepath.Walk(unpackDir, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if f.IsDir() || f.Name()[0] == 46 || f.Size() == 0 {
				return nil
			}
			if misc.CheckExt(path, refExts) == nil {
				refFiles = append(refFiles, path)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	if len(refFiles) == 0 {
		return fmt.Errorf("no reference files (%v) found in the supplied directory", strings.Join(refExts, "/"))
	}

	// check the sketching parameters
	if *kmerSize < 1 {
		return fmt.Errorf("k-mer size must be greater than 0")
	}
	if *windowSize < 2 {
		return fmt.Errorf("window size must be greater than 1")
	}

	// set number of processors to use
	if *proc <= 0 || *proc > runtime.NumCPU() {
		*proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*proc)
	return nil
}

/*
  The main function for the index command
*/
func runIndex() {
	// set up profiling
	if *profiling == true {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}

	// start logging
	logFH := misc.StartLogging(*logFile)
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("this is minnow (version %s)", version.GetVersion())
	log.Printf("starting the index subcommand")

	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	misc.ErrorCheck(indexParamCheck())
	log.Printf("\tprocessors: %d", *proc)
	log.Printf("\tk-mer size: %d", *kmerSize)
	log.Printf("\twindow size: %d", *windowSize)
	log.Printf("\tnumber of reference files found: %d", len(refFiles))

	// record the runtime information
	info := &pipeline.Info{
		Version:    version.GetVersion(),
		NumProc:    *proc,
		Profiling:  *profiling,
		KmerSize:   *kmerSize,
		WindowSize: *windowSize,
		IndexDir:   *outDir,
		Index: pipeline.IndexCmd{
			RefFiles: refFiles,
			OutDir:   *outDir,
		},
	}

	// create the pipeline
	log.Printf("initialising indexing pipeline...")
	indexingPipeline := pipeline.NewPipeline()

	// initialise processes
	log.Printf("\tinitialising the processes")
	refLoader := pipeline.NewRefLoader(info)
	refSketcher := pipeline.NewRefSketcher(info)
	indexWriter := pipeline.NewIndexWriter(info)

	// connect the pipeline processes
	log.Printf("\tconnecting data streams")
	refLoader.Connect(info.Index.RefFiles)
	refSketcher.Connect(refLoader)
	indexWriter.Connect(refSketcher)

	// submit each process to the pipeline and run it
	indexingPipeline.AddProcesses(refLoader, refSketcher, indexWriter)
	log.Printf("\tnumber of processes added to the indexing pipeline: %d", indexingPipeline.GetNumProcesses())
	log.Printf("building the reference sketches...")
	indexingPipeline.Run()

	// save the index files
	log.Printf("saving index files to \"%v\"...", *outDir)
	misc.ErrorCheck(info.SaveDB(filepath.Join(*outDir, "minnow.sketches")))
	log.Printf("\tsaved reference sketches")
	misc.ErrorCheck(info.Dump(filepath.Join(*outDir, "minnow.info")))
	log.Printf("\tsaved runtime info")
	log.Println("finished")
}
