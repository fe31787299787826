// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/beevik/spc700/host"
	"github.com/beevik/spc700/remote"
	"github.com/beevik/term"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

var (
	serveAddr   string
	statsAddr   string
	spcFile     string
	legacyWords bool
	runLimit    int
	verbose     bool
)

func init() {
	flag.StringVar(&serveAddr, "serve", "", "serve host sessions to websocket clients at this address")
	flag.StringVar(&statsAddr, "statsview", "", "serve runtime statistics at this address")
	flag.StringVar(&spcFile, "spc", "", "SPC file to load at startup")
	flag.BoolVar(&legacyWords, "legacywords", false, "store both bytes of a 16-bit word to the same address")
	flag.IntVar(&runLimit, "runlimit", 0, "max instructions per run command (0 for no limit)")
	flag.BoolVar(&verbose, "v", false, "log emulator diagnostics to stderr")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: spc700 [script] ..\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	logger := log.New(os.Stderr, "spc700: ", log.LstdFlags)
	if statsAddr != "" {
		launchStatsview(statsAddr, logger)
	}

	var opts []host.Option
	if verbose {
		opts = append(opts, host.WithLogger(logger))
	}
	if legacyWords {
		opts = append(opts, host.WithLegacyWordStores())
	}
	if runLimit > 0 {
		opts = append(opts, host.WithRunLimit(runLimit))
	}

	// Serve remote sessions instead of the console if requested.
	if serveAddr != "" {
		if runLimit == 0 {
			// Remote clients cannot interrupt a run.
			opts = append(opts, host.WithRunLimit(10_000_000))
		}
		if spcFile != "" {
			opts = append(opts, host.WithStartupFile(spcFile))
		}
		srv := remote.NewServer(logger, opts...)
		if err := srv.ListenAndServe(serveAddr); err != nil {
			exitOnError(err)
		}
		return
	}

	h := host.New(opts...)
	defer h.Close()

	if spcFile != "" {
		h.Execute("load "+spcFile, os.Stdout)
	}

	// Run commands contained in command-line files.
	args := flag.Args()
	if len(args) > 0 {
		for _, filename := range args {
			file, err := os.Open(filename)
			if err != nil {
				exitOnError(err)
			}
			h.RunCommands(file, os.Stdout, false)
			file.Close()
		}
	}

	// Break on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go handleInterrupt(h, c)

	// Run commands interactively.
	h.RunCommands(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
}

// Launch a goroutine serving runtime statistics of the emulator process.
func launchStatsview(addr string, logger *log.Logger) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()
	logger.Printf("stats server available at %s/debug/statsview", addr)
}

func handleInterrupt(h *host.Host, c chan os.Signal) {
	for {
		<-c
		h.Break()
	}
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
