package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/jyane/nescore/nes"
	"github.com/jyane/nescore/ui"
	"github.com/jyane/nescore/ui/snapshot"
)

var (
	path       = flag.String("path", "./rom/sample1.nes", "path to NES ROM file")
	width      = flag.Int("width", 256*4, "window width")
	height     = flag.Int("height", 240*4, "window height")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	debug      = flag.Bool("debug", false, "run as debug mode, commands are read from stdin")
	nmiDelay   = flag.Int("nmi-delay", nes.DefaultConfig().NMIDelay, "PPU dots between VBlank and NMI delivery")
	output     = flag.String("snapshot", "", "run headless and write the screen to this PNG file")
	frames     = flag.Int("frames", 60, "frames to run before the snapshot is taken")
	scale      = flag.Int("scale", 2, "snapshot scale factor")
)

func init() {
	runtime.LockOSThread()
}

func writeSnapshot(console nes.Console) error {
	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := snapshot.Write(f, console, *frames, *scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatal("Failed to create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatal("Failed to start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	buf, err := os.ReadFile(*path)
	if err != nil {
		glog.Fatalln("Failed to read: "+*path, err)
	}
	config := nes.DefaultConfig()
	config.NMIDelay = *nmiDelay
	c, err := nes.NewConsole(buf, config)
	if err != nil {
		glog.Fatalln("Failed to initiate Console: ", err)
	}
	var console nes.Console = c
	if *debug {
		console = nes.NewDebugConsole(c, os.Stdin, os.Stdout)
	}
	if *output != "" {
		err = writeSnapshot(console)
	} else {
		err = ui.Start(console, *width, *height)
	}
	if err != nil && errors.Cause(err) != nes.ErrDebuggerQuit {
		glog.Errorf("Stopped: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
