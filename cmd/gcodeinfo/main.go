// Command gcodeinfo is a demonstrator CLI over the command layer: it can
// split a file into tokenized Codes, mine a print file's slicer metadata,
// or resolve a virtual path against a directories.yaml-backed model store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/duet3d/gcode/config"
	"github.com/duet3d/gcode/fileinfo"
	"github.com/duet3d/gcode/gcode"
	"github.com/duet3d/gcode/internal/textutil"
	"github.com/duet3d/gcode/modelstore"
	"github.com/duet3d/gcode/pathresolver"
)

func main() {
	logOut := textutil.PrefixWriter("gcodeinfo: ", os.Stderr)
	defer logOut.Close()
	log.SetOutput(logOut)
	log.SetFlags(0)

	if len(os.Args) < 2 {
		log.Fatalln("usage: gcodeinfo <split|info|resolve> ...")
	}
	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "split":
		err = runSplit(args)
	case "info":
		err = runInfo(args)
	case "resolve":
		err = runResolve(args)
	default:
		log.Fatalf("unknown subcommand %q (want split, info, or resolve)", cmd)
	}
	if err != nil {
		log.Fatalln(err)
	}
}

func runSplit(args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: gcodeinfo split <file>")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	out := textutil.PrefixWriter("", os.Stdout)
	defer out.Close()

	sp := gcode.NewSplitter(f)
	for sp.Scan() {
		c := sp.Code()
		fmt.Fprintf(out, "%v: %v", c.Type, c.String())
		if c.Flags != 0 {
			fmt.Fprintf(out, " [flags=%0b]", uint8(c.Flags))
		}
		fmt.Fprintln(out)
	}
	return sp.Err()
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configPath := fs.String("config", "gcodeinfo.yaml", "path to the file-info scan config")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: gcodeinfo info -config <path> <file>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	path := fs.Arg(0)
	src, size, modTime, err := fileinfo.OpenFile(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := fileinfo.Parse(context.Background(), src, size, modTime, path, cfg)
	if err != nil {
		return err
	}

	out := textutil.PrefixWriter("", os.Stdout)
	defer out.Close()
	fmt.Fprintf(out, "file_name: %s\n", info.FileName)
	fmt.Fprintf(out, "size: %d\n", info.Size)
	fmt.Fprintf(out, "last_modified: %s\n", info.LastModified)
	fmt.Fprintf(out, "height: %g\n", info.Height)
	fmt.Fprintf(out, "first_layer_height: %g\n", info.FirstLayerHeight)
	fmt.Fprintf(out, "layer_height: %g\n", info.LayerHeight)
	fmt.Fprintf(out, "num_layers: %d\n", info.NumLayers)
	fmt.Fprintf(out, "filament: %v\n", info.Filament)
	fmt.Fprintf(out, "generated_by: %s\n", info.GeneratedBy)
	fmt.Fprintf(out, "print_time: %gs\n", info.PrintTimeSeconds)
	fmt.Fprintf(out, "simulated_time: %gs\n", info.SimulatedTimeSeconds)
	return nil
}

func runResolve(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	storePath := fs.String("store", "directories.yaml", "path to the model store's backing file")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: gcodeinfo resolve -store <path> <virtual-path> <category>")
	}

	store, err := modelstore.Load(*storePath)
	if err != nil {
		return fmt.Errorf("loading model store: %w", err)
	}

	virtual, category := fs.Arg(0), modelstore.DirectoryCategory(fs.Arg(1))
	resolver := pathresolver.New(store)
	physical, err := resolver.ToPhysical(virtual, category)
	if err != nil {
		return err
	}

	fmt.Println(physical)
	return nil
}
