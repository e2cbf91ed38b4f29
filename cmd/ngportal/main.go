// Command-line interface to the Neuroglancer link portal.
// Serves a dataset catalog over HTTP or compiles viewer links locally.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/janelia-flyem/ngportal/catalog"
	"github.com/janelia-flyem/ngportal/command"
	"github.com/janelia-flyem/ngportal/compiler"
	"github.com/janelia-flyem/ngportal/portal"
	"github.com/janelia-flyem/ngportal/server"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Profile CPU usage using standard gotest system.
	cpuprofile = flag.String("cpuprofile", "", "")

	// Number of catalog objects read at once.
	concurrency = flag.Int("concurrency", catalog.DefaultConcurrency, "")
)

const helpMessage = `
ngportal serves a catalog of microscopy datasets and compiles Neuroglancer links

Usage: ngportal [options] <command>

      -cpuprofile  =string   Write CPU profile to this file.
      -concurrency =number   Number of catalog objects read at once.
      -verbose     (flag)    Run in verbose mode.
  -h, -help        (flag)    Show help message

Commands:

	version
	serve    config=/path/to/config.toml
	link     <dataset> catalog=<bucket url> [view=<index|name>] [sources=a,b] [host=<viewer url>]
	validate catalog=<bucket url>

The link dataset may also be given as dataset=<name>.
Bucket URLs may be file:///path, gs://bucket?prefix=..., s3://bucket?region=... or mem://.
`

var usage = func() {
	fmt.Print(helpMessage)
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() >= 1 && strings.ToLower(flag.Args()[0]) == "help" {
		*showHelp = true
	}
	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}
	if *runVerbose {
		portal.SetLogMode(portal.DebugMode)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	// Capture ctrl+c and other interrupts.  Serving shuts down gracefully on cancel.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &command.Command{Args: flag.Args()}
	if err := DoCommand(ctx, cmd, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

// DoCommand serves as a switchboard for commands.  Results go to stdout and
// per-source diagnostics to stderr.
func DoCommand(ctx context.Context, cmd *command.Command, stdout, stderr io.Writer) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("blank command")
	}

	switch cmd.Name() {
	case "serve":
		return DoServe(ctx, cmd)
	case "link":
		return DoLink(ctx, cmd, stdout, stderr)
	case "validate":
		return DoValidate(ctx, cmd, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, portal.VersionString())
	default:
		return fmt.Errorf("unknown command %q, use -help for usage", cmd.Name())
	}
	return nil
}

// DoServe loads the TOML configuration and serves its catalog until interrupted.
func DoServe(ctx context.Context, cmd *command.Command) error {
	configPath, err := cmd.RequireSetting(command.KeyConfig)
	if err != nil {
		return err
	}
	return server.Run(ctx, configPath)
}

// DoLink prints the viewer link for a view or source selection of one dataset.
func DoLink(ctx context.Context, cmd *command.Command, stdout, stderr io.Writer) error {
	ref, err := cmd.RequireSetting(command.KeyCatalog)
	if err != nil {
		return err
	}
	var name string
	if extra := cmd.SetCommandArgs(&name); len(extra) != 0 {
		return fmt.Errorf("link command takes one dataset, got extra arguments %v", extra)
	}
	if setting, _ := cmd.GetSetting(command.KeyDataset); setting != "" {
		if name != "" && setting != name {
			return fmt.Errorf("link command got dataset %q and dataset=%s", name, setting)
		}
		name = setting
	}
	if name == "" {
		return fmt.Errorf("link command requires a dataset name")
	}
	cat, err := catalog.Open(ctx, ref, *concurrency)
	if err != nil {
		return err
	}
	ds, found := cat.Dataset(name)
	if !found {
		return fmt.Errorf("no dataset %q in catalog %s", name, ref)
	}

	opts := compiler.DefaultOptions()
	if host, found := cmd.GetSetting(command.KeyHost); found {
		opts.ViewerHost = host
	}

	sel := compiler.FromView(ds.DefaultView())
	viewKey, hasView := cmd.GetSetting(command.KeyView)
	sources, hasSources := cmd.GetSetting(command.KeySources)
	switch {
	case hasView && hasSources:
		return fmt.Errorf("link command takes either view or sources, not both")
	case hasView:
		v, found := ds.View(viewKey)
		if !found {
			return fmt.Errorf("no view %q in dataset %q", viewKey, name)
		}
		sel = compiler.FromView(v)
	case hasSources:
		sel = compiler.Selection{SourceNames: command.SplitList(sources)}
	}

	result, err := compiler.Compile(ds, sel, opts)
	if err != nil {
		return err
	}
	for _, diag := range result.Diagnostics {
		fmt.Fprintln(stderr, diag.String())
	}
	if result.Disabled() {
		fmt.Fprintf(stderr, "no link: nothing to show for dataset %q with this selection\n", name)
		return nil
	}
	fmt.Fprintln(stdout, result.URL)
	return nil
}

// DoValidate loads a catalog, which checks every entry against the schema, then
// compiles every view and reports sources that would be dropped.
func DoValidate(ctx context.Context, cmd *command.Command, stdout, stderr io.Writer) error {
	ref, err := cmd.RequireSetting(command.KeyCatalog)
	if err != nil {
		return err
	}
	cat, err := catalog.Open(ctx, ref, *concurrency)
	if err != nil {
		return err
	}
	opts := compiler.DefaultOptions()
	var numViews, numDiagnostics int
	for _, ds := range cat.Datasets() {
		for _, v := range ds.Views {
			result, err := compiler.CompileView(ds, v, opts)
			if err != nil {
				return err
			}
			numViews++
			for _, diag := range result.Diagnostics {
				numDiagnostics++
				fmt.Fprintf(stderr, "%s / %s: %s\n", ds.Name, v.Name, diag.String())
			}
			if result.Disabled() {
				fmt.Fprintf(stderr, "%s / %s: view has no link\n", ds.Name, v.Name)
			}
		}
	}
	fmt.Fprintf(stdout, "%d datasets, %d views, %d dropped sources\n", cat.Len(), numViews, numDiagnostics)
	return nil
}
