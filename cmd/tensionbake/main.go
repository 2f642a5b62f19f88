// tensionbake is a CLI utility for inspecting mesh tension bakes and
// exercising the buffer lifecycle headlessly.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tension/internal/config"
	"github.com/Faultbox/midgard-tension/internal/logger"
	"github.com/Faultbox/midgard-tension/pkg/edgegraph"
	"github.com/Faultbox/midgard-tension/pkg/meshdata"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	rest := args[1:]

	switch command {
	case "stats":
		err = cmdStats(rest)
	case "dump":
		err = cmdDump(rest)
	case "simulate", "sim":
		err = cmdSimulate(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tensionbake - mesh tension bake utility

Usage:
  tensionbake [flags] <command> [options]

Mesh arguments are either a YAML mesh file or grid:<cols>x<rows>.

Commands:
  stats <mesh>                       Show adjacency statistics
  dump <mesh> [-limit n]             Print offsets, neighbors and rest deltas
  simulate <mesh> [-frames n]        Run the buffer lifecycle headlessly and
                                     report leaked buffers

Examples:
  tensionbake stats testdata/quad.yaml
  tensionbake dump -limit 4 grid:2x2
  tensionbake -debug simulate -frames 600 grid:32x32`)
}

func cmdStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: tensionbake stats <mesh>")
	}

	snap, err := meshdata.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	adj := edgegraph.Bake(snap.VertexCount(), snap.Triangles)

	minDeg, maxDeg, isolated := -1, 0, 0
	for i := 0; i < adj.VertexCount(); i++ {
		deg := len(adj.Neighbors(i))
		if deg == 0 {
			isolated++
		}
		if minDeg < 0 || deg < minDeg {
			minDeg = deg
		}
		if deg > maxDeg {
			maxDeg = deg
		}
	}

	fmt.Printf("Mesh:             %s\n", snap.Name)
	fmt.Printf("Vertices:         %d\n", snap.VertexCount())
	fmt.Printf("Triangles:        %d\n", snap.TriangleCount())
	fmt.Printf("Undirected edges: %d\n", adj.EdgeCount()/2)
	fmt.Printf("Encoding length:  %d (%d bytes)\n", len(adj.Encoding), len(adj.Encoding)*4)
	fmt.Printf("Rest deltas:      %d (%d bytes)\n", adj.EdgeCount(), adj.EdgeCount()*12)
	fmt.Printf("Degree:           min %d, max %d, avg %.2f\n", minDeg, maxDeg, float64(adj.EdgeCount())/float64(adj.VertexCount()))
	fmt.Printf("Isolated:         %d\n", isolated)
	return nil
}

func cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	limit := fs.Int("limit", 0, "Only print the first n vertices (0 = all)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: tensionbake dump [-limit n] <mesh>")
	}

	snap, err := meshdata.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	adj := edgegraph.Bake(snap.VertexCount(), snap.Triangles)
	deltas, err := edgegraph.RestDeltas(snap.Positions, adj)
	if err != nil {
		return err
	}

	fmt.Printf("offsets: %v\n", adj.Offsets())
	n := adj.VertexCount()
	if *limit > 0 && *limit < n {
		n = *limit
	}
	for i := 0; i < n; i++ {
		start, end := adj.Range(i)
		fmt.Printf("vertex %d [%d,%d):\n", i, start, end)
		for k := start; k < end; k++ {
			d := deltas[k]
			fmt.Printf("  -> %-6d delta (%.4f, %.4f, %.4f)\n", adj.Edges()[k], d[0], d[1], d[2])
		}
	}
	if n < adj.VertexCount() {
		fmt.Printf("... %d more vertices\n", adj.VertexCount()-n)
	}
	return nil
}
