package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/TFMV/dijkstraviz/board"
	"github.com/TFMV/dijkstraviz/config"
	"github.com/TFMV/dijkstraviz/gesture"
	"github.com/TFMV/dijkstraviz/graph"
	"github.com/TFMV/dijkstraviz/loop"
	"github.com/TFMV/dijkstraviz/pathfind"
	"github.com/TFMV/dijkstraviz/render"
	"github.com/TFMV/dijkstraviz/ui"
)

type runOptions struct {
	nodes   int
	width   float64
	height  float64
	spread  bool
	seed    int64
	from    int
	to      int
	drags   int
	animate bool
	format  string
	output  string
	frames  string
}

func runCmd() *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a graph, search it and render the result",
		Example: "  dijkstraviz run --nodes 12 --from 0 --to 11 -o path.png\n" +
			"  dijkstraviz run --format ascii --drag 3\n" +
			"  dijkstraviz run --animate --frames ./frames",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.apply(cfg, cmd.Flags())
			if err != nil {
				return err
			}
			b, res, err := runSearch(cmd.Context(), c, o)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			toStdout := o.destination() == ""
			if err := writeOutput(b, o.format, o.destination(), out); err != nil {
				return err
			}
			if toStdout {
				out = cmd.ErrOrStderr()
			} else {
				logger.Printf("wrote %s", o.destination())
			}
			printResult(out, res)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&o.nodes, "nodes", "n", 0, "Number of nodes (default from config)")
	f.Float64Var(&o.width, "width", 0, "Surface width (default from config)")
	f.Float64Var(&o.height, "height", 0, "Surface height (default from config)")
	f.BoolVar(&o.spread, "spread", false, "Push overlapping nodes apart after generation")
	f.Int64Var(&o.seed, "seed", 1, "Random seed")
	f.IntVar(&o.from, "from", 0, "Source node label")
	f.IntVar(&o.to, "to", -1, "Target node label (negative counts from the last node)")
	f.IntVar(&o.drags, "drag", 0, "Number of synthetic drags to replay before searching")
	f.BoolVar(&o.animate, "animate", false, "Step the search on the event loop at the configured interval")
	f.StringVarP(&o.format, "format", "f", "png", "Output format: png, svg, ascii, json, dot")
	f.StringVarP(&o.output, "output", "o", "", "Output file, - for stdout (default dijkstraviz.png for png, stdout otherwise)")
	f.StringVar(&o.frames, "frames", "", "With --animate, write a PNG per redrawn frame into this directory")

	return cmd
}

// apply overlays explicitly set flags on c.
func (o runOptions) apply(c config.Config, flags *pflag.FlagSet) (config.Config, error) {
	if flags.Changed("nodes") {
		c.Graph.Nodes = o.nodes
	}
	if flags.Changed("width") {
		c.Surface.Width = o.width
	}
	if flags.Changed("height") {
		c.Surface.Height = o.height
	}
	if flags.Changed("spread") {
		c.Graph.Spread = o.spread
	}
	if !render.IsExport(o.format) {
		if _, err := render.NewCanvas(o.format, render.Options{Width: 1, Height: 1}); err != nil {
			return c, err
		}
	}
	return c, c.Validate()
}

// destination returns the output path, or "" for stdout.
func (o runOptions) destination() string {
	switch {
	case o.output == "-":
		return ""
	case o.output != "":
		return o.output
	case strings.EqualFold(o.format, "png"):
		return "dijkstraviz.png"
	}
	return ""
}

// resolveLabel maps a negative label to one counted from the end.
func resolveLabel(label, nodes int) int {
	if label < 0 {
		return nodes + label
	}
	return label
}

// runSearch builds a board on a live loop, replays the requested drags and
// runs the search. The loop stops once the search completes.
func runSearch(parent context.Context, c config.Config, o runOptions) (*board.Board, pathfind.Result, error) {
	l := loop.New()
	b, err := board.New(c,
		board.WithScheduler(l),
		board.WithRand(rand.New(rand.NewSource(o.seed))),
		board.WithLogger(logger),
	)
	if err != nil {
		return nil, pathfind.Result{}, err
	}
	bounds, err := c.Bounds()
	if err != nil {
		return nil, pathfind.Result{}, err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		res    pathfind.Result
		runErr error
	)
	finish := func(r pathfind.Result, err error) {
		res, runErr = r, err
		cancel()
	}

	l.Post(func() {
		if _, err := b.CreateGraph(c.Graph.Nodes, bounds); err != nil {
			finish(pathfind.Result{}, err)
			return
		}
		if err := replayDrags(b, bounds, o.drags, o.seed); err != nil {
			finish(pathfind.Result{}, err)
			return
		}

		from := resolveLabel(o.from, c.Graph.Nodes)
		to := resolveLabel(o.to, c.Graph.Nodes)
		if err := errors.Join(b.Select(from), b.Select(to)); err != nil {
			finish(pathfind.Result{}, err)
			return
		}
		if !o.animate {
			finish(b.RunSelected())
			return
		}

		if !b.Ready() {
			finish(pathfind.Result{}, board.ErrInvalidSelection)
			return
		}
		var frames *frameWriter
		if o.frames != "" {
			fw, err := newFrameWriter(o.frames, c)
			if err != nil {
				finish(pathfind.Result{}, err)
				return
			}
			frames = fw
			// Stopped with every other timer when the loop exits.
			l.Every(c.TickInterval(), func() { frames.capture(b) })
		}
		err := b.AnimateShortestPath(from, to, c.StepInterval(), func(r pathfind.Result) {
			if frames != nil {
				frames.capture(b)
				logger.Printf("wrote %d frames to %s", frames.count, o.frames)
				if frames.err != nil {
					finish(r, frames.err)
					return
				}
			}
			finish(r, nil)
		})
		if err != nil {
			finish(pathfind.Result{}, err)
		}
	})

	if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return nil, pathfind.Result{}, err
	}
	if err := parent.Err(); err != nil {
		return nil, pathfind.Result{}, err
	}
	return b, res, runErr
}

// replayDrags drags n random circles to random points inside bounds.
func replayDrags(b *board.Board, bounds graph.Bounds, n int, seed int64) error {
	if n == 0 || len(b.Graph().Nodes) == 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed ^ 0x5eed))
	for i := 0; i < n; i++ {
		node := b.Graph().Nodes[rng.Intn(len(b.Graph().Nodes))]
		c := b.CircleFor(node.Label)
		to := graph.Point{
			X: bounds.X1 + rng.Float64()*(bounds.X2-bounds.X1),
			Y: bounds.Y1 + rng.Float64()*(bounds.Y2-bounds.Y1),
		}
		ticks, err := gesture.Replay(b.Scene(), gesture.Path{
			From:   graph.Point{X: c.X, Y: c.Y},
			To:     to,
			Steps:  12,
			Wobble: 15,
			Seed:   seed + int64(i),
		}, 1)
		if err != nil {
			return fmt.Errorf("drag %d: %w", i, err)
		}
		logger.Printf("dragged node %d to (%.0f, %.0f) in %d ticks", node.Label, to.X, to.Y, ticks)
	}
	// Drags pick nodes; the search endpoints come from the flags.
	b.ClearSelection()
	return nil
}

// frameWriter saves a PNG whenever the scene redraws.
type frameWriter struct {
	dir    string
	canvas render.Canvas
	count  int
	err    error
}

func newFrameWriter(dir string, c config.Config) (*frameWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	canvas, err := render.NewCanvas("png", render.Options{
		Width:      c.Surface.Width,
		Height:     c.Surface.Height,
		Background: c.BackgroundColor(),
	})
	if err != nil {
		return nil, err
	}
	return &frameWriter{dir: dir, canvas: canvas}, nil
}

func (f *frameWriter) capture(b *board.Board) {
	if f.err != nil || !b.RedrawIfDirty(f.canvas) {
		return
	}
	f.err = writeFile(filepath.Join(f.dir, fmt.Sprintf("frame-%04d.png", f.count)), f.canvas.Encode)
	f.count++
}

// writeOutput renders or exports the board in format to path, or to stdout
// when path is empty.
func writeOutput(b *board.Board, format, path string, stdout io.Writer) error {
	var encode func(io.Writer) error
	if render.IsExport(format) {
		exp, err := render.NewExporter(format)
		if err != nil {
			return err
		}
		snap := b.Snapshot()
		encode = func(w io.Writer) error { return exp.Export(w, snap) }
	} else {
		c := b.Config()
		canvas, err := render.NewCanvas(format, render.Options{
			Width:      c.Surface.Width,
			Height:     c.Surface.Height,
			Background: c.BackgroundColor(),
		})
		if err != nil {
			return err
		}
		b.MarkDirty()
		b.RedrawIfDirty(canvas)
		encode = canvas.Encode
	}

	if path == "" {
		return encode(stdout)
	}
	return writeFile(path, encode)
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printResult prints the distances table and the path.
func printResult(w io.Writer, res pathfind.Result) {
	ui.Banner(w, fmt.Sprintf("shortest path %d → %d", res.Source, res.Target))

	onPath := make(map[int]bool, len(res.Path))
	for _, label := range res.Path {
		onPath[label] = true
	}

	rows := make([][]string, 0, len(res.Distances))
	for label, d := range res.Distances {
		dist := ui.Subtle.Sprint("∞")
		if !math.IsInf(d, 1) {
			dist = board.FormatWeight(d)
		}
		via := "-"
		if p := res.Predecessors[label]; p != pathfind.NoPredecessor {
			via = strconv.Itoa(p)
		}
		mark := ""
		if onPath[label] {
			mark = ui.Path.Sprint("●")
		}
		rows = append(rows, []string{strconv.Itoa(label), dist, via, mark})
	}
	ui.Table(w, []string{"Node", "Distance", "Via", "Path"}, rows)
	fmt.Fprintln(w)

	if !res.Reachable {
		fmt.Fprintf(w, "  %s node %d is not reachable from node %d\n", ui.StatusIcon(false), res.Target, res.Source)
		return
	}
	hops := make([]string, len(res.Path))
	for i, label := range res.Path {
		hops[i] = strconv.Itoa(label)
	}
	fmt.Fprintf(w, "  %s %s  %s\n", ui.StatusIcon(true),
		ui.Path.Sprint(strings.Join(hops, " → ")),
		ui.Info.Sprintf("(%s)", board.FormatWeight(res.Distance())))
}
