package cmd

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TFMV/dijkstraviz/board"
	"github.com/TFMV/dijkstraviz/config"
	"github.com/TFMV/dijkstraviz/gesture"
	"github.com/TFMV/dijkstraviz/graph"
	"github.com/TFMV/dijkstraviz/pathfind"
	"github.com/TFMV/dijkstraviz/ui"
)

const distanceTolerance = 1e-6

func checkCmd() *cobra.Command {
	var (
		graphs int
		nodes  int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Generate many graphs and verify the model, drags and searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg
			if cmd.Flags().Changed("nodes") {
				c.Graph.Nodes = nodes
			}
			if err := c.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ui.Banner(out, fmt.Sprintf("checking %d graphs of %d nodes", graphs, c.Graph.Nodes))

			failed := 0
			rows := make([][]string, 0, graphs)
			for i := 0; i < graphs; i++ {
				s := seed + int64(i)
				rep, err := checkGraph(c, s)
				if err != nil {
					return err
				}
				if len(rep.problems) > 0 {
					failed++
					for _, p := range rep.problems {
						logger.Printf("seed %d: %s", s, p)
					}
				}
				rows = append(rows, rep.row(s))
			}
			ui.Table(out, []string{"Seed", "Nodes", "Edges", "Distance", "Hops", "OK"}, rows)
			fmt.Fprintln(out)

			if failed > 0 {
				return fmt.Errorf("%d of %d graphs failed", failed, graphs)
			}
			fmt.Fprintf(out, "  %s all %d graphs passed\n", ui.StatusIcon(true), graphs)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&graphs, "graphs", 50, "Number of graphs to generate")
	f.IntVarP(&nodes, "nodes", "n", 0, "Nodes per graph (default from config)")
	f.Int64Var(&seed, "seed", 1, "First random seed")

	return cmd
}

type report struct {
	nodes, edges int
	result       *pathfind.Result
	problems     []string
}

func (r report) row(seed int64) []string {
	dist, hops := "-", "-"
	if r.result != nil {
		dist = ui.Subtle.Sprint("∞")
		if r.result.Reachable {
			dist = board.FormatWeight(r.result.Distance())
			hops = strconv.Itoa(len(r.result.Path) - 1)
		}
	}
	return []string{
		strconv.FormatInt(seed, 10),
		strconv.Itoa(r.nodes),
		strconv.Itoa(r.edges),
		dist,
		hops,
		ui.StatusIcon(len(r.problems) == 0),
	}
}

func (r *report) failf(format string, args ...any) {
	r.problems = append(r.problems, fmt.Sprintf(format, args...))
}

// checkGraph builds one board, drags a node across it and searches between
// the first and last node, recording every invariant that does not hold.
func checkGraph(c config.Config, seed int64) (report, error) {
	b, err := board.New(c, board.WithRand(rand.New(rand.NewSource(seed))))
	if err != nil {
		return report{}, err
	}
	bounds, err := c.Bounds()
	if err != nil {
		return report{}, err
	}
	g, err := b.CreateGraph(c.Graph.Nodes, bounds)
	if err != nil {
		return report{}, err
	}

	rep := report{nodes: len(g.Nodes), edges: len(g.Edges)}
	checkModel(&rep, b)
	if len(g.Nodes) == 0 {
		return rep, nil
	}

	i := int(seed % int64(len(g.Nodes)))
	if i < 0 {
		i += len(g.Nodes)
	}
	node := g.Nodes[i]
	circle := b.CircleFor(node.Label)
	_, err = gesture.Replay(b.Scene(), gesture.Path{
		From:   node.Position(),
		To:     graph.Point{X: (bounds.X1 + bounds.X2) / 2, Y: (bounds.Y1 + bounds.Y2) / 2},
		Steps:  8,
		Wobble: 10,
		Seed:   seed,
	}, 2)
	if err != nil {
		rep.failf("drag node %d: %v", node.Label, err)
	}
	checkModel(&rep, b)
	if circle.X != node.X || circle.Y != node.Y {
		rep.failf("node %d at (%g,%g) but its circle is at (%g,%g)", node.Label, node.X, node.Y, circle.X, circle.Y)
	}

	if len(g.Nodes) < 2 {
		return rep, nil
	}
	res, err := b.RunShortestPath(0, len(g.Nodes)-1)
	if err != nil {
		rep.failf("search: %v", err)
		return rep, nil
	}
	rep.result = &res
	checkSearch(&rep, g, res)
	return rep, nil
}

func checkModel(rep *report, b *board.Board) {
	g := b.Graph()
	if err := g.Validate(); err != nil {
		rep.failf("graph: %v", err)
	}
	if n := len(b.Scene().Circles()); n != len(g.Nodes) {
		rep.failf("%d circles for %d nodes", n, len(g.Nodes))
	}
	if n := len(b.Scene().Lines()); n != len(g.Edges) {
		rep.failf("%d lines for %d edges", n, len(g.Edges))
	}
	for _, e := range g.Edges {
		l := b.LineFor(e)
		if l == nil {
			rep.failf("edge %d has no line", e.ID)
			continue
		}
		if want := board.FormatWeight(e.Weight); l.Text.String != want {
			rep.failf("edge %d-%d labelled %s, weight %s", e.Out().Label, e.In().Label, l.Text.String, want)
		}
	}
}

// checkSearch verifies the result against the optimality conditions: no edge
// can be relaxed further and the path's length equals the reported distance.
func checkSearch(rep *report, g *graph.Graph, res pathfind.Result) {
	if res.Distances[res.Source] != 0 {
		rep.failf("source distance %g", res.Distances[res.Source])
	}
	for _, e := range g.Edges {
		u, v := e.Out().Label, e.In().Label
		du, dv := res.Distances[u], res.Distances[v]
		if math.IsInf(du, 1) != math.IsInf(dv, 1) {
			rep.failf("edge %d-%d joins a reached and an unreached node", u, v)
			continue
		}
		if !math.IsInf(du, 1) && math.Abs(du-dv) > e.Weight+distanceTolerance {
			rep.failf("edge %d-%d can still be relaxed", u, v)
		}
	}

	if !res.Reachable {
		if len(res.Path) != 0 {
			rep.failf("unreachable target has path %v", res.Path)
		}
		return
	}
	if len(res.Path) == 0 || res.Path[0] != res.Source || res.Path[len(res.Path)-1] != res.Target {
		rep.failf("path %v does not join %d and %d", res.Path, res.Source, res.Target)
		return
	}
	total := 0.0
	for i := 1; i < len(res.Path); i++ {
		e := g.EdgeBetween(res.Path[i-1], res.Path[i])
		if e == nil {
			rep.failf("path step %d-%d has no edge", res.Path[i-1], res.Path[i])
			return
		}
		total += e.Weight
	}
	if math.Abs(total-res.Distance()) > distanceTolerance {
		rep.failf("path length %g, distance %g", total, res.Distance())
	}
}
