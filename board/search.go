package board

import (
	"time"

	"github.com/TFMV/dijkstraviz/loop"
	"github.com/TFMV/dijkstraviz/pathfind"
	"github.com/TFMV/dijkstraviz/scene"
)

// animation is a search advanced one step per scheduler tick. Its scene is
// locked until the search finishes or is abandoned.
type animation struct {
	search *pathfind.Search
	scene  *scene.Scene
	timer  loop.Timer
	steps  int
}

// RunShortestPath settles any drag in progress, recomputes every weight and
// searches from source to target in one call, painting the visited nodes and
// the path.
func (b *Board) RunShortestPath(source, target int) (pathfind.Result, error) {
	if err := b.checkSearch(source, target); err != nil {
		return pathfind.Result{}, err
	}

	b.scene.Settle()
	b.graph.RecomputeWeights()
	res := pathfind.Run(b.graph, source, target, b, b.colors.Search())
	b.finish(res)
	return res, nil
}

// RunSelected searches between the selected source and target.
func (b *Board) RunSelected() (pathfind.Result, error) {
	if !b.sel.ready() {
		return pathfind.Result{}, ErrInvalidSelection
	}
	return b.RunShortestPath(b.sel.source, b.sel.target)
}

// AnimateShortestPath searches from source to target settling one node per
// interval on the board's scheduler. A drag in progress is settled first and
// the scene ignores presses until the search ends, so weights cannot change
// under it; Select fails with ErrSearchRunning meanwhile. done runs once, on
// the scheduler, after the path is painted. ResetColors and Reset abandon the
// search without calling done.
func (b *Board) AnimateShortestPath(source, target int, interval time.Duration, done func(pathfind.Result)) error {
	if err := b.checkSearch(source, target); err != nil {
		return err
	}

	b.scene.Lock()
	b.graph.RecomputeWeights()
	a := &animation{
		search: pathfind.NewSearch(b.graph, source, target, b, b.colors.Search()),
		scene:  b.scene,
	}
	b.anim = a
	b.logger.Printf("animating search %d -> %d every %s", source, target, interval)

	a.timer = b.scheduler.Every(interval, func() {
		if b.anim != a {
			return
		}
		a.steps++
		if !a.search.Step() {
			return
		}
		a.timer.Stop()
		a.scene.Unlock()
		b.anim = nil
		a.search.Backtrack()
		res := a.search.Result()
		b.finish(res)
		if done != nil {
			done(res)
		}
	})
	return nil
}

// Searching reports whether an animated search is in progress.
func (b *Board) Searching() bool { return b.anim != nil }

func (b *Board) checkSearch(source, target int) error {
	if b.graph == nil {
		return ErrNoGraph
	}
	if b.anim != nil {
		return ErrSearchRunning
	}
	if source == target || b.circles[source] == nil || b.circles[target] == nil {
		return ErrInvalidSelection
	}
	return nil
}

func (b *Board) finish(res pathfind.Result) {
	b.last = &res
	if res.Reachable {
		b.logger.Printf("shortest path %d -> %d: %v (%.2f), %d nodes visited",
			res.Source, res.Target, res.Path, res.Distance(), len(res.Visited))
	} else {
		b.logger.Printf("no path %d -> %d, %d nodes visited", res.Source, res.Target, len(res.Visited))
	}
}

func (b *Board) stopAnimation() {
	if b.anim == nil {
		return
	}
	b.anim.timer.Stop()
	b.anim.scene.Unlock()
	b.anim = nil
}
