package optim

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/san-kum/compassim/internal/dynamo"
)

// Objective scores one parameter set; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Evaluated is one grid point and its score.
type Evaluated struct {
	Params map[string]float64
	Score  float64
}

// Search evaluates every grid point. Points whose simulation fails
// numerically are skipped; any other error aborts the search.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, errors.New("optim: names and ranges differ in length")
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, func(e Evaluated) {
		if e.Score < best {
			best = e.Score
			bestParams = e.Params
		}
	})
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, errors.New("optim: no grid point could be evaluated")
	}
	return bestParams, best, nil
}

// All returns every evaluated point sorted by score.
func (g *GridSearch) All(ctx context.Context, objective Objective) ([]Evaluated, error) {
	var out []Evaluated
	err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, func(e Evaluated) {
		out = append(out, e)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	visit func(Evaluated),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		var nf *dynamo.NumericalFailure
		if errors.As(err, &nf) {
			return nil
		}
		if err != nil {
			return err
		}
		if !math.IsNaN(val) {
			visit(Evaluated{Params: current, Score: val})
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, visit); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
