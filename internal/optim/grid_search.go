package optim

import (
	"context"
	"math"

	"github.com/san-kum/ratetune/internal/dynamo"
)

// GridSearch sweeps named parameters over fixed candidate sets and keeps
// the combination with the lowest metric value. Used to pick tuning seeds:
// a bad FF seed wastes most of a tuning flight walking toward the right
// neighborhood.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every grid point. buildRun constructs and executes one
// flight for a parameter combination and returns its metrics.
func (g *GridSearch) Search(
	ctx context.Context,
	buildRun func(params map[string]float64) (*dynamo.Result, error),
	metricName string,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), buildRun, metricName, &best, &bestParams)

	if err := ctx.Err(); err != nil {
		return bestParams, best, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildRun func(map[string]float64) (*dynamo.Result, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}

	if depth == len(g.paramNames) {
		result, err := buildRun(current)
		if err != nil {
			return
		}

		val := result.Metrics[metricName]
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, buildRun, metricName, best, bestParams)
	}
}
