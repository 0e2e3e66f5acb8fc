package transform

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// topologicalSort orders the transforms of one stage with Kahn's algorithm.
// Ties are broken by name so the order is deterministic. Dependencies on
// transforms outside the stage are ignored here; stage order covers them.
func topologicalSort(transforms []Transformer) ([]Transformer, error) {
	byName := make(map[string]Transformer, len(transforms))
	for _, t := range transforms {
		if _, dup := byName[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate transformer name: %q", t.Name())
		}
		byName[t.Name()] = t
	}

	graph := make(map[string][]string, len(transforms))
	inDegree := make(map[string]int, len(transforms))
	for _, t := range transforms {
		inDegree[t.Name()] += 0
		deps := t.Dependencies()
		for _, before := range deps.MustRunAfter {
			if _, ok := byName[before]; ok {
				graph[before] = append(graph[before], t.Name())
				inDegree[t.Name()]++
			}
		}
		for _, after := range deps.MustRunBefore {
			if _, ok := byName[after]; ok {
				graph[t.Name()] = append(graph[t.Name()], after)
				inDegree[after]++
			}
		}
	}

	var queue []string
	for name, d := range inDegree {
		if d == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	result := make([]Transformer, 0, len(transforms))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, byName[current])
		for _, next := range graph[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(transforms) {
		var stuck []string
		for name, d := range inDegree {
			if d > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("circular dependency detected involving transforms: %v", stuck)
	}
	return result, nil
}

// BuildPipeline groups transforms by stage and orders each stage by its
// declared dependencies.
func BuildPipeline(transforms []Transformer) ([]Transformer, error) {
	byStage := make(map[Stage][]Transformer)
	for _, t := range transforms {
		if StageIndex(t.Stage()) < 0 {
			return nil, fmt.Errorf("transform %q has invalid stage: %q", t.Name(), t.Stage())
		}
		byStage[t.Stage()] = append(byStage[t.Stage()], t)
	}

	var result []Transformer
	for _, stage := range StageOrder {
		sorted, err := topologicalSort(byStage[stage])
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}
		result = append(result, sorted...)
	}
	return result, nil
}

// ValidateDependencies checks that every declared dependency names a known
// transform and that a dependency never points at a later stage.
func ValidateDependencies(transforms []Transformer) error {
	byName := make(map[string]Transformer, len(transforms))
	for _, t := range transforms {
		byName[t.Name()] = t
	}
	for _, t := range transforms {
		deps := t.Dependencies()
		for _, before := range deps.MustRunAfter {
			dep, ok := byName[before]
			if !ok {
				return fmt.Errorf("transform %q depends on missing transform %q", t.Name(), before)
			}
			if StageIndex(dep.Stage()) > StageIndex(t.Stage()) {
				return fmt.Errorf("transform %q (stage %s) must run after %q in later stage %s", t.Name(), t.Stage(), before, dep.Stage())
			}
		}
		for _, after := range deps.MustRunBefore {
			dep, ok := byName[after]
			if !ok {
				return fmt.Errorf("transform %q requires missing transform %q", t.Name(), after)
			}
			if StageIndex(dep.Stage()) < StageIndex(t.Stage()) {
				return fmt.Errorf("transform %q (stage %s) must run before %q in earlier stage %s", t.Name(), t.Stage(), after, dep.Stage())
			}
		}
	}
	_, err := BuildPipeline(transforms)
	return err
}

// Pipeline is an ordered, validated list of transforms.
type Pipeline struct {
	transforms []Transformer
}

// NewPipeline validates and orders transforms.
func NewPipeline(transforms []Transformer) (*Pipeline, error) {
	if err := ValidateDependencies(transforms); err != nil {
		return nil, err
	}
	ordered, err := BuildPipeline(transforms)
	if err != nil {
		return nil, err
	}
	return &Pipeline{transforms: ordered}, nil
}

// Transformers returns the execution order.
func (p *Pipeline) Transformers() []Transformer {
	return append([]Transformer(nil), p.transforms...)
}

// Names returns the transform names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.transforms))
	for i, t := range p.transforms {
		names[i] = t.Name()
	}
	return names
}

// Run executes every transform in order, stopping at the first error.
func (p *Pipeline) Run(ctx context.Context, tc *Context) error {
	log := tc.logger()
	rec := tc.recorder()
	for _, t := range p.transforms {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := t.Transform(ctx, tc); err != nil {
			return fmt.Errorf("transform %s: %w", t.Name(), err)
		}
		elapsed := time.Since(start)
		rec.ObserveTransform(t.Name(), elapsed)
		log.Debug("transform done", "transform", t.Name(), "stage", t.Stage(), "duration", elapsed)
	}
	return nil
}
