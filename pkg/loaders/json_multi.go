package loaders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wyattjouan/stagehand/pkg/domain"
)

// multiDocument is the multi-target container shape: every scriptable
// object, stage included, is one element of the "targets" list. Variables
// are keyed by internal id with a [name, value] tuple payload.
type multiDocument struct {
	Targets []multiTarget `json:"targets"`
}

type multiTarget struct {
	Name      string                     `json:"name"`
	IsStage   bool                       `json:"isStage"`
	Variables map[string]json.RawMessage `json:"variables"`
}

type multiTargetLoader struct {
	base
}

func (l *multiTargetLoader) Load(ctx context.Context) (*Result, error) {
	if err := l.checkpoint(ctx); err != nil {
		return nil, err
	}
	l.report(0)

	project, err := parseMultiTarget(l.payload)
	if err != nil {
		return nil, err
	}
	l.report(0.5)

	return l.build(ctx, project)
}

func parseMultiTarget(data []byte) (*domain.Project, error) {
	var doc multiDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing multi-target project document: %w", err)
	}
	if doc.Targets == nil {
		return nil, domain.ErrUnknownProjectStructure
	}

	project := &domain.Project{}
	for _, t := range doc.Targets {
		target := domain.Target{
			Name:      t.Name,
			IsStage:   t.IsStage,
			Variables: make(map[string]any, len(t.Variables)),
		}
		for id, raw := range t.Variables {
			var tuple []any
			if err := json.Unmarshal(raw, &tuple); err != nil || len(tuple) < 2 {
				return nil, fmt.Errorf("malformed variable entry %q", id)
			}
			name, ok := tuple[0].(string)
			if !ok {
				return nil, fmt.Errorf("malformed variable name in entry %q", id)
			}
			target.Variables[name] = tuple[1]
		}
		project.Targets = append(project.Targets, target)
	}
	return project, nil
}
