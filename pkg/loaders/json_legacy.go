package loaders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wyattjouan/stagehand/pkg/domain"
)

// legacyDocument is the single-object container shape: the stage object at
// the top level, sprites nested under "children".
type legacyDocument struct {
	ObjName   string           `json:"objName"`
	Info      map[string]any   `json:"info"`
	Variables []legacyVariable `json:"variables"`
	Children  []legacySprite   `json:"children"`
}

type legacyVariable struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type legacySprite struct {
	ObjName   string           `json:"objName"`
	Variables []legacyVariable `json:"variables"`
}

type legacyJSONLoader struct {
	base
}

func (l *legacyJSONLoader) Load(ctx context.Context) (*Result, error) {
	if err := l.checkpoint(ctx); err != nil {
		return nil, err
	}
	l.report(0)

	project, err := parseLegacy(l.payload)
	if err != nil {
		return nil, err
	}
	l.report(0.5)

	return l.build(ctx, project)
}

// parseLegacy converts a single-object document into the shared model.
func parseLegacy(data []byte) (*domain.Project, error) {
	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing legacy project document: %w", err)
	}

	project := &domain.Project{
		Targets: []domain.Target{{
			Name:      doc.ObjName,
			IsStage:   true,
			Variables: variableMap(doc.Variables),
		}},
	}
	for _, sprite := range doc.Children {
		// Non-sprite children (stage monitors, lists) have no objName.
		if sprite.ObjName == "" {
			continue
		}
		project.Targets = append(project.Targets, domain.Target{
			Name:      sprite.ObjName,
			Variables: variableMap(sprite.Variables),
		})
	}

	if title, ok := doc.Info["projectName"].(string); ok {
		project.Title = title
	}
	if notes, ok := doc.Info["comment"].(string); ok {
		project.Notes = notes
	}
	return project, nil
}

func variableMap(vars []legacyVariable) map[string]any {
	m := make(map[string]any, len(vars))
	for _, v := range vars {
		m[v.Name] = v.Value
	}
	return m
}
