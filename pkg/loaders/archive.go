package loaders

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/wyattjouan/stagehand/pkg/domain"
	"github.com/wyattjouan/stagehand/pkg/format"
)

// projectEntryName is the document every archive container must carry.
const projectEntryName = "project.json"

// archiveLoader handles the binary container: a zip archive with the
// project document inside. The inner document may be of either vintage, so
// it is sniffed before parsing.
type archiveLoader struct {
	base
}

func (l *archiveLoader) Load(ctx context.Context) (*Result, error) {
	if err := l.checkpoint(ctx); err != nil {
		return nil, err
	}
	l.report(0)

	inner, err := extractProjectEntry(l.payload)
	if err != nil {
		return nil, err
	}
	l.report(0.25)

	if err := l.checkpoint(ctx); err != nil {
		return nil, err
	}

	class, err := format.DetectBytes(inner)
	if err != nil {
		return nil, err
	}

	var project *domain.Project
	switch class {
	case domain.ClassLegacyJSON:
		project, err = parseLegacy(inner)
	case domain.ClassMultiTargetJSON:
		project, err = parseMultiTarget(inner)
	default:
		return nil, fmt.Errorf("archive entry %s: %w", projectEntryName, domain.ErrUnknownProjectStructure)
	}
	if err != nil {
		return nil, err
	}
	l.report(0.5)

	return l.build(ctx, project)
}

func extractProjectEntry(payload []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("opening project archive: %w", err)
	}
	for _, f := range reader.File {
		if f.Name != projectEntryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening archive entry: %w", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("reading archive entry: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("archive has no %s entry", projectEntryName)
}
