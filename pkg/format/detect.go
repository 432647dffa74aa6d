// Package format classifies raw project payloads into one of the known
// container formats. Detection is an ordered fallback: filename extension,
// then structural JSON sniff, then magic-byte check, then a default. Binary
// legacy containers have no reliable self-describing header, so the format
// must be inferred defensively.
package format

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/wyattjouan/stagehand/pkg/domain"
)

// legacyMagic is the 9-byte ASCII signature of the pre-container era format.
// Payloads starting with it are rejected with a distinguishable error
// upstream, regardless of trailing content.
var legacyMagic = []byte("ScratchV0")

// LegacyKind names the rejected pre-container format in errors.
const LegacyKind = "scratch-v0"

// DetectFile classifies by filename extension alone. When loading from a
// named file the extension is authoritative and the content is not sniffed.
func DetectFile(filename string) (domain.Classification, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".sb2":
		return domain.ClassArchiveBinary, nil
	case ".sb3", ".json":
		return domain.ClassMultiTargetJSON, nil
	default:
		return domain.ClassUnknown, domain.ErrUnrecognizedExtension
	}
}

// DetectBytes classifies raw content. A JSON payload is inspected for the
// legacy single-object field ("objName") or the multi-target list
// ("targets"); a payload that parses as JSON but has neither fails with
// ErrUnknownProjectStructure. Non-JSON payloads are matched against the
// legacy magic signature and otherwise default to the binary archive
// container.
//
// Whether the final default is intentional policy or masks truly malformed
// input is preserved, not resolved: the binary container is the only form
// with no structural marker to check.
func DetectBytes(data []byte) (domain.Classification, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err == nil {
		if _, ok := doc["objName"]; ok {
			return domain.ClassLegacyJSON, nil
		}
		if _, ok := doc["targets"]; ok {
			return domain.ClassMultiTargetJSON, nil
		}
		return domain.ClassUnknown, domain.ErrUnknownProjectStructure
	}

	if bytes.HasPrefix(data, legacyMagic) {
		return domain.ClassLegacyUnsupported, nil
	}
	return domain.ClassArchiveBinary, nil
}

// Detect applies the full ordered fallback. A non-empty filename hint is
// authoritative; otherwise the content is sniffed.
func Detect(data []byte, filename string) (domain.Classification, error) {
	if filename != "" {
		return DetectFile(filename)
	}
	return DetectBytes(data)
}
