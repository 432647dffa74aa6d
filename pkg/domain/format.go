package domain

// Classification identifies the container format of a project payload.
type Classification string

const (
	// ClassArchiveBinary is a zip archive holding a legacy single-object
	// project document. Older hosted archives distribute this form.
	ClassArchiveBinary Classification = "archive-binary"

	// ClassLegacyJSON is a bare JSON document in the legacy single-object
	// shape (top-level "objName").
	ClassLegacyJSON Classification = "legacy-json"

	// ClassMultiTargetJSON is a bare JSON document in the multi-target
	// shape (top-level "targets" list).
	ClassMultiTargetJSON Classification = "multi-target-json"

	// ClassLegacyUnsupported is a container that predates both supported
	// formats. It is detected so the caller can reject it with a specific
	// message instead of a generic failure.
	ClassLegacyUnsupported Classification = "legacy-unsupported"

	// ClassUnknown means no classification has been made yet. Passing it
	// to a load entry point requests content sniffing.
	ClassUnknown Classification = ""
)
