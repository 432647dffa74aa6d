package stagehand

// Version is the library version, overridable at build time via
// -ldflags "-X github.com/wyattjouan/stagehand.Version=...".
var Version = "0.3.0"
