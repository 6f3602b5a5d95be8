package version

// Name is the service name reported to telemetry backends.
const Name = "washrelay"

// Version is overridden at build time via -ldflags "-X washrelay/pkg/version.Version=...".
var Version = "dev"
