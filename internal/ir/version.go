package ir

// Version constants for stored records.
const (
	// EngineVersion is the keepaway engine version.
	EngineVersion = "0.1.0"

	// TraceEncoding names the compression of stored round traces.
	TraceEncoding = "zstd+json"
)
