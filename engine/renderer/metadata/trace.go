package metadata

/** @brief Per-frame statistics are kept separately for each zone. */
type TraceZone int

const (
	TraceZoneCommon TraceZone = iota
	TraceZoneUI
	TraceZoneCount
)

/** @brief Counters reset by ResetFrameStats. */
type PerFrameTraceInfo struct {
	NumDraws          int64
	NumInstances      int64
	NumElements       int64
	NumApplyPipelines int64
	NumApplyPasses    int64
}

/** @brief A snapshot of resource and per-frame statistics. */
type TraceInfo struct {
	NumBuffers   int
	NumImages    int
	NumShaders   int
	NumPipelines int
	NumPasses    int

	BufferSize       int64
	BufferPeak       int64
	TextureSize      int64
	TexturePeak      int64
	RenderTargetSize int64
	RenderTargetPeak int64

	ActiveZone TraceZone
	Frame      [TraceZoneCount]PerFrameTraceInfo
}
