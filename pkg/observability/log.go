package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogPipelineHooks writes pipeline events to a logger at debug level.
// Failures are logged at warn level.
type LogPipelineHooks struct {
	Logger *log.Logger
}

func (h LogPipelineHooks) OnLoadStart(_ context.Context, source string) {
	h.Logger.Debug("loading project", "source", source)
}

func (h LogPipelineHooks) OnLoadComplete(_ context.Context, source string, declarations int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("load failed", "source", source, "err", err)
		return
	}
	h.Logger.Debug("project loaded", "source", source, "declarations", declarations, "took", d.Round(time.Millisecond))
}

func (h LogPipelineHooks) OnNormalizeStart(_ context.Context, declaration string) {
	h.Logger.Debug("normalizing", "declaration", declaration)
}

func (h LogPipelineHooks) OnNormalizeComplete(_ context.Context, declaration string, nodes int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("normalize failed", "declaration", declaration, "err", err)
		return
	}
	h.Logger.Debug("normalized", "declaration", declaration, "nodes", nodes, "took", d.Round(time.Millisecond))
}

func (h LogPipelineHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("rendering", "formats", formats)
}

func (h LogPipelineHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "formats", formats, "err", err)
		return
	}
	h.Logger.Debug("rendered", "formats", formats, "took", d.Round(time.Millisecond))
}

// LogCacheHooks writes cache events to a logger at debug level.
type LogCacheHooks struct {
	Logger *log.Logger
}

func (h LogCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ PipelineHooks = LogPipelineHooks{}
	_ CacheHooks    = LogCacheHooks{}
)
