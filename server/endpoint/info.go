package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whispersrt/version"
)

var startTime = time.Now()

// Info reports the build and process uptime.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.GetVersionInfo()
		uptime := time.Since(startTime)
		c.JSON(http.StatusOK, gin.H{
			"service":        serviceName,
			"version":        v.Version,
			"git_commit":     v.GitCommit,
			"build_time":     v.BuildTime,
			"go_version":     v.GoVersion,
			"platform":       v.Platform,
			"is_release":     v.IsRelease,
			"is_dirty":       v.IsDirty,
			"uptime":         uptime.Round(time.Second).String(),
			"uptime_seconds": int64(uptime.Seconds()),
			"timestamp":      now(),
		})
	}
}

// Version returns the full build information.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, version.GetVersionInfo())
	}
}

// Runtime reports heap and goroutine counts. Conversions spool uploads to
// disk, so heap growth here points at a leak rather than large files.
func Runtime() gin.HandlerFunc {
	const mb = 1 << 20
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		c.JSON(http.StatusOK, gin.H{
			"timestamp":  now(),
			"goroutines": runtime.NumGoroutine(),
			"memory": gin.H{
				"heap_alloc_mb":  m.HeapAlloc / mb,
				"total_alloc_mb": m.TotalAlloc / mb,
				"sys_mb":         m.Sys / mb,
				"gc_runs":        m.NumGC,
			},
		})
	}
}
