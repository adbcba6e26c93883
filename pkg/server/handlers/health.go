package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/kgraph"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

const serviceName = "kgraph"

// HealthHandler handles health check requests
type HealthHandler struct {
	graph   kgraph.GraphReader
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(g kgraph.GraphReader) *HealthHandler {
	return &HealthHandler{graph: g, started: time.Now()}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready. The service is ready once a graph is
// attached.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	response := gin.H{
		"status":    "ready",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	checks := gin.H{
		"system": gin.H{"status": "healthy", "uptime": time.Since(h.started).Round(time.Second).String()},
	}
	response["checks"] = checks

	if h.graph == nil {
		checks["graph"] = gin.H{"status": "unhealthy", "error": "graph not initialized"}
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	start := time.Now()
	st := h.graph.Stats()
	checks["graph"] = gin.H{
		"status":   "healthy",
		"nodes":    st.NodeCount,
		"edges":    st.EdgeCount,
		"duration": time.Since(start).String(),
	}
	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck handles GET /health/detailed - comprehensive health information
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	startTime := time.Now()
	response := gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
	}

	checks := gin.H{}
	healthy := true
	if h.graph != nil {
		st := h.graph.Stats()
		checks["graph"] = gin.H{
			"status":        "healthy",
			"nodes":         st.NodeCount,
			"edges":         st.EdgeCount,
			"inferred":      st.InferredCount,
			"snapshots":     st.SnapshotCount,
			"avg_degree":    st.AvgDegree,
			"nodes_by_type": st.NodesByType,
			"operation":     "Stats",
			"duration_ms":   time.Since(startTime).Milliseconds(),
		}
	} else {
		checks["graph"] = gin.H{"status": "unhealthy", "error": "graph not initialized"}
		healthy = false
	}

	m := getSystemMetrics()
	checks["system"] = gin.H{
		"status":       "healthy",
		"memory_usage": m.MemoryUsage,
		"goroutines":   m.Goroutines,
		"gc_cycles":    m.GCCycles,
		"heap_objects": m.HeapObjects,
		"stack_usage":  m.StackUsage,
	}
	response["checks"] = checks
	response["metrics"] = gin.H{"response_time_ms": time.Since(startTime).Milliseconds()}

	if !healthy {
		response["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// SystemMetrics holds system runtime metrics
type SystemMetrics struct {
	MemoryUsage string `json:"memory_usage"`
	Goroutines  int    `json:"goroutines"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
	StackUsage  string `json:"stack_usage"`
}

func getSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return SystemMetrics{
		MemoryUsage: fmt.Sprintf("%.2f MB", float64(m.Alloc)/(1024*1024)),
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    m.NumGC,
		HeapObjects: m.HeapObjects,
		StackUsage:  fmt.Sprintf("%.2f MB", float64(m.StackSys)/(1024*1024)),
	}
}
