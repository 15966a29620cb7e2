package api_router

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/haierkeys/simple-note-service/pkg/writequeue"

	"github.com/gin-gonic/gin"
)

var (
	publishOnce  sync.Once
	currentQueue atomic.Pointer[writequeue.Manager]
)

// PublishWriteQueue exposes the write queue metrics of m under the "writequeue" expvar
// 配置重载后再次调用会替换为新的 Manager
func PublishWriteQueue(m *writequeue.Manager) {
	currentQueue.Store(m)
	publishOnce.Do(func() {
		expvar.Publish("writequeue", expvar.Func(func() interface{} {
			if wq := currentQueue.Load(); wq != nil {
				return wq.GetMetrics()
			}
			return nil
		}))
	})
}

// Expvar 导出系统运行时指标
// 将 expvar 导出的 JSON 数据写入响应
func Expvar(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	first := true
	report := func(key string, value interface{}) {
		if !first {
			fmt.Fprintf(c.Writer, ",\n")
		}
		first = false
		if str, ok := value.(string); ok {
			fmt.Fprintf(c.Writer, "%q: %q", key, str)
		} else {
			fmt.Fprintf(c.Writer, "%q: %v", key, value)
		}
	}

	fmt.Fprintf(c.Writer, "{\n")
	expvar.Do(func(kv expvar.KeyValue) {
		report(kv.Key, kv.Value)
	})
	fmt.Fprintf(c.Writer, "\n}\n")
}
