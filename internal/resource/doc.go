// Package resource implements per-request resource governance for the
// selection loop.
//
// A Controller covers three resources:
//
//   - Memory: bytes charged for retained candidates (non-blocking, fail-fast)
//   - Workers: concurrent requests evaluated by one process
//   - Offers: pacing of candidate offers (token bucket)
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────┐
//	│                        Controller                        │
//	├──────────────────┬──────────────────┬────────────────────┤
//	│  Memory Limit    │  Worker Slots    │  Offer Pacing      │
//	│  (fail-fast)     │  (semaphore)     │  (token bucket)    │
//	├──────────────────┼──────────────────┼────────────────────┤
//	│  AcquireMemory   │  AcquireWorker   │  WaitOffer         │
//	│  ReleaseMemory   │  TryAcquire...   │  AllowOffer        │
//	│  MemoryUsage     │  ReleaseWorker   │                    │
//	└──────────────────┴──────────────────┴────────────────────┘
//
// # Accounting Tree
//
// Controllers form a tree: a request controller created with Child charges
// every byte against itself and all of its ancestors, so a process-wide
// limit and a per-request limit are enforced together:
//
//	global := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	req := global.Child(resource.Config{MemoryLimitBytes: 8 << 20})
//
//	if err := req.AcquireMemory(512); err != nil {
//	    // ErrMemoryLimitExceeded - reject the candidate
//	}
//	defer req.ReleaseMemory(512)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
