package pipeline

import (
	"container/heap"
	"runtime"
	"sync"

	"github.com/shale-sh/shale/value"
)

type indexed struct {
	idx int
	val value.Value
}

// ParEach applies fn to every item of in on a bounded worker pool and
// returns the results as a new stream built against in's Signals.
//
// threads caps the pool size; zero or negative means runtime.NumCPU.
// Results are yielded in completion order unless keepOrder is set, in
// which case they are buffered in an index heap and released as the
// contiguous prefix completes; with keepOrder the worst case buffers
// the full input when item 0 finishes last.
//
// An error value returned by fn cancels the remaining work: in-flight
// results are discarded and the error value is the stream's last item,
// yielded as soon as it is received even in keep-order mode. Workers
// are joined before the stream reports exhaustion.
func ParEach(in *ValueStream, threads int, keepOrder bool, fn func(int, value.Value) value.Value) *ValueStream {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	feed := make(chan indexed, threads)
	results := make(chan indexed, threads)
	stop := make(chan struct{})
	feederDone := make(chan struct{})
	var stopOnce sync.Once
	cancel := func() {
		stopOnce.Do(func() { close(stop) })
	}

	go func() {
		defer close(feederDone)
		defer close(feed)
		for idx := 0; ; idx++ {
			v, ok := in.Next()
			if !ok {
				return
			}
			select {
			case feed <- indexed{idx: idx, val: v}:
			case <-stop:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range feed {
				out := fn(item.idx, item.val)
				select {
				case results <- indexed{idx: item.idx, val: out}:
				case <-stop:
					return
				}
				if out.IsError() {
					cancel()
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var failed, joined bool
	join := func() {
		if joined {
			return
		}
		for range results {
		}
		joined = true
	}

	var next func() (value.Value, bool)
	if keepOrder {
		pending := &indexHeap{}
		nextIdx := 0
		drained := false
		next = func() (value.Value, bool) {
			if failed {
				join()
				return value.Value{}, false
			}
			for {
				if pending.Len() > 0 && (*pending)[0].idx == nextIdx {
					item := heap.Pop(pending).(indexed)
					nextIdx++
					return item.val, true
				}
				if drained {
					return value.Value{}, false
				}
				item, ok := <-results
				if !ok {
					drained = true
					continue
				}
				if item.val.IsError() {
					failed = true
					cancel()
					return item.val, true
				}
				heap.Push(pending, item)
			}
		}
	} else {
		next = func() (value.Value, bool) {
			if failed {
				join()
				return value.Value{}, false
			}
			item, ok := <-results
			if !ok {
				return value.Value{}, false
			}
			if item.val.IsError() {
				failed = true
				cancel()
			}
			return item.val, true
		}
	}

	// The feeder is the input's only consumer; wait it out before
	// closing so the close never races a pull in flight.
	opts := []Option{WithOnClose(func() error {
		cancel()
		join()
		<-feederDone
		return in.Close()
	})}
	if n, ok := in.KnownLength(); ok {
		opts = append(opts, WithKnownLength(n))
	}
	return New(in.signals, in.tag, next, opts...)
}

// indexHeap is a min-heap of results ordered by input index.
type indexHeap []indexed

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i].idx < h[j].idx }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *indexHeap) Push(x any) {
	*h = append(*h, x.(indexed))
}

func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
