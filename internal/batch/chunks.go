// Package batch splits index ranges across goroutines.
package batch

import (
	"runtime"
	"sync"
)

// Workers returns n when positive, otherwise the number of CPUs.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	if cpu := runtime.NumCPU(); cpu > 0 {
		return cpu
	}
	return 1
}

// Chunks calls fn concurrently over contiguous [start, end) ranges covering
// 0..total and returns when all calls are done. fn must only write to its
// own range of any shared output slice.
func Chunks(total, workers int, fn func(start, end int)) {
	if total <= 0 {
		return
	}
	workers = Workers(workers)
	if workers > total {
		workers = total
	}
	chunkSize := (total + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if start >= total {
			break
		}
		if end > total {
			end = total
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// Ranges splits 0..total into consecutive [start, end) windows of at most
// size elements, used for model batches.
func Ranges(total, size int) [][2]int {
	if total <= 0 {
		return nil
	}
	if size <= 0 {
		size = total
	}
	out := make([][2]int, 0, (total+size-1)/size)
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
