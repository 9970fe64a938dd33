package core

import (
	"math/rand"
	"runtime"
)

// DispatchQueue partitions queued tasks across a bounded number of worker
// goroutines. Tasks are tagged with their insertion sequence number and the
// results are re-sorted by it, so the output order matches the insertion
// order no matter how the chunks were scheduled.
type DispatchQueue[T any] struct {
	workerLimit int
	pending     []taggedTask[T]
	nextTask    int
}

type taggedTask[T any] struct {
	seq  int
	task T
}

// NewDispatchQueue creates a queue running at most workerLimit workers;
// workerLimit <= 0 selects the logical CPU count
func NewDispatchQueue[T any](workerLimit int) *DispatchQueue[T] {
	if workerLimit <= 0 {
		workerLimit = runtime.NumCPU()
	}
	return &DispatchQueue[T]{workerLimit: workerLimit}
}

// AddTask queues a task for the next ConsumeTasks call
func (q *DispatchQueue[T]) AddTask(task T) {
	q.pending = append(q.pending, taggedTask[T]{seq: q.nextTask, task: task})
	q.nextTask++
}

// Len returns the number of pending tasks
func (q *DispatchQueue[T]) Len() int {
	return len(q.pending)
}

// ConsumeTasks applies fn to every pending task and returns the results in
// insertion order, then clears the queue. Tasks are shuffled before being
// split into contiguous chunks so hot regions spread across workers. fn
// receives the task's sequence number so callers can derive a per-task RNG
// stream; seeding from the sequence number keeps output independent of the
// worker count. A panicking task contributes its zero value instead of
// aborting the batch.
func ConsumeTasks[T, R any](q *DispatchQueue[T], fn func(seq int, task T) R) []R {
	local := q.pending
	q.pending = nil
	if len(local) == 0 {
		return nil
	}

	rand.Shuffle(len(local), func(i, j int) {
		local[i], local[j] = local[j], local[i]
	})

	chunkSize := (len(local) + q.workerLimit - 1) / q.workerLimit
	type taggedResult struct {
		seq    int
		result R
	}

	var channels []chan []taggedResult
	for start := 0; start < len(local); start += chunkSize {
		chunk := local[start:min(start+chunkSize, len(local))]
		results := make(chan []taggedResult, 1)
		channels = append(channels, results)
		go func(chunk []taggedTask[T]) {
			output := make([]taggedResult, 0, len(chunk))
			for _, entry := range chunk {
				output = append(output, taggedResult{seq: entry.seq, result: runTask(fn, entry)})
			}
			results <- output
		}(chunk)
	}

	// Sequence numbers keep counting across batches; this batch starts at base
	base := q.nextTask - len(local)
	ordered := make([]R, len(local))
	for _, results := range channels {
		for _, entry := range <-results {
			ordered[entry.seq-base] = entry.result
		}
	}
	return ordered
}

// runTask isolates worker panics: a failing task records a zero result
// rather than killing the batch
func runTask[T, R any](fn func(seq int, task T) R, entry taggedTask[T]) (result R) {
	defer func() {
		if recover() != nil {
			var zero R
			result = zero
		}
	}()
	return fn(entry.seq, entry.task)
}
