package jobs

import (
	"sync"

	"github.com/noterag/noterag/internal/domain"
)

// MemoryQueue is an unbounded in-process FIFO of index jobs.
type MemoryQueue struct {
	mu   sync.Mutex
	jobs []*domain.IndexJob
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// Enqueue appends a job. Invalid jobs are dropped.
func (q *MemoryQueue) Enqueue(job *domain.IndexJob) {
	if domain.ValidateIndexJob(job) != nil {
		return
	}
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
}

// Drain removes and returns up to max jobs, oldest first. max <= 0 drains everything.
func (q *MemoryQueue) Drain(max int) []*domain.IndexJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.jobs)
	if max > 0 && max < n {
		n = max
	}
	out := make([]*domain.IndexJob, n)
	copy(out, q.jobs[:n])
	q.jobs = q.jobs[n:]
	return out
}

func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
