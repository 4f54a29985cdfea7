// Package worker provides a fixed-size goroutine pool for CPU-bound batch
// work such as dataset generation.
package worker

import (
	"log"
	"sync"
)

type Pool struct {
	tasks       chan func()
	wg          sync.WaitGroup
	workerCount int
	started     bool
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		tasks:       make(chan func(), workerCount*2),
		workerCount: workerCount,
	}
}

func (p *Pool) Start() {
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}(i)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

// Submit queues one task. Blocks when all workers are busy and the queue is
// full.
func (p *Pool) Submit(task func()) {
	p.tasks <- task
}

// Wait closes the queue and blocks until every submitted task has finished.
// The pool cannot be reused afterwards.
func (p *Pool) Wait() {
	close(p.tasks)
	p.wg.Wait()
}
