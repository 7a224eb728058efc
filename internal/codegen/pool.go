package codegen

import "sync"

// Pool bounds how many poll chains are in flight at once. A chain spends
// nearly all of its life sleeping between polls, so workers are cheap and the
// default count is generous.
type Pool struct {
	taskQueue chan func()
	wg        sync.WaitGroup
	quit      chan struct{}
}

func NewPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 32
	}
	p := &Pool{
		taskQueue: make(chan func(), 256),
		quit:      make(chan struct{}),
	}
	for i := 0; i < maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}
			task()
		case <-p.quit:
			return
		}
	}
}

// Submit enqueues a task and returns its queue position.
func (p *Pool) Submit(task func()) int {
	p.taskQueue <- task
	return len(p.taskQueue)
}

func (p *Pool) Shutdown() {
	close(p.quit)
	p.wg.Wait()
}
