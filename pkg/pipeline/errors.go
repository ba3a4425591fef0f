package pipeline

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	ErrInputMustBeSet    = errors.New("input must be set")
)

type errorChans struct {
	mu   sync.Mutex
	list []*errorChan
}

func (ec *errorChans) add(errChan *errorChan) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.list = append(ec.list, errChan)
}

func (ec *errorChans) all() []*errorChan {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	out := make([]*errorChan, len(ec.list))
	copy(out, ec.list)
	return out
}

// errorChan is the error channel of a step, named after the step.
type errorChan struct {
	c    <-chan error
	name string
}

func newErrorChan(name string, c <-chan error) *errorChan {
	return &errorChan{
		c:    c,
		name: name,
	}
}

// mergeErrors fans the error channels of every step into one channel, which is
// closed once all the step channels are closed.
func mergeErrors(cs ...*errorChan) <-chan error {
	var wg sync.WaitGroup
	// one slot per step, so that no step blocks when the reader returns early.
	out := make(chan error, len(cs))

	wg.Add(len(cs))
	for _, c := range cs {
		go func(c *errorChan) {
			defer wg.Done()
			if c.c == nil {
				return
			}
			for err := range c.c {
				out <- errors.Wrap(err, c.name)
			}
		}(c)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
