package runner

import "sync/atomic"

// progressRelay delivers completion ticks to a callback on its own goroutine.
// Workers only bump a counter, so a slow callback can delay the display but
// never a request.
type progressRelay struct {
	fn      func()
	pending atomic.Int64
	signal  chan struct{}
	done    chan struct{}
}

func newProgressRelay(fn func()) *progressRelay {
	if fn == nil {
		return nil
	}
	p := &progressRelay{
		fn:     fn,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *progressRelay) tick() {
	if p == nil {
		return
	}
	p.pending.Add(1)
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func (p *progressRelay) loop() {
	defer close(p.done)
	for range p.signal {
		p.drain()
	}
	p.drain()
}

func (p *progressRelay) drain() {
	for n := p.pending.Swap(0); n > 0; n-- {
		p.notify()
	}
}

// notify runs the callback once. A panicking callback loses that tick only.
func (p *progressRelay) notify() {
	defer func() { _ = recover() }()
	p.fn()
}

// close delivers any outstanding ticks and stops the relay. No tick may
// follow close.
func (p *progressRelay) close() {
	if p == nil {
		return
	}
	close(p.signal)
	<-p.done
}
