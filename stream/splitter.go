package stream

import "github.com/ben-michell/psxdmh"

// Splitter fans a single source out to multiple independent streams. Each
// child stream buffers the samples it has not yet consumed; when a child
// runs dry the shared parent pulls exactly one sample from the source and
// appends it to every attached child, so no child ever sees a sample the
// others don't. Children created later receive only samples produced from
// that point forward.
//
// The parent owns the source and is shared by all children; a child that is
// finished with the stream should call Close to detach.
type Splitter[S psxdmh.Sample[S]] struct {
	parent *splitterParent[S]

	// Buffered samples not yet consumed by this child.
	buffer []S
}

// splitterParent feeds the source data to all child streams sharing it.
type splitterParent[S psxdmh.Sample[S]] struct {
	source   psxdmh.Module[S]
	children []*Splitter[S]
}

// NewSplitter wraps source in a splitter. Additional streams over the same
// source are created with Split.
func NewSplitter[S psxdmh.Sample[S]](source psxdmh.Module[S]) *Splitter[S] {
	parent := &splitterParent[S]{source: source}
	return parent.attach()
}

// Split creates another stream sharing the same source.
func (s *Splitter[S]) Split() *Splitter[S] { return s.parent.attach() }

// Close detaches the child from the shared parent. The source is released
// when the last child detaches.
func (s *Splitter[S]) Close() {
	if s.parent != nil {
		s.parent.detach(s)
		s.parent = nil
	}
}

// IsRunning tests whether the module can still produce output.
func (s *Splitter[S]) IsRunning() bool {
	return len(s.buffer) > 0 || (s.parent != nil && s.parent.source.IsRunning())
}

// Next produces the next sample.
func (s *Splitter[S]) Next(out *S) bool {
	if len(s.buffer) == 0 && s.parent != nil {
		s.parent.feed()
	}
	if len(s.buffer) == 0 {
		var zero S
		*out = zero
		return false
	}
	*out = s.buffer[0]
	s.buffer = s.buffer[1:]
	return true
}

func (p *splitterParent[S]) attach() *Splitter[S] {
	child := &Splitter[S]{parent: p}
	p.children = append(p.children, child)
	return child
}

func (p *splitterParent[S]) detach(child *Splitter[S]) {
	for i, c := range p.children {
		if c == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	if len(p.children) == 0 {
		p.source = nil
	}
}

// feed pulls one sample from the source and buffers it for every attached
// child. Called by a child that has exhausted its buffer.
func (p *splitterParent[S]) feed() {
	var s S
	if p.source != nil && p.source.Next(&s) {
		for _, child := range p.children {
			child.buffer = append(child.buffer, s)
		}
	}
}
