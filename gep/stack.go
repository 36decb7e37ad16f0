package gep

import (
	"fmt"
)

type staticFloatStack struct {
	stack  []float64
	length int
}

func newStaticFloatStack(length int) *staticFloatStack {
	return &staticFloatStack{
		stack:  make([]float64, length),
		length: 0,
	}
}

func (s *staticFloatStack) Push(v float64) error {
	if s.length >= len(s.stack) {
		return fmt.Errorf("stack has reached maximum capacity (%d)", len(s.stack))
	}

	s.stack[s.length] = v
	s.length++
	return nil
}

// PopN removes the top n values, returning them most recently pushed first.
// The returned slice aliases the stack and is only valid until the next Push.
func (s *staticFloatStack) PopN(n int) ([]float64, error) {
	if n > s.length {
		return nil, fmt.Errorf("stack holds %d values, %d requested", s.length, n)
	}

	s.length -= n
	popped := s.stack[s.length : s.length+n]
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		popped[i], popped[j] = popped[j], popped[i]
	}
	return popped, nil
}

func (s *staticFloatStack) Pop() (float64, error) {
	if s.length == 0 {
		return 0, fmt.Errorf("stack is empty")
	}

	s.length--
	return s.stack[s.length], nil
}

func (s *staticFloatStack) Size() int {
	return s.length
}

func (s *staticFloatStack) Reset() {
	s.length = 0
}
