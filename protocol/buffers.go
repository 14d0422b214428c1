package protocol

// InputBuffer is a window onto received bytes that a Decoder consumes from
type InputBuffer interface {
	// Data returns the unread bytes, contiguous
	Data() []byte

	// Available returns len(Data())
	Available() int

	// Pop discards n bytes from the front
	Pop(n int)
}

// OutputBuffer collects an encoded frame. Update and DataSince let the
// encoder patch the length byte and checksum what it wrote.
type OutputBuffer interface {
	Output(data []byte)
	CurPosition() int
	Update(pos int, val byte)
	DataSince(pos int) []byte
}

// SliceInputBuffer reads from a fixed byte slice
type SliceInputBuffer struct {
	data []byte
}

func NewSliceInputBuffer(data []byte) *SliceInputBuffer {
	return &SliceInputBuffer{data: data}
}

func (s *SliceInputBuffer) Data() []byte   { return s.data }
func (s *SliceInputBuffer) Available() int { return len(s.data) }

func (s *SliceInputBuffer) Pop(n int) {
	s.data = s.data[min(n, len(s.data)):]
}

// ScratchOutput holds one frame. Bytes past MessageMax are dropped; the
// encoder rejects such frames by length before they are sent.
type ScratchOutput struct {
	buf [MessageMax]byte
	pos int
}

func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

func (s *ScratchOutput) Output(data []byte) {
	s.pos += copy(s.buf[s.pos:], data)
}

func (s *ScratchOutput) CurPosition() int {
	return s.pos
}

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos >= 0 && pos < s.pos {
		s.buf[pos] = val
	}
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos < 0 || pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

// Result returns the bytes written since the last Reset
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

func (s *ScratchOutput) Reset() {
	s.pos = 0
}

// FifoBuffer queues received serial bytes for the Decoder. Unread bytes
// are kept contiguous by moving them to the front when the tail runs out
// of room, so Data never copies.
type FifoBuffer struct {
	buf  []byte
	head int // first unread byte
	tail int // one past the last unread byte
}

// NewFifoBuffer creates a buffer holding up to capacity unread bytes
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Write queues as much of data as fits and returns the count queued
func (f *FifoBuffer) Write(data []byte) int {
	if len(data) > len(f.buf)-f.tail && f.head > 0 {
		f.compact()
	}
	n := copy(f.buf[f.tail:], data)
	f.tail += n
	return n
}

func (f *FifoBuffer) compact() {
	f.tail = copy(f.buf, f.buf[f.head:f.tail])
	f.head = 0
}

func (f *FifoBuffer) Data() []byte {
	return f.buf[f.head:f.tail]
}

func (f *FifoBuffer) Available() int {
	return f.tail - f.head
}

// Free returns how many more bytes Write can accept
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.Available()
}

func (f *FifoBuffer) Pop(n int) {
	f.head += min(n, f.Available())
	if f.head == f.tail {
		f.Reset()
	}
}

// Reset discards everything unread
func (f *FifoBuffer) Reset() {
	f.head = 0
	f.tail = 0
}
