// Package monitor decodes timer status telemetry and summarises how well
// the board keeps its tick rate.
package monitor

import (
	"context"
	"errors"
	"io"

	"systimer/protocol"
)

const readChunk = 64

// Monitor accumulates status reports from a byte stream
type Monitor struct {
	fifo     *protocol.FifoBuffer
	dec      *protocol.Decoder
	onStatus func(protocol.StatusReport)

	samples []protocol.StatusReport
	errors  int
}

// New creates a monitor; onStatus, if set, sees every decoded report
func New(onStatus func(protocol.StatusReport)) *Monitor {
	m := &Monitor{
		fifo:     protocol.NewFifoBuffer(4 * protocol.MessageLengthMax),
		onStatus: onStatus,
	}
	m.dec = protocol.NewDecoder(protocol.StatusHandler(m.handleStatus, m.handleError))
	return m
}

func (m *Monitor) handleStatus(_ uint8, r protocol.StatusReport) {
	m.samples = append(m.samples, r)
	if m.onStatus != nil {
		m.onStatus(r)
	}
}

func (m *Monitor) handleError(error) {
	m.errors++
}

// Feed pushes raw bytes through the frame decoder
func (m *Monitor) Feed(data []byte) {
	for len(data) > 0 {
		n := m.fifo.Write(data)
		data = data[n:]
		m.dec.Receive(m.fifo)
		if n == 0 && m.fifo.Free() == 0 {
			// a full buffer without a frame boundary is garbage
			m.fifo.Reset()
		}
	}
}

// Run reads from r until count reports arrived (0 means no limit), the
// reader hits EOF or ctx is done
func (m *Monitor) Run(ctx context.Context, r io.Reader, count int) error {
	buf := make([]byte, readChunk)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if count > 0 && len(m.samples) >= count {
			return nil
		}

		n, err := r.Read(buf)
		if n > 0 {
			m.Feed(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Samples returns the reports decoded so far
func (m *Monitor) Samples() []protocol.StatusReport {
	return m.samples
}

// Dropped returns the number of frames discarded by the decoder plus
// frames holding unusable messages
func (m *Monitor) Dropped() int {
	return int(m.dec.Dropped) + m.errors
}
