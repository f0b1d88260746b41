package record

import "context"

// Stream delivers raw audio fragments from an acquired input device. The
// channel closes when the stream is closed.
type Stream interface {
	Chunks() <-chan []byte
	Close() error
}

// Device acquires an audio input. Real implementations sit outside this
// core (platform capture layers); the recorder only depends on this
// capability so its state machine is testable with a fake.
type Device interface {
	Acquire(ctx context.Context) (Stream, error)
}
