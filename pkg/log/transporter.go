package log

// Transporter is a log output destination.
type Transporter interface {
	// Name identifies the transporter in delivery failures.
	Name() string

	// Write delivers one entry.
	Write(entry Entry) error

	// Close releases the destination. Write is not called afterwards.
	Close() error
}
