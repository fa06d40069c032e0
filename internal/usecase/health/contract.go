package health

import "context"

// SchemaCounter reports how many record types are registered.
type SchemaCounter interface {
	Len() int
}

// Pinger checks search executor availability.
type Pinger interface {
	Ping(ctx context.Context) error
}
