package signal

import "fmt"

// RequestKind is what a client asks the controller to do.
type RequestKind int

// Request kinds. RequestKindInit is used by the controller itself for the
// power-up sequence.
const (
	RequestKindNone RequestKind = iota
	RequestKindRead
	RequestKindWrite
	RequestKindRefresh
	RequestKindInit
)

func (k RequestKind) String() string {
	switch k {
	case RequestKindNone:
		return "none"
	case RequestKindRead:
		return "read"
	case RequestKindWrite:
		return "write"
	case RequestKindRefresh:
		return "refresh"
	case RequestKindInit:
		return "init"
	default:
		return fmt.Sprintf("RequestKind(%d)", int(k))
	}
}

// A Request is one accepted client request. Write data is captured when the
// request is accepted.
type Request struct {
	ID      string
	Kind    RequestKind
	Address uint32
	Data    uint32
}
