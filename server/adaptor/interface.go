package adaptor

import "github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/domain"

// Usecase is the per-session event loop the adaptor drives. The adaptor
// closes the request channel when the socket drops; the usecase guarantees
// cleanup on loop exit.
type Usecase interface {
	HandleSession(requests <-chan domain.Request, events chan<- domain.Event, sessionID string) error
}
