package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// session is one websocket connection and the sends waiting on it
type session struct {
	conn *websocket.Conn
	done chan struct{}
	once sync.Once

	wmu sync.Mutex

	pmu     sync.Mutex
	pending map[string]chan frame
}

func newSession(conn *websocket.Conn) *session {
	return &session{conn: conn, done: make(chan struct{}), pending: map[string]chan frame{}}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = s.conn.Close()
	})
}

func (s *session) write(ctx context.Context, typ int, b []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	dl := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(dl) {
		dl = d
	}
	_ = s.conn.SetWriteDeadline(dl)
	return s.conn.WriteMessage(typ, b)
}

func (s *session) expect(id string) <-chan frame {
	ch := make(chan frame, 1)
	s.pmu.Lock()
	s.pending[id] = ch
	s.pmu.Unlock()
	return ch
}

func (s *session) forget(id string) {
	s.pmu.Lock()
	delete(s.pending, id)
	s.pmu.Unlock()
}

func (s *session) resolve(f frame) {
	s.pmu.Lock()
	ch, ok := s.pending[f.ID]
	delete(s.pending, f.ID)
	s.pmu.Unlock()
	if ok {
		ch <- f
	}
}
