// broadcast/broadcast.go
package broadcast

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/wfunc/dungeonfloor/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToSubscribers(msgID uint16, data []byte) error
	SendTo(sessionID string, msgID uint16, data []byte) error
}

// 基于会话的广播器
type SessionBroadcaster struct {
	sessionManager *session.Manager
}

func NewSessionBroadcaster(sessionManager *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{
		sessionManager: sessionManager,
	}
}

// BroadcastToSubscribers 发给全部订阅者，单个失败不影响其他会话
func (b *SessionBroadcaster) BroadcastToSubscribers(msgID uint16, data []byte) error {
	var errs error
	for _, s := range b.sessionManager.Subscribers() {
		if err := s.Send(msgID, data); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", s.GetID(), err))
		}
	}
	return errs
}

func (b *SessionBroadcaster) SendTo(sessionID string, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return ErrSessionNotFound
	}
	return s.Send(msgID, data)
}
