package memory

import (
	"context"
	"sort"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
)

type messageRecord struct {
	msg domain.DirectMessage
}

type messageRepository struct {
	s *store
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.DirectMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rec := range r.s.messages {
		if rec.msg.ID == msg.ID {
			return repository.ErrDuplicate
		}
	}

	msg.Seq = int64(len(r.s.messages) + 1)
	r.s.messages = append(r.s.messages, &messageRecord{msg: *msg})
	return nil
}

func (r *messageRepository) ListBetween(ctx context.Context, a, b string, limit int) ([]*domain.DirectMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	msgs := r.between(a, b)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (r *messageRepository) LatestBetween(ctx context.Context, a, b string) (*domain.DirectMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	msgs := r.between(a, b)
	if len(msgs) == 0 {
		return nil, repository.ErrNotFound
	}
	return msgs[len(msgs)-1], nil
}

func (r *messageRepository) MarkRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var changed int64
	for _, rec := range r.s.messages {
		if rec.msg.SenderID == senderID && rec.msg.ReceiverID == receiverID && !rec.msg.Read {
			rec.msg.Read = true
			changed++
		}
	}
	return changed, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	return r.count(func(m *domain.DirectMessage) bool {
		return m.ReceiverID == receiverID && !m.Read
	}), nil
}

func (r *messageRepository) CountUnreadFrom(ctx context.Context, senderID, receiverID string) (int64, error) {
	return r.count(func(m *domain.DirectMessage) bool {
		return m.SenderID == senderID && m.ReceiverID == receiverID && !m.Read
	}), nil
}

// between copies the thread of a and b ordered by created_at, then by
// insertion. Callers hold the lock.
func (r *messageRepository) between(a, b string) []*domain.DirectMessage {
	msgs := make([]*domain.DirectMessage, 0)
	for _, rec := range r.s.messages {
		m := rec.msg
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			msgs = append(msgs, &m)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs
}

func (r *messageRepository) count(match func(*domain.DirectMessage) bool) int64 {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, rec := range r.s.messages {
		if match(&rec.msg) {
			n++
		}
	}
	return n
}
