package corporate

import (
	"context"
	"sort"
)

// Notifications returns notifications for one account, or all of them
// sorted by sent time descending when accountID is zero.
func (s *Service) Notifications(accountID int64) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accountID != 0 {
		var out []Notification
		for _, n := range s.notifications {
			if n.AccountID == accountID {
				out = append(out, n)
			}
		}
		return out
	}
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SentAt.After(out[j].SentAt)
	})
	return out
}

// CreateNotification appends an informational record to the log.
func (s *Service) CreateNotification(ctx context.Context, req CreateNotificationRequest) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.createNotificationLocked(ctx, req)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	out := *n
	return &out, nil
}

// createNotificationLocked appends without persisting; mutations that
// emit notifications as a side effect persist once at the end.
func (s *Service) createNotificationLocked(_ context.Context, req CreateNotificationRequest) *Notification {
	recipients := req.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	n := Notification{
		ID:             s.allocNotificationID(),
		AccountID:      req.AccountID,
		Type:           req.Type,
		Title:          req.Title,
		Message:        req.Message,
		Severity:       req.Severity,
		Recipients:     recipients,
		SentAt:         s.clock(),
		DeliveryStatus: "sent",
		ReadBy:         []ReadReceipt{},
		ActionRequired: req.ActionRequired,
		ActionURL:      req.ActionURL,
		ExpiresAt:      req.ExpiresAt,
	}
	s.notifications = append(s.notifications, n)
	return &s.notifications[len(s.notifications)-1]
}

// MarkNotificationAsRead appends a read receipt for the reader unless
// one already exists. Idempotent per (notification, reader) pair.
func (s *Service) MarkNotificationAsRead(ctx context.Context, notificationID int64, readerEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		n := &s.notifications[i]
		if n.ID != notificationID {
			continue
		}
		for _, r := range n.ReadBy {
			if r.Email == readerEmail {
				return nil
			}
		}
		n.ReadBy = append(n.ReadBy, ReadReceipt{Email: readerEmail, ReadAt: s.clock()})
		return s.persist(ctx)
	}
	return ErrNotificationNotFound
}
