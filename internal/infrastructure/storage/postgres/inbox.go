package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
)

// InboxRepo stores per-user notifications. It implements notification.Store.
type InboxRepo struct {
	*Table[notification.Notification]
}

var _ notification.Store = (*InboxRepo)(nil)

// NewInboxRepo creates a new inbox repository.
func NewInboxRepo(txManager *TxManager) *InboxRepo {
	return &InboxRepo{Table: NewTable[notification.Notification](txManager, "notifications", "notification")}
}

func (r *InboxRepo) InsertNotifications(ctx context.Context, rows ...notification.Notification) error {
	return r.InsertAll(ctx, rows)
}

// ListNotifications returns the newest rows of userID first.
func (r *InboxRepo) ListNotifications(ctx context.Context, userID id.ID, unreadOnly bool, limit int) ([]notification.Notification, error) {
	return r.All(ctx, r.listQuery(userID, unreadOnly, limit))
}

func (r *InboxRepo) listQuery(userID id.ID, unreadOnly bool, limit int) squirrel.SelectBuilder {
	q := r.Select().Where(squirrel.Eq{"user_id": userID})
	if unreadOnly {
		q = q.Where(squirrel.Eq{"is_read": false})
	}
	return Paginate(q.OrderBy("created_at DESC", "seq DESC"), limit, 0)
}

// MarkNotificationsRead flags unread rows of userID. nil ids marks every row.
func (r *InboxRepo) MarkNotificationsRead(ctx context.Context, userID id.ID, ids []id.ID) (int64, error) {
	return r.Exec(ctx, r.markQuery(userID, ids))
}

func (r *InboxRepo) markQuery(userID id.ID, ids []id.ID) squirrel.UpdateBuilder {
	q := r.Builder().Update(r.Name()).
		Set("is_read", true).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"is_read": false})
	if ids != nil {
		q = q.Where(squirrel.Eq{"id": ids})
	}
	return q
}
