package dto

import (
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// InboxQuery lists the caller's notifications.
type InboxQuery struct {
	UnreadOnly bool `form:"unreadOnly"`
	Limit      int  `form:"limit" binding:"omitempty,min=1,max=500"`
}

// MarkReadRequest marks notifications read. An empty list marks all.
type MarkReadRequest struct {
	IDs []string `json:"ids" binding:"omitempty,dive,uuid"`
}

// ToIDs converts the ids. nil means every unread notification.
func (r *MarkReadRequest) ToIDs() ([]id.ID, error) {
	if len(r.IDs) == 0 {
		return nil, nil
	}
	out := make([]id.ID, 0, len(r.IDs))
	for _, raw := range r.IDs {
		v, err := ParseID("ids", raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// MarkReadResponse reports how many notifications changed.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// HistoryQuery limits the audit history.
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// SequenceResponse is the current value of a document number sequence.
type SequenceResponse struct {
	Prefix string `json:"prefix"`
	Value  int64  `json:"value"`
}
