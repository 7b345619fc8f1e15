package vacation

import "time"

// findConflict は候補範囲 [start, end] と重なる既存申請を返します。
// 却下済みは対象外で、PENDING と APPROVED の両方が衝突扱いです。
// 重なり判定は existing.start <= end かつ existing.end >= start です。
func findConflict(existing []*Request, start, end time.Time) *Request {
	for _, req := range existing {
		if req.Status == StatusRejected {
			continue
		}
		if !req.StartDate.After(end) && !req.EndDate.Before(start) {
			return req
		}
	}
	return nil
}
