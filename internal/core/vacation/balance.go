package vacation

import (
	"time"

	"github.com/tempohq/leave-engine/internal/core/calendar"
)

// clampToYear は範囲を対象年の [1 月 1 日, 12 月 31 日] に切り詰めます。
// 対象年と交差しない場合は ok=false を返します。
func clampToYear(start, end time.Time, year int) (time.Time, time.Time, bool) {
	yearStart := calendar.Date(year, time.January, 1)
	yearEnd := calendar.Date(year, time.December, 31)

	if start.Before(yearStart) {
		start = yearStart
	}
	if end.After(yearEnd) {
		end = yearEnd
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// approvedDaysInYear は承認済み範囲のうち対象年に含まれる暦日数を合計します。
// 年を跨ぐ申請は対象年内の日数のみ数えます。
func approvedDaysInYear(ranges []DateRange, year int) int {
	total := 0
	for _, r := range ranges {
		start, end, ok := clampToYear(calendar.Normalize(r.Start), calendar.Normalize(r.End), year)
		if !ok {
			continue
		}
		total += calendar.CalendarDays(start, end)
	}
	return total
}

// pendingWorkingDaysInYear は処理待ち申請のうち対象年に掛かる営業日数を
// 合計します。残高表示の参考値であり、残高そのものには影響しません。
func pendingWorkingDaysInYear(requests []*Request, year int) int {
	total := 0
	for _, req := range requests {
		if req.Status != StatusPending {
			continue
		}
		if req.StartDate.Year() != year && req.EndDate.Year() != year {
			continue
		}
		start, end, ok := clampToYear(req.StartDate, req.EndDate, year)
		if !ok {
			continue
		}
		total += calendar.CountWorkingDays(start, end)
	}
	return total
}
