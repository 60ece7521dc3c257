package report

import (
	"time"

	"github.com/phrazzld/workboard-api/internal/domain"
)

// DateLabelLayout is the layout of ReportSnapshot.DateLabel.
const DateLabelLayout = "2006-01-02"

// Aggregate summarizes tasks as of the day containing asOf, in asOf's
// location. It reads no clock of its own, so equal inputs always produce
// equal snapshots.
//
// Every task is counted under exactly one status. A task is overdue when it is
// not done and due before that day. A task is due today when its due date
// falls on that day, whatever its status. Pending P1/P2 counts exclude done
// tasks.
func Aggregate(tasks []*domain.Task, asOf time.Time) domain.ReportSnapshot {
	day := truncateDay(asOf, asOf.Location())
	snap := domain.ReportSnapshot{
		Date:      day,
		DateLabel: day.Format(DateLabelLayout),
		ByStatus:  make(map[domain.Status]int, len(domain.Statuses)),
	}

	for _, t := range tasks {
		if t == nil {
			continue
		}
		snap.Total++
		snap.ByStatus[t.Status]++

		done := t.Status == domain.StatusDone
		if t.DueDate != nil {
			due := truncateDay(*t.DueDate, day.Location())
			switch {
			case due.Equal(day):
				snap.DueTodayTasks++
			case due.Before(day) && !done:
				snap.OverdueTasks++
			}
		}
		if !done {
			switch t.Priority {
			case domain.PriorityP1:
				snap.P1Tasks++
			case domain.PriorityP2:
				snap.P2Tasks++
			}
		}
	}

	snap.TodoTasks = snap.ByStatus[domain.StatusTodo]
	snap.InProgressTasks = snap.ByStatus[domain.StatusInProgress]
	snap.InReviewTasks = snap.ByStatus[domain.StatusInReview]
	snap.DoneTasks = snap.ByStatus[domain.StatusDone]
	return snap
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
