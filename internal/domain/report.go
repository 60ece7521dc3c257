package domain

import (
	"encoding/binary"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ReportSnapshot is an aggregate view of every task as of one day.
// It is built fresh for each report and never mutated afterwards.
type ReportSnapshot struct {
	Date            time.Time      `json:"date"`
	DateLabel       string         `json:"date_label"`
	Total           int            `json:"total_tasks"`
	ByStatus        map[Status]int `json:"by_status"`
	TodoTasks       int            `json:"todo_tasks"`
	InProgressTasks int            `json:"in_progress_tasks"`
	InReviewTasks   int            `json:"in_review_tasks"`
	DoneTasks       int            `json:"done_tasks"`
	OverdueTasks    int            `json:"overdue_tasks"`
	DueTodayTasks   int            `json:"due_today_tasks"`
	P1Tasks         int            `json:"p1_tasks"`
	P2Tasks         int            `json:"p2_tasks"`
}

// Fingerprint is a stable 64-bit digest of the snapshot's contents.
// Identical task sets and dates produce identical fingerprints.
func (r ReportSnapshot) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(r.DateLabel)

	statuses := make([]string, 0, len(r.ByStatus))
	for s := range r.ByStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		_, _ = d.WriteString(s)
		writeInt(d, r.ByStatus[Status(s)])
	}

	for _, n := range []int{r.Total, r.OverdueTasks, r.DueTodayTasks, r.P1Tasks, r.P2Tasks} {
		writeInt(d, n)
	}
	return d.Sum64()
}

func writeInt(d *xxhash.Digest, n int) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	_, _ = d.Write(b[:])
}
