package audit

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/phrazzld/workboard-api/internal/domain"
)

// Diff compares the fields listed in fields between old and next and returns
// the ones whose canonical values differ, in fields order.
//
// Only fields present in next are compared: a field the caller did not supply
// is unchanged, not cleared. A field missing from old compares as null.
// Label sets compare without regard to order or duplicates, and times compare
// as UTC instants.
func Diff(old, next domain.Snapshot, fields []domain.Field) domain.Changes {
	changes := domain.Changes{}
	for _, f := range fields {
		nv, supplied := next[f]
		if !supplied {
			continue
		}
		from := canonical(old[f])
		to := canonical(nv)
		if equal(from, to) {
			continue
		}
		changes = append(changes, domain.Change{Field: string(f), From: from, To: to})
	}
	return changes
}

// canonical converts a snapshot value into the plain JSON-friendly form that is
// both compared and recorded.
func canonical(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case domain.Status:
		return string(x)
	case domain.Priority:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Format(time.RFC3339)
	case []string:
		return labelSet(x)
	default:
		return v
	}
}

func labelSet(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func equal(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		// Values that cannot be encoded are treated as changed.
		return false
	}
	return bytes.Equal(ja, jb)
}
