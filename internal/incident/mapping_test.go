package incident

import (
	"reflect"
	"testing"
	"time"

	"github.com/opsline/opsline/internal/provider"
)

func TestMapRecordsDeterministic(t *testing.T) {
	reference := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	reports := []provider.Report{
		{ID: 1, Title: "first report", Body: "short"},
		{ID: 3, Title: "third report", Body: "short"},
	}

	first := MapRecords(reports, nil, reference)
	second := MapRecords(reports, nil, reference)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 records per pass, got %d and %d", len(first), len(second))
	}
	for index := range first {
		if !reflect.DeepEqual(first[index], second[index]) {
			t.Errorf("record %d differs between passes: %+v vs %+v", index, first[index], second[index])
		}
	}
}

func TestMapRecordDerivations(t *testing.T) {
	reference := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		rid      int
		status   Status
		priority Priority
		severity string
	}{
		{1, StatusOpen, PriorityMedium, "3"},
		{3, StatusResolved, PriorityHigh, "2"},
		{5, StatusInProgress, PriorityLow, "4"},
		{7, StatusOnHold, PriorityMedium, "3"},
		{10, StatusInProgress, PriorityCritical, "1"},
	}
	for _, c := range cases {
		records := MapRecords([]provider.Report{{ID: c.rid, Title: "t", Body: "b"}}, nil, reference)
		if len(records) != 1 {
			t.Fatalf("rid %d: expected one record, got %d", c.rid, len(records))
		}
		record := records[0]
		if record.Status != c.status {
			t.Errorf("rid %d: status = %q, want %q", c.rid, record.Status, c.status)
		}
		if record.Priority != c.priority {
			t.Errorf("rid %d: priority = %q, want %q", c.rid, record.Priority, c.priority)
		}
		if record.Severity != c.severity {
			t.Errorf("rid %d: severity = %q, want %q", c.rid, record.Severity, c.severity)
		}
		if !record.CreatedAt.Before(reference) {
			t.Errorf("rid %d: created_at %v is not before the reference time", c.rid, record.CreatedAt)
		}
	}
}

func TestMapRecordResolvedTimestamp(t *testing.T) {
	reference := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	records := MapRecords([]provider.Report{
		{ID: 3, Title: "resolved one", Body: "b"},
		{ID: 4, Title: "open one", Body: "b"},
	}, nil, reference)

	resolved, open := records[0], records[1]
	if resolved.ResolvedAt == nil {
		t.Fatal("resolved record should carry a resolution timestamp")
	}
	if !resolved.ResolvedAt.After(resolved.CreatedAt) {
		t.Errorf("resolved_at %v should follow created_at %v", resolved.ResolvedAt, resolved.CreatedAt)
	}
	if open.ResolvedAt != nil {
		t.Errorf("open record should not carry a resolution timestamp, got %v", open.ResolvedAt)
	}
}

func TestDeriveAssignee(t *testing.T) {
	reporters := []provider.Reporter{{ID: 1, Name: "Ada Lovelace"}, {ID: 2, Name: "Grace Hopper"}}

	if got := deriveAssignee(1, StatusOpen, reporters); got != Unassigned {
		t.Errorf("odd open record should be unassigned, got %q", got)
	}
	if got := deriveAssignee(2, StatusOpen, reporters); got != "Grace Hopper" {
		t.Errorf("even open record should pick a reporter, got %q", got)
	}
	if got := deriveAssignee(3, StatusResolved, nil); got != "Duty Operator" {
		t.Errorf("missing reporters should fall back to the duty operator, got %q", got)
	}
	if got := deriveAssignee(2, StatusOpen, []provider.Reporter{{ID: 5, Name: "  "}}); got != "Duty Operator" {
		t.Errorf("blank reporter name should fall back to the duty operator, got %q", got)
	}
}

func TestDeriveDescription(t *testing.T) {
	if got := deriveDescription("lorem reprehenderit dolor"); got != phraseTable[0].phrase {
		t.Errorf("keyword body should map through the phrase table, got %q", got)
	}
	if got := deriveDescription("tiny"); got != shortBodyTier {
		t.Errorf("short body tier mismatch: %q", got)
	}
	long := make([]byte, 200)
	for index := range long {
		long[index] = 'x'
	}
	if got := deriveDescription(string(long)); got != longBodyTier {
		t.Errorf("long body tier mismatch: %q", got)
	}
}

func TestCapitalize(t *testing.T) {
	if got := capitalize("database down"); got != "Database down" {
		t.Errorf("capitalize = %q", got)
	}
	if got := capitalize("   "); got != "Untitled report" {
		t.Errorf("blank title should become the placeholder, got %q", got)
	}
}
