package task

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

func TestParseImportFile(t *testing.T) {
	data := `
tasks:
  - name: Prepare the quarterly review
    priority: High
    status: ToBeScheduled
    dueDate: "2026-10-16"
    estimatedMinutes: 120
    complexity: Complex
    goal: Career
  - name: Renew passport
    category: admin
`

	entries, err := parseImportFile(strings.NewReader(data))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 2, len(entries); e != g {
		t.Fatalf("len(entries): expected %v, got %v\n%s", e, g, spew.Sdump(entries))
	}

	first := entries[0]

	if e, g := "Career", first.GoalName; e != g {
		t.Errorf("first.GoalName: expected '%v', got '%v'", e, g)
	}

	if first.Fields.DueDate == nil || *first.Fields.DueDate != (civil.Date{Year: 2026, Month: time.October, Day: 16}) {
		t.Errorf("first.Fields.DueDate: unexpected value %v", first.Fields.DueDate)
	}

	if first.Fields.Status == nil || *first.Fields.Status != model.TaskStatusToBeScheduled {
		t.Errorf("first.Fields.Status: unexpected value %v", first.Fields.Status)
	}

	if first.Fields.EstimatedMinutes == nil || *first.Fields.EstimatedMinutes != 120 {
		t.Errorf("first.Fields.EstimatedMinutes: unexpected value %v", first.Fields.EstimatedMinutes)
	}

	second := entries[1]

	if second.Fields.Priority != nil {
		t.Errorf("second.Fields.Priority: expected nil, got %v", *second.Fields.Priority)
	}

	if second.Fields.Category == nil || *second.Fields.Category != "admin" {
		t.Errorf("second.Fields.Category: unexpected value %v", second.Fields.Category)
	}
}

func TestParseImportFileErrors(t *testing.T) {
	testCases := []string{
		"tasks:\n  - priority: High\n",
		"tasks:\n  - name: Foo\n    status: Someday\n",
		"tasks:\n  - name: Foo\n    dueDate: tomorrow\n",
		"tasks:\n  - name: Foo\n    owner: me\n",
	}

	for i, data := range testCases {
		if _, err := parseImportFile(strings.NewReader(data)); err == nil {
			t.Errorf("[%d] expected an error", i)
		}
	}
}
