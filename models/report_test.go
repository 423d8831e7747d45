package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestReportIsAlert(t *testing.T) {
	cases := []struct {
		status   ReportStatus
		priority ReportPriority
		want     bool
	}{
		{StatusOpen, PriorityCritical, true},
		{StatusOpen, PriorityHigh, true},
		{StatusInProgress, PriorityCritical, true},
		{StatusInProgress, PriorityHigh, true},
		{StatusOpen, PriorityMedium, false},
		{StatusOpen, PriorityLow, false},
		{StatusResolved, PriorityCritical, false},
		{StatusResolved, PriorityHigh, false},
		{StatusResolved, PriorityLow, false},
	}

	for _, tc := range cases {
		r := Report{Status: tc.status, Priority: tc.priority}
		assert.Equal(t, tc.want, r.IsAlert(), "status=%s priority=%s", tc.status, tc.priority)
	}
}

// AlertFilter and IsAlert must classify every status and priority combination
// the same way, or the alerts endpoint and the digest would drift apart.
func TestAlertFilterMatchesIsAlert(t *testing.T) {
	filter := AlertFilter()
	statuses := filter["status"].(bson.M)["$in"].([]ReportStatus)
	priorities := filter["priority"].(bson.M)["$in"].([]ReportPriority)

	inFilter := func(r Report) bool {
		okStatus := false
		for _, s := range statuses {
			if r.Status == s {
				okStatus = true
			}
		}
		okPriority := false
		for _, p := range priorities {
			if r.Priority == p {
				okPriority = true
			}
		}
		return okStatus && okPriority
	}

	for _, status := range []ReportStatus{StatusOpen, StatusInProgress, StatusResolved} {
		for _, priority := range []ReportPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical} {
			r := Report{Status: status, Priority: priority}
			assert.Equal(t, r.IsAlert(), inFilter(r), "status=%s priority=%s", status, priority)
		}
	}
}
