package dashboard

import (
	"fmt"
	"strings"
)

const (
	kindJobs          = "jobs"
	kindJob           = "job"
	kindSummary       = "dashboard:summary"
	kindContacts      = "contacts"
	kindNotifications = "notifications"

	// allLocations 不带 location 过滤时的键段，normalizeLocation 拒绝该值作为输入
	allLocations = "*"
)

// Key 用冒号拼接缓存键，如 Key("jobs", 1, 10, "guilford") => "jobs:1:10:guilford"
func Key(segments ...any) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, ":")
}

func locationSegment(location string) string {
	if location == "" {
		return allLocations
	}
	return location
}

func JobsKey(q PageQuery) string {
	return Key(kindJobs, q.Page, q.PageSize, locationSegment(q.Location))
}

func JobKey(id int64) string {
	return Key(kindJob, id)
}

func SummaryKey(period Period, location string) string {
	return Key(kindSummary, period, locationSegment(location))
}

func ContactsKey(q PageQuery) string {
	return Key(kindContacts, q.Page, q.PageSize, locationSegment(q.Location))
}

func NotificationsKey(location string) string {
	return Key(kindNotifications, locationSegment(location))
}
