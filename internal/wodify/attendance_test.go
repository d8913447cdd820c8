package wodify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-06-05 is a Thursday; the current week started Monday 2025-06-02.
var attendanceNow = time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)

func attendanceRow(id, status string, daysAgo int) string {
	date := attendanceNow.AddDate(0, 0, -daysAgo)
	return fmt.Sprintf("%s,%s,%s\n", id, status, date.Format("2006-01-02"))
}

func TestAggregateAttendanceWindows(t *testing.T) {
	csv := "Client ID,Status,Start Datetime\n" +
		attendanceRow("C-1", "Attended", 0) + // today: week, 7, 30
		attendanceRow("C-1", "Signed In", 3) + // Monday: week, 7, 30
		attendanceRow("C-1", "Attended", 5) + // last week: 7, 30
		attendanceRow("C-1", "Attended", 20) + // 30 only
		attendanceRow("C-1", "Attended", 45) + // previous window
		attendanceRow("C-1", "Attended", 200) // outside all windows

	stats := AggregateAttendance(csv, attendanceNow)
	require.Contains(t, stats, "C-1")
	stat := stats["C-1"]

	assert.Equal(t, 6, stat.TotalAttended)
	assert.Equal(t, 3, stat.Last7)
	assert.Equal(t, 4, stat.Last30)
	assert.Equal(t, 1, stat.Prev30to60)
	assert.Equal(t, 2, stat.ThisWeek)
	assert.Equal(t, 6, stat.TotalBookings)
	assert.Equal(t, attendanceNow.AddDate(0, 0, -200), stat.FirstSeen)
	assert.Equal(t, Noon(attendanceNow), stat.LastSeen)
}

func TestAggregateAttendanceThisWeekIsMondayAligned(t *testing.T) {
	// 4 days ago is Sunday: inside the rolling 7-day window but outside
	// the Monday-aligned week.
	csv := "Client ID,Status,Start Datetime\n" + attendanceRow("C-1", "Attended", 4)

	stat := AggregateAttendance(csv, attendanceNow)["C-1"]
	require.NotNil(t, stat)
	assert.Equal(t, 1, stat.Last7)
	assert.Equal(t, 0, stat.ThisWeek)
}

func TestAggregateAttendanceBookingCounters(t *testing.T) {
	csv := "Client ID,Status,Start Datetime\n" +
		attendanceRow("C-1", "Attended", 1) +
		attendanceRow("C-1", "Cancelled", 2) +
		attendanceRow("C-1", "Late Cancel", 2) +
		attendanceRow("C-1", "No Show", 3) +
		attendanceRow("C-1", "Reserved", 0)

	stat := AggregateAttendance(csv, attendanceNow)["C-1"]
	require.NotNil(t, stat)

	assert.Equal(t, 5, stat.TotalBookings, "every row is a booking")
	assert.Equal(t, 3, stat.Cancelled)
	assert.Equal(t, 1, stat.TotalAttended, "only attended rows advance visits")
	assert.Equal(t, 1, stat.Last30)
}

func TestAggregateAttendanceUnparseableDateDegrades(t *testing.T) {
	csv := "Client ID,Status,Start Datetime\n" +
		"C-1,Attended,garbage\n" +
		attendanceRow("C-1", "Attended", 1)

	stat := AggregateAttendance(csv, attendanceNow)["C-1"]
	require.NotNil(t, stat)

	assert.Equal(t, 2, stat.TotalBookings)
	assert.Equal(t, 1, stat.TotalAttended)
}

func TestAggregateAttendanceFutureRows(t *testing.T) {
	csv := "Client ID,Status,Start Datetime\n" + attendanceRow("C-1", "Attended", -3)

	stat := AggregateAttendance(csv, attendanceNow)["C-1"]
	require.NotNil(t, stat)

	assert.Equal(t, 1, stat.TotalAttended)
	assert.Equal(t, 0, stat.Last7)
	assert.Equal(t, 0, stat.Last30)
	assert.Equal(t, 0, stat.ThisWeek)
	assert.Equal(t, attendanceNow.AddDate(0, 0, 3), stat.LastSeen)
}
