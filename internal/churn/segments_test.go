package churn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var segmentNow = time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)

func segmentDay(daysAgo int) time.Time {
	return segmentNow.AddDate(0, 0, -daysAgo)
}

func TestAtRisk(t *testing.T) {
	assert.True(t, AtRisk(Member{Status: StatusActive, RiskLevel: RiskMedium}, segmentNow))
	assert.True(t, AtRisk(Member{Status: StatusActive, RiskLevel: RiskCritical}, segmentNow))
	assert.False(t, AtRisk(Member{Status: StatusActive, RiskLevel: RiskOK}, segmentNow))
	assert.False(t, AtRisk(Member{Status: StatusInactive, RiskLevel: RiskCritical}, segmentNow))
}

func TestWinBackWindow(t *testing.T) {
	inactive := func(daysAgo int) Member {
		return Member{Status: StatusInactive, LastVisit: segmentDay(daysAgo)}
	}

	assert.False(t, WinBack(inactive(29), segmentNow))
	assert.True(t, WinBack(inactive(30), segmentNow))
	assert.True(t, WinBack(inactive(90), segmentNow))
	assert.False(t, WinBack(inactive(91), segmentNow))
	assert.False(t, WinBack(Member{Status: StatusActive, LastVisit: segmentDay(45)}, segmentNow))
	assert.False(t, WinBack(Member{Status: StatusInactive}, segmentNow), "no visit at all is cold, not win-back")
}

func TestCold(t *testing.T) {
	assert.True(t, Cold(Member{Status: StatusInactive, LastVisit: segmentDay(120)}, segmentNow))
	assert.True(t, Cold(Member{Status: StatusInactive}, segmentNow))
	assert.False(t, Cold(Member{Status: StatusInactive, LastVisit: segmentDay(60)}, segmentNow))
}

func TestNewMember(t *testing.T) {
	assert.True(t, NewMember(Member{JoinDate: segmentDay(10)}, segmentNow))
	assert.False(t, NewMember(Member{JoinDate: segmentDay(31)}, segmentNow))
	assert.False(t, NewMember(Member{}, segmentNow), "never attended is not new")
}

func TestRecovery(t *testing.T) {
	assert.True(t, Recovery(Member{Status: StatusCoolingOff, ClassesThisWeek: 1, RiskLevel: RiskHigh}, segmentNow))
	assert.True(t, Recovery(Member{Status: StatusActive, ClassesThisWeek: 2, RiskLevel: RiskCritical}, segmentNow))
	assert.False(t, Recovery(Member{Status: StatusActive, ClassesThisWeek: 0, RiskLevel: RiskHigh}, segmentNow))
	assert.False(t, Recovery(Member{Status: StatusActive, ClassesThisWeek: 2, RiskLevel: RiskMedium}, segmentNow))
	assert.False(t, Recovery(Member{Status: StatusInactive, ClassesThisWeek: 2, RiskLevel: RiskCritical}, segmentNow))
}
