package vehicle

import (
	"testing"
	"time"
)

func availableVehicle() Vehicle {
	var days [7]bool
	for d := range days {
		days[d] = true
	}
	return Vehicle{
		IsActive:       true,
		IsVerified:     true,
		ApprovalStatus: ApprovalApproved,
		Schedule:       Schedule{Days: days, Start: "06:00", End: "22:00"},
	}
}

func TestAvailableAt(t *testing.T) {
	// Monday 10:00
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		mutate func(*Vehicle)
		want   bool
	}{
		{"fully available", func(v *Vehicle) {}, true},
		{"inactive", func(v *Vehicle) { v.IsActive = false }, false},
		{"unverified", func(v *Vehicle) { v.IsVerified = false }, false},
		{"pending approval", func(v *Vehicle) { v.ApprovalStatus = ApprovalPending }, false},
		{"rejected", func(v *Vehicle) { v.ApprovalStatus = ApprovalRejected }, false},
		{"already booked", func(v *Vehicle) { v.Booked = true }, false},
		{"under maintenance", func(v *Vehicle) { v.UnderMaintenance = true }, false},
		{"off day", func(v *Vehicle) { v.Schedule.Days[int(time.Monday)] = false }, false},
		{"before hours", func(v *Vehicle) { v.Schedule.Start = "11:00" }, false},
		{"after hours", func(v *Vehicle) { v.Schedule.End = "09:00" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := availableVehicle()
			tc.mutate(&v)
			if got := v.AvailableAt(at); got != tc.want {
				t.Errorf("AvailableAt = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScheduleCoversBoundaries(t *testing.T) {
	var days [7]bool
	days[int(time.Tuesday)] = true
	s := Schedule{Days: days, Start: "08:00", End: "18:00"}

	tue := func(h, m int) time.Time {
		return time.Date(2026, 3, 3, h, m, 0, 0, time.UTC) // a Tuesday
	}

	if !s.Covers(tue(8, 0)) {
		t.Error("start boundary should be covered")
	}
	if !s.Covers(tue(18, 0)) {
		t.Error("end boundary should be covered")
	}
	if s.Covers(tue(7, 59)) {
		t.Error("before start should not be covered")
	}
	if s.Covers(tue(18, 1)) {
		t.Error("after end should not be covered")
	}
}

func TestScheduleWithoutHours(t *testing.T) {
	var days [7]bool
	days[int(time.Friday)] = true
	s := Schedule{Days: days}

	fri := time.Date(2026, 3, 6, 23, 30, 0, 0, time.UTC)
	if !s.Covers(fri) {
		t.Error("day-only schedule should cover any hour")
	}
}
