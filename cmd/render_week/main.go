package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/signbridge/internal/controller/weekimage"
	"github.com/Freeeeeet/signbridge/internal/model"
)

// Рисует пример недельного календаря переводчика в week.png
func main() {
	now := time.Now()
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for monday.Weekday() != time.Monday {
		monday = monday.AddDate(0, 0, -1)
	}

	day := func(offset, hour int) time.Time {
		return monday.AddDate(0, 0, offset).Add(time.Duration(hour) * time.Hour)
	}

	free := []model.CalendarEvent{
		{Title: "Свободно", DayID: 1, Start: day(0, 9), End: day(0, 17)},
		{Title: "Свободно", DayID: 3, Start: day(2, 9), End: day(2, 17)},
		{Title: "Свободно", DayID: 5, Start: day(4, 10), End: day(4, 14)},
	}

	hospital := "Royal North Shore"
	busy := []*model.Appointment{
		{ID: 1, StartTime: day(0, 10), EndTime: day(0, 11), Status: model.AppointmentStatusApproved, HospitalName: &hospital},
		{ID: 2, StartTime: day(2, 14), EndTime: day(2, 15), Status: model.AppointmentStatusPending},
		{ID: 3, StartTime: day(4, 11), EndTime: day(4, 12), Status: model.AppointmentStatusCancelled},
	}

	png, err := weekimage.Render(monday, weekimage.Blocks(free, busy), now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("week.png", png, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("week.png written")
}
