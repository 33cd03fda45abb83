package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/example/room-reservations/internal/scheduler"
)

var bookingValidator = validator.New(validator.WithRequiredStructEnabled())

// bookingFieldNames maps BookingInput fields to the names clients submit.
var bookingFieldNames = map[string]string{
	"EventName":    "eventName",
	"RoomIDs":      "rooms",
	"StartDate":    "startDate",
	"EndDate":      "endDate",
	"StartTime":    "startTime",
	"EndTime":      "endTime",
	"Participants": "participants",
	"Department":   "department",
	"Notes":        "notes",
}

func normalizeBookingInput(input BookingInput) BookingInput {
	out := input
	out.EventName = strings.TrimSpace(input.EventName)
	out.StartDate = strings.TrimSpace(input.StartDate)
	out.EndDate = strings.TrimSpace(input.EndDate)
	out.StartTime = strings.TrimSpace(input.StartTime)
	out.EndTime = strings.TrimSpace(input.EndTime)
	out.Department = strings.TrimSpace(input.Department)
	out.Notes = strings.TrimSpace(input.Notes)
	out.RoomIDs = nil
	for _, id := range input.RoomIDs {
		out.RoomIDs = append(out.RoomIDs, strings.TrimSpace(id))
	}
	return out
}

// validateBookingInput checks field formats and the range ordering rules.
// Input must already be normalized.
func validateBookingInput(input BookingInput) *ValidationError {
	vErr := &ValidationError{}

	if err := bookingValidator.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			vErr.add("input", err.Error())
			return vErr
		}
		for _, fe := range fieldErrs {
			field := bookingFieldName(fe.StructField())
			if strings.Contains(fe.StructField(), "[") {
				vErr.add(field, "rooms must not contain blank ids")
				continue
			}
			vErr.add(field, bookingFieldMessage(field, fe))
		}
	}

	if _, ok := vErr.FieldErrors["startTime"]; !ok {
		if _, err := scheduler.ParseClock(input.StartTime); err != nil {
			vErr.add("startTime", "startTime must use format HH:MM")
		}
	}
	if _, ok := vErr.FieldErrors["endTime"]; !ok {
		if _, err := scheduler.ParseClock(input.EndTime); err != nil {
			vErr.add("endTime", "endTime must use format HH:MM")
		}
	}

	_, startDateBad := vErr.FieldErrors["startDate"]
	_, endDateBad := vErr.FieldErrors["endDate"]
	if !startDateBad && !endDateBad && input.StartDate > input.EndDate {
		vErr.add("endDate", "endDate must not be before startDate")
	}
	_, startTimeBad := vErr.FieldErrors["startTime"]
	_, endTimeBad := vErr.FieldErrors["endTime"]
	if !startTimeBad && !endTimeBad && input.StartTime >= input.EndTime {
		vErr.add("endTime", "endTime must be after startTime")
	}

	return vErr
}

func bookingFieldName(structField string) string {
	if i := strings.IndexByte(structField, '['); i >= 0 {
		structField = structField[:i]
	}
	if name, ok := bookingFieldNames[structField]; ok {
		return name
	}
	return structField
}

func bookingFieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if field == "rooms" {
			return "at least one room is required"
		}
		return field + " is required"
	case "min":
		if field == "rooms" {
			return "at least one room is required"
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if field == "rooms" {
			return fmt.Sprintf("at most %s rooms may be booked at once", fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "unique":
		return "rooms must not contain duplicates"
	case "datetime":
		if fe.Param() == scheduler.ClockLayout {
			return field + " must use format HH:MM"
		}
		return field + " must use format YYYY-MM-DD"
	case "gte", "lte":
		return field + " must be between 0 and 10000"
	}
	return field + " is invalid"
}

func validateRoomName(name string) *ValidationError {
	vErr := &ValidationError{}
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		vErr.add("name", "name is required")
	case len(trimmed) > 100:
		vErr.add("name", "name must be at most 100 characters")
	}
	return vErr
}
