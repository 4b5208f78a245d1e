package tui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/404PageFinder/OurNest-App/internal/api"
)

// Local validation. A failing check is surfaced inline and never reaches the
// network.

var (
	// Regional mobile format: 10 digits, leading 6-9.
	mobileRe = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	otpRe    = regexp.MustCompile(`^[0-9]{4}$`)
	dateRe   = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

func validateMobile(mobile string) error {
	if !mobileRe.MatchString(strings.TrimSpace(mobile)) {
		return fmt.Errorf("enter a valid 10-digit mobile number starting 6-9")
	}
	return nil
}

func validateOTP(otp string) error {
	if !otpRe.MatchString(strings.TrimSpace(otp)) {
		return fmt.Errorf("OTP must be a 4-digit numeric code")
	}
	return nil
}

func validateApartment(name, city, totalUnits string) (api.NewApartment, error) {
	name = strings.TrimSpace(name)
	city = strings.TrimSpace(city)
	if len(name) < 3 {
		return api.NewApartment{}, fmt.Errorf("apartment name must be at least 3 characters")
	}
	if len(city) < 2 {
		return api.NewApartment{}, fmt.Errorf("city must be at least 2 characters")
	}
	n, err := strconv.Atoi(strings.TrimSpace(totalUnits))
	if err != nil || n <= 0 {
		return api.NewApartment{}, fmt.Errorf("total units must be a positive number")
	}
	return api.NewApartment{Name: name, City: city, TotalUnits: n}, nil
}

func validateUnit(name, bhk, status string) (api.NewUnit, error) {
	name = strings.TrimSpace(name)
	bhk = strings.ToUpper(strings.TrimSpace(bhk))
	status = strings.ToLower(strings.TrimSpace(status))
	if name == "" {
		return api.NewUnit{}, fmt.Errorf("unit name is required")
	}
	if bhk == "" {
		return api.NewUnit{}, fmt.Errorf("BHK type is required, e.g. 2BHK")
	}
	if status != "vacant" && status != "occupied" {
		return api.NewUnit{}, fmt.Errorf("status must be vacant or occupied")
	}
	return api.NewUnit{Name: name, BHKType: bhk, Status: status}, nil
}

func validateOccupant(name, phone, role string) (api.NewOccupant, error) {
	name = strings.TrimSpace(name)
	role = strings.ToLower(strings.TrimSpace(role))
	if len(name) < 2 {
		return api.NewOccupant{}, fmt.Errorf("occupant name must be at least 2 characters")
	}
	if err := validateMobile(phone); err != nil {
		return api.NewOccupant{}, fmt.Errorf("phone: %w", err)
	}
	if role != "owner" && role != "tenant" {
		return api.NewOccupant{}, fmt.Errorf("role must be owner or tenant")
	}
	return api.NewOccupant{Name: name, Phone: strings.TrimSpace(phone), Role: role, IsActive: true}, nil
}

func validateInvoice(period, amount, dueDate string) (api.NewInvoice, error) {
	period = strings.TrimSpace(period)
	dueDate = strings.TrimSpace(dueDate)
	if period == "" {
		return api.NewInvoice{}, fmt.Errorf("period label is required, e.g. Jan 2025")
	}
	amt, err := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
	if err != nil || amt <= 0 {
		return api.NewInvoice{}, fmt.Errorf("amount must be a positive number")
	}
	if !dateRe.MatchString(dueDate) {
		return api.NewInvoice{}, fmt.Errorf("due date must be YYYY-MM-DD")
	}
	return api.NewInvoice{PeriodLabel: period, Amount: amt, DueDate: dueDate}, nil
}
