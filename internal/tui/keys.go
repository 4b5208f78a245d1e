package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		a.quitting = true
		return a, tea.Quit
	}

	if a.modal == modalForm && a.form != nil {
		return a.handleFormKey(m)
	}
	if a.modal == modalConfirm && a.confirm != nil {
		return a.handleConfirmKey(m)
	}

	switch a.step {
	case stepMobile:
		return a.handleMobileKey(m)
	case stepOTP:
		return a.handleOTPKey(m)
	}
	return a.handleMainKey(m)
}

// ---------------------------------------------------------------------------
// Login steps
// ---------------------------------------------------------------------------

func (a *App) handleMobileKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEnter:
		mobile := strings.TrimSpace(a.mobileInput)
		if err := validateMobile(mobile); err != nil {
			a.setError(err)
			return a, nil
		}
		a.setStatus("sending OTP...")
		return a, a.requestOtpCmd(mobile)
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.mobileInput) > 0 {
			a.mobileInput = a.mobileInput[:len(a.mobileInput)-1]
		}
	case tea.KeyEsc:
		a.quitting = true
		return a, tea.Quit
	case tea.KeyRunes:
		a.mobileInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleOTPKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.step = stepMobile
		a.otpInput = ""
		a.setStatus("")
		return a, nil
	case tea.KeyEnter:
		otp := strings.TrimSpace(a.otpInput)
		if err := validateOTP(otp); err != nil {
			a.setError(err)
			return a, nil
		}
		a.setStatus("verifying...")
		return a, a.verifyOtpCmd(a.otpRequestID, a.mobile, otp)
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.otpInput) > 0 {
			a.otpInput = a.otpInput[:len(a.otpInput)-1]
		}
	case tea.KeyRunes:
		a.otpInput += string(m.Runes)
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// Authenticated views
// ---------------------------------------------------------------------------

func (a *App) handleMainKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q":
		a.quitting = true
		return a, tea.Quit
	case "d":
		a.view = viewDashboard
		return a, a.loadDashboard()
	case "a":
		a.view = viewApartments
		return a, a.loadApartments()
	case "u":
		if a.selectedApartmentID == 0 {
			a.setStatus("select an apartment first")
			return a, nil
		}
		a.view = viewUnits
	case "o":
		if a.selectedUnitID == 0 {
			a.setStatus("select a unit first")
			return a, nil
		}
		a.view = viewOccupants
	case "i":
		if a.selectedUnitID == 0 {
			a.setStatus("select a unit first")
			return a, nil
		}
		a.view = viewInvoices
	case "s":
		a.view = viewSettings
	case "L":
		return a, a.forceLogout("signed out")
	case "r":
		return a, a.refreshCurrent()
	case "up", "k":
		a.moveCursor(-1)
	case "down", "j":
		a.moveCursor(1)
	case "enter":
		switch a.view {
		case viewApartments:
			return a, a.selectApartment()
		case viewUnits:
			return a, a.selectUnit()
		}
	case "n":
		return a, a.openCreateForm()
	case "e":
		return a, a.openEditForm()
	case "x":
		return a, a.openDeleteConfirm()
	case "p":
		if a.view == viewInvoices && len(a.invoices) > 0 {
			inv := a.invoices[a.invCursor]
			a.setStatus("marking paid...")
			return a, a.markInvoiceCmd(inv.ID, true)
		}
	case "P":
		if a.view == viewInvoices && len(a.invoices) > 0 {
			inv := a.invoices[a.invCursor]
			a.setStatus("marking unpaid...")
			return a, a.markInvoiceCmd(inv.ID, false)
		}
	case "t":
		if a.view == viewSettings {
			a.cfg.Log.Trace = !a.cfg.Log.Trace
			return a, a.saveSettingsCmd()
		}
	case "c":
		if a.view == viewSettings {
			a.cfg.Session.Persist = !a.cfg.Session.Persist
			return a, a.saveSettingsCmd()
		}
	}
	return a, nil
}

func (a *App) refreshCurrent() tea.Cmd {
	switch a.view {
	case viewDashboard:
		return a.loadDashboard()
	case viewApartments:
		return a.loadApartments()
	case viewUnits:
		if a.selectedApartmentID != 0 {
			return a.loadUnits(a.selectedApartmentID)
		}
	case viewOccupants:
		if a.selectedUnitID != 0 {
			return a.loadOccupants(a.selectedUnitID)
		}
	case viewInvoices:
		if a.selectedUnitID != 0 {
			return a.loadInvoices(a.selectedUnitID)
		}
	}
	return nil
}

func (a *App) moveCursor(delta int) {
	move := func(cur *int, n int) {
		next := *cur + delta
		if next >= 0 && next < n {
			*cur = next
		}
	}
	switch a.view {
	case viewApartments:
		move(&a.aptCursor, len(a.apartments))
	case viewUnits:
		move(&a.unitCursor, len(a.units))
	case viewOccupants:
		move(&a.occCursor, len(a.occupants))
	case viewInvoices:
		move(&a.invCursor, len(a.invoices))
	}
}
