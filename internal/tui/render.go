package tui

import "fmt"

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var body string
	switch a.step {
	case stepMobile:
		body = a.renderMobileStep()
	case stepOTP:
		body = a.renderOTPStep()
	default:
		switch a.view {
		case viewApartments:
			body = a.renderApartments()
		case viewUnits:
			body = a.renderUnits()
		case viewOccupants:
			body = a.renderOccupants()
		case viewInvoices:
			body = a.renderInvoices()
		case viewSettings:
			body = a.renderSettings()
		default:
			body = a.renderDashboard()
		}
	}

	if a.modal == modalForm && a.form != nil {
		body += "\n\n" + a.renderForm()
	}
	if a.modal == modalConfirm && a.confirm != nil {
		body += "\n\n" + modalStyle.Render(titleStyle.Render("Confirm")+"\n"+a.confirm.prompt+"\n"+hintStyle.Render("[y] Yes  [n] No"))
	}
	return body + a.renderStatusLine()
}

func (a *App) renderStatusLine() string {
	out := "\n"
	if a.pending > 0 {
		out += a.spin.View() + " "
	}
	if !a.healthy {
		out += errorStyle.Render("backend unreachable") + "  "
	}
	if a.status != "" {
		if a.statusErr {
			out += errorStyle.Render(a.status)
		} else {
			out += statusStyle.Render(a.status)
		}
	}
	return out
}

func (a *App) renderMobileStep() string {
	title := titleStyle.Render("OurNest — Sign in")
	return fmt.Sprintf("%s\nMobile number: %s▌\n%s", title, a.mobileInput,
		hintStyle.Render("[enter] Send OTP  [esc] Quit"))
}

func (a *App) renderOTPStep() string {
	title := titleStyle.Render("OurNest — Enter OTP")
	body := fmt.Sprintf("Code sent to %s\nOTP: %s▌", a.mobile, a.otpInput)
	return fmt.Sprintf("%s\n%s\n%s", title, body,
		hintStyle.Render("[enter] Verify  [esc] Change number"))
}

func (a *App) renderDashboard() string {
	title := titleStyle.Render("Dashboard")
	if a.dashboard == nil {
		return title + "\n(loading summary...)\n" + a.renderNavHints()
	}
	cur := a.cfg.UI.CurrencySymbol
	out := title + "\n"
	out += fmt.Sprintf("Due:  %s\nPaid: %s\n",
		dueStyle.Render(fmt.Sprintf("%s%d", cur, a.dashboard.TotalDue)),
		paidStyle.Render(fmt.Sprintf("%s%d", cur, a.dashboard.TotalPaid)))
	if len(a.dashboard.Apartments) > 0 {
		out += headingStyle.Render("Per apartment") + "\n"
		for _, b := range a.dashboard.Apartments {
			out += fmt.Sprintf("  %-24s due %s%-8d paid %s%d\n", b.Name, cur, b.TotalDue, cur, b.TotalPaid)
		}
	}
	return out + a.renderNavHints()
}

func (a *App) renderApartments() string {
	title := titleStyle.Render("Apartments")
	out := title + "\n"
	if len(a.apartments) == 0 {
		out += "(no apartments yet)\n"
	}
	for i, apt := range a.apartments {
		line := fmt.Sprintf("%-24s %-16s %d units", apt.Name, apt.City, apt.TotalUnits)
		out += cursorLine(i == a.aptCursor, apt.ID == a.selectedApartmentID, line)
	}
	out += hintStyle.Render("[enter] Units  [n] New  [e] Edit  [r] Refresh") + "\n"
	return out + a.renderNavHints()
}

func (a *App) renderUnits() string {
	apt := a.apartmentName(a.selectedApartmentID)
	title := titleStyle.Render("Units — " + apt)
	out := title + "\n"
	if len(a.units) == 0 {
		out += "(no units yet)\n"
	}
	for i, u := range a.units {
		line := fmt.Sprintf("%-10s %-6s %s", u.Name, u.BHKType, u.Status)
		out += cursorLine(i == a.unitCursor, u.ID == a.selectedUnitID, line)
	}
	out += hintStyle.Render("[enter] Occupants  [n] New  [e] Edit  [x] Delete  [r] Refresh") + "\n"
	return out + a.renderNavHints()
}

func (a *App) renderOccupants() string {
	title := titleStyle.Render("Occupants — unit " + a.unitName(a.selectedUnitID))
	out := title + "\n"
	if len(a.occupants) == 0 {
		out += "(no occupants yet)\n"
	}
	for i, occ := range a.occupants {
		active := ""
		if !occ.IsActive {
			active = "  (inactive)"
		}
		line := fmt.Sprintf("%-24s %-12s %s%s", occ.Name, occ.Phone, occ.Role, active)
		out += cursorLine(i == a.occCursor, false, line)
	}
	out += hintStyle.Render("[n] New  [e] Edit  [x] Delete  [r] Refresh") + "\n"
	return out + a.renderNavHints()
}

func (a *App) renderInvoices() string {
	title := titleStyle.Render("Invoices — unit " + a.unitName(a.selectedUnitID))
	cur := a.cfg.UI.CurrencySymbol
	out := title + "\n"
	if len(a.invoices) == 0 {
		out += "(no invoices yet)\n"
	}
	for i, inv := range a.invoices {
		status := dueStyle.Render(inv.Status)
		if inv.Paid() {
			status = paidStyle.Render(inv.Status)
		}
		line := fmt.Sprintf("%-10s %s%-8d due %-12s %s", inv.PeriodLabel, cur, inv.Amount, inv.DueDate, status)
		out += cursorLine(i == a.invCursor, false, line)
	}
	out += hintStyle.Render("[n] New  [e] Edit  [x] Delete  [p] Mark paid  [P] Mark unpaid  [r] Refresh") + "\n"
	return out + a.renderNavHints()
}

func (a *App) renderSettings() string {
	title := titleStyle.Render("Settings")
	out := title + "\n"
	out += fmt.Sprintf("Backend:          %s\n", a.cfg.Server.BaseURL)
	out += fmt.Sprintf("Persist session:  %t\n", a.cfg.Session.Persist)
	out += fmt.Sprintf("Trace log:        %t (%s)\n", a.cfg.Log.Trace, a.cfg.Log.Path)
	out += hintStyle.Render("[c] Toggle persist  [t] Toggle trace  [L] Sign out") + "\n"
	return out + a.renderNavHints()
}

func (a *App) renderForm() string {
	f := a.form
	out := titleStyle.Render(f.title) + "\n"
	for i, label := range f.labels {
		value := f.values[i]
		field := fmt.Sprintf("%-26s %s", label+":", value)
		if i == f.cursor {
			field = activeField.Render(field + "▌")
		} else {
			field = fieldStyle.Render(field)
		}
		out += field + "\n"
	}
	if f.errText != "" {
		out += errorStyle.Render(f.errText) + "\n"
	}
	out += hintStyle.Render("[tab] Next field  [enter] Save  [esc] Cancel")
	return modalStyle.Render(out)
}

func (a *App) renderNavHints() string {
	return hintStyle.Render("[d] Dashboard  [a] Apartments  [u] Units  [o] Occupants  [i] Invoices  [s] Settings  [q] Quit")
}

func cursorLine(atCursor, selected bool, line string) string {
	marker := "  "
	if atCursor {
		marker = "▶ "
		line = selectedStyle.Render(line)
	}
	if selected {
		line += "  *"
	}
	return marker + line + "\n"
}

func (a *App) apartmentName(id int) string {
	for _, apt := range a.apartments {
		if apt.ID == id {
			return apt.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}

func (a *App) unitName(id int) string {
	for _, u := range a.units {
		if u.ID == id {
			return u.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}
