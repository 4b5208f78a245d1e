package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

// form is a modal editor for one record. editID 0 means create.
type form struct {
	entity  entityKind
	title   string
	editID  int
	labels  []string
	values  []string
	cursor  int
	errText string
}

// confirmAction is a pending destructive operation awaiting y/n.
type confirmAction struct {
	prompt string
	run    func() tea.Cmd
}

func (a *App) openCreateForm() tea.Cmd {
	switch a.view {
	case viewApartments:
		a.form = &form{
			entity: entityApartment,
			title:  "New apartment",
			labels: []string{"Name", "City", "Total units"},
			values: make([]string, 3),
		}
	case viewUnits:
		a.form = &form{
			entity: entityUnit,
			title:  "New unit",
			labels: []string{"Name", "BHK type", "Status (vacant/occupied)"},
			values: []string{"", "", "vacant"},
		}
	case viewOccupants:
		a.form = &form{
			entity: entityOccupant,
			title:  "New occupant",
			labels: []string{"Name", "Phone", "Role (owner/tenant)"},
			values: []string{"", "", "tenant"},
		}
	case viewInvoices:
		a.form = &form{
			entity: entityInvoice,
			title:  "New invoice",
			labels: []string{"Period label", "Amount", "Due date (YYYY-MM-DD)"},
			values: make([]string, 3),
		}
	default:
		return nil
	}
	a.modal = modalForm
	return nil
}

func (a *App) openEditForm() tea.Cmd {
	switch a.view {
	case viewApartments:
		if len(a.apartments) == 0 {
			a.setStatus("no apartments to edit")
			return nil
		}
		apt := a.apartments[a.aptCursor]
		a.form = &form{
			entity: entityApartment,
			title:  "Edit apartment",
			editID: apt.ID,
			labels: []string{"Name", "City", "Total units"},
			values: []string{apt.Name, apt.City, strconv.Itoa(apt.TotalUnits)},
		}
	case viewUnits:
		if len(a.units) == 0 {
			a.setStatus("no units to edit")
			return nil
		}
		u := a.units[a.unitCursor]
		a.form = &form{
			entity: entityUnit,
			title:  "Edit unit",
			editID: u.ID,
			labels: []string{"Name", "BHK type", "Status (vacant/occupied)"},
			values: []string{u.Name, u.BHKType, u.Status},
		}
	case viewOccupants:
		if len(a.occupants) == 0 {
			a.setStatus("no occupants to edit")
			return nil
		}
		occ := a.occupants[a.occCursor]
		a.form = &form{
			entity: entityOccupant,
			title:  "Edit occupant",
			editID: occ.ID,
			labels: []string{"Name", "Phone", "Role (owner/tenant)"},
			values: []string{occ.Name, occ.Phone, occ.Role},
		}
	case viewInvoices:
		if len(a.invoices) == 0 {
			a.setStatus("no invoices to edit")
			return nil
		}
		inv := a.invoices[a.invCursor]
		a.form = &form{
			entity: entityInvoice,
			title:  "Edit invoice",
			editID: inv.ID,
			labels: []string{"Period label", "Amount", "Due date (YYYY-MM-DD)"},
			values: []string{inv.PeriodLabel, strconv.FormatInt(inv.Amount, 10), inv.DueDate},
		}
	default:
		return nil
	}
	a.modal = modalForm
	return nil
}

func (a *App) openDeleteConfirm() tea.Cmd {
	switch a.view {
	case viewUnits:
		if len(a.units) == 0 {
			return nil
		}
		u := a.units[a.unitCursor]
		aptID := a.selectedApartmentID
		a.confirm = &confirmAction{
			prompt: fmt.Sprintf("Delete unit %s? Its occupants and invoices go with it.", u.Name),
			run:    func() tea.Cmd { return a.deleteUnitCmd(aptID, u.ID) },
		}
	case viewOccupants:
		if len(a.occupants) == 0 {
			return nil
		}
		occ := a.occupants[a.occCursor]
		unitID := a.selectedUnitID
		a.confirm = &confirmAction{
			prompt: fmt.Sprintf("Delete occupant %s?", occ.Name),
			run:    func() tea.Cmd { return a.deleteOccupantCmd(unitID, occ.ID) },
		}
	case viewInvoices:
		if len(a.invoices) == 0 {
			return nil
		}
		inv := a.invoices[a.invCursor]
		unitID := a.selectedUnitID
		a.confirm = &confirmAction{
			prompt: fmt.Sprintf("Delete invoice %s (%d)?", inv.PeriodLabel, inv.Amount),
			run:    func() tea.Cmd { return a.deleteInvoiceCmd(unitID, inv.ID) },
		}
	default:
		return nil
	}
	a.modal = modalConfirm
	return nil
}

func (a *App) handleConfirmKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "y", "Y":
		run := a.confirm.run
		a.confirm = nil
		a.modal = modalNone
		return a, run()
	case "n", "N", "esc":
		a.confirm = nil
		a.modal = modalNone
	}
	return a, nil
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.form
	switch m.Type {
	case tea.KeyEsc:
		a.form = nil
		a.modal = modalNone
		return a, nil
	case tea.KeyTab, tea.KeyDown:
		if f.cursor < len(f.values)-1 {
			f.cursor++
		} else {
			f.cursor = 0
		}
	case tea.KeyShiftTab, tea.KeyUp:
		if f.cursor > 0 {
			f.cursor--
		} else {
			f.cursor = len(f.values) - 1
		}
	case tea.KeyEnter:
		return a, a.submitForm()
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		v := f.values[f.cursor]
		if len(v) > 0 {
			f.values[f.cursor] = v[:len(v)-1]
		}
	case tea.KeySpace:
		f.values[f.cursor] += " "
	case tea.KeyRunes:
		f.values[f.cursor] += string(m.Runes)
	}
	return a, nil
}

// submitForm validates locally and dispatches the create/update command. A
// validation failure stays inline; no request is made.
func (a *App) submitForm() tea.Cmd {
	f := a.form
	switch f.entity {
	case entityApartment:
		in, err := validateApartment(f.values[0], f.values[1], f.values[2])
		if err != nil {
			f.errText = err.Error()
			return nil
		}
		a.setStatus("saving...")
		if f.editID != 0 {
			return a.updateApartmentCmd(f.editID, in)
		}
		return a.createApartmentCmd(in)
	case entityUnit:
		in, err := validateUnit(f.values[0], f.values[1], f.values[2])
		if err != nil {
			f.errText = err.Error()
			return nil
		}
		a.setStatus("saving...")
		if f.editID != 0 {
			return a.updateUnitCmd(a.selectedApartmentID, f.editID, in)
		}
		return a.createUnitCmd(a.selectedApartmentID, in)
	case entityOccupant:
		in, err := validateOccupant(f.values[0], f.values[1], f.values[2])
		if err != nil {
			f.errText = err.Error()
			return nil
		}
		a.setStatus("saving...")
		if f.editID != 0 {
			return a.updateOccupantCmd(a.selectedUnitID, f.editID, in)
		}
		return a.createOccupantCmd(a.selectedUnitID, in)
	case entityInvoice:
		in, err := validateInvoice(f.values[0], f.values[1], f.values[2])
		if err != nil {
			f.errText = err.Error()
			return nil
		}
		a.setStatus("saving...")
		if f.editID != 0 {
			return a.updateInvoiceCmd(a.selectedUnitID, f.editID, in)
		}
		return a.createInvoiceCmd(a.selectedUnitID, in)
	}
	return nil
}
