// Package tui is the client view-state controller: it holds the current
// login step, the fetched record lists and their selections, and keeps them
// in sync with the backend through user-triggered requests.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/404PageFinder/OurNest-App/internal/api"
	"github.com/404PageFinder/OurNest-App/internal/config"
	"github.com/404PageFinder/OurNest-App/internal/logging"
	"github.com/404PageFinder/OurNest-App/internal/session"
)

// App ties together views.
type App struct {
	ctx    context.Context
	client *api.Client
	cfg    config.Config

	step  loginStep
	view  viewState
	modal modalState

	// login flow
	mobileInput  string
	otpInput     string
	otpRequestID string
	otpMessage   string

	// record lists; child lists are only meaningful under their selected parent
	apartments []api.Apartment
	units      []api.Unit
	occupants  []api.Occupant
	invoices   []api.Invoice
	dashboard  *api.DashboardSummary

	aptCursor  int
	unitCursor int
	occCursor  int
	invCursor  int

	selectedApartmentID int
	selectedUnitID      int

	form    *form
	confirm *confirmAction

	status    string
	statusErr bool
	healthy   bool
	pending   int
	spin      spinner.Model

	mobile   string
	quitting bool
}

type loginStep string

const (
	stepMobile        loginStep = "mobile"
	stepOTP           loginStep = "otp"
	stepAuthenticated loginStep = "authenticated"
)

type viewState string

const (
	viewDashboard  viewState = "dashboard"
	viewApartments viewState = "apartments"
	viewUnits      viewState = "units"
	viewOccupants  viewState = "occupants"
	viewInvoices   viewState = "invoices"
	viewSettings   viewState = "settings"
)

type modalState string

const (
	modalNone    modalState = ""
	modalForm    modalState = "form"
	modalConfirm modalState = "confirm"
)

// New builds the controller. A restored session (token already installed on
// the client) skips straight to the authenticated step.
func New(ctx context.Context, cfg config.Config, client *api.Client, restored session.Session) *App {
	a := &App{
		ctx:    ctx,
		client: client,
		cfg:    cfg,
		step:   stepMobile,
		view:   viewDashboard,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	if restored.Token != "" {
		a.step = stepAuthenticated
		a.mobile = restored.Mobile
		a.status = "session restored"
	}
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.healthCmd(), a.spin.Tick}
	if a.step == stepAuthenticated {
		cmds = append(cmds, a.loadApartments(), a.loadDashboard())
	}
	return tea.Batch(cmds...)
}

// ---------------------------------------------------------------------------
// Load commands: each fetches one list and reports back as a typed message.
// Overlapping fetches for the same resource are not fenced; the last resolved
// response wins.
// ---------------------------------------------------------------------------

func (a *App) healthCmd() tea.Cmd {
	return func() tea.Msg {
		return healthMsg{err: a.client.Health(a.ctx)}
	}
}

func (a *App) loadApartments() tea.Cmd {
	a.pending++
	return func() tea.Msg {
		list, err := a.client.ListApartments(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return apartmentsMsg(list)
	}
}

func (a *App) loadUnits(apartmentID int) tea.Cmd {
	a.pending++
	return func() tea.Msg {
		list, err := a.client.ListUnits(a.ctx, apartmentID)
		if err != nil {
			return errMsg{err}
		}
		return unitsMsg(list)
	}
}

func (a *App) loadOccupants(unitID int) tea.Cmd {
	a.pending++
	return func() tea.Msg {
		list, err := a.client.ListOccupants(a.ctx, unitID)
		if err != nil {
			return errMsg{err}
		}
		return occupantsMsg(list)
	}
}

func (a *App) loadInvoices(unitID int) tea.Cmd {
	a.pending++
	return func() tea.Msg {
		list, err := a.client.ListInvoices(a.ctx, unitID)
		if err != nil {
			return errMsg{err}
		}
		return invoicesMsg(list)
	}
}

func (a *App) loadDashboard() tea.Cmd {
	a.pending++
	return func() tea.Msg {
		sum, err := a.client.Dashboard(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return dashboardMsg(sum)
	}
}

// ---------------------------------------------------------------------------
// Auth commands
// ---------------------------------------------------------------------------

func (a *App) requestOtpCmd(mobile string) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.client.SendOTP(a.ctx, mobile)
		if err != nil {
			return errMsg{err}
		}
		return otpSentMsg{requestID: resp.RequestID, message: resp.Message, mobile: mobile}
	}
}

func (a *App) verifyOtpCmd(requestID, mobile, otp string) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.client.VerifyOTP(a.ctx, requestID, mobile, otp)
		if err != nil {
			return errMsg{err}
		}
		return verifiedMsg{token: resp.Token, mobile: mobile, message: resp.Message}
	}
}

// ---------------------------------------------------------------------------
// Mutation commands. Each returns savedMsg on success; Update then triggers
// the refreshes for the affected lists, so a refreshed list always reflects
// the completed write.
// ---------------------------------------------------------------------------

func (a *App) createApartmentCmd(in api.NewApartment) tea.Cmd {
	return func() tea.Msg {
		// uniqueness pre-check against a fresh list before the write
		existing, err := a.client.ListApartments(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		warn := ""
		for _, apt := range existing {
			if strings.EqualFold(apt.Name, in.Name) {
				return errMsg{fmt.Errorf("apartment %q already exists", apt.Name)}
			}
			if nearDuplicate(apt.Name, in.Name) {
				warn = apt.Name
			}
		}
		if _, err := a.client.CreateApartment(a.ctx, in); err != nil {
			return errMsg{err}
		}
		note := "apartment added"
		if warn != "" {
			note = fmt.Sprintf("apartment added (name is close to existing %q)", warn)
		}
		return savedMsg{entity: entityApartment, note: note}
	}
}

func (a *App) updateApartmentCmd(id int, in api.NewApartment) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.client.UpdateApartment(a.ctx, id, in); err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityApartment, note: "apartment updated"}
	}
}

func (a *App) createUnitCmd(apartmentID int, in api.NewUnit) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.client.CreateUnit(a.ctx, apartmentID, in); err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityUnit, note: "unit added"}
	}
}

func (a *App) updateUnitCmd(apartmentID, unitID int, in api.NewUnit) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.client.UpdateUnit(a.ctx, apartmentID, unitID, in); err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityUnit, note: "unit updated"}
	}
}

func (a *App) deleteUnitCmd(apartmentID, unitID int) tea.Cmd {
	return func() tea.Msg {
		if err := a.client.DeleteUnit(a.ctx, apartmentID, unitID); err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityUnit, note: "unit deleted"}
	}
}

func (a *App) createOccupantCmd(unitID int, in api.NewOccupant) tea.Cmd {
	return func() tea.Msg {
		// duplicate-phone pre-check against a fresh occupant list
		existing, err := a.client.ListOccupants(a.ctx, unitID)
		if err != nil {
			return errMsg{err}
		}
		for _, occ := range existing {
			if occ.Phone == in.Phone {
				return errMsg{fmt.Errorf("an occupant with phone %s already exists", in.Phone)}
			}
		}
		if _, err := a.client.CreateOccupant(a.ctx, unitID, in); err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityOccupant, note: "occupant added"}
	}
}

func (a *App) updateOccupantCmd(unitID, occupantID int, in api.NewOccupant) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.client.UpdateOccupant(a.ctx, unitID, occupantID, in); err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityOccupant, note: "occupant updated"}
	}
}

func (a *App) deleteOccupantCmd(unitID, occupantID int) tea.Cmd {
	return func() tea.Msg {
		if err := a.client.DeleteOccupant(a.ctx, unitID, occupantID); err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityOccupant, note: "occupant deleted"}
	}
}

func (a *App) createInvoiceCmd(unitID int, in api.NewInvoice) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.client.CreateInvoice(a.ctx, unitID, in); err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityInvoice, note: "invoice added"}
	}
}

func (a *App) updateInvoiceCmd(unitID, invoiceID int, in api.NewInvoice) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.client.UpdateInvoice(a.ctx, unitID, invoiceID, in); err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityInvoice, note: "invoice updated"}
	}
}

func (a *App) deleteInvoiceCmd(unitID, invoiceID int) tea.Cmd {
	return func() tea.Msg {
		if err := a.client.DeleteInvoice(a.ctx, unitID, invoiceID); err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityInvoice, note: "invoice deleted"}
	}
}

func (a *App) markInvoiceCmd(invoiceID int, paid bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		note := "invoice marked paid"
		if paid {
			err = a.client.MarkInvoicePaid(a.ctx, invoiceID)
		} else {
			err = a.client.MarkInvoiceUnpaid(a.ctx, invoiceID)
			note = "invoice marked unpaid"
		}
		if err != nil {
			return errMsg{err}
		}
		return savedMsg{entity: entityInvoice, note: note}
	}
}

func (a *App) saveSettingsCmd() tea.Cmd {
	cfg := a.cfg
	return func() tea.Msg {
		if err := config.Save(cfg); err != nil {
			return errMsg{err}
		}
		return statusMsg("settings saved")
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(m)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(m)
		return a, cmd

	case healthMsg:
		a.healthy = m.err == nil
		if m.err != nil {
			logging.Error(m.err)
		}

	case otpSentMsg:
		a.otpRequestID = m.requestID
		a.mobile = m.mobile
		a.otpMessage = m.message
		a.otpInput = ""
		a.step = stepOTP
		a.setStatus(m.message)

	case verifiedMsg:
		a.step = stepAuthenticated
		a.mobile = m.mobile
		a.view = viewDashboard
		a.setStatus(m.message)
		if a.cfg.Session.Persist {
			if err := session.Save(session.Session{Mobile: m.mobile, Token: m.token}); err != nil {
				logging.Error(err)
			}
		}
		logging.Trace("auth.verified", map[string]interface{}{"mobile": m.mobile})
		return a, tea.Batch(a.loadApartments(), a.loadDashboard())

	case apartmentsMsg:
		a.markResolved()
		a.apartments = []api.Apartment(m)
		if a.aptCursor >= len(a.apartments) {
			a.aptCursor = 0
		}

	case unitsMsg:
		a.markResolved()
		a.units = []api.Unit(m)
		if a.unitCursor >= len(a.units) {
			a.unitCursor = 0
		}

	case occupantsMsg:
		a.markResolved()
		a.occupants = []api.Occupant(m)
		if a.occCursor >= len(a.occupants) {
			a.occCursor = 0
		}

	case invoicesMsg:
		a.markResolved()
		a.invoices = []api.Invoice(m)
		if a.invCursor >= len(a.invoices) {
			a.invCursor = 0
		}

	case dashboardMsg:
		a.markResolved()
		sum := api.DashboardSummary(m)
		a.dashboard = &sum

	case savedMsg:
		a.setStatus(m.note)
		a.form = nil
		a.confirm = nil
		a.modal = modalNone
		return a, a.refreshAfter(m.entity)

	case statusMsg:
		a.setStatus(string(m))

	case errMsg:
		a.pending = 0
		if api.IsUnauthorized(m.err) {
			return a, a.forceLogout("session expired, sign in again")
		}
		a.setError(m.err)
		logging.Error(m.err)
	}
	return a, nil
}

func (a *App) markResolved() {
	if a.pending > 0 {
		a.pending--
	}
}

// refreshAfter reloads the lists a completed mutation can have touched.
func (a *App) refreshAfter(e entityKind) tea.Cmd {
	switch e {
	case entityApartment:
		return tea.Batch(a.loadApartments(), a.loadDashboard())
	case entityUnit:
		if a.selectedApartmentID == 0 {
			return a.loadDashboard()
		}
		return tea.Batch(a.loadUnits(a.selectedApartmentID), a.loadDashboard())
	case entityOccupant:
		if a.selectedUnitID == 0 {
			return nil
		}
		return a.loadOccupants(a.selectedUnitID)
	case entityInvoice:
		if a.selectedUnitID == 0 {
			return a.loadDashboard()
		}
		return tea.Batch(a.loadInvoices(a.selectedUnitID), a.loadDashboard())
	}
	return nil
}

// forceLogout purges credentials and returns the client to the mobile step
// with every list and selection cleared. This is the terminal equivalent of
// the web client's forced reload on 401.
func (a *App) forceLogout(reason string) tea.Cmd {
	a.client.SetToken("")
	if err := session.Clear(); err != nil {
		logging.Error(err)
	}
	a.step = stepMobile
	a.view = viewDashboard
	a.modal = modalNone
	a.form = nil
	a.confirm = nil
	a.mobileInput = ""
	a.otpInput = ""
	a.otpRequestID = ""
	a.clearApartmentState()
	a.apartments = nil
	a.dashboard = nil
	a.aptCursor = 0
	a.pending = 0
	a.setStatus(reason)
	logging.Trace("auth.logout", map[string]interface{}{"reason": reason})
	return nil
}

// clearApartmentState drops everything scoped beneath an apartment
// selection. Child lists are only meaningful relative to their parent.
func (a *App) clearApartmentState() {
	a.selectedApartmentID = 0
	a.units = nil
	a.unitCursor = 0
	a.clearUnitState()
}

// clearUnitState drops everything scoped beneath a unit selection.
func (a *App) clearUnitState() {
	a.selectedUnitID = 0
	a.occupants = nil
	a.occCursor = 0
	a.invoices = nil
	a.invCursor = 0
}

// selectApartment makes the apartment at the cursor current, clears all
// dependent child state, and fetches its units.
func (a *App) selectApartment() tea.Cmd {
	if len(a.apartments) == 0 {
		return nil
	}
	apt := a.apartments[a.aptCursor]
	a.clearApartmentState()
	a.selectedApartmentID = apt.ID
	a.view = viewUnits
	a.setStatus("loading units for " + apt.Name)
	return a.loadUnits(apt.ID)
}

// selectUnit makes the unit at the cursor current, clears occupant and
// invoice state, and fetches both lists in parallel.
func (a *App) selectUnit() tea.Cmd {
	if len(a.units) == 0 {
		return nil
	}
	u := a.units[a.unitCursor]
	a.clearUnitState()
	a.selectedUnitID = u.ID
	a.view = viewOccupants
	a.setStatus("loading unit " + u.Name)
	return tea.Batch(a.loadOccupants(u.ID), a.loadInvoices(u.ID))
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusErr = false
}

func (a *App) setError(err error) {
	if err == nil {
		a.status = ""
		a.statusErr = false
		return
	}
	a.status = err.Error()
	a.statusErr = true
}

func nearDuplicate(existing, candidate string) bool {
	e := strings.ToLower(strings.TrimSpace(existing))
	c := strings.ToLower(strings.TrimSpace(candidate))
	if e == "" || c == "" {
		return false
	}
	return levenshtein.ComputeDistance(e, c) <= 2
}

// messages
type healthMsg struct{ err error }

type otpSentMsg struct {
	requestID string
	message   string
	mobile    string
}

type verifiedMsg struct {
	token   string
	mobile  string
	message string
}

type apartmentsMsg []api.Apartment

type unitsMsg []api.Unit

type occupantsMsg []api.Occupant

type invoicesMsg []api.Invoice

type dashboardMsg api.DashboardSummary

type savedMsg struct {
	entity entityKind
	note   string
}

type statusMsg string

type errMsg struct{ err error }

type entityKind string

const (
	entityApartment entityKind = "apartment"
	entityUnit      entityKind = "unit"
	entityOccupant  entityKind = "occupant"
	entityInvoice   entityKind = "invoice"
)
