// Package planner wires the planning-grid core together: store,
// availability engine, gesture controller, group resolver and selection
// tracker, plus the commit/rollback path against the remote data
// service. It is the only impure layer; everything below it is pure
// validation and math.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"planboard/internal/availability"
	"planboard/internal/dataapi"
	"planboard/internal/events"
	"planboard/internal/geometry"
	"planboard/internal/gesture"
	"planboard/internal/groups"
	"planboard/internal/metrics"
	"planboard/internal/models"
	"planboard/internal/selection"
	"planboard/internal/store"
)

var (
	// ErrNoPending means there is no pending change to confirm or cancel.
	ErrNoPending = errors.New("no pending change")
	// ErrWriteInFlight means a persistence write for the reservation has
	// not completed yet.
	ErrWriteInFlight = errors.New("write in flight for reservation")
)

// DataService is the narrow interface to the excluded data-access
// layer. Batch updates must be atomic from this caller's point of view.
type DataService interface {
	FetchRooms(ctx context.Context) ([]models.Room, error)
	FetchReservations(ctx context.Context) ([]models.Reservation, error)
	UpdateReservation(ctx context.Context, r models.Reservation) error
	UpdateMultipleReservations(ctx context.Context, reservations []models.Reservation) error
	CreateMultipleReservations(ctx context.Context, proposals []selection.Proposal) ([]models.Reservation, error)
}

var _ DataService = (*dataapi.Client)(nil)

// ChangeSummary is what the confirmation dialog shows for a staged
// gesture: what changed, and whether a group apply should be offered.
type ChangeSummary struct {
	RoomChanged  bool
	DatesChanged bool
	OfferGroup   bool
	SiblingCount int
}

// Planner owns the planning session state: the current room inventory
// and filter, the single pending change, and the set of reservations
// with a write in flight.
type Planner struct {
	svc     DataService
	store   *store.Store
	engine  *availability.Engine
	ctrl    *gesture.Controller
	groups  *groups.Resolver
	tracker *selection.Tracker
	mapper  geometry.Mapper
	bus     *events.Bus
	logger  *zerolog.Logger

	rooms    []models.Room
	roomByID map[int64]models.Room
	filter   string // active category filter, "" shows everything

	pending   *models.PendingChange
	committed []models.Reservation // last state known persisted

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// New creates a planner. now supplies "today" for all gesture guards
// and is injectable for tests; nil means time.Now.
func New(svc DataService, mapper geometry.Mapper, now func() time.Time, logger *zerolog.Logger) *Planner {
	st := store.New(logger)
	engine := availability.NewEngine(st)
	p := &Planner{
		svc:      svc,
		store:    st,
		engine:   engine,
		ctrl:     gesture.NewController(st, engine, now, logger),
		tracker:  selection.NewTracker(engine, now),
		mapper:   mapper,
		bus:      events.NewBus(),
		logger:   logger,
		roomByID: make(map[int64]models.Room),
		inFlight: make(map[int64]struct{}),
	}
	p.groups = groups.NewResolver(st, engine, p)
	return p
}

// Refresh reloads rooms and reservations wholesale from the data
// service and resets the committed snapshot.
func (p *Planner) Refresh(ctx context.Context) error {
	rooms, err := p.svc.FetchRooms(ctx)
	if err != nil {
		return fmt.Errorf("fetch rooms: %w", err)
	}
	if err := p.store.Refresh(ctx, p.svc); err != nil {
		return err
	}

	p.rooms = rooms
	p.roomByID = make(map[int64]models.Room, len(rooms))
	for _, room := range rooms {
		p.roomByID[room.ID] = room
	}
	p.committed = p.store.Snapshot()
	p.logger.Info().Int("rooms", len(rooms)).Int("reservations", p.store.Len()).Msg("planner refreshed")
	p.bus.Publish(events.TypeRefreshed, p.store.Len())
	return nil
}

// Events exposes the notification bus the UI layer subscribes to.
func (p *Planner) Events() *events.Bus {
	return p.bus
}

// Store exposes the reservation store for rendering.
func (p *Planner) Store() *store.Store { return p.store }

// Engine exposes the availability engine for rendering queries.
func (p *Planner) Engine() *availability.Engine { return p.engine }

// Mapper returns the current grid geometry.
func (p *Planner) Mapper() geometry.Mapper { return p.mapper }

// SetZoom changes the grid zoom percentage.
func (p *Planner) SetZoom(percent int) {
	if percent > 0 {
		p.mapper.ZoomPercent = percent
	}
}

// SetWindow moves the visible date window.
func (p *Planner) SetWindow(start time.Time, days int) {
	p.mapper.WindowStart = models.DateOnly(start)
	if days > 0 {
		p.mapper.VisibleDays = days
	}
}

// SetCategoryFilter restricts the visible room list to one category;
// empty shows all rooms. Vertical bar moves resolve against this
// filtered list, so the same drag can land in a different room under a
// different filter. That is the documented grid behavior.
func (p *Planner) SetCategoryFilter(category string) {
	p.filter = category
}

// VisibleRooms returns the rooms matching the active filter, in display
// order.
func (p *Planner) VisibleRooms() []models.Room {
	if p.filter == "" {
		return p.rooms
	}
	visible := make([]models.Room, 0, len(p.rooms))
	for _, room := range p.rooms {
		if room.Category == p.filter {
			visible = append(visible, room)
		}
	}
	return visible
}

// RoomNumber resolves a room id to its display number. Implements the
// group resolver's RoomNamer.
func (p *Planner) RoomNumber(roomID int64) (string, bool) {
	room, ok := p.roomByID[roomID]
	if !ok {
		return "", false
	}
	return room.Number, true
}

// AvailableOn returns the free-room count for the visible rooms on a date.
func (p *Planner) AvailableOn(date time.Time) int {
	return p.engine.CountAvailable(p.VisibleRooms(), date)
}

// AvailableByCategory returns free counts per category on a date, over
// the full inventory regardless of filter.
func (p *Planner) AvailableByCategory(date time.Time) map[string]int {
	return p.engine.CountByCategory(p.rooms, date)
}

// StartMove begins a whole-bar move gesture.
func (p *Planner) StartMove(id int64) error {
	if err := p.gateGesture(id); err != nil {
		return err
	}
	return p.ctrl.BeginMove(id)
}

// FinishMove ends a move gesture with the raw pointer delta in pixels.
// A nil summary with nil error is a plain click. Rejected placements
// return the guard error; the grid shows nothing and the store is
// already back to the pre-gesture state.
func (p *Planner) FinishMove(dx, dy int) (*ChangeSummary, error) {
	shift := p.mapper.ShiftForDelta(dx, dy)
	change, err := p.ctrl.EndMove(shift, p.visibleRoomIDs())
	if err != nil {
		metrics.IncGesture("move", "rejected")
		return nil, err
	}
	if change == nil {
		return nil, nil
	}
	metrics.IncGesture("move", "accepted")
	return p.stage(change), nil
}

// StartResize begins an edge-resize gesture.
func (p *Planner) StartResize(id int64, direction models.ResizeDirection) error {
	if err := p.gateGesture(id); err != nil {
		return err
	}
	return p.ctrl.BeginResize(id, direction)
}

// ResizeStep applies an incremental resize for the accumulated
// horizontal pointer delta. Invalid steps are ignored; the bar only
// ever renders valid intervals.
func (p *Planner) ResizeStep(dx int) {
	p.ctrl.ResizeStep(p.mapper.ShiftForDelta(dx, 0).Days)
}

// FinishResize ends an edge-resize gesture. Nil summary means the edge
// came back to where it started.
func (p *Planner) FinishResize() (*ChangeSummary, error) {
	change, err := p.ctrl.EndResize()
	if err != nil {
		return nil, err
	}
	if change == nil {
		metrics.IncGesture("resize", "noop")
		return nil, nil
	}
	metrics.IncGesture("resize", "accepted")
	return p.stage(change), nil
}

// Pending returns the staged change awaiting confirmation, if any.
func (p *Planner) Pending() *models.PendingChange {
	return p.pending
}

// Cancel discards the pending change and restores the pre-gesture
// record. Side-effect free: no persistence call is made.
func (p *Planner) Cancel() {
	if p.pending == nil {
		return
	}
	p.ctrl.Cancel()
	p.pending = nil
}

// Confirm persists the pending change. With applyToGroup the same date
// delta is applied to every dossier sibling; if any sibling would
// collide with a third party the whole operation aborts, including the
// originally moved reservation, and the returned GroupConflictError
// names the blocking room. A failed write rolls the store back to the
// last committed snapshot.
func (p *Planner) Confirm(ctx context.Context, applyToGroup bool) error {
	change := p.pending
	if change == nil {
		return ErrNoPending
	}

	batch := []models.Reservation{p.withTotal(change.New)}
	if applyToGroup {
		shifted, err := p.groups.Plan(change)
		if err != nil {
			p.Cancel()
			metrics.IncGroupApply("conflict")
			p.bus.Publish(events.TypeConflict, err)
			return err
		}
		for _, sibling := range shifted {
			batch = append(batch, p.withTotal(sibling))
		}
	}

	p.markInFlight(batch)
	defer p.clearInFlight(batch)

	p.store.Apply(batch...)
	p.pending = nil
	p.ctrl.Resolve()

	var err error
	if len(batch) == 1 {
		err = p.svc.UpdateReservation(ctx, batch[0])
	} else {
		err = p.svc.UpdateMultipleReservations(ctx, batch)
	}
	if err != nil {
		p.store.Restore(p.committed)
		metrics.IncWriteFailure()
		p.logger.Error().Err(err).Msg("reservation write failed, store rolled back")
		p.bus.Publish(events.TypeWriteFailed, err)
		return fmt.Errorf("persist reservations: %w", err)
	}

	if applyToGroup {
		metrics.IncGroupApply("applied")
	}
	p.bus.Publish(events.TypeCommitted, len(batch))
	return p.Refresh(ctx)
}

// StartSelection anchors an empty-cell selection. Refused while any
// gesture or pending change is active.
func (p *Planner) StartSelection(roomID int64, date time.Time) error {
	if p.ctrl.Busy() {
		return gesture.ErrBusy
	}
	return p.tracker.Start(roomID, date)
}

// ExtendSelection grows the selection toward the hovered date, clamped
// at the nearest occupied cell.
func (p *Planner) ExtendSelection(date time.Time) {
	p.tracker.Extend(date)
}

// FinishSelection releases the selection into a booking proposal, or
// nothing for past-dated selections.
func (p *Planner) FinishSelection() (*selection.Proposal, bool) {
	proposal, ok := p.tracker.Finish()
	if ok {
		metrics.IncSelectionProposed()
	}
	return proposal, ok
}

// CommitProposals sends accepted booking proposals to the data service
// and refreshes the store with the created records.
func (p *Planner) CommitProposals(ctx context.Context, proposals ...selection.Proposal) error {
	if len(proposals) == 0 {
		return nil
	}
	if _, err := p.svc.CreateMultipleReservations(ctx, proposals); err != nil {
		metrics.IncWriteFailure()
		return fmt.Errorf("create reservations: %w", err)
	}
	return p.Refresh(ctx)
}

func (p *Planner) stage(change *models.PendingChange) *ChangeSummary {
	p.pending = change
	siblings := p.groups.Siblings(change)
	return &ChangeSummary{
		RoomChanged:  change.RoomChanged(),
		DatesChanged: change.DatesChanged(),
		OfferGroup:   change.DatesChanged() && len(siblings) > 0,
		SiblingCount: len(siblings),
	}
}

// withTotal recomputes the stay total after a date or room change.
func (p *Planner) withTotal(r models.Reservation) models.Reservation {
	if room, ok := p.roomByID[r.RoomID]; ok {
		r.Total = r.TotalFor(&room)
	}
	return r
}

func (p *Planner) gateGesture(id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return ErrWriteInFlight
	}
	if p.tracker.Active() {
		return gesture.ErrBusy
	}
	return nil
}

func (p *Planner) markInFlight(batch []models.Reservation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range batch {
		p.inFlight[r.ID] = struct{}{}
	}
}

func (p *Planner) clearInFlight(batch []models.Reservation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range batch {
		delete(p.inFlight, r.ID)
	}
}

func (p *Planner) visibleRoomIDs() []int64 {
	visible := p.VisibleRooms()
	ids := make([]int64, len(visible))
	for i, room := range visible {
		ids[i] = room.ID
	}
	return ids
}
