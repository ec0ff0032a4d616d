package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"voyage/internal/service/travel/domain"
	"voyage/internal/service/travel/infrastructure"
	"voyage/internal/service/travel/infrastructure/rule"
	"voyage/internal/service/travel/port"
)

// callLog records the order of gateway operations across all fakes, so tests
// can assert the compensation sequence.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type fakeHotel struct {
	log        *callLog
	nextID     int64
	createErr  error
	cancelErr  error
	onCreate   func()
	lastCreate port.HotelBookingRequest
	cancelled  []int64
}

func (f *fakeHotel) Create(_ context.Context, req port.HotelBookingRequest) (int64, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.lastCreate = req
	f.nextID++
	f.log.add("hotel.create")
	return f.nextID, nil
}

func (f *fakeHotel) Cancel(_ context.Context, bookingID int64) error {
	f.log.add("hotel.cancel")
	f.cancelled = append(f.cancelled, bookingID)
	return f.cancelErr
}

type fakeTaxi struct {
	log        *callLog
	nextID     int64
	createErr  error
	lastCreate port.TaxiBookingRequest
	cancelled  []int64
}

func (f *fakeTaxi) Create(_ context.Context, req port.TaxiBookingRequest) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.lastCreate = req
	f.nextID++
	f.log.add("taxi.create")
	return f.nextID, nil
}

func (f *fakeTaxi) Cancel(_ context.Context, bookingID int64) error {
	f.log.add("taxi.cancel")
	f.cancelled = append(f.cancelled, bookingID)
	return nil
}

type fakeNotifier struct {
	booked []*domain.TripBooked
	failed []*domain.TripFailed
}

func (f *fakeNotifier) SendTripBooked(_ context.Context, event *domain.TripBooked) error {
	f.booked = append(f.booked, event)
	return nil
}

func (f *fakeNotifier) SendTripFailed(_ context.Context, event *domain.TripFailed) error {
	f.failed = append(f.failed, event)
	return nil
}

type fakePrereserve struct {
	log      *callLog
	result   port.PrereserveResult
	released []int64
}

func (f *fakePrereserve) Attempt(_ context.Context, commodityID, customerID int64) (port.PrereserveResult, error) {
	f.log.add("prereserve.attempt")
	return f.result, nil
}

func (f *fakePrereserve) Release(_ context.Context, commodityID, customerID int64) error {
	f.log.add("prereserve.release")
	f.released = append(f.released, commodityID)
	return nil
}

type travelFixture struct {
	store       *infrastructure.MemoryStore
	ledger      *BookingService
	hotel       *fakeHotel
	taxi        *fakeTaxi
	notifier    *fakeNotifier
	log         *callLog
	customerID  int64
	commodityID int64
}

func newTravelFixture(t *testing.T, stock int) *travelFixture {
	t.Helper()
	store := infrastructure.NewMemoryStore()
	log := &callLog{}
	return &travelFixture{
		store:       store,
		ledger:      newLedger(store),
		hotel:       &fakeHotel{log: log},
		taxi:        &fakeTaxi{log: log},
		notifier:    &fakeNotifier{},
		log:         log,
		customerID:  seedCustomer(t, store, "ada@example.com"),
		commodityID: seedCommodity(t, store, stock),
	}
}

func (f *travelFixture) service(cfg TravelServiceConfig) *TravelService {
	if cfg.Notifier == nil {
		cfg.Notifier = f.notifier
	}
	return NewTravelService(f.ledger, f.hotel, f.taxi, cfg, otel.Tracer("test"))
}

func (f *travelFixture) request() *TravelBookingRequest {
	return &TravelBookingRequest{
		CustomerID:        f.customerID,
		HotelID:           10,
		FlightCommodityID: f.commodityID,
		TaxiID:            20,
		Date:              "2026-09-14",
	}
}

func TestTravelPackageSuccess(t *testing.T) {
	f := newTravelFixture(t, 2)
	svc := f.service(TravelServiceConfig{})

	resp, err := svc.BookTravelPackage(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, TripStatusSuccess, resp.Status)
	require.NotNil(t, resp.HotelBookingID)
	require.NotNil(t, resp.FlightBookingID)
	require.NotNil(t, resp.TaxiBookingID)
	assert.False(t, resp.Compensated)

	assert.Equal(t, []string{"hotel.create", "taxi.create"}, f.log.all())
	assert.Equal(t, 1, commodityQuantity(t, f.store, f.commodityID))

	booking, err := f.ledger.FindByID(context.Background(), *resp.FlightBookingID)
	require.NoError(t, err)
	assert.Equal(t, f.customerID, booking.CustomerID)

	require.Len(t, f.notifier.booked, 1)
	assert.Equal(t, f.customerID, f.notifier.booked[0].CustomerID)
	assert.Empty(t, f.notifier.failed)
}

func TestTravelPackageSurvivesCallerDisconnect(t *testing.T) {
	f := newTravelFixture(t, 1)
	svc := f.service(TravelServiceConfig{})

	// The caller abandons the request while the first leg is in flight. The
	// saga keeps going: it must not compensate a trip the remote services
	// already started booking.
	callerCtx, disconnect := context.WithCancel(context.Background())
	f.hotel.onCreate = disconnect

	resp, err := svc.BookTravelPackage(callerCtx, f.request())
	require.NoError(t, err)
	assert.Equal(t, TripStatusSuccess, resp.Status)
	assert.False(t, resp.Compensated)

	assert.Equal(t, []string{"hotel.create", "taxi.create"}, f.log.all())
	assert.Equal(t, 0, commodityQuantity(t, f.store, f.commodityID))
	require.Len(t, f.notifier.booked, 1)
	assert.Empty(t, f.notifier.failed)
}

func TestTravelPackageAppliesTaxiDefaults(t *testing.T) {
	f := newTravelFixture(t, 1)
	svc := f.service(TravelServiceConfig{})

	_, err := svc.BookTravelPackage(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, "Airport", f.taxi.lastCreate.DepartureLocation)
	assert.Equal(t, "Hotel", f.taxi.lastCreate.Destination)
	assert.Equal(t, 1, f.taxi.lastCreate.PassengerCount)
	assert.Equal(t, "2026-09-14", f.taxi.lastCreate.DepartureDate)
}

func TestTravelPackageTaxiFailureCompensatesInReverse(t *testing.T) {
	f := newTravelFixture(t, 1)
	f.taxi.createErr = errors.New("no taxi available")
	svc := f.service(TravelServiceConfig{})

	resp, err := svc.BookTravelPackage(context.Background(), f.request())
	require.NoError(t, err, "saga failures answer FAILED, not an error")
	assert.Equal(t, TripStatusFailed, resp.Status)
	assert.True(t, resp.Compensated)
	assert.NotNil(t, resp.HotelBookingID)
	assert.NotNil(t, resp.FlightBookingID)
	assert.Nil(t, resp.TaxiBookingID)

	assert.Equal(t, []string{"hotel.create", "hotel.cancel"}, f.log.all())
	assert.Equal(t, 1, commodityQuantity(t, f.store, f.commodityID))
	bookings, err := f.ledger.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bookings)

	require.Len(t, f.notifier.failed, 1)
	assert.Contains(t, f.notifier.failed[0].Reason, "no taxi available")
	assert.Empty(t, f.notifier.booked)
}

func TestTravelPackageHotelFailureNeedsNoCompensation(t *testing.T) {
	f := newTravelFixture(t, 1)
	f.hotel.createErr = errors.New("hotel unavailable")
	svc := f.service(TravelServiceConfig{})

	resp, err := svc.BookTravelPackage(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, TripStatusFailed, resp.Status)
	assert.False(t, resp.Compensated, "nothing was booked, nothing to undo")
	assert.Nil(t, resp.HotelBookingID)
	assert.Nil(t, resp.FlightBookingID)
	assert.Nil(t, resp.TaxiBookingID)

	assert.Empty(t, f.log.all())
	assert.Equal(t, 1, commodityQuantity(t, f.store, f.commodityID))
	require.Len(t, f.notifier.failed, 1)
}

func TestTravelPackageFlightOutOfStockCancelsHotel(t *testing.T) {
	f := newTravelFixture(t, 0)
	svc := f.service(TravelServiceConfig{})

	resp, err := svc.BookTravelPackage(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, TripStatusFailed, resp.Status)
	assert.True(t, resp.Compensated)
	assert.NotNil(t, resp.HotelBookingID)
	assert.Nil(t, resp.FlightBookingID)

	assert.Equal(t, []string{"hotel.create", "hotel.cancel"}, f.log.all())
	assert.Len(t, f.hotel.cancelled, 1)
}

func TestTravelPackageCompensationFailureDoesNotMask(t *testing.T) {
	f := newTravelFixture(t, 1)
	f.taxi.createErr = errors.New("no taxi available")
	f.hotel.cancelErr = errors.New("hotel cancel endpoint down")
	svc := f.service(TravelServiceConfig{})

	resp, err := svc.BookTravelPackage(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, TripStatusFailed, resp.Status)
	assert.Contains(t, resp.Message, "no taxi available")

	// The flight compensation still ran even though the hotel one failed.
	bookings, ledgerErr := f.ledger.FindAll(context.Background())
	require.NoError(t, ledgerErr)
	assert.Empty(t, bookings)
	assert.Equal(t, 1, commodityQuantity(t, f.store, f.commodityID))
}

func TestTravelPackagePolicyRejection(t *testing.T) {
	f := newTravelFixture(t, 1)
	engine, err := rule.NewCELPolicyEngine()
	require.NoError(t, err)

	svc := f.service(TravelServiceConfig{
		Policy:     engine,
		PolicyExpr: "passengerCount <= 4",
	})

	req := f.request()
	req.PassengerCount = 6
	resp, err := svc.BookTravelPackage(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrPolicyViolation)
	assert.Equal(t, TripStatusFailed, resp.Status)

	// Rejected before any side effect.
	assert.Empty(t, f.log.all())
	assert.Equal(t, 1, commodityQuantity(t, f.store, f.commodityID))
}

func TestTravelPackagePolicyAcceptsDefaults(t *testing.T) {
	f := newTravelFixture(t, 1)
	engine, err := rule.NewCELPolicyEngine()
	require.NoError(t, err)

	// The policy sees the defaulted fields, not the zero values.
	svc := f.service(TravelServiceConfig{
		Policy:     engine,
		PolicyExpr: "departureLocation == 'Airport' && passengerCount == 1",
	})

	resp, err := svc.BookTravelPackage(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, TripStatusSuccess, resp.Status)
}

func TestTravelPackageHighDemandSoldOut(t *testing.T) {
	f := newTravelFixture(t, 1)
	pre := &fakePrereserve{log: f.log, result: port.PrereserveSoldOut}
	svc := f.service(TravelServiceConfig{
		Prereserve:            pre,
		HighDemandCommodities: []int64{f.commodityID},
	})

	resp, err := svc.BookTravelPackage(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, TripStatusFailed, resp.Status)
	assert.Contains(t, resp.Message, domain.ErrSeatSoldOut.Error())

	// The guard fails before any leg is booked.
	assert.Equal(t, []string{"prereserve.attempt"}, f.log.all())
}

func TestTravelPackageHighDemandReleaseOnFailure(t *testing.T) {
	f := newTravelFixture(t, 1)
	f.taxi.createErr = errors.New("no taxi available")
	pre := &fakePrereserve{log: f.log, result: port.PrereserveSuccess}
	svc := f.service(TravelServiceConfig{
		Prereserve:            pre,
		HighDemandCommodities: []int64{f.commodityID},
	})

	resp, err := svc.BookTravelPackage(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, TripStatusFailed, resp.Status)

	// Release runs last: it was the first compensation registered.
	entries := f.log.all()
	assert.Equal(t, "prereserve.release", entries[len(entries)-1])
	assert.Equal(t, []int64{f.commodityID}, pre.released)
}

func TestTravelPackageNotHighDemandSkipsGuard(t *testing.T) {
	f := newTravelFixture(t, 1)
	pre := &fakePrereserve{log: f.log, result: port.PrereserveSoldOut}
	svc := f.service(TravelServiceConfig{
		Prereserve:            pre,
		HighDemandCommodities: []int64{f.commodityID + 1000},
	})

	resp, err := svc.BookTravelPackage(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, TripStatusSuccess, resp.Status)
	assert.NotContains(t, f.log.all(), "prereserve.attempt")
}
