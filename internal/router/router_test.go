package router

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhandaridiwash/newchatbot/internal/catalog"
	"github.com/bhandaridiwash/newchatbot/internal/chat"
	"github.com/bhandaridiwash/newchatbot/internal/oracle"
	"github.com/bhandaridiwash/newchatbot/internal/order"
	"github.com/bhandaridiwash/newchatbot/internal/session"
	"github.com/bhandaridiwash/newchatbot/internal/tools"
)

type fakeMessenger struct {
	texts         []string
	lists         []chat.ListMessage
	buttons       []chat.ButtonMessage
	confirmations []string
	locationReqs  []string
}

func (m *fakeMessenger) SendText(_ context.Context, _, _, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *fakeMessenger) SendList(_ context.Context, _, _ string, msg chat.ListMessage) error {
	m.lists = append(m.lists, msg)
	return nil
}

func (m *fakeMessenger) SendButtons(_ context.Context, _, _ string, msg chat.ButtonMessage) error {
	m.buttons = append(m.buttons, msg)
	return nil
}

func (m *fakeMessenger) SendOrderConfirmation(_ context.Context, _, _, details string) error {
	m.confirmations = append(m.confirmations, details)
	return nil
}

func (m *fakeMessenger) SendLocationRequest(_ context.Context, _, _, text string) error {
	m.locationReqs = append(m.locationReqs, text)
	return nil
}

type harness struct {
	router    *Router
	store     *session.MemoryStore
	orders    *order.MemoryGateway
	messenger *fakeMessenger
}

func newHarness() *harness {
	store := session.NewMemoryStore()
	orders := order.NewMemoryGateway()
	messenger := &fakeMessenger{}
	handlers := tools.NewHandlers(
		tools.Config{Restaurant: "Momo House", Currency: "Rs.", DepositPercent: 0.20},
		messenger, catalog.NewStockMenu(), orders, store,
	)
	rt := New(store, tools.NewRegistry(handlers), oracle.NewRulesOracle(), "rules", messenger, nil)
	return &harness{router: rt, store: store, orders: orders, messenger: messenger}
}

func (h *harness) text(t *testing.T, userID, text string) {
	t.Helper()
	require.NoError(t, h.router.HandleEvent(context.Background(), chat.Event{
		UserID: userID, Platform: chat.PlatformConsole, Text: text,
	}))
}

func (h *harness) tap(t *testing.T, userID, id string) {
	t.Helper()
	require.NoError(t, h.router.HandleEvent(context.Background(), chat.Event{
		UserID: userID, Platform: chat.PlatformConsole,
		Interactive: &chat.InteractivePayload{Type: "button_reply", ID: id, Title: id},
	}))
}

func (h *harness) contextOf(t *testing.T, userID string) session.Context {
	t.Helper()
	sc, err := h.store.Get(context.Background(), userID)
	require.NoError(t, err)
	return sc
}

func (h *harness) seed(t *testing.T, userID string, sc session.Context) {
	t.Helper()
	require.NoError(t, h.store.Put(context.Background(), userID, sc))
}

// Scenario A: a fresh user asking for the menu gets the category list.
func TestFreshUserMenu(t *testing.T) {
	h := newHarness()
	h.text(t, "u1", "menu")

	sc := h.contextOf(t, "u1")
	assert.Equal(t, session.StageViewingMenu, sc.Stage)
	assert.Empty(t, sc.Cart)
	require.Len(t, h.messenger.lists, 1)
	assert.True(t, strings.HasPrefix(h.messenger.lists[0].Sections[0].Rows[0].ID, "cat_"))
}

// Scenario B: choosing cash on delivery creates the order and clears the
// session.
func TestCashOnDeliveryCreatesOrder(t *testing.T) {
	h := newHarness()

	seed := session.NewContext(chat.PlatformConsole)
	seed.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	seed.ServiceType = session.ServiceDelivery
	seed.DeliveryAddress = "Thamel, Kathmandu"
	seed.Stage = session.StageSelectingPayment
	h.seed(t, "u1", seed)

	h.tap(t, "u1", "pay_cod")

	orders, err := h.orders.OrderHistory(context.Background(), "u1", 5)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.InDelta(t, 360, orders[0].Total, 0.001)
	assert.Equal(t, session.PayCash, orders[0].PaymentMethod)

	sc := h.contextOf(t, "u1")
	assert.Empty(t, sc.Cart, "cart cleared after the order")
}

// Scenario C: garbage party size re-prompts in place.
func TestPartySizeGarbageReprompts(t *testing.T) {
	h := newHarness()

	seed := session.NewContext(chat.PlatformConsole)
	seed.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	seed.Stage = session.StageCollectingPartySize
	h.seed(t, "u1", seed)

	h.text(t, "u1", "abc")

	sc := h.contextOf(t, "u1")
	assert.Equal(t, session.StageCollectingPartySize, sc.Stage)
	assert.Nil(t, sc.NumberOfPeople)
	assert.NotEmpty(t, h.messenger.texts)
}

// Scenario D: the dine-in flow collects party size and time, then asks for
// the deposit.
func TestDineInReservationFlow(t *testing.T) {
	h := newHarness()

	seed := session.NewContext(chat.PlatformConsole)
	seed.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	seed.Stage = session.StageSelectingService
	h.seed(t, "u1", seed)

	h.tap(t, "u1", "service_dine_in")
	assert.Equal(t, session.StageCollectingPartySize, h.contextOf(t, "u1").Stage)

	h.text(t, "u1", "4")
	sc := h.contextOf(t, "u1")
	require.NotNil(t, sc.NumberOfPeople)
	assert.Equal(t, 4, *sc.NumberOfPeople)
	assert.Equal(t, session.StageCollectingArrivalTime, sc.Stage)

	h.text(t, "u1", "7pm")
	sc = h.contextOf(t, "u1")
	assert.Equal(t, session.StageConfirmingDeposit, sc.Stage)
	assert.Equal(t, session.ServiceDineIn, sc.ServiceType)
	require.NotNil(t, sc.DineTime)
	assert.Equal(t, 19, sc.DineTime.Hour())
	assert.InDelta(t, 72, sc.DepositAmount, 0.001)
}

// Scenario E: confirm_cancel empties the cart; the first-level cancel prompt
// alone does not.
// Switching from a staged dine-in reservation to delivery mid-flow must
// clear the reservation fields and carry the whole turn into the store.
func TestServiceSwitchMidFlowPersists(t *testing.T) {
	h := newHarness()

	seed := session.NewContext(chat.PlatformConsole)
	seed.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	seed.Stage = session.StageSelectingService
	h.seed(t, "u1", seed)

	h.tap(t, "u1", "service_dine_in")
	h.text(t, "u1", "4")
	h.text(t, "u1", "7pm")
	assert.Equal(t, session.StageConfirmingDeposit, h.contextOf(t, "u1").Stage)

	h.text(t, "u1", "deliver it to my place")
	h.tap(t, "u1", "type_address")
	h.text(t, "u1", "Thamel, Kathmandu")

	sc := h.contextOf(t, "u1")
	assert.Equal(t, session.ServiceDelivery, sc.ServiceType)
	assert.Equal(t, "Thamel, Kathmandu", sc.DeliveryAddress)
	assert.Nil(t, sc.NumberOfPeople)
	assert.Nil(t, sc.DineTime)
	assert.Zero(t, sc.DepositAmount)
	assert.Equal(t, session.StageSelectingPayment, sc.Stage)
}

func TestCancellationTwoStep(t *testing.T) {
	h := newHarness()

	seed := session.NewContext(chat.PlatformConsole)
	seed.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	seed.Stage = session.StageCartOptions
	h.seed(t, "u1", seed)

	h.tap(t, "u1", "proceed_checkout")
	assert.Equal(t, session.StageConfirmingOrder, h.contextOf(t, "u1").Stage)

	h.tap(t, "u1", "confirm_cancel")
	sc := h.contextOf(t, "u1")
	assert.Empty(t, sc.Cart)
	assert.Equal(t, session.StageInitial, sc.Stage)
}

func TestFirstLevelCancelKeepsCart(t *testing.T) {
	h := newHarness()

	seed := session.NewContext(chat.PlatformConsole)
	seed.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	seed.Stage = session.StageCartOptions
	h.seed(t, "u1", seed)

	h.tap(t, "u1", "cancel_order")

	sc := h.contextOf(t, "u1")
	assert.Equal(t, session.StageConfirmingCancel, sc.Stage)
	assert.NotEmpty(t, sc.Cart, "cart untouched until the cancel is confirmed")
}

func TestInteractiveAddToCart(t *testing.T) {
	h := newHarness()

	h.tap(t, "u1", "cat_momos")
	assert.Equal(t, session.StageViewingItems, h.contextOf(t, "u1").Stage)

	h.tap(t, "u1", "add_1")
	sc := h.contextOf(t, "u1")
	require.Len(t, sc.Cart, 1)
	assert.Equal(t, "Steamed Veg Momo", sc.Cart[0].Name)
	assert.Equal(t, session.StageQuickCartAction, sc.Stage)
}

func TestAddMoreItemsAliasShowsMenu(t *testing.T) {
	h := newHarness()
	h.tap(t, "u1", "add_more_items")

	assert.Equal(t, session.StageViewingMenu, h.contextOf(t, "u1").Stage)
	require.Len(t, h.messenger.lists, 1)
}

func TestHistoryKeywordBypassesOracle(t *testing.T) {
	h := newHarness()
	h.text(t, "u1", "show me my past orders please")

	require.NotEmpty(t, h.messenger.texts)
	assert.Contains(t, h.messenger.texts[0], "haven't ordered")
}

func TestPaymentStageTextParsing(t *testing.T) {
	h := newHarness()

	seed := session.NewContext(chat.PlatformConsole)
	seed.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 1}}
	seed.ServiceType = session.ServiceDelivery
	seed.DeliveryAddress = "Patan"
	seed.Stage = session.StageSelectingPayment
	h.seed(t, "u1", seed)

	// Off-grammar text re-prompts without consulting the oracle.
	h.text(t, "u1", "card")
	assert.Empty(t, mustHistory(t, h, "u1"))

	h.text(t, "u1", "esewa")
	orders := mustHistory(t, h, "u1")
	require.Len(t, orders, 1)
	assert.Equal(t, session.PayOnline, orders[0].PaymentMethod)
}

func TestLocationShareRoutesToProvideLocation(t *testing.T) {
	h := newHarness()

	seed := session.NewContext(chat.PlatformConsole)
	seed.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 1}}
	seed.Stage = session.StageProvidingLocation
	h.seed(t, "u1", seed)

	require.NoError(t, h.router.HandleEvent(context.Background(), chat.Event{
		UserID: "u1", Platform: chat.PlatformConsole,
		Location: &chat.Location{Latitude: 27.7172, Longitude: 85.324, Address: "Kathmandu"},
	}))

	sc := h.contextOf(t, "u1")
	assert.Equal(t, session.ServiceDelivery, sc.ServiceType)
	assert.Equal(t, "Kathmandu", sc.DeliveryAddress)
	assert.Equal(t, session.StageSelectingPayment, sc.Stage)
}

func TestUnmatchedInteractiveFallsThroughToOracle(t *testing.T) {
	h := newHarness()
	h.tap(t, "u1", "mystery_button")

	// The rules oracle answers with its fallback text reply.
	assert.NotEmpty(t, h.messenger.texts)
	sc := h.contextOf(t, "u1")
	assert.Equal(t, session.StageInitial, sc.Stage)
}

func TestOracleRejectionSendsCorrection(t *testing.T) {
	h := newHarness()

	// "deliver" routes through the oracle to select_service_type; seed a
	// stage where that is legal and verify the happy path, then check that
	// a malformed oracle call never reaches a handler via the validator
	// (covered in the validate package; here we assert the turn stays
	// side-effect free for unknown text).
	h.text(t, "u1", "hello there")
	sc := h.contextOf(t, "u1")
	assert.Empty(t, sc.Cart)
	assert.Equal(t, session.StageInitial, sc.Stage)
	assert.NotEmpty(t, h.messenger.texts)
}

func mustHistory(t *testing.T, h *harness, userID string) []order.Order {
	t.Helper()
	orders, err := h.orders.OrderHistory(context.Background(), userID, 5)
	require.NoError(t, err)
	return orders
}
