package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhandaridiwash/newchatbot/internal/catalog"
	"github.com/bhandaridiwash/newchatbot/internal/chat"
	"github.com/bhandaridiwash/newchatbot/internal/order"
	"github.com/bhandaridiwash/newchatbot/internal/session"
)

// recordingMessenger captures outbound messages for assertions.
type recordingMessenger struct {
	texts         []string
	lists         []chat.ListMessage
	buttons       []chat.ButtonMessage
	confirmations []string
	locationReqs  []string
}

func (m *recordingMessenger) SendText(_ context.Context, _, _, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *recordingMessenger) SendList(_ context.Context, _, _ string, msg chat.ListMessage) error {
	m.lists = append(m.lists, msg)
	return nil
}

func (m *recordingMessenger) SendButtons(_ context.Context, _, _ string, msg chat.ButtonMessage) error {
	m.buttons = append(m.buttons, msg)
	return nil
}

func (m *recordingMessenger) SendOrderConfirmation(_ context.Context, _, _, details string) error {
	m.confirmations = append(m.confirmations, details)
	return nil
}

func (m *recordingMessenger) SendLocationRequest(_ context.Context, _, _, text string) error {
	m.locationReqs = append(m.locationReqs, text)
	return nil
}

func (m *recordingMessenger) allText() string {
	return strings.Join(m.texts, "\n")
}

type fixture struct {
	handlers  *Handlers
	messenger *recordingMessenger
	orders    *order.MemoryGateway
	store     *session.MemoryStore
}

func newFixture() *fixture {
	return newFixtureWithCatalog(catalog.NewStockMenu())
}

func newFixtureWithCatalog(cat catalog.Gateway) *fixture {
	m := &recordingMessenger{}
	ord := order.NewMemoryGateway()
	store := session.NewMemoryStore()
	h := NewHandlers(Config{Restaurant: "Momo House", Currency: "Rs.", DepositPercent: 0.20}, m, cat, ord, store)
	return &fixture{handlers: h, messenger: m, orders: ord, store: store}
}

func TestAddToCartIdempotence(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sc := session.NewContext(chat.PlatformConsole)

	sc, err := f.handlers.addToCart(ctx, Args{"food_id": 1, "quantity": 1}, "u1", sc)
	require.NoError(t, err)
	sc, err = f.handlers.addToCart(ctx, Args{"food_id": 1, "quantity": 1}, "u1", sc)
	require.NoError(t, err)

	require.Len(t, sc.Cart, 1, "same foodId folds into one line")
	assert.Equal(t, 2, sc.Cart[0].Quantity)
	assert.Equal(t, session.StageQuickCartAction, sc.Stage)
}

func TestAddToCartUnknownID(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)

	sc, err := f.handlers.addToCart(context.Background(), Args{"food_id": 999}, "u1", sc)
	require.NoError(t, err)
	assert.Empty(t, sc.Cart)
	assert.Contains(t, f.messenger.allText(), "isn't on the menu")
}

func TestAddItemByNameDisambiguates(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)

	// "momo" matches many stock items.
	sc, err := f.handlers.addItemByName(context.Background(), Args{"name": "momo"}, "u1", sc)
	require.NoError(t, err)

	assert.Empty(t, sc.Cart, "no mutation before the user picks")
	assert.Equal(t, session.StageSelectingItem, sc.Stage)
	require.Len(t, f.messenger.lists, 1)
}

func TestAddItemByNameAnaphora(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)
	sc.Recommendations = []session.Recommendation{{FoodID: 5, Name: "Tandoori Momo", Price: 260}}

	sc, err := f.handlers.addItemByName(context.Background(), Args{"name": "it", "quantity": 2}, "u1", sc)
	require.NoError(t, err)

	require.Len(t, sc.Cart, 1)
	assert.Equal(t, 5, sc.Cart[0].FoodID)
	assert.Equal(t, 2, sc.Cart[0].Quantity)
}

func TestAddMultipleItemsPartition(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)

	items := []any{
		map[string]any{"name": "tandoori", "quantity": float64(2)},
		map[string]any{"name": "unobtainium"},
	}
	sc, err := f.handlers.addMultipleItems(context.Background(), Args{"items": items}, "u1", sc)
	require.NoError(t, err)

	require.Len(t, sc.Cart, 1, "one miss never fails the batch")
	assert.Equal(t, 2, sc.Cart[0].Quantity)
	out := f.messenger.allText()
	assert.Contains(t, out, "Tandoori Momo")
	assert.Contains(t, out, "unobtainium")
}

func TestConfirmOrderStripsStaleLinesAndRefreshesPrices(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)
	sc.Cart = session.Cart{
		{FoodID: 1, Name: "Steamed Veg Momo", Price: 5, Quantity: 2}, // stale price
		{FoodID: 999, Name: "Ghost Dish", Price: 100, Quantity: 1},
	}

	sc, err := f.handlers.confirmOrder(context.Background(), nil, "u1", sc)
	require.NoError(t, err)

	require.Len(t, sc.Cart, 1)
	assert.InDelta(t, 180, sc.Cart[0].Price, 0.001, "catalog price wins over snapshot")
	assert.Contains(t, f.messenger.allText(), "Ghost Dish")
	require.NotNil(t, sc.PendingOrder)
	assert.InDelta(t, 360, sc.PendingOrder.Total, 0.001)
	assert.Equal(t, session.StageConfirmingOrder, sc.Stage)
	require.Len(t, f.messenger.confirmations, 1)
}

func TestConfirmOrderRoutesToMenuWhenNothingSurvives(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)
	sc.Cart = session.Cart{{FoodID: 998, Name: "Ghost Dish", Price: 100, Quantity: 1}}

	sc, err := f.handlers.confirmOrder(context.Background(), nil, "u1", sc)
	require.NoError(t, err)

	assert.Empty(t, sc.Cart)
	assert.Equal(t, session.StageViewingMenu, sc.Stage)
	assert.Nil(t, sc.PendingOrder)
}

func TestCancellationIsTwoStep(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)
	sc.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}

	sc, err := f.handlers.cancelOrder(context.Background(), nil, "u1", sc)
	require.NoError(t, err)
	assert.Equal(t, session.StageConfirmingCancel, sc.Stage)
	assert.NotEmpty(t, sc.Cart, "first-level cancel never destroys state")

	sc, err = f.handlers.confirmCancel(context.Background(), nil, "u1", sc)
	require.NoError(t, err)
	assert.Empty(t, sc.Cart)
	assert.Equal(t, session.StageInitial, sc.Stage)
}

func TestCollectPartySizeRejectsGarbage(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)
	sc.Stage = session.StageCollectingPartySize

	sc, err := f.handlers.collectPartySize(context.Background(), Args{"text": "abc"}, "u1", sc)
	require.NoError(t, err)

	assert.Equal(t, session.StageCollectingPartySize, sc.Stage)
	assert.Nil(t, sc.NumberOfPeople)
	assert.NotEmpty(t, f.messenger.texts)
}

func TestCollectArrivalTimeCommitsDineInAndDeposit(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)
	sc.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	people := 4
	sc.NumberOfPeople = &people
	sc.Stage = session.StageCollectingArrivalTime

	sc, err := f.handlers.collectArrivalTime(context.Background(), Args{"text": "7pm"}, "u1", sc)
	require.NoError(t, err)

	assert.Equal(t, session.ServiceDineIn, sc.ServiceType)
	require.NotNil(t, sc.DineTime)
	assert.Equal(t, 19, sc.DineTime.Hour())
	assert.Equal(t, session.StageConfirmingDeposit, sc.Stage)
	assert.InDelta(t, 72, sc.DepositAmount, 0.001, "ceil of 20%% of 360")
}

func TestCollectArrivalTimeSoftFailsToNilTime(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)
	sc.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 1}}
	people := 2
	sc.NumberOfPeople = &people
	sc.Stage = session.StageCollectingArrivalTime

	sc, err := f.handlers.collectArrivalTime(context.Background(), Args{"text": "whenever"}, "u1", sc)
	require.NoError(t, err)

	assert.Nil(t, sc.DineTime, "reservation proceeds without a time")
	assert.Equal(t, session.StageConfirmingDeposit, sc.Stage)
}

func TestServiceSwitchClearsReservationState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sc := session.NewContext(chat.PlatformConsole)
	sc.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	people := 4
	sc.NumberOfPeople = &people
	when := time.Now()
	sc.DineTime = &when
	sc.ArrivalText = "7pm"
	sc.DepositAmount = 72
	sc.ServiceType = session.ServiceDineIn
	sc.Stage = session.StageConfirmingDeposit

	sc, err := f.handlers.selectServiceType(ctx, Args{"service_type": session.ServiceDelivery}, "u1", sc)
	require.NoError(t, err)

	assert.Empty(t, sc.ServiceType, "delivery commits only with the address")
	assert.Nil(t, sc.NumberOfPeople)
	assert.Nil(t, sc.DineTime)
	assert.Empty(t, sc.ArrivalText)
	assert.Zero(t, sc.DepositAmount)
	assert.Equal(t, session.StageSelectingLocation, sc.Stage)

	sc, err = f.handlers.provideLocation(ctx, Args{"address": "Thamel, Kathmandu"}, "u1", sc)
	require.NoError(t, err)

	assert.Equal(t, session.ServiceDelivery, sc.ServiceType)
	assert.Equal(t, "Thamel, Kathmandu", sc.DeliveryAddress)
	require.NoError(t, sc.Validate(), "the switched context must persist cleanly")
	assert.Equal(t, session.StageSelectingPayment, sc.Stage)
}

func TestConfirmReservationDepositCreatesReservation(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)
	sc.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 1}}
	people := 4
	sc.NumberOfPeople = &people
	sc.ServiceType = session.ServiceDineIn
	sc.Stage = session.StageConfirmingDeposit

	sc, err := f.handlers.confirmReservationDeposit(context.Background(), nil, "u1", sc)
	require.NoError(t, err)

	reservations := f.orders.Reservations()
	require.Len(t, reservations, 1)
	assert.Equal(t, 4, reservations[0].PartySize)
	assert.Equal(t, order.ReservationPending, reservations[0].Status)
	assert.Equal(t, session.StageSelectingPayment, sc.Stage)
}

func TestProcessPaymentCreatesOrderAndResetsSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	seed := session.NewContext(chat.PlatformConsole)
	seed.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	require.NoError(t, f.store.Put(ctx, "u1", seed))

	sc := seed.Clone()
	sc.ServiceType = session.ServiceDelivery
	sc.DeliveryAddress = "Thamel, Kathmandu"
	sc.Stage = session.StageSelectingPayment

	sc, err := f.handlers.processPayment(ctx, Args{"method": session.PayCash}, "u1", sc)
	require.NoError(t, err)

	orders, err := f.orders.OrderHistory(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.InDelta(t, 360, orders[0].Total, 0.001)
	assert.Equal(t, session.PayCash, orders[0].PaymentMethod)
	assert.Equal(t, session.ServiceDelivery, orders[0].ServiceType)

	assert.Empty(t, sc.Cart, "transient order state is reset")
	assert.Equal(t, session.StageOrderComplete, sc.Stage)

	fresh, err := f.store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, fresh.Cart, "session row deleted after the order")
	assert.Equal(t, session.StageInitial, fresh.Stage)
}

func TestProcessPaymentRefusesEmptyCart(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)
	sc.Stage = session.StageSelectingPayment

	sc, err := f.handlers.processPayment(context.Background(), Args{"method": session.PayCash}, "u1", sc)
	require.NoError(t, err)

	orders, err := f.orders.OrderHistory(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Empty(t, orders, "no order row for a cart that never reached payment")
	assert.NotEqual(t, session.StageOrderComplete, sc.Stage)
}

func TestProcessPaymentOnlineSendsInstructions(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)
	sc.Cart = session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 1}}
	sc.ServiceType = session.ServicePickup
	sc.Stage = session.StageSelectingPayment

	_, err := f.handlers.processPayment(context.Background(), Args{"method": session.PayOnline}, "u1", sc)
	require.NoError(t, err)

	out := f.messenger.allText()
	assert.Contains(t, out, "eSewa")
	assert.Contains(t, out, "ORD-")
}

func TestShowFoodMenuListsCategories(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)

	sc, err := f.handlers.showFoodMenu(context.Background(), nil, "u1", sc)
	require.NoError(t, err)

	assert.Equal(t, session.StageViewingMenu, sc.Stage)
	require.Len(t, f.messenger.lists, 1)
	rows := f.messenger.lists[0].Sections[0].Rows
	require.NotEmpty(t, rows)
	assert.True(t, strings.HasPrefix(rows[0].ID, "cat_"))
	for _, row := range rows {
		assert.LessOrEqual(t, len([]rune(row.Title)), 24, "row titles respect platform limits")
	}
}

func TestRecommendFoodCachesRecommendations(t *testing.T) {
	f := newFixture()
	sc := session.NewContext(chat.PlatformConsole)

	sc, err := f.handlers.recommendFood(context.Background(), Args{"tag": "momos"}, "u1", sc)
	require.NoError(t, err)

	assert.Equal(t, session.StageViewingRecommendations, sc.Stage)
	require.NotEmpty(t, sc.Recommendations)
	for _, rec := range sc.Recommendations {
		assert.Equal(t, "momos", rec.Category)
	}
}

func TestShowOrderHistoryFormatsOrders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cart := session.Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	_, err := f.orders.FinalizeOrderFromCart(ctx, "u1", cart, order.FinalizeOptions{
		ServiceType: session.ServicePickup, PaymentMethod: session.PayCash, Platform: chat.PlatformConsole,
	})
	require.NoError(t, err)

	sc := session.NewContext(chat.PlatformConsole)
	_, err = f.handlers.showOrderHistory(ctx, nil, "u1", sc)
	require.NoError(t, err)

	out := f.messenger.allText()
	assert.Contains(t, out, "ORD-")
	assert.Contains(t, out, "2 items")
}
