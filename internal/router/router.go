// Package router is the conversation entry point. Each inbound event is one
// unit of work: resolve the user's context, decide which tool handles the
// event (deterministic id and stage rules first, the intent oracle last),
// run the handler over a cloned context, and persist the result exactly
// once.
//
// Two near-simultaneous messages from the same user race on the
// read-modify-write of one context; persistence is last-write-wins with no
// locking. Conversational turns are serialized by typing speed in practice,
// so this is an accepted limitation, not an oversight.
package router

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bhandaridiwash/newchatbot/internal/chat"
	"github.com/bhandaridiwash/newchatbot/internal/metrics"
	"github.com/bhandaridiwash/newchatbot/internal/oracle"
	"github.com/bhandaridiwash/newchatbot/internal/session"
	"github.com/bhandaridiwash/newchatbot/internal/tools"
	"github.com/bhandaridiwash/newchatbot/internal/validate"
	"github.com/bhandaridiwash/newchatbot/pkg/logx"
)

// Route labels for telemetry.
const (
	routeInteractive = "interactive"
	routeStage       = "stage"
	routeKeyword     = "keyword"
	routeOracle      = "oracle"
	routeFallback    = "fallback"
)

// Router decides which tool handles an inbound event.
type Router struct {
	store          session.Store
	registry       *tools.Registry
	oracle         oracle.Oracle
	oracleProvider string
	messenger      chat.Messenger
	recorder       metrics.Recorder
	logger         *logx.Logger
}

// New wires a Router.
func New(store session.Store, registry *tools.Registry, o oracle.Oracle, oracleProvider string, m chat.Messenger, rec metrics.Recorder) *Router {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &Router{
		store:          store,
		registry:       registry,
		oracle:         o,
		oracleProvider: oracleProvider,
		messenger:      m,
		recorder:       rec,
		logger:         logx.NewLogger("router"),
	}
}

// dispatch names a resolved tool invocation.
type dispatch struct {
	tool string
	args tools.Args
}

// HandleEvent processes one inbound user turn.
func (r *Router) HandleEvent(ctx context.Context, ev chat.Event) error {
	start := time.Now()

	sc, err := r.store.Get(ctx, ev.UserID)
	if err != nil {
		// Degraded mode: the turn proceeds on a fresh default context.
		r.logger.Warn("load context for %s, using default: %v", ev.UserID, err)
		r.recorder.RecordGatewayError("session")
		sc = session.NewContext(ev.Platform)
	}
	if sc.Platform == "" {
		sc.Platform = ev.Platform
	}

	route, d := r.resolve(ctx, ev, &sc)
	if d == nil {
		// resolve already replied (re-prompt or oracle fallback text).
		r.recorder.RecordTurn(route, "", "handled", time.Since(start))
		return nil
	}

	handler, ok := r.registry.Lookup(d.tool)
	if !ok {
		r.logger.Error("no handler registered for %q", d.tool)
		r.recorder.RecordTurn(route, d.tool, "unknown_tool", time.Since(start))
		return nil
	}

	newSc, err := handler(ctx, d.args, ev.UserID, sc.Clone())
	status := "ok"
	if err != nil {
		// The handler already apologized to the user; the pre-turn context
		// is kept so no partial mutation survives.
		r.logger.Warn("handler %s for %s: %v", d.tool, ev.UserID, err)
		r.recorder.RecordGatewayError(d.tool)
		newSc = sc
		status = "error"
	}

	if !session.CanTransition(sc.Stage, newSc.Stage) {
		r.logger.Warn("unmodeled stage transition %s -> %s via %s", sc.Stage, newSc.Stage, d.tool)
	}
	r.persist(ctx, ev.UserID, newSc)
	r.recorder.RecordTurn(route, d.tool, status, time.Since(start))
	return nil
}

// persist writes the post-turn context. Put failures are logged and
// swallowed. The order_complete stage is the one exception: the payment
// handler has already deleted the session row, and re-persisting would
// resurrect it.
func (r *Router) persist(ctx context.Context, userID string, sc session.Context) {
	if sc.Stage == session.StageOrderComplete {
		return
	}
	if err := r.store.Put(ctx, userID, sc); err != nil {
		r.logger.Warn("persist context for %s: %v", userID, err)
		r.recorder.RecordGatewayError("session")
	}
}

// resolve picks the tool for the event. A nil dispatch means the turn was
// fully answered during resolution.
func (r *Router) resolve(ctx context.Context, ev chat.Event, sc *session.Context) (string, *dispatch) {
	if reply := chat.Normalize(ev.Interactive); reply != nil {
		if d := matchInteractive(reply.ID); d != nil {
			return routeInteractive, d
		}
		// Unmatched ids fall through to the oracle as if typed.
		if ev.Text == "" {
			ev.Text = reply.Title
		}
	}

	if ev.Location != nil {
		switch sc.Stage {
		case session.StageSelectingLocation, session.StageProvidingLocation:
			return routeInteractive, &dispatch{tool: tools.ProvideLocation, args: tools.Args{"location": ev.Location}}
		}
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return routeFallback, &dispatch{tool: tools.ShowWelcomeMessage, args: tools.Args{}}
	}

	if route, d := r.matchStageGrammar(ctx, ev.UserID, text, *sc); route != "" {
		return route, d
	}

	if isHistoryRequest(text) {
		return routeKeyword, &dispatch{tool: tools.ShowOrderHistory, args: tools.Args{}}
	}

	return r.askOracle(ctx, ev.UserID, text, *sc)
}

// matchStageGrammar keeps the structured multi-turn flows deterministic:
// while a stage expects specific input, its grammar wins over the oracle.
// An empty route means the stage had no claim on the text.
func (r *Router) matchStageGrammar(ctx context.Context, userID, text string, sc session.Context) (string, *dispatch) {
	switch sc.Stage {
	case session.StageCollectingPartySize:
		return routeStage, &dispatch{tool: tools.CollectPartySize, args: tools.Args{"text": text}}
	case session.StageCollectingArrivalTime:
		return routeStage, &dispatch{tool: tools.CollectArrivalTime, args: tools.Args{"text": text}}
	case session.StageProvidingLocation:
		return routeStage, &dispatch{tool: tools.ProvideLocation, args: tools.Args{"address": text}}
	case session.StageSelectingPayment:
		method, ok := tools.ParsePaymentText(text)
		if !ok {
			r.sendText(ctx, userID, sc, "Please choose how to pay: online 💳 or cash 💵")
			return routeStage, nil
		}
		if method == "cash" && (sc.ServiceType == session.ServiceDineIn || sc.ServiceType == session.ServicePickup) {
			method = session.PayCashCounter
		}
		return routeStage, &dispatch{tool: tools.ProcessPayment, args: tools.Args{"method": method}}
	}
	return "", nil
}

func (r *Router) askOracle(ctx context.Context, userID, text string, sc session.Context) (string, *dispatch) {
	start := time.Now()
	decision, err := r.oracle.Decide(ctx, text, sc)
	if err != nil {
		r.recorder.RecordOracleCall(r.oracleProvider, "error", time.Since(start))
		r.logger.Warn("oracle for %s: %v", userID, err)
		r.sendText(ctx, userID, sc, "Sorry, I didn't quite get that. Say \"menu\" to browse our food! 🍽️")
		return routeOracle, nil
	}
	r.recorder.RecordOracleCall(r.oracleProvider, "ok", time.Since(start))

	if decision.ToolCall == nil {
		if decision.Reply != "" {
			r.sendText(ctx, userID, sc, decision.Reply)
		}
		return routeOracle, nil
	}

	if problem := validate.ToolCall(decision.ToolCall); problem != nil {
		r.logger.Warn("oracle call rejected for %s: %v", userID, problem)
		r.sendText(ctx, userID, sc, problem.UserMessage)
		return routeOracle, nil
	}
	return routeOracle, &dispatch{tool: decision.ToolCall.Name, args: tools.Args(decision.ToolCall.Args)}
}

func (r *Router) sendText(ctx context.Context, userID string, sc session.Context, text string) {
	if err := r.messenger.SendText(ctx, userID, sc.Platform, text); err != nil {
		r.logger.Warn("send text to %s: %v", userID, err)
	}
}

// matchInteractive is the fixed id/prefix dispatch table.
func matchInteractive(id string) *dispatch {
	switch id {
	case "GET_STARTED":
		return &dispatch{tool: tools.ShowWelcomeMessage, args: tools.Args{}}
	case "browse_menu", "view_all_categories", "add_more_items":
		return &dispatch{tool: tools.ShowFoodMenu, args: tools.Args{}}
	case "get_recommendations":
		return &dispatch{tool: tools.RecommendFood, args: tools.Args{"tag": "random"}}
	case "view_order_history":
		return &dispatch{tool: tools.ShowOrderHistory, args: tools.Args{}}
	case "proceed_checkout":
		return &dispatch{tool: tools.ConfirmOrder, args: tools.Args{}}
	case "confirm_order":
		return &dispatch{tool: tools.ProcessOrderResponse, args: tools.Args{"response": "yes"}}
	case "cancel_order":
		return &dispatch{tool: tools.CancelOrder, args: tools.Args{}}
	case "confirm_cancel":
		return &dispatch{tool: tools.ConfirmCancel, args: tools.Args{}}
	case "back_to_cart":
		return &dispatch{tool: tools.ShowCartOptions, args: tools.Args{}}
	case "confirm_deposit":
		return &dispatch{tool: tools.ConfirmReservationDeposit, args: tools.Args{}}
	case "share_location", "type_address":
		return &dispatch{tool: tools.HandleLocationMethod, args: tools.Args{"method": id}}
	case "service_dine_in":
		return &dispatch{tool: tools.SelectServiceType, args: tools.Args{"service_type": session.ServiceDineIn}}
	case "service_delivery":
		return &dispatch{tool: tools.SelectServiceType, args: tools.Args{"service_type": session.ServiceDelivery}}
	case "service_pickup":
		return &dispatch{tool: tools.SelectServiceType, args: tools.Args{"service_type": session.ServicePickup}}
	case "pay_online":
		return &dispatch{tool: tools.ProcessPayment, args: tools.Args{"method": session.PayOnline}}
	case "pay_cod":
		return &dispatch{tool: tools.ProcessPayment, args: tools.Args{"method": session.PayCash}}
	case "pay_cash_counter":
		return &dispatch{tool: tools.ProcessPayment, args: tools.Args{"method": session.PayCashCounter}}
	}

	if category, ok := strings.CutPrefix(id, "cat_"); ok {
		return &dispatch{tool: tools.ShowCategoryItems, args: tools.Args{"category": category}}
	}
	if category, ok := strings.CutPrefix(id, "more_"); ok {
		return &dispatch{tool: tools.ShowCategoryItems, args: tools.Args{"category": category}}
	}
	if raw, ok := strings.CutPrefix(id, "add_"); ok {
		if foodID, err := strconv.Atoi(raw); err == nil {
			return &dispatch{tool: tools.AddToCart, args: tools.Args{"food_id": foodID}}
		}
	}
	return nil
}

var historyPhrases = []string{
	"order history", "my orders", "past orders", "previous order", "recent orders",
}

func isHistoryRequest(text string) bool {
	t := strings.ToLower(text)
	for _, p := range historyPhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}
