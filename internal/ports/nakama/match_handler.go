package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"gooseduck/internal/app"
	"gooseduck/internal/bot"
	"gooseduck/internal/config"
	"gooseduck/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// matchLabel is published as the Nakama match label for listing queries.
type matchLabel struct {
	Game  string `json:"game"`
	Phase string `json:"phase"`
	Open  int    `json:"open"`
}

// textRequest carries a free-text client message (discussion or chat).
type textRequest struct {
	Content string `json:"content"`
}

// errorPayload is sent to the offending client on a rejected request.
type errorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MatchState holds the authoritative runtime state for one session:
// a single human presence plus the scripted participants inside the game.
type MatchState struct {
	Presences   map[string]runtime.Presence `json:"-"`
	HumanUserID string                      `json:"human_user_id"`
	Scenario    *config.Scenario            `json:"-"`
	Game        *app.Game                   `json:"-"`
	Started     bool                        `json:"started"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit loads the scenario, builds the AI brain from environment
// configuration and prepares an idle game in the lobby phase.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	dataDir := "data"
	if v, ok := env["gooseduck_data_dir"]; ok && v != "" {
		dataDir = v
	}

	scenario, err := config.Load(dataDir)
	if err != nil {
		logger.Error("MatchInit: Failed to load scenario from %s: %v", dataDir, err)
		return nil, 0, ""
	}

	brain := buildBrain(env, logger)

	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		Scenario:  scenario,
		Game:      app.NewGame(scenario, brain, logger, nil),
	}

	labelBytes, err := json.Marshal(matchLabel{Game: "gooseduck", Phase: "lobby", Open: 1})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

// buildBrain picks the LLM brain when an API key is configured and the
// rule-based fallback otherwise.
func buildBrain(env map[string]string, logger runtime.Logger) app.Brain {
	apiKey := env["gooseduck_llm_api_key"]
	model := env["gooseduck_llm_model"]
	baseURL := env["gooseduck_llm_base_url"]

	if apiKey == "" || model == "" {
		logger.Warn("MatchInit: No LLM credentials configured, using rule-based fallback brain.")
		return bot.NewFallbackBrain(nil)
	}

	client, err := bot.NewOpenRouterClient(apiKey, model, baseURL)
	if err != nil {
		logger.Error("MatchInit: Failed to build LLM client: %v", err)
		return bot.NewFallbackBrain(nil)
	}
	return bot.NewLLMBrain(client, logger)
}

// MatchJoinAttempt admits a single human per match.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if matchState.HumanUserID != "" && matchState.HumanUserID != presence.GetUserId() {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if matchState.HumanUserID == "" {
			matchState.HumanUserID = p.GetUserId()
			logger.Info("MatchJoin: Human %s seated as the player.", p.GetUserId())
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	if matchState.Started {
		mh.sendSnapshot(matchState, dispatcher, logger)
	}
	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		if matchState.HumanUserID == p.GetUserId() {
			logger.Info("MatchLeave: Human player left, terminating match.")
			return nil
		}
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, msg := range messages {
		if msg.GetUserId() != matchState.HumanUserID {
			logger.Warn("MatchLoop: Message from non-player %s ignored.", msg.GetUserId())
			continue
		}

		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger)
		case OpSubmitAction:
			mh.handleSubmitAction(ctx, matchState, dispatcher, logger, msg)
		case OpDiscussionMessage:
			mh.handleDiscussionMessage(ctx, matchState, dispatcher, logger, msg)
		case OpDiscussionNext:
			mh.handleDiscussionNext(ctx, matchState, dispatcher, logger)
		case OpChatMessage:
			mh.handleChatMessage(ctx, matchState, dispatcher, logger, msg)
		case OpChatEnd:
			mh.handleChatEnd(ctx, matchState, dispatcher, logger)
		case OpResetGame:
			mh.handleResetGame(ctx, matchState, dispatcher, logger)
		case OpGetMap:
			mh.sendJSON(matchState, dispatcher, logger, OpMapInfo, matchState.Game.MapInfo())
		case OpAdminOverview:
			mh.sendJSON(matchState, dispatcher, logger, OpAdminState, matchState.Game.AdminOverview())
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	// A dead human no longer submits actions; the tick keeps the AI
	// playing until the game ends on its own.
	if matchState.Started && matchState.Game.AdvanceUnattended(ctx) {
		mh.updateLabel(matchState, dispatcher, logger)
		mh.sendSnapshot(matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Started {
		mh.sendError(state, dispatcher, logger, 409, "game already started")
		return
	}

	snapshot, err := state.Game.Start(ctx)
	if err != nil {
		logger.Error("StartGame: %v", err)
		mh.sendError(state, dispatcher, logger, mapErrorCode(err), err.Error())
		return
	}
	state.Started = true

	mh.updateLabel(state, dispatcher, logger)
	mh.sendJSON(state, dispatcher, logger, OpSnapshot, snapshot)
	logger.Info("StartGame: Game started in phase %s.", state.Game.Phase())
}

func (mh *matchHandler) handleSubmitAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !state.Started {
		mh.sendError(state, dispatcher, logger, 409, "game not started")
		return
	}

	var act app.Action
	if err := json.Unmarshal(msg.GetData(), &act); err != nil {
		logger.Warn("SubmitAction: Invalid payload from %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, 400, "invalid action payload")
		return
	}

	snapshot, err := state.Game.ExecuteAction(ctx, app.HumanID, act)
	if err != nil {
		logger.Warn("SubmitAction: %s rejected: %v", act.Kind, err)
		mh.sendError(state, dispatcher, logger, mapErrorCode(err), err.Error())
		return
	}

	mh.sendJSON(state, dispatcher, logger, OpSnapshot, snapshot)
	mh.sendPhaseState(state, dispatcher, logger)
}

func (mh *matchHandler) handleDiscussionMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var req textRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(state, dispatcher, logger, 400, "invalid payload")
		return
	}

	ds, err := state.Game.AddDiscussionMessage(ctx, app.HumanID, req.Content)
	if err != nil {
		mh.sendError(state, dispatcher, logger, mapErrorCode(err), err.Error())
		return
	}

	mh.sendJSON(state, dispatcher, logger, OpDiscussionState, ds)
	mh.refreshSnapshot(state, dispatcher, logger)
}

func (mh *matchHandler) handleDiscussionNext(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	state.Game.AdvanceDiscussion(ctx)
	mh.sendJSON(state, dispatcher, logger, OpDiscussionState, state.Game.DiscussionState())
	mh.refreshSnapshot(state, dispatcher, logger)
}

func (mh *matchHandler) handleChatMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var req textRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(state, dispatcher, logger, 400, "invalid payload")
		return
	}

	cs, err := state.Game.AddChatMessage(ctx, app.HumanID, req.Content)
	if err != nil {
		mh.sendError(state, dispatcher, logger, mapErrorCode(err), err.Error())
		return
	}

	mh.sendJSON(state, dispatcher, logger, OpChatState, cs)
	mh.refreshSnapshot(state, dispatcher, logger)
}

func (mh *matchHandler) handleChatEnd(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	cs, err := state.Game.EndChat(ctx)
	if err != nil {
		mh.sendError(state, dispatcher, logger, mapErrorCode(err), err.Error())
		return
	}

	mh.sendJSON(state, dispatcher, logger, OpChatState, cs)
	mh.refreshSnapshot(state, dispatcher, logger)
}

func (mh *matchHandler) handleResetGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	state.Game.Reset()
	state.Started = false
	mh.updateLabel(state, dispatcher, logger)
	mh.handleStartGame(ctx, state, dispatcher, logger)
}

// sendPhaseState pushes the discussion or chat sub-state when the last
// action moved the game into one.
func (mh *matchHandler) sendPhaseState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if cs := state.Game.ChatState(); cs != nil && cs.Active {
		mh.sendJSON(state, dispatcher, logger, OpChatState, cs)
	}
	switch state.Game.Phase() {
	case domain.PhaseDiscussion, domain.PhaseVoting:
		mh.sendJSON(state, dispatcher, logger, OpDiscussionState, state.Game.DiscussionState())
	}
}

func (mh *matchHandler) refreshSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	mh.sendSnapshot(state, dispatcher, logger)
}

func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	snapshot, err := state.Game.Snapshot(app.HumanID)
	if err != nil {
		logger.Error("Snapshot: %v", err)
		return
	}
	mh.sendJSON(state, dispatcher, logger, OpSnapshot, snapshot)
}

// sendJSON marshals and dispatches a payload to the human presence only.
func (mh *matchHandler) sendJSON(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload interface{}) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal payload for op %d: %v", opCode, err)
		return
	}

	presence, ok := state.Presences[state.HumanUserID]
	if !ok {
		return
	}
	dispatcher.BroadcastMessage(opCode, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	mh.sendJSON(state, dispatcher, logger, OpGameError, errorPayload{Code: code, Message: message})
}

// mapErrorCode translates app sentinel errors to client error codes.
func mapErrorCode(err error) int {
	switch {
	case errors.Is(err, app.ErrInvalidTarget):
		return 400
	case errors.Is(err, app.ErrAbilityUnavailable):
		return 403
	case errors.Is(err, app.ErrConflictResolved):
		return 409
	case errors.Is(err, app.ErrIllegalState):
		return 422
	default:
		return 500
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	open := 0
	if state.HumanUserID == "" {
		open = 1
	}
	phase := "lobby"
	if state.Started {
		phase = string(state.Game.Phase())
	}

	labelBytes, err := json.Marshal(matchLabel{Game: "gooseduck", Phase: phase, Open: open})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
