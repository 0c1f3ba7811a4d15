package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/coincrate/game/engine"
	"github.com/wricardo/coincrate/game/shell"
	"github.com/wricardo/coincrate/game/solver"
)

// WinMessage is shown once every coin of a round has been collected
const WinMessage = shell.WinBanner

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	log      logrus.FieldLogger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return NewGameServiceWithLogger(sessions, configs, logrus.StandardLogger())
}

// NewGameServiceWithLogger creates a game service that logs moves and lifecycle events to log
func NewGameServiceWithLogger(sessions SessionManager, configs ConfigManager, log logrus.FieldLogger) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		log:      log,
	}
}

// configID returns the identifier a session's configuration is listed under
func (s *gameServiceImpl) configID(sess *Session) string {
	if sess.ConfigID != "" {
		return sess.ConfigID
	}
	if availableConfigs, err := s.configs.ListConfigs(); err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == sess.Config.Name {
				return cfg.ConfigID
			}
		}
	}
	if sess.Config.Name == "" {
		return "default"
	}
	return sess.Config.Name
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.configID(sess),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		RoundsPlayed:   sess.Engine.GetRoundsPlayed(),
		State:          sess.Engine.Snapshot(),
		RoundConfig:    sess.Config,
	}
}

// session looks up a session and marks it as accessed
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.RoundConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				// Provide helpful error message with available options
				if availableConfigs, listErr := s.configs.ListConfigs(); listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configName

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"config":  s.configID(sess),
		"round":   sess.Engine.GetRoundID(),
	}).Info("Session started")

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return err
	}
	return nil
}

// Move executes a single move for a session. An unknown direction is
// rejected with ErrUnknownDirection before anything changes.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, restart bool) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if restart {
		ev, err := s.restart(sess)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	from := sess.Engine.GetPlayerPosition()
	coinsBefore := sess.Engine.GetCoinsCollected()
	before := sess.Engine.Snapshot()
	outcome := sess.Engine.Move(dir)
	state := sess.Engine.Snapshot()

	result := &MoveResult{
		Success:   outcome.Accepted(),
		Outcome:   outcome,
		State:     state,
		Events:    append(events, moveEvents(dir, outcome, from, state)...),
		LocalView: sess.Engine.GetLocalView(),
	}
	result.Message = describeOutcome(dir, outcome, state)

	if outcome.Accepted() {
		result.Step = &StepInfo{
			Idx:         1,
			Dir:         dir.String(),
			From:        from,
			To:          state.Player,
			Outcome:     outcome,
			CoinsBefore: coinsBefore,
			CoinsAfter:  state.CoinsCollected,
			Victory:     state.Status == engine.Won,
		}
	} else {
		result.AttemptedTo = attemptInfo(before, dir)
	}

	s.logMove(sess, dir, outcome, state)
	return result, nil
}

// BulkMove executes multiple moves in sequence. It stops at the first blocked
// move or once the round is won. Every direction is parsed before any move runs.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (*BulkMoveResult, error) {
	dirs := make([]engine.Direction, 0, len(moves))
	for i, move := range moves {
		dir, err := engine.ParseDirection(move)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		dirs = append(dirs, dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if restart {
		ev, err := s.restart(sess)
		if err != nil {
			return nil, err
		}
		result.Events = append(result.Events, ev)
	}

	start := sess.Engine.Snapshot()
	result.StartPos = start.Player
	result.CoinsBefore = start.CoinsCollected

	// Limit moves to prevent abuse
	if len(dirs) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		dirs = dirs[:engine.MaxBulkMoves]
	}

	for i, dir := range dirs {
		if sess.Engine.IsWon() {
			if result.MovesExecuted == 0 {
				result.Success = false
				result.StopReasonCode = StopAlreadyWon
				result.StoppedReason = "round already won, restart to keep playing"
			} else {
				result.StopReasonCode = StopVictory
				result.StoppedReason = "all coins collected"
			}
			result.StoppedOnMove = i + 1
			break
		}

		before := sess.Engine.Snapshot()
		outcome := sess.Engine.Move(dir)
		after := sess.Engine.Snapshot()
		s.logMove(sess, dir, outcome, after)

		if !outcome.Accepted() {
			result.Success = false
			result.StopReasonCode = StopBlocked
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, dir)
			result.StoppedOnMove = i + 1
			result.AttemptedTo = attemptInfo(before, dir)
			result.Events = append(result.Events, moveEvents(dir, outcome, before.Player, after)...)
			break
		}

		result.MovesExecuted++
		result.Events = append(result.Events, moveEvents(dir, outcome, before.Player, after)...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:         i + 1,
			Dir:         dir.String(),
			From:        before.Player,
			To:          after.Player,
			Outcome:     outcome,
			CoinsBefore: before.CoinsCollected,
			CoinsAfter:  after.CoinsCollected,
			Victory:     after.Status == engine.Won,
		})
	}

	end := sess.Engine.Snapshot()
	result.State = end
	result.EndPos = end.Player
	result.CoinsAfter = end.CoinsCollected
	result.Won = end.Status == engine.Won
	if result.Won && result.StopReasonCode == "" {
		result.StopReasonCode = StopVictory
	}
	if result.Won {
		result.Message = WinMessage
	} else {
		result.Message = coinsMessage(end)
	}

	for _, dir := range sess.Engine.GetPossibleMoves() {
		result.PossibleMoves = append(result.PossibleMoves, dir.String())
	}
	result.LocalView = sess.Engine.GetLocalView()

	return result, nil
}

// Restart discards the current round of a session and builds a new one
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.restart(sess); err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// restart rebuilds the round of sess. Callers hold s.mu.
func (s *gameServiceImpl) restart(sess *Session) (GameEvent, error) {
	snapshot, err := sess.Engine.Restart()
	if err != nil {
		return GameEvent{}, fmt.Errorf("failed to restart round: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"round":   snapshot.RoundID,
		"rounds":  sess.Engine.GetRoundsPlayed(),
	}).Info("Round restarted")

	return GameEvent{
		Type:      EventRestart,
		Message:   "New round started",
		Timestamp: time.Now(),
		Position:  snapshot.Player,
	}, nil
}

// GetGameState retrieves the current round of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// Hint suggests the next move towards the nearest coin
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Snapshot()
	result := &HintResult{Unreachable: engine.UnreachableCoins(state)}

	if state.Status == engine.Won {
		result.Message = "Round already won. Restart to play again."
		return result, nil
	}

	if _, distance, ok := engine.FindNearestCoin(state); ok {
		result.CrowDistance = distance
	}

	path := solver.NextMoves(state, 0)
	if len(path) == 0 {
		result.Message = "No coin can be reached from here. Restart for a new round."
		return result, nil
	}

	result.Found = true
	result.Direction = path[0].String()
	result.Distance = len(path)
	pos := state.Player
	for _, dir := range path {
		pos = pos.Add(dir)
		result.Path = append(result.Path, pos)
		result.Moves = append(result.Moves, dir.String())
	}
	result.Message = fmt.Sprintf("Go %s, the nearest coin is %d moves away", result.Direction, result.Distance)
	return result, nil
}

// ListConfigs returns available round configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific round configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.RoundConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a round configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.RoundConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) logMove(sess *Session, dir engine.Direction, outcome engine.MoveOutcome, state *engine.Snapshot) {
	entry := s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"round":   state.RoundID,
		"dir":     dir.String(),
		"outcome": outcome.String(),
		"coins":   state.CoinsCollected,
	})
	if state.Status == engine.Won && outcome == engine.CoinCollected {
		entry.Info("Round won")
		return
	}
	entry.Debug("Move")
}

// moveEvents generates the events for a single resolved move
func moveEvents(dir engine.Direction, outcome engine.MoveOutcome, from engine.Position, state *engine.Snapshot) []GameEvent {
	now := time.Now()
	switch outcome {
	case engine.Blocked:
		return []GameEvent{{
			Type:      EventBlocked,
			Message:   fmt.Sprintf("Move %s blocked at (%d,%d)", dir, from.X, from.Y),
			Timestamp: now,
			Position:  from,
		}}
	case engine.Pushed:
		box := state.Player.Add(dir)
		return []GameEvent{{
			Type:      EventPush,
			Message:   fmt.Sprintf("Pushed box %s to (%d,%d)", dir, box.X, box.Y),
			Timestamp: now,
			Position:  state.Player,
		}}
	case engine.CoinCollected:
		events := []GameEvent{{
			Type:      EventCoin,
			Message:   fmt.Sprintf("Coin collected at (%d,%d): %d/%d", state.Player.X, state.Player.Y, state.CoinsCollected, state.TotalCoins),
			Timestamp: now,
			Position:  state.Player,
		}}
		if state.Status == engine.Won {
			events = append(events, GameEvent{
				Type:      EventVictory,
				Message:   "All coins collected!",
				Timestamp: now,
				Position:  state.Player,
			})
		}
		return events
	}
	return []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s to (%d,%d)", dir, state.Player.X, state.Player.Y),
		Timestamp: now,
		Position:  state.Player,
	}}
}

func describeOutcome(dir engine.Direction, outcome engine.MoveOutcome, state *engine.Snapshot) string {
	if state.Status == engine.Won {
		if outcome == engine.Blocked {
			return "Round already won. " + WinMessage
		}
		return WinMessage
	}
	switch outcome {
	case engine.Blocked:
		return fmt.Sprintf("Can't move %s. %s", dir, coinsMessage(state))
	case engine.Pushed:
		return fmt.Sprintf("Pushed a box %s. %s", dir, coinsMessage(state))
	case engine.CoinCollected:
		return fmt.Sprintf("Coin collected! %s", coinsMessage(state))
	}
	return coinsMessage(state)
}

func coinsMessage(state *engine.Snapshot) string {
	return fmt.Sprintf("Coins: %d/%d", state.CoinsCollected, state.TotalCoins)
}

// attemptInfo describes the cell a blocked move tried to enter
func attemptInfo(before *engine.Snapshot, dir engine.Direction) *AttemptInfo {
	target := before.Player.Add(dir)
	cell := before.At(target)
	info := &AttemptInfo{
		X:     target.X,
		Y:     target.Y,
		Cell:  cell,
		Glyph: string(cell.Glyph()),
	}
	if cell == engine.Obstacle {
		info.Beyond = before.At(target.Add(dir))
	}
	return info
}
