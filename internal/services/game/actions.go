package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/services/oracle"
)

// Action is one move submitted by a player
type Action struct {
	GameID  model.GameID
	ActorID model.PlayerID
	Type    model.MessageType
	// Content is the question or guess; ignored for hints
	Content string
	// ExpectedVersion, when set, must equal the game's version
	ExpectedVersion *int64
}

// ActionResult is what a player sees after their action
type ActionResult struct {
	AuthorMessage   model.Message
	OpponentMessage *model.Message // Only in ai mode when the game continued
	Status          model.GameStatus
	WinnerID        model.PlayerID
	Game            *model.Game // Redacted with View
}

// validate checks the action in isolation, before any state is read
func (a *Action) validate() error {
	if !a.Type.Valid() {
		return model.ErrInvalidType
	}
	a.Content = strings.TrimSpace(a.Content)
	if a.Type != model.MessageTypeHint && a.Content == "" {
		return model.ErrEmptyContent
	}
	return nil
}

// SubmitAction applies a question, guess or hint for the player holding the
// turn. In ai mode the opponent's reply turn runs before it returns.
//
// Oracle failures are returned as *model.OracleError. Messages already
// appended at that point stay in the game.
func (c *Controller) SubmitAction(ctx context.Context, action Action) (*ActionResult, error) {
	if err := action.validate(); err != nil {
		return nil, err
	}

	unlock := c.locks.lock(action.GameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, action.GameID)
	if err != nil {
		return nil, err
	}
	if !game.IsActive() {
		return nil, model.ErrGameComplete
	}
	if !game.IsParticipant(action.ActorID) || action.ActorID == model.AIPlayerID {
		return nil, model.ErrNotInGame
	}
	if game.CurrentTurn != action.ActorID {
		return nil, model.ErrNotPlayerTurn
	}

	version := game.Version
	if action.ExpectedVersion != nil {
		if *action.ExpectedVersion != game.Version {
			return nil, model.ErrStaleGame
		}
		version = *action.ExpectedVersion
	}
	if _, err := c.storage.ClaimTurn(ctx, game.ID, action.ActorID, version, turnHolder(game)); err != nil {
		return nil, err
	}

	logger := c.logger.With(
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(action.ActorID)),
		slog.String("type", string(action.Type)),
	)

	var authorMsg model.Message
	switch action.Type {
	case model.MessageTypeGuess:
		authorMsg, err = c.playGuess(ctx, game, action)
	case model.MessageTypeQuestion:
		authorMsg, err = c.playQuestion(ctx, game, action)
	case model.MessageTypeHint:
		authorMsg, err = c.playHint(ctx, game, action)
	}
	if err != nil {
		logger.Error("action failed", slog.String("error", err.Error()))
		c.returnTurn(ctx, game.ID, action.ActorID, logger)
		return nil, err
	}
	game.Messages = append(game.Messages, authorMsg)

	result := &ActionResult{AuthorMessage: authorMsg}

	if authorMsg.Type == model.MessageTypeGuess && authorMsg.ResponseText() == model.ResponseCorrect {
		c.returnTurn(ctx, game.ID, action.ActorID, logger)
		if err := c.complete(ctx, game, action.ActorID); err != nil {
			return nil, err
		}
		logger.Info("game won")
		return c.finish(ctx, game.ID, result)
	}

	switch game.Mode {
	case model.GameModeAI:
		opponentMsg, err := c.playOpponent(ctx, game)
		if opponentMsg != nil {
			result.OpponentMessage = opponentMsg
		}
		if err != nil {
			logger.Error("opponent turn failed", slog.String("error", err.Error()))
			c.returnTurn(ctx, game.ID, action.ActorID, logger)
			return nil, err
		}
		if opponentMsg.ResponseText() == model.ResponseCorrect {
			logger.Info("game won by opponent")
			return c.finish(ctx, game.ID, result)
		}
		if err := c.setTurn(ctx, game, action.ActorID); err != nil {
			return nil, err
		}
	case model.GameModeFriend:
		next := game.OtherPlayer(action.ActorID)
		if next == "" {
			// Nobody has joined yet, so the creator keeps playing
			next = action.ActorID
		}
		if err := c.setTurn(ctx, game, next); err != nil {
			return nil, err
		}
	}

	logger.Info("action applied")
	return c.finish(ctx, game.ID, result)
}

// turnHolder is who holds the turn while a claimed human move is applied.
// In ai mode the opponent moves next; a friend game has no holder.
func turnHolder(game *model.Game) model.PlayerID {
	if game.Mode == model.GameModeAI {
		return model.AIPlayerID
	}
	return model.NoTurn
}

// returnTurn gives the turn back to the actor after a move that did not
// pass it on. It runs even if ctx was cancelled mid-move.
func (c *Controller) returnTurn(ctx context.Context, id model.GameID, actor model.PlayerID, logger *slog.Logger) {
	if err := c.storage.SetTurn(context.WithoutCancel(ctx), id, actor); err != nil && !errors.Is(err, model.ErrGameComplete) {
		logger.Error("failed to return turn", slog.String("error", err.Error()))
	}
}

func (c *Controller) newMessage(typ model.MessageType, content string, author model.PlayerID) model.Message {
	return model.Message{
		ID:        model.MessageID(c.random.ID()),
		Type:      typ,
		Content:   content,
		AuthorID:  author,
		Timestamp: c.clock.Now(),
	}
}

func (c *Controller) playGuess(ctx context.Context, game *model.Game, action Action) (model.Message, error) {
	msg := c.newMessage(model.MessageTypeGuess, action.Content, action.ActorID)
	if IsCorrectGuess(action.Content, game.SecretWord) {
		msg.Response = model.StringPtr(model.ResponseCorrect)
	} else {
		msg.Response = model.StringPtr(model.ResponseIncorrect)
	}
	return msg, c.append(ctx, game.ID, msg)
}

func (c *Controller) playQuestion(ctx context.Context, game *model.Game, action Action) (model.Message, error) {
	label, err := c.judge(ctx, action.Content, game.SecretWord)
	if err != nil {
		return model.Message{}, err
	}
	msg := c.newMessage(model.MessageTypeQuestion, action.Content, action.ActorID)
	msg.Response = model.StringPtr(label)
	return msg, c.append(ctx, game.ID, msg)
}

// playHint turns a hint request into a judged question suggested by the advisor
func (c *Controller) playHint(ctx context.Context, game *model.Game, action Action) (model.Message, error) {
	suggestion, err := c.oracles.Advisor.Suggest(ctx, oracle.HintRequest{
		SecretWord: game.SecretWord,
		History:    game.MessagesBy(action.ActorID),
		PriorHints: game.HintsBy(action.ActorID),
	})
	if err != nil {
		return model.Message{}, model.NewOracleError("hint", err)
	}

	label, err := c.judge(ctx, suggestion, game.SecretWord)
	if err != nil {
		return model.Message{}, err
	}

	msg := c.newMessage(model.MessageTypeHint, suggestion, action.ActorID)
	msg.Response = model.StringPtr(label)
	if err := c.append(ctx, game.ID, msg); err != nil {
		return model.Message{}, err
	}

	hints, err := c.storage.IncrementHints(ctx, game.ID)
	if err != nil {
		return model.Message{}, err
	}
	game.HintsUsed = hints
	return msg, nil
}

// playOpponent runs the opponent's turn: the move is appended unjudged, then
// patched with its response. The returned message is non-nil once appended.
func (c *Controller) playOpponent(ctx context.Context, game *model.Game) (*model.Message, error) {
	move, err := c.oracles.Opponent.NextMove(ctx, game.Messages)
	if err != nil {
		return nil, model.NewOracleError("opponent", err)
	}
	move = strings.TrimSpace(move)

	typ := model.MessageTypeQuestion
	if oracle.IsGuess(move) {
		typ = model.MessageTypeGuess
	}
	msg := c.newMessage(typ, move, model.AIPlayerID)
	if err := c.append(ctx, game.ID, msg); err != nil {
		return nil, err
	}

	var response string
	if typ == model.MessageTypeGuess {
		response = model.ResponseIncorrect
		if NormalizeSecret(move) == NormalizeSecret(game.SecretWord) {
			response = model.ResponseCorrect
		}
	} else {
		response, err = c.judge(ctx, move, game.SecretWord)
		if err != nil {
			return &msg, err
		}
	}

	if err := c.storage.PatchMessageResponse(ctx, game.ID, msg.ID, response); err != nil {
		return &msg, err
	}
	msg.Response = model.StringPtr(response)
	game.Messages = append(game.Messages, msg)
	c.publish(ctx, game.ID, model.EventMessageJudged, model.AIPlayerID, model.MessagePayload{Message: msg.Clone()})

	if response == model.ResponseCorrect {
		if err := c.complete(ctx, game, model.AIPlayerID); err != nil {
			return &msg, err
		}
	}
	return &msg, nil
}

func (c *Controller) judge(ctx context.Context, question, secret string) (string, error) {
	label, err := c.oracles.Judge.Judge(ctx, question, secret)
	if err != nil {
		return "", model.NewOracleError("judge", err)
	}
	return oracle.CoerceLabel(label), nil
}

func (c *Controller) append(ctx context.Context, id model.GameID, msg model.Message) error {
	if err := c.storage.AppendMessage(ctx, id, msg); err != nil {
		return err
	}
	c.publish(ctx, id, model.EventMessageAppended, msg.AuthorID, model.MessagePayload{Message: msg.Clone()})
	return nil
}

func (c *Controller) setTurn(ctx context.Context, game *model.Game, playerID model.PlayerID) error {
	if err := c.storage.SetTurn(ctx, game.ID, playerID); err != nil {
		return err
	}
	game.CurrentTurn = playerID
	c.publish(ctx, game.ID, model.EventTurnChanged, playerID, model.TurnChangedPayload{
		CurrentTurn: playerID,
		Version:     game.Version + 1,
	})
	return nil
}

func (c *Controller) complete(ctx context.Context, game *model.Game, winnerID model.PlayerID) error {
	if err := c.storage.SetCompleted(ctx, game.ID, winnerID); err != nil {
		return err
	}
	game.Status = model.GameStatusCompleted
	game.WinnerID = winnerID
	c.publish(ctx, game.ID, model.EventGameCompleted, winnerID, model.GameCompletedPayload{
		WinnerID:   winnerID,
		SecretWord: game.SecretWord,
	})
	return nil
}

// finish reloads the game and fills in the result's state fields
func (c *Controller) finish(ctx context.Context, id model.GameID, result *ActionResult) (*ActionResult, error) {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Status = game.Status
	result.WinnerID = game.WinnerID
	result.Game = View(game)
	return result, nil
}
