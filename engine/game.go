// Package engine implements the Makao shedding-game rules.
//
// The package is self-contained and dependency-free: time reaches it
// only through TurnTimer.Tick, randomness only through the seed given to
// NewGame, and everything the outside world needs to know leaves through
// the single-consumer notification funcs on Game. The service layer owns
// transport, persistence, and the real-time driver.
package engine

import (
	"fmt"
	"sort"
)

// GamePhase is one state of the per-turn state machine.
type GamePhase uint8

const (
	PhaseCardsDealing GamePhase = iota
	PhaseTakeOrDiscard
	PhaseOverbidOrTakePenalties
	PhasePassOrDiscard
	PhasePassOrDiscardNextSequencedCard
	PhaseRoundEnded
	PhaseGameEnded
)

func (p GamePhase) String() string {
	switch p {
	case PhaseCardsDealing:
		return "cards_dealing"
	case PhaseTakeOrDiscard:
		return "take_or_discard"
	case PhaseOverbidOrTakePenalties:
		return "overbid_or_take_penalties"
	case PhasePassOrDiscard:
		return "pass_or_discard"
	case PhasePassOrDiscardNextSequencedCard:
		return "pass_or_discard_sequenced"
	case PhaseRoundEnded:
		return "round_ended"
	case PhaseGameEnded:
		return "game_ended"
	}
	return "unknown"
}

// PlayerInfo is the seating configuration supplied at game start.
type PlayerInfo struct {
	ID   string
	Name string
	Seat int
	Bot  bool
}

// Player is one seat at the table. The hand back-reference is the only
// card state a player owns; CardOnAction tracks the card currently being
// acted on and InAction guards against re-entrant actions.
type Player struct {
	ID   string
	Name string
	Seat int
	Bot  bool

	Hand            *Hand
	CardOnAction    Card
	HasCardOnAction bool
	InAction        bool
}

// Board is the per-turn snapshot emitted to the external observer before
// phase logic runs: whose turn it is, their hand, and the top discard.
type Board struct {
	PlayerID   string
	Hand       []Card
	TopCard    Card
	HasTopCard bool
}

// Game is the turn/phase state machine. It owns one deck, one discard
// pile, and one hand per player; only it transitions phases, and only
// the active player's action mutates card state. All methods must be
// called from a single execution context; ticks and actions are never
// interleaved.
type Game struct {
	rules      Rules
	deck       *Deck
	discard    *DiscardPile
	players    []*Player
	phase      GamePhase
	phaseQueue []GamePhase
	current    int // index into players; -1 before the first turn
	direction  int // +1 or -1
	penalty    int // accumulated penalty cards to take
	turnNumber int
	timer      *TurnTimer
	rng        uint64
	strategy   Strategy

	// Single-consumer notifications. OnTurn receives a board snapshot
	// once per phase advance; OnGameEnd fires when the terminal state is
	// reached (empty winner id on a stalemate); OnNotice carries
	// human-readable status lines and is plumbing, not protocol.
	OnTurn    func(Board)
	OnGameEnd func(winnerID string)
	OnNotice  func(string)
}

// NewGame creates a game for the given seats, ordered by seat number.
// The seed fully determines the shuffle and the bot strategy's draws.
func NewGame(seed uint64, rules Rules, seats []PlayerInfo) *Game {
	if seed == 0 {
		seed = 1
	}
	g := &Game{
		rules:     rules,
		rng:       seed,
		phase:     PhaseCardsDealing,
		current:   -1,
		direction: 1,
	}
	g.discard = NewDiscardPile(rules)
	g.deck = NewDeck(g.discard, g.nextRand())
	g.timer = NewTurnTimer(rules.TurnSeconds, g.performForcedAction)
	g.discard.SetPlacementHook(g.cardPlaced)
	g.strategy = weightedStrategy{randn: g.randN}

	ordered := make([]PlayerInfo, len(seats))
	copy(ordered, seats)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Seat < ordered[j].Seat })
	for _, info := range ordered {
		g.players = append(g.players, &Player{
			ID:   info.ID,
			Name: info.Name,
			Seat: info.Seat,
			Bot:  info.Bot,
			Hand: NewHand(g.discard, info.ID),
		})
	}
	return g
}

func (g *Game) nextRand() uint64 {
	x := g.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.rng = x
	return x
}

// randN returns a random number in [0, n).
func (g *Game) randN(n int) int {
	return int(g.nextRand() % uint64(n))
}

// SetStrategy replaces the bot move-selection policy.
func (g *Game) SetStrategy(s Strategy) { g.strategy = s }

// Phase returns the current phase.
func (g *Game) Phase() GamePhase { return g.phase }

// Direction returns the turn direction, +1 or -1.
func (g *Game) Direction() int { return g.direction }

// PenaltyCount returns the accumulated penalty cards pending.
func (g *Game) PenaltyCount() int { return g.penalty }

// TurnNumber returns how many turns have started.
func (g *Game) TurnNumber() int { return g.turnNumber }

// Players returns the seating in turn order.
func (g *Game) Players() []*Player { return g.players }

// Deck returns the draw pile.
func (g *Game) Deck() *Deck { return g.deck }

// Pile returns the discard pile.
func (g *Game) Pile() *DiscardPile { return g.discard }

// CurrentPlayer returns the player whose turn it is, or nil before the
// first turn.
func (g *Game) CurrentPlayer() *Player {
	if g.current < 0 || g.current >= len(g.players) {
		return nil
	}
	return g.players[g.current]
}

// PlayerByID looks up a seat by player id.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// StartNewGame shuffles, deals the opening hands, seeds the discard
// pile, and starts the first turn.
func (g *Game) StartNewGame() {
	g.phase = PhaseCardsDealing
	g.current = -1
	g.direction = 1
	g.penalty = 0
	g.turnNumber = 0
	g.phaseQueue = g.phaseQueue[:0]
	g.discard.Clear()
	g.deck.Reset()
	hands := make([]*Hand, len(g.players))
	for i, p := range g.players {
		p.Hand.Clear()
		hands[i] = p.Hand
	}
	g.deck.DealInitial(hands, g.rules.HandSize)
	g.nextTurn() // deal complete
}

// Tick advances the active player's countdown by elapsed seconds. The
// external driver calls this at its own cadence, serialized with actions.
func (g *Game) Tick(elapsed float64) {
	if g.phase == PhaseGameEnded {
		return
	}
	g.timer.Tick(elapsed)
}

// TimerExpired reports whether the active countdown has run out.
func (g *Game) TimerExpired() bool { return g.timer.Expired() }

// ---------------------------------------------------------------------------
// Player actions. Out-of-turn, out-of-phase, and illegal actions are
// silent no-ops: the dispatch boundary already filtered malice, and the
// state machine only listens to the active player in a live phase.
// ---------------------------------------------------------------------------

// TakeCard draws a card from the deck into the active player's hand.
// Legal only in the take-or-discard phase.
func (g *Game) TakeCard(playerID string) {
	p := g.actingPlayer(playerID)
	if p == nil || g.phase != PhaseTakeOrDiscard {
		return
	}
	g.playerTake(p)
}

// Pass ends the active player's move without discarding. Legal only in
// the pass phases.
func (g *Game) Pass(playerID string) {
	p := g.actingPlayer(playerID)
	if p == nil {
		return
	}
	if g.phase != PhasePassOrDiscard && g.phase != PhasePassOrDiscardNextSequencedCard {
		return
	}
	g.finishMove(p)
}

// Discard places the given card from the active player's hand onto the
// discard pile, if the phase permits it.
func (g *Game) Discard(playerID string, c Card) {
	p := g.actingPlayer(playerID)
	if p == nil {
		return
	}
	idx := p.Hand.IndexOf(c)
	if idx < 0 {
		return
	}
	switch g.phase {
	case PhaseTakeOrDiscard, PhasePassOrDiscard:
		if !g.discard.CanPlace(c) {
			g.notice(fmt.Sprintf("%s cannot be placed on %s", c, g.topDesc()))
			return
		}
	case PhasePassOrDiscardNextSequencedCard:
		if !g.discard.CanPlace(c) || !g.discard.IsNextInSequence(c) {
			return
		}
	case PhaseOverbidOrTakePenalties:
		if !g.discard.IsDefendingCard(c) {
			return
		}
	default:
		return
	}
	g.playerDiscard(p, idx)
}

// actingPlayer returns the current player if the action is addressed to
// them, the phase is live, and no move is already in flight.
func (g *Game) actingPlayer(playerID string) *Player {
	if !g.livePhase() {
		return nil
	}
	p := g.CurrentPlayer()
	if p == nil || p.ID != playerID || p.InAction {
		return nil
	}
	return p
}

func (g *Game) livePhase() bool {
	switch g.phase {
	case PhaseTakeOrDiscard, PhaseOverbidOrTakePenalties,
		PhasePassOrDiscard, PhasePassOrDiscardNextSequencedCard:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Turn and phase machinery.
// ---------------------------------------------------------------------------

func (g *Game) nextTurn() {
	g.turnNumber++
	if g.rules.MaxTurns > 0 && g.turnNumber > g.rules.MaxTurns {
		g.endGame(nil)
		return
	}
	// Stalemate: nothing left to draw and nothing to match against.
	if g.deck.Len() == 0 && g.discard.Len() == 0 {
		g.endGame(nil)
		return
	}
	g.advanceIndex()
	g.timer.Stop()
	g.timer.Start()
	g.notice(fmt.Sprintf("%s turn.", g.players[g.current].Name))
	g.rebuildPhaseQueue()
	g.startNextPhase()
}

func (g *Game) startNextPhase() {
	if g.phase == PhaseGameEnded {
		return
	}
	if len(g.phaseQueue) == 0 {
		g.nextTurn()
		return
	}
	next := g.phaseQueue[0]
	g.phaseQueue = g.phaseQueue[1:]
	if next == PhaseGameEnded {
		return
	}
	p := g.players[g.current]
	g.phase = next
	g.emitBoard(p)
	g.timer.Reset()
	g.enterPhase(p)
}

// enterPhase applies whatever must happen the moment a phase becomes
// active: an already-expired clock forces the default action, bots act
// synchronously, and a defenseless human absorbs the penalty at once.
func (g *Game) enterPhase(p *Player) {
	if g.timer.Expired() {
		g.performForcedAction()
		return
	}
	if p.Bot {
		g.performBotAction(p)
		return
	}
	if g.phase == PhaseOverbidOrTakePenalties && len(p.Hand.DefendingCards()) == 0 {
		g.takePenaltyCards(p)
	}
}

func (g *Game) rebuildPhaseQueue() {
	g.phaseQueue = g.phaseQueue[:0]
	if g.penalty > 0 {
		g.phaseQueue = append(g.phaseQueue, PhaseOverbidOrTakePenalties)
	} else {
		g.phaseQueue = append(g.phaseQueue, PhaseTakeOrDiscard)
	}
}

func (g *Game) advanceIndex() {
	n := len(g.players)
	g.current = (g.current + g.direction) % n
	if g.current < 0 {
		g.current += n
	}
}

func (g *Game) emitBoard(p *Player) {
	if g.OnTurn == nil {
		return
	}
	top, ok := g.discard.Top()
	g.OnTurn(Board{
		PlayerID:   p.ID,
		Hand:       p.Hand.Cards(),
		TopCard:    top,
		HasTopCard: ok,
	})
}

// ---------------------------------------------------------------------------
// Move execution.
// ---------------------------------------------------------------------------

func (g *Game) playerTake(p *Player) {
	c, ok := g.deck.TakeCard(p.Hand)
	if ok {
		p.CardOnAction = c
		p.HasCardOnAction = true
		p.InAction = true
		g.checkTakenCard(c)
	}
	// Both piles exhausted is a dead end, not a fault: the move still
	// finishes so the turn can move on.
	g.finishMove(p)
}

// checkTakenCard grants a bonus pass-or-discard phase when a freshly
// taken card is immediately playable and the clock has not run out.
func (g *Game) checkTakenCard(c Card) {
	if g.phase == PhaseTakeOrDiscard && !g.timer.Expired() && g.discard.CanPlace(c) {
		g.phaseQueue = append(g.phaseQueue, PhasePassOrDiscard)
	}
}

func (g *Game) playerDiscard(p *Player, idx int) {
	c, ok := p.Hand.RemoveAt(idx)
	if !ok {
		return
	}
	p.CardOnAction = c
	p.HasCardOnAction = true
	p.InAction = true
	g.discard.Place(c) // special powers resolve synchronously here
	g.tryFinishGame(p)
	g.finishMove(p)
}

func (g *Game) finishMove(p *Player) {
	p.InAction = false
	g.startNextPhase()
}

// tryFinishGame ends the game when the discarder emptied their hand on
// their own move. The move is identified by InAction rather than the
// turn index, which a skip or two-player reverse has already advanced
// by the time the placed card settles.
func (g *Game) tryFinishGame(p *Player) {
	if p.Hand.Len() == 0 && g.livePhase() && p.InAction {
		g.endGame(p)
	}
}

func (g *Game) endGame(winner *Player) {
	if g.phase == PhaseGameEnded {
		return
	}
	g.timer.Stop()
	g.phase = PhaseGameEnded
	if g.OnGameEnd != nil {
		id := ""
		if winner != nil {
			id = winner.ID
		}
		g.OnGameEnd(id)
	}
}

// cardPlaced is the discard pile's single placement consumer. Special
// powers apply only while a live phase is running and the acting
// player's clock has not expired. The seed card dealt at game start
// lands during dealing and therefore has no effect.
func (g *Game) cardPlaced(pl Placement) {
	if !g.livePhase() || g.timer.Expired() {
		return
	}
	switch pl.Card.Rank {
	case g.rules.ReverseRank:
		if len(g.players) == 2 {
			// Reversing two players is a no-op, so treat it as a skip.
			g.advanceIndex()
		} else {
			g.direction = -g.direction
		}
	case g.rules.SkipRank:
		g.advanceIndex()
	case g.rules.DrawTwoRank:
		g.penalty += g.rules.PenaltyStep
	}
}

// ---------------------------------------------------------------------------
// Bot and forced (timer-expired) actions.
// ---------------------------------------------------------------------------

func (g *Game) performBotAction(p *Player) {
	if !g.livePhase() {
		return
	}
	switch g.phase {
	case PhaseOverbidOrTakePenalties:
		g.discardOrTakePenalties(p)
	default:
		g.botDiscard(p)
	}
}

func (g *Game) botDiscard(p *Player) {
	c, ok := g.strategy.ChooseDiscard(p.Hand, p.Hand.LegalDiscards())
	if ok {
		if idx := p.Hand.IndexOf(c); idx >= 0 {
			g.playerDiscard(p, idx)
			return
		}
	}
	switch g.phase {
	case PhaseTakeOrDiscard:
		g.notice(fmt.Sprintf("%s can't discard and takes a card", p.Name))
		g.playerTake(p)
	default:
		g.notice(fmt.Sprintf("%s can't discard and passes", p.Name))
		g.finishMove(p)
	}
}

// performForcedAction applies the phase's deterministic default when the
// turn timer expires (or a phase starts with the clock already out).
func (g *Game) performForcedAction() {
	p := g.CurrentPlayer()
	if p == nil || p.InAction || !g.livePhase() {
		return
	}
	switch g.phase {
	case PhaseTakeOrDiscard:
		g.playerTake(p)
	case PhasePassOrDiscard, PhasePassOrDiscardNextSequencedCard:
		g.finishMove(p)
	case PhaseOverbidOrTakePenalties:
		g.discardOrTakePenalties(p)
	}
}

// discardOrTakePenalties defends with a special card when one is held,
// otherwise absorbs the accumulated penalty.
func (g *Game) discardOrTakePenalties(p *Player) {
	defending := p.Hand.DefendingCards()
	if len(defending) == 0 {
		g.takePenaltyCards(p)
		return
	}
	c, ok := g.strategy.ChooseDiscard(p.Hand, defending)
	if !ok {
		c = defending[0]
	}
	if idx := p.Hand.IndexOf(c); idx >= 0 {
		g.playerDiscard(p, idx)
	}
}

func (g *Game) takePenaltyCards(p *Player) {
	count := g.penalty
	g.penalty = 0
	g.notice(fmt.Sprintf("take %d cards!", count))
	for i := 0; i < count; i++ {
		c, ok := g.deck.TakeCard(p.Hand)
		if i == count-1 && ok {
			p.CardOnAction = c
			p.HasCardOnAction = true
			p.InAction = true
			g.checkTakenCard(c)
		}
	}
	g.finishMove(p)
}

func (g *Game) notice(msg string) {
	if g.OnNotice != nil {
		g.OnNotice(msg)
	}
}

func (g *Game) topDesc() string {
	top, ok := g.discard.Top()
	if !ok {
		return "an empty pile"
	}
	return top.String()
}
