// internal/blackjack/blackjack.go
//
// Single-player blackjack against a dealer.
//   - A fresh shuffled 52-card deck per hand.
//   - Player hits until bust or stays; the dealer then draws below the stand value.
//   - The bet settles against a running balance.

package blackjack

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	DefaultBalance = 500
	DefaultStandOn = 17
)

var (
	ErrInvalidBet     = errors.New("bet must be positive and within balance")
	ErrHandInProgress = errors.New("hand already in progress")
	ErrNoHand         = errors.New("no hand in progress")
	ErrDeckEmpty      = errors.New("deck exhausted")
)

var (
	suits = []string{"hearts", "diamonds", "clubs", "spades"}
	ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "jack", "queen", "king", "ace"}
)

// Card is named "<rank>_of_<suit>", matching the client's card images.
type Card string

// Rank returns the part before "_of_".
func (c Card) Rank() string {
	r, _, _ := strings.Cut(string(c), "_of_")
	return r
}

// Suit returns the part after "_of_".
func (c Card) Suit() string {
	_, s, _ := strings.Cut(string(c), "_of_")
	return s
}

// Value is the card's face value with aces counted as 11.
func (c Card) Value() int {
	switch r := c.Rank(); r {
	case "jack", "queen", "king":
		return 10
	case "ace":
		return 11
	default:
		n, err := strconv.Atoi(r)
		if err != nil {
			return 0
		}
		return n
	}
}

// Deck is drawn from the end.
type Deck []Card

// NewDeck returns an ordered 52-card deck.
func NewDeck() Deck {
	d := make(Deck, 0, len(suits)*len(ranks))
	for _, s := range suits {
		for _, r := range ranks {
			d = append(d, Card(r+"_of_"+s))
		}
	}
	return d
}

// Shuffle is an in-place Fisher-Yates shuffle.
func (d Deck) Shuffle(rng *rand.Rand) {
	for i := len(d) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

// Draw pops the top card.
func (d *Deck) Draw() (Card, bool) {
	n := len(*d)
	if n == 0 {
		return "", false
	}
	c := (*d)[n-1]
	*d = (*d)[:n-1]
	return c, true
}

// HandValue totals a hand, demoting aces from 11 to 1 while the total exceeds 21.
func HandValue(hand []Card) int {
	total, aces := 0, 0
	for _, c := range hand {
		if c.Rank() == "ace" {
			aces++
		}
		total += c.Value()
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// Outcome of a finished hand.
type Outcome string

const (
	OutcomeNone       Outcome = ""
	OutcomePlayerBust Outcome = "player_bust"
	OutcomeDealerBust Outcome = "dealer_bust"
	OutcomePlayer     Outcome = "player"
	OutcomeDealer     Outcome = "dealer"
	OutcomePush       Outcome = "push"
)

// Delta is the balance change for a bet with this outcome.
func (o Outcome) Delta(bet int) int {
	switch o {
	case OutcomeDealerBust, OutcomePlayer:
		return bet
	case OutcomePlayerBust, OutcomeDealer:
		return -bet
	default:
		return 0
	}
}

// Game is a player's table: the balance carries over between hands.
type Game struct {
	ID       string  `json:"id"`
	Balance  int     `json:"balance"`
	Bet      int     `json:"bet"`
	Deck     Deck    `json:"-"`
	Player   []Card  `json:"player"`
	Dealer   []Card  `json:"dealer"`
	InHand   bool    `json:"inHand"`
	Outcome  Outcome `json:"outcome,omitempty"`
	StandsOn int     `json:"-"`
}

// New opens a table. Non-positive values fall back to the defaults.
func New(id string, balance, standOn int) *Game {
	if balance <= 0 {
		balance = DefaultBalance
	}
	if standOn <= 0 {
		standOn = DefaultStandOn
	}
	return &Game{ID: id, Balance: balance, StandsOn: standOn}
}

// Deal starts a hand with a freshly shuffled deck.
func (g *Game) Deal(bet int, rng *rand.Rand) error {
	if g.InHand {
		return ErrHandInProgress
	}
	if bet <= 0 || bet > g.Balance {
		return ErrInvalidBet
	}
	g.Deck = NewDeck()
	g.Deck.Shuffle(rng)
	g.Bet = bet
	g.Outcome = OutcomeNone
	g.Player = g.Player[:0]
	g.Dealer = g.Dealer[:0]
	for range 2 {
		c, _ := g.Deck.Draw()
		g.Player = append(g.Player, c)
	}
	for range 2 {
		c, _ := g.Deck.Draw()
		g.Dealer = append(g.Dealer, c)
	}
	g.InHand = true
	return nil
}

// Hit draws one card for the player. Going over 21 ends the hand.
func (g *Game) Hit() (Card, error) {
	if !g.InHand {
		return "", ErrNoHand
	}
	c, ok := g.Deck.Draw()
	if !ok {
		return "", ErrDeckEmpty
	}
	g.Player = append(g.Player, c)
	if HandValue(g.Player) > 21 {
		g.settle(OutcomePlayerBust)
	}
	return c, nil
}

// Stay plays out the dealer and settles the hand.
func (g *Game) Stay() (Outcome, error) {
	if !g.InHand {
		return OutcomeNone, ErrNoHand
	}
	for HandValue(g.Dealer) < g.StandsOn {
		c, ok := g.Deck.Draw()
		if !ok {
			break
		}
		g.Dealer = append(g.Dealer, c)
	}
	g.settle(Compare(HandValue(g.Player), HandValue(g.Dealer)))
	return g.Outcome, nil
}

// Compare decides a hand from both totals once the dealer has played.
func Compare(player, dealer int) Outcome {
	switch {
	case player > 21:
		return OutcomePlayerBust
	case dealer > 21:
		return OutcomeDealerBust
	case player > dealer:
		return OutcomePlayer
	case dealer > player:
		return OutcomeDealer
	default:
		return OutcomePush
	}
}

func (g *Game) settle(o Outcome) {
	g.Outcome = o
	g.Balance += o.Delta(g.Bet)
	g.InHand = false
}

// View is what the client sees. The dealer's hole card stays hidden while
// the hand is in progress.
type View struct {
	ID          string  `json:"id"`
	Balance     int     `json:"balance"`
	Bet         int     `json:"bet"`
	Player      []Card  `json:"player"`
	PlayerValue int     `json:"playerValue"`
	Dealer      []Card  `json:"dealer"`
	DealerValue int     `json:"dealerValue"`
	InHand      bool    `json:"inHand"`
	Outcome     Outcome `json:"outcome,omitempty"`
	Broke       bool    `json:"broke"`
}

// View renders the table for the player.
func (g *Game) View() View {
	v := View{
		ID:          g.ID,
		Balance:     g.Balance,
		Bet:         g.Bet,
		Player:      append([]Card(nil), g.Player...),
		PlayerValue: HandValue(g.Player),
		InHand:      g.InHand,
		Outcome:     g.Outcome,
		Broke:       !g.InHand && g.Balance <= 0,
	}
	if g.InHand && len(g.Dealer) > 0 {
		v.Dealer = []Card{g.Dealer[0]}
	} else {
		v.Dealer = append([]Card(nil), g.Dealer...)
	}
	v.DealerValue = HandValue(v.Dealer)
	return v
}
