package domain

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Card represents a single tarot card in a deck.
type Card struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Short    string   `json:"short"`
}

// DrawnCard is a card that has been drawn as one of the user's options.
type DrawnCard struct {
	Card
	Position int `json:"position"`
}

// Deck is a collection of tarot cards.
type Deck struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// PendingSelection is the stored state of an unfinished draw-then-choose
// interaction. At most one exists per user; a new draw overwrites it.
type PendingSelection struct {
	UserID   string      `json:"user_id"`
	Question string      `json:"question"`
	Cards    []DrawnCard `json:"cards"`
}

// SelectionCount is how many cards a draw offers the user.
const SelectionCount = 3
