package domain

// DrawCards draws n unique cards from deck using the provided RNG.
// Positions are 1-based.
func DrawCards(deck Deck, n int, rng RNG) ([]DrawnCard, error) {
	if n < 1 || n > 10 {
		return nil, ErrInvalidN
	}
	if n > len(deck.Cards) {
		return nil, ErrNExceedsDeck
	}

	// Fisher-Yates partial shuffle: only need first n elements.
	indices := make([]int, len(deck.Cards))
	for i := range indices {
		indices[i] = i
	}
	for i := len(indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}

	cards := make([]DrawnCard, n)
	for i := range n {
		cards[i] = DrawnCard{
			Card:     deck.Cards[indices[i]],
			Position: i + 1,
		}
	}

	return cards, nil
}
