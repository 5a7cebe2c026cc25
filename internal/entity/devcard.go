package entity

type DevCardType string

const (
	Knight       DevCardType = "Knight"
	VictoryPoint DevCardType = "VictoryPoint"
	RoadBuilding DevCardType = "RoadBuilding"
	YearOfPlenty DevCardType = "YearOfPlenty"
	Monopoly     DevCardType = "Monopoly"

	// HiddenCard stands in for a card whose face a viewer may not see.
	HiddenCard DevCardType = "Hidden"
)

var AllDevCardTypes = [5]DevCardType{Knight, VictoryPoint, RoadBuilding, YearOfPlenty, Monopoly}

// deckComposition is the fixed 25-card deck.
var deckComposition = map[DevCardType]int{
	Knight:       14,
	VictoryPoint: 5,
	RoadBuilding: 2,
	YearOfPlenty: 2,
	Monopoly:     2,
}

// NewDevDeck returns the unshuffled deck in AllDevCardTypes order.
func NewDevDeck() []DevCardType {
	deck := make([]DevCardType, 0, 25)
	for _, card := range AllDevCardTypes {
		for range deckComposition[card] {
			deck = append(deck, card)
		}
	}
	return deck
}

// DevCards counts development cards by type.
type DevCards struct {
	Knight       int `json:"knight"`
	VictoryPoint int `json:"victory_point"`
	RoadBuilding int `json:"road_building"`
	YearOfPlenty int `json:"year_of_plenty"`
	Monopoly     int `json:"monopoly"`
}

func (that *DevCards) slot(card DevCardType) *int {
	switch card {
	case Knight:
		return &that.Knight
	case VictoryPoint:
		return &that.VictoryPoint
	case RoadBuilding:
		return &that.RoadBuilding
	case YearOfPlenty:
		return &that.YearOfPlenty
	case Monopoly:
		return &that.Monopoly
	default:
		return nil
	}
}

func (that DevCards) Get(card DevCardType) int {
	if p := that.slot(card); p != nil {
		return *p
	}
	return 0
}

func (that *DevCards) Add(card DevCardType, n int) {
	if p := that.slot(card); p != nil {
		*p += n
	}
}

// Remove takes one card of the given type, reporting false when there is none.
func (that *DevCards) Remove(card DevCardType) bool {
	p := that.slot(card)
	if p == nil || *p == 0 {
		return false
	}
	*p--
	return true
}

func (that DevCards) Total() int {
	return that.Knight + that.VictoryPoint + that.RoadBuilding + that.YearOfPlenty + that.Monopoly
}

// Merge moves every card from other into this inventory.
func (that *DevCards) Merge(other *DevCards) {
	for _, card := range AllDevCardTypes {
		that.Add(card, other.Get(card))
	}
	*other = DevCards{}
}
