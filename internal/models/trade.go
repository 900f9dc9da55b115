package models

// Edge is a directed feasibility relation: From can give Item to satisfy
// To's Want, and To can give something From wants in return.
type Edge struct {
	From int
	To   int
	Item Item
	Want Want
}

// Cycle is a closed barter loop of distinct participant ids. The last id
// gives to the first.
type Cycle []int

// DirectTrade is a two-party swap: UserA gives ItemA, UserB gives ItemB.
type DirectTrade struct {
	UserA int `json:"user_a"`
	UserB int `json:"user_b"`
	ItemA int `json:"item_a"`
	ItemB int `json:"item_b"`
}

// CycleTrade is one hop of an executed cycle.
type CycleTrade struct {
	GiverID    int `json:"giver_id"`
	ReceiverID int `json:"receiver_id"`
	ItemID     int `json:"item_id"`
}
