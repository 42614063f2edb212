// Package catalog holds the read-only fish encyclopedia and the weighted
// rarity draw used when a session lands a fish.
package catalog

import (
	"errors"
	"strings"
)

var ErrFishNotFound = errors.New("fish not found")

type Fish struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Rarity   int    `json:"rarity"`
	ImageRef string `json:"image_ref"`
}

const (
	MinRarity = 2
	MaxRarity = 5
)

var fish = []Fish{
	{ID: 1, Name: "Starry Sparrowtail Fish", Rarity: 4, ImageRef: "https://via.placeholder.com/300x200/4A90E2/FFFFFF?text=Starry+Sparrowtail"},
	{ID: 2, Name: "Purple Sandtip Fish", Rarity: 3, ImageRef: "https://via.placeholder.com/300x200/9B59B6/FFFFFF?text=Purple+Sandtip"},
	{ID: 3, Name: "Bluefin Flower Fish", Rarity: 3, ImageRef: "https://via.placeholder.com/300x200/3498DB/FFFFFF?text=Bluefin+Flower"},
	{ID: 4, Name: "Blueback Wrasse", Rarity: 2, ImageRef: "https://via.placeholder.com/300x200/5DADE2/FFFFFF?text=Blueback+Wrasse"},
	{ID: 5, Name: "Blue Moon Squid", Rarity: 5, ImageRef: "https://via.placeholder.com/300x200/1E3A8A/FFFFFF?text=Blue+Moon+Squid"},
	{ID: 6, Name: "Giant Sailfish", Rarity: 5, ImageRef: "https://via.placeholder.com/300x200/0C4A6E/FFFFFF?text=Giant+Sailfish"},
	{ID: 7, Name: "Dream Fairyfish", Rarity: 4, ImageRef: "https://via.placeholder.com/300x200/EC4899/FFFFFF?text=Dream+Fairyfish"},
	{ID: 8, Name: "Capelin", Rarity: 2, ImageRef: "https://via.placeholder.com/300x200/94A3B8/FFFFFF?text=Capelin"},
	{ID: 9, Name: "Mullet", Rarity: 2, ImageRef: "https://via.placeholder.com/300x200/64748B/FFFFFF?text=Mullet"},
	{ID: 10, Name: "Bluefin Fish", Rarity: 3, ImageRef: "https://via.placeholder.com/300x200/2563EB/FFFFFF?text=Bluefin+Fish"},
	{ID: 11, Name: "Black Tiger Shrimp", Rarity: 3, ImageRef: "https://via.placeholder.com/300x200/DC2626/FFFFFF?text=Black+Tiger+Shrimp"},
	{ID: 12, Name: "Seabream", Rarity: 3, ImageRef: "https://via.placeholder.com/300x200/F59E0B/FFFFFF?text=Seabream"},
	{ID: 13, Name: "Golden Bream", Rarity: 4, ImageRef: "https://via.placeholder.com/300x200/FCD34D/FFFFFF?text=Golden+Bream"},
	{ID: 14, Name: "Pearl Capelin", Rarity: 3, ImageRef: "https://via.placeholder.com/300x200/E0E7FF/FFFFFF?text=Pearl+Capelin"},
	{ID: 15, Name: "Violet Scaled Fish", Rarity: 3, ImageRef: "https://via.placeholder.com/300x200/8B5CF6/FFFFFF?text=Violet+Scaled"},
	{ID: 16, Name: "Large Prawns", Rarity: 2, ImageRef: "https://via.placeholder.com/300x200/F97316/FFFFFF?text=Large+Prawns"},
}

// ListAll returns the catalog in id order. The slice is a copy.
func ListAll() []Fish {
	out := make([]Fish, len(fish))
	copy(out, fish)
	return out
}

func Count() int {
	return len(fish)
}

func ByRarity(rarity int) []Fish {
	out := make([]Fish, 0, 8)
	for _, f := range fish {
		if f.Rarity == rarity {
			out = append(out, f)
		}
	}
	return out
}

func ByID(id int) (Fish, error) {
	for _, f := range fish {
		if f.ID == id {
			return f, nil
		}
	}
	return Fish{}, ErrFishNotFound
}

// Stars renders a rarity as a row of ★.
func Stars(rarity int) string {
	if rarity <= 0 {
		return ""
	}
	return strings.Repeat("★", rarity)
}

func ShareText(f Fish) string {
	return "Check out this fish I found in FishyDay: " + f.Name + " " + Stars(f.Rarity)
}
