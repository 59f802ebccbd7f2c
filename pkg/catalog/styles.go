// Package catalog holds the static style presets and aspect ratio tables.
package catalog

import (
	"errors"
	"strings"
)

// ErrUnknownStyle is returned when a style ID is not in the catalog.
var ErrUnknownStyle = errors.New("catalog: unknown style")

// Category groups style presets for display.
type Category string

const (
	CategoryProfessional Category = "PROFESSIONAL"
	CategoryEthnic       Category = "ETHNIC"
	CategoryModel        Category = "MODEL"
	CategoryCreative     Category = "CREATIVE"
)

// RecipeID names a local filter recipe.
type RecipeID string

const (
	RecipeNone         RecipeID = "none"
	RecipeCyberpunk    RecipeID = "cyberpunk"
	RecipeProfessional RecipeID = "professional"
	RecipeEthnic       RecipeID = "ethnic"
	RecipeFashion      RecipeID = "fashion"
)

// StylePreset is a read-only catalog entry.
type StylePreset struct {
	ID          string   `json:"id" yaml:"id"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Category    Category `json:"category" yaml:"category"`
	// Directive is the free-text prompt suffix sent to the generative
	// service and matched by keyword for the local filter fallback.
	Directive string   `json:"directive" yaml:"directive"`
	Recipe    RecipeID `json:"recipe" yaml:"recipe"`
}

var styles = []StylePreset{
	{
		ID:          "corp-suit",
		DisplayName: "কর্পোরেট স্যুট",
		Category:    CategoryProfessional,
		Directive:   "wearing a high-end professional corporate suit, office background, 8k resolution, photorealistic",
		Recipe:      RecipeProfessional,
	},
	{
		ID:          "studio-headshot",
		DisplayName: "স্টুডিও হেডশট",
		Category:    CategoryProfessional,
		Directive:   "professional studio headshot, grey gradient background, soft professional lighting, sharp focus",
		Recipe:      RecipeProfessional,
	},
	{
		ID:          "saree-elegant",
		DisplayName: "এলিগেন্ট শাড়ি",
		Category:    CategoryEthnic,
		Directive:   "wearing a traditional elegant saree with intricate embroidery, cultural festival background, cinematic lighting",
		Recipe:      RecipeEthnic,
	},
	{
		ID:          "punjabi-royal",
		DisplayName: "রয়াল পাঞ্জাবি",
		Category:    CategoryEthnic,
		Directive:   "wearing a royal sherwani punjabi, south asian wedding atmosphere, golden hour lighting",
		Recipe:      RecipeEthnic,
	},
	{
		ID:          "fashion-model",
		DisplayName: "ফ্যাশন মডেল",
		Category:    CategoryModel,
		Directive:   "high fashion editorial look, vogue style magazine cover pose, urban street background, trendy outfit",
		Recipe:      RecipeFashion,
	},
	{
		ID:          "cyberpunk",
		DisplayName: "সাইবারপাঙ্ক",
		Category:    CategoryCreative,
		Directive:   "cyberpunk style, neon lights, futuristic city background, glowing accessories",
		Recipe:      RecipeCyberpunk,
	},
}

// Styles returns a copy of the style catalog in display order.
func Styles() []StylePreset {
	out := make([]StylePreset, len(styles))
	copy(out, styles)
	return out
}

// StyleByID looks up a preset by its ID.
func StyleByID(id string) (StylePreset, error) {
	id = strings.TrimSpace(id)
	for _, s := range styles {
		if s.ID == id {
			return s, nil
		}
	}
	return StylePreset{}, ErrUnknownStyle
}

// Categories returns the distinct categories in catalog order.
func Categories() []Category {
	seen := map[Category]bool{}
	var result []Category
	for _, s := range styles {
		if !seen[s.Category] {
			seen[s.Category] = true
			result = append(result, s.Category)
		}
	}
	return result
}
