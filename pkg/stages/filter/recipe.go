package filter

import (
	"image/color"
	"strings"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/pipeline"
)

// Recipe is an optional colour wash followed by a CSS filter chain.
type Recipe struct {
	ID      catalog.RecipeID
	Wash    *Wash
	Filters []Func
}

// IsIdentity reports whether the recipe leaves pixels untouched.
func (r Recipe) IsIdentity() bool {
	return r.Wash == nil && len(r.Filters) == 0
}

// Rule maps directive keywords to a recipe.
type Rule struct {
	Keywords []string
	Recipe   catalog.RecipeID
}

var recipes = map[catalog.RecipeID]Recipe{
	catalog.RecipeNone: {ID: catalog.RecipeNone},
	catalog.RecipeCyberpunk: {
		ID:      catalog.RecipeCyberpunk,
		Wash:    &Wash{Mode: BlendOverlay, Color: mustHex("#a855f7")},
		Filters: mustParse("contrast(1.2) brightness(1.1) hue-rotate(15deg)"),
	},
	catalog.RecipeProfessional: {
		ID:      catalog.RecipeProfessional,
		Filters: mustParse("contrast(1.1) saturate(0.8) brightness(1.05)"),
	},
	catalog.RecipeEthnic: {
		ID:      catalog.RecipeEthnic,
		Wash:    &Wash{Mode: BlendSoftLight, Color: mustHex("#fbbf24")},
		Filters: mustParse("contrast(1.1) saturate(1.2) sepia(0.2)"),
	},
	catalog.RecipeFashion: {
		ID:      catalog.RecipeFashion,
		Filters: mustParse("contrast(1.3) grayscale(0.2)"),
	},
}

// rules are checked in order; the first rule with any matching keyword wins.
var rules = []Rule{
	{Keywords: []string{"cyberpunk", "neon"}, Recipe: catalog.RecipeCyberpunk},
	{Keywords: []string{"professional", "suit"}, Recipe: catalog.RecipeProfessional},
	{Keywords: []string{"saree", "punjabi", "gold"}, Recipe: catalog.RecipeEthnic},
	{Keywords: []string{"fashion", "vogue"}, Recipe: catalog.RecipeFashion},
}

// Lookup returns the recipe for id. Unknown IDs resolve to the identity recipe.
func Lookup(id catalog.RecipeID) (Recipe, bool) {
	r, ok := recipes[id]
	if !ok {
		return recipes[catalog.RecipeNone], false
	}
	return r, true
}

// Match resolves a free-text directive to a recipe ID by substring keyword
// match, ignoring case. Directives matching no rule get RecipeNone.
func Match(directive string) catalog.RecipeID {
	d := strings.ToLower(directive)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(d, kw) {
				return rule.Recipe
			}
		}
	}
	return catalog.RecipeNone
}

func mustParse(s string) []Func {
	f, err := ParseFilters(s)
	if err != nil {
		panic(err)
	}
	return f
}

func mustHex(s string) color.NRGBA {
	c, err := pipeline.ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
