// Package menu serves the restaurant's fixed menu, embedded as YAML.
package menu

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var menuYAML []byte

// Item is one dish.  Price is in rupees.
type Item struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Price         int    `yaml:"price" json:"price"`
	Category      string `yaml:"category" json:"category"`
	Description   string `yaml:"description" json:"description,omitempty"`
	Image         string `yaml:"image" json:"image,omitempty"`
	Signature     bool   `yaml:"signature" json:"isSignature"`
	Spicy         bool   `yaml:"spicy" json:"isSpicy"`
	JainAvailable bool   `yaml:"jain" json:"isJainAvailable"`
}

// Menu lists the categories in display order and every item.
type Menu struct {
	Categories []string `yaml:"categories" json:"categories"`
	Items      []Item   `yaml:"items" json:"items"`
}

// Load decodes the embedded menu and checks that every item belongs to a
// listed category.
func Load() (*Menu, error) {
	return Parse(menuYAML)
}

// Parse decodes a menu document.
func Parse(data []byte) (*Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	known := make(map[string]bool, len(m.Categories))
	for _, c := range m.Categories {
		known[c] = true
	}
	for _, it := range m.Items {
		if !known[it.Category] {
			return nil, fmt.Errorf("menu item %s: unknown category %q", it.ID, it.Category)
		}
	}
	return &m, nil
}

// Filter returns a copy of the menu restricted to category, matched case
// insensitively.  An empty category returns the whole menu.
func (m *Menu) Filter(category string) Menu {
	category = strings.TrimSpace(category)
	if category == "" {
		return *m
	}
	out := Menu{Categories: []string{}, Items: []Item{}}
	for _, c := range m.Categories {
		if strings.EqualFold(c, category) {
			out.Categories = append(out.Categories, c)
		}
	}
	for _, it := range m.Items {
		if strings.EqualFold(it.Category, category) {
			out.Items = append(out.Items, it)
		}
	}
	return out
}

// Signature returns the dishes flagged as house specials, never nil.
func (m *Menu) Signature() []Item {
	out := []Item{}
	for _, it := range m.Items {
		if it.Signature {
			out = append(out, it)
		}
	}
	return out
}
