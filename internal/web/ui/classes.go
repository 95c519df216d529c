// Package ui holds presentation helpers shared by the page templates.
package ui

import (
	"strings"
)

// Default class lists for the layout shell and the login card
const (
	ShellClass = "flex items-center justify-center h-screen bg-background"
	FormClass  = "w-full max-w-sm bg-card text-card-foreground rounded-md shadow-md"
)

var displayClasses = map[string]bool{
	"block": true, "inline-block": true, "inline": true, "flex": true, "inline-flex": true,
	"grid": true, "inline-grid": true, "hidden": true, "contents": true, "table": true,
}

var textSizes = map[string]bool{
	"xs": true, "sm": true, "base": true, "lg": true, "xl": true, "2xl": true, "3xl": true,
	"4xl": true, "5xl": true, "6xl": true, "7xl": true, "8xl": true, "9xl": true,
}

var fontWeights = map[string]bool{
	"thin": true, "extralight": true, "light": true, "normal": true, "medium": true,
	"semibold": true, "bold": true, "extrabold": true, "black": true,
}

// Side and corner keys: border-b, border-x-2, rounded-t, rounded-tl-md
var borderSides = map[string]bool{
	"t": true, "r": true, "b": true, "l": true, "x": true, "y": true, "s": true, "e": true,
}

var roundedSides = map[string]bool{
	"t": true, "r": true, "b": true, "l": true, "s": true, "e": true,
	"tl": true, "tr": true, "br": true, "bl": true, "ss": true, "se": true, "es": true, "ee": true,
}

var shadowSizes = map[string]bool{
	"": true, "sm": true, "md": true, "lg": true, "xl": true, "2xl": true, "inner": true, "none": true,
}

// conflictGroup returns the key of the utility group a class belongs to. Two classes
// with the same key set the same property, so only the last one is kept.
func conflictGroup(class string) string {
	variant := ""
	utility := class
	if i := strings.LastIndex(class, ":"); i >= 0 {
		variant = class[:i+1]
		utility = class[i+1:]
	}
	utility = strings.TrimPrefix(utility, "!")
	// -mt-2 sets the same property as mt-2
	utility = strings.TrimPrefix(utility, "-")

	if displayClasses[utility] {
		return variant + "display"
	}
	if utility == "shadow" {
		return variant + "shadow-size"
	}

	prefix, value, found := strings.Cut(utility, "-")
	if !found {
		return variant + utility
	}

	switch prefix {
	case "text":
		if textSizes[value] {
			return variant + "text-size"
		}
		if value == "left" || value == "center" || value == "right" || value == "justify" {
			return variant + "text-align"
		}
		return variant + "text-color"
	case "font":
		if fontWeights[value] {
			return variant + "font-weight"
		}
		return variant + "font-family"
	case "shadow":
		if shadowSizes[value] {
			return variant + "shadow-size"
		}
		return variant + "shadow-color"
	case "rounded", "border":
		// rounded-t-md and rounded-md touch different corners
		side, _, _ := strings.Cut(value, "-")
		if (prefix == "border" && borderSides[side]) || (prefix == "rounded" && roundedSides[side]) {
			return variant + prefix + "-" + side
		}
		if prefix == "border" && len(value) > 2 && !strings.ContainsAny(value[:1], "0123456789") {
			return variant + "border-color"
		}
		return variant + prefix
	case "flex":
		if value == "row" || value == "col" || strings.HasPrefix(value, "row-") || strings.HasPrefix(value, "col-") {
			return variant + "flex-direction"
		}
		return variant + "flex"
	case "min", "max":
		// min-h-screen / max-w-sm
		axis, _, _ := strings.Cut(value, "-")
		return variant + prefix + "-" + axis
	}

	// translate-x-1 and translate-y-2 move different axes
	if axis, _, _ := strings.Cut(value, "-"); axis == "x" || axis == "y" {
		return variant + prefix + "-" + axis
	}

	return variant + prefix
}

// MergeClasses joins class lists, dropping duplicates. When two classes set the same
// utility (h-screen and h-full, bg-card and bg-slate-900) the later one wins and takes
// the position of the earlier one.
func MergeClasses(parts ...string) string {
	var order []string
	byGroup := make(map[string]int)

	for _, part := range parts {
		for _, class := range strings.Fields(part) {
			group := conflictGroup(class)
			if i, ok := byGroup[group]; ok {
				order[i] = class
				continue
			}
			byGroup[group] = len(order)
			order = append(order, class)
		}
	}

	return strings.Join(order, " ")
}
