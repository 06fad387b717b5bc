package engine

import (
	"fmt"
	"strings"
)

// Cuisine is a synergy tag carried by dishes.
type Cuisine int

const (
	CuisineThai Cuisine = iota
	CuisineItalian
	CuisineJapanese
	CuisineMexican
	CuisineFrench
	CuisineChinese
	CuisineIndian
	CuisineAmerican
	CuisineKorean
	CuisineVietnamese

	numCuisines
)

var cuisineNames = [numCuisines]string{
	"Thai", "Italian", "Japanese", "Mexican", "French",
	"Chinese", "Indian", "American", "Korean", "Vietnamese",
}

func (c Cuisine) String() string {
	if c >= 0 && c < numCuisines {
		return cuisineNames[c]
	}
	return fmt.Sprintf("Cuisine(%d)", int(c))
}

// ParseCuisine matches a cuisine name case-insensitively.
func ParseCuisine(s string) (Cuisine, error) {
	for i, name := range cuisineNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return Cuisine(i), nil
		}
	}
	return 0, fmt.Errorf("unknown cuisine %q", s)
}

// AllCuisines lists every cuisine in declaration order.
func AllCuisines() []Cuisine {
	out := make([]Cuisine, 0, numCuisines)
	for c := Cuisine(0); c < numCuisines; c++ {
		out = append(out, c)
	}
	return out
}

// CuisineSet is a fixed-size set of cuisine tags.
type CuisineSet struct {
	bits uint16
}

func NewCuisineSet(cs ...Cuisine) CuisineSet {
	var s CuisineSet
	for _, c := range cs {
		s.Add(c)
	}
	return s
}

func (s *CuisineSet) Add(c Cuisine) {
	if c >= 0 && c < numCuisines {
		s.bits |= 1 << uint(c)
	}
}

func (s CuisineSet) Has(c Cuisine) bool {
	if c < 0 || c >= numCuisines {
		return false
	}
	return s.bits&(1<<uint(c)) != 0
}

func (s CuisineSet) Empty() bool { return s.bits == 0 }

// Members returns the tags in declaration order.
func (s CuisineSet) Members() []Cuisine {
	var out []Cuisine
	for c := Cuisine(0); c < numCuisines; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}
