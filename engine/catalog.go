package engine

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed dishes.yaml
var defaultCatalogYAML []byte

// ErrUnknownDish is returned when a team names a dish type the catalog lacks.
var ErrUnknownDish = errors.New("unknown dish type")

// DishInfo is the static definition of a dish type.
type DishInfo struct {
	Key      string
	Name     string
	Flavor   FlavorStats
	Cuisines CuisineSet
	Effects  []Effect
}

// Catalog maps normalized dish type names to their definitions.
type Catalog struct {
	dishes map[string]DishInfo
	keys   []string
}

type rawCatalog struct {
	Dishes []rawDish `yaml:"dishes"`
}

type rawDish struct {
	Key      string      `yaml:"key"`
	Name     string      `yaml:"name"`
	Cuisines []string    `yaml:"cuisines"`
	Flavor   FlavorStats `yaml:"flavor"`
	Effects  []rawEffect `yaml:"effects"`
}

type rawEffect struct {
	Hook          string `yaml:"hook"`
	Op            string `yaml:"op"`
	Scope         string `yaml:"scope"`
	Amount        int    `yaml:"amount"`
	Stat          string `yaml:"stat"`
	IfAdjacentHas string `yaml:"if_adjacent_has"`
	Summon        string `yaml:"summon"`
	StatusBody    int    `yaml:"status_body"`
	Duration      int    `yaml:"duration"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded dish catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalogFile reads a catalog from a YAML file on disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return LoadCatalog(b)
}

// LoadCatalog decodes and validates catalog YAML.
func LoadCatalog(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(raw.Dishes) == 0 {
		return nil, errors.New("catalog has no dishes")
	}

	title := cases.Title(language.English)
	c := &Catalog{dishes: make(map[string]DishInfo, len(raw.Dishes))}
	for _, rd := range raw.Dishes {
		key := NormalizeDishType(rd.Key)
		if key == "" {
			return nil, fmt.Errorf("dish %q: empty key", rd.Name)
		}
		if _, dup := c.dishes[key]; dup {
			return nil, fmt.Errorf("dish %q: duplicate key", rd.Key)
		}
		info := DishInfo{
			Key:    key,
			Name:   rd.Name,
			Flavor: rd.Flavor,
		}
		if info.Name == "" {
			info.Name = title.String(rd.Key)
		}
		for _, name := range rd.Cuisines {
			cu, err := ParseCuisine(name)
			if err != nil {
				return nil, fmt.Errorf("dish %q: %w", rd.Key, err)
			}
			info.Cuisines.Add(cu)
		}
		for i, re := range rd.Effects {
			eff, err := re.decode()
			if err != nil {
				return nil, fmt.Errorf("dish %q effect %d: %w", rd.Key, i, err)
			}
			info.Effects = append(info.Effects, eff)
		}
		c.dishes[key] = info
		c.keys = append(c.keys, key)
	}

	for _, key := range c.keys {
		for _, eff := range c.dishes[key].Effects {
			if eff.Operation != OpSummonDish {
				continue
			}
			if _, ok := c.dishes[NormalizeDishType(eff.SummonType)]; !ok {
				return nil, fmt.Errorf("dish %q summons %w %q", key, ErrUnknownDish, eff.SummonType)
			}
		}
	}
	sort.Strings(c.keys)
	return c, nil
}

func (re rawEffect) decode() (Effect, error) {
	var eff Effect
	var ok bool
	if eff.Hook, ok = lookupName(hookNames, re.Hook); !ok {
		return eff, fmt.Errorf("unknown hook %q", re.Hook)
	}
	if eff.Operation, ok = lookupName(operationNames, re.Op); !ok {
		return eff, fmt.Errorf("unknown operation %q", re.Op)
	}
	scope := re.Scope
	if scope == "" {
		scope = ScopeSelf.String()
	}
	if eff.Scope, ok = lookupName(scopeNames, scope); !ok {
		return eff, fmt.Errorf("unknown target scope %q", re.Scope)
	}
	if re.Stat != "" {
		if eff.Stat, ok = lookupName(flavorStatNames, re.Stat); !ok {
			return eff, fmt.Errorf("unknown flavor stat %q", re.Stat)
		}
	} else if eff.Operation == OpAddFlavorStat {
		return eff, errors.New("AddFlavorStat needs a stat")
	}
	if re.IfAdjacentHas != "" {
		eff.Conditional = true
		if eff.AdjacentStat, ok = lookupName(flavorStatNames, re.IfAdjacentHas); !ok {
			return eff, fmt.Errorf("unknown flavor stat %q", re.IfAdjacentHas)
		}
	}
	if eff.Operation == OpSummonDish && re.Summon == "" {
		return eff, errors.New("SummonDish needs a summon type")
	}
	eff.Amount = re.Amount
	eff.SummonType = re.Summon
	eff.StatusBody = re.StatusBody
	eff.Duration = max(0, re.Duration)
	return eff, nil
}

// Lookup finds a dish by any spelling of its type name.
func (c *Catalog) Lookup(dishType string) (DishInfo, bool) {
	info, ok := c.dishes[NormalizeDishType(dishType)]
	return info, ok
}

// Keys returns the normalized dish keys in sorted order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

func (c *Catalog) Len() int { return len(c.dishes) }

// NormalizeDishType folds a type name to lowercase ASCII alphanumerics, so
// "FrenchFries", "french_fries" and "French Fries" name the same dish.
func NormalizeDishType(s string) string {
	folded := unidecode.Unidecode(s)
	var b strings.Builder
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
