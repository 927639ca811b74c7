package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CustomerProfile accumulates what the conversation reveals about the
// customer. Fields stay zero until something in the dialogue fills them.
type CustomerProfile struct {
	Name string `json:"name,omitempty"`

	BudgetMin int `json:"budget_min,omitempty"`
	BudgetMax int `json:"budget_max,omitempty"`

	PreferredMake  string `json:"preferred_make,omitempty"`
	PreferredColor string `json:"preferred_color,omitempty"`
	BodyStylePref  string `json:"body_style_preference,omitempty"`
	FuelTypePref   string `json:"fuel_type_preference,omitempty"`

	FamilySize int    `json:"family_size,omitempty"`
	PrimaryUse string `json:"primary_use,omitempty"`

	SafetyPriority bool `json:"safety_priority,omitempty"`
	LuxuryPref     bool `json:"luxury_preference,omitempty"`
	EcoFriendly    bool `json:"eco_friendly,omitempty"`

	Needs      []string      `json:"needs,omitempty"`
	Objections []string      `json:"objections,omitempty"`
	History    []Interaction `json:"interaction_history,omitempty"`
}

// Interaction is one recorded customer utterance.
type Interaction struct {
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

var budgetPatterns = []struct {
	re    *regexp.Regexp
	isMax bool
}{
	{re: regexp.MustCompile(`presupuesto de (\d+)`), isMax: true},
	{re: regexp.MustCompile(`hasta (\d+)`), isMax: true},
	{re: regexp.MustCompile(`máximo (\d+)`), isMax: true},
	{re: regexp.MustCompile(`entre (\d+) y (\d+)`)},
}

var profileColors = []string{"rojo", "negro", "blanco", "azul", "gris", "verde"}

// UpdateFromText mines a customer utterance for budget, family context,
// usage, and color preference, then records it in the history.
func (p *CustomerProfile) UpdateFromText(text string) {
	lower := strings.ToLower(text)

	for _, bp := range budgetPatterns {
		m := bp.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if bp.isMax {
			p.BudgetMax, _ = strconv.Atoi(m[1])
		} else {
			p.BudgetMin, _ = strconv.Atoi(m[1])
			p.BudgetMax, _ = strconv.Atoi(m[2])
		}
		break
	}

	if containsAny(lower, "familia", "bebé", "niños", "hijos") {
		p.SafetyPriority = true
		if strings.Contains(lower, "bebé") && !has(p.Needs, "seguridad_infantil") {
			p.Needs = append(p.Needs, "seguridad_infantil")
		}
	}

	if containsAny(lower, "trabajo", "oficina", "commute") {
		p.PrimaryUse = "trabajo"
	} else if containsAny(lower, "familia", "weekend", "viajes") {
		p.PrimaryUse = "familiar"
	}

	for _, color := range profileColors {
		if strings.Contains(lower, color) {
			p.PreferredColor = strings.ToUpper(color[:1]) + color[1:]
			break
		}
	}

	p.History = append(p.History, Interaction{Timestamp: time.Now().UTC(), Content: text})
}

// Summary renders the filled profile fields for agent context.
func (p *CustomerProfile) Summary() string {
	var parts []string
	if p.BudgetMax > 0 {
		parts = append(parts, fmt.Sprintf("Presupuesto: hasta €%d", p.BudgetMax))
	}
	if p.PreferredColor != "" {
		parts = append(parts, "Color: "+p.PreferredColor)
	}
	if p.BodyStylePref != "" {
		parts = append(parts, "Tipo: "+p.BodyStylePref)
	}
	if p.SafetyPriority {
		parts = append(parts, "Prioridad: Seguridad")
	}
	if len(p.Needs) > 0 {
		parts = append(parts, "Necesidades: "+strings.Join(p.Needs, ", "))
	}
	if len(parts) == 0 {
		return "Perfil básico"
	}
	return strings.Join(parts, "; ")
}

// Completeness scores how much of the profile is filled, 0 to 100.
func (p *CustomerProfile) Completeness() float64 {
	const totalFields = 10
	filled := 0
	for _, set := range []bool{
		p.BudgetMax > 0,
		p.PreferredMake != "",
		p.PreferredColor != "",
		p.BodyStylePref != "",
		p.FuelTypePref != "",
		p.FamilySize > 0,
		p.PrimaryUse != "",
		len(p.Needs) > 0,
		p.SafetyPriority,
		len(p.History) > 0,
	} {
		if set {
			filled++
		}
	}
	return float64(filled) / totalFields * 100
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func has(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
