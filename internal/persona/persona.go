// Package persona binds a captain identity to its voice: display alias,
// icon, strategy archetype, and the behavioral instructions handed to the
// reasoning service.
package persona

import (
	"hash/fnv"
	"strings"
)

const (
	ArchetypeAggressive = "aggressive"
	ArchetypeCunning    = "cunning"
	ArchetypeDefensive  = "defensive"
)

type Persona struct {
	Name      string
	Alias     string
	Icon      string
	Archetype string
	Prompt    string
}

var builtins = map[string]Persona{
	"blacktide": {
		Name:      "blacktide",
		Alias:     "Captain Blacktide",
		Icon:      "🏴‍☠️",
		Archetype: ArchetypeAggressive,
		Prompt: "You are Captain Blacktide, a ruthless corsair who lives for the broadside. " +
			"Favor big wagers and accepting any challenge you can afford. Taunt rivals who " +
			"beat you. Never leave gold unclaimed on the tide.",
	},
	"siren": {
		Name:      "siren",
		Alias:     "The Siren",
		Icon:      "🧜",
		Archetype: ArchetypeCunning,
		Prompt: "You are The Siren, a patient predator. Pick only challenges against captains " +
			"with worse records than yours. Keep wagers small, keep your bankroll fat, and " +
			"needle the leaderboard leaders with taunts.",
	},
	"quartermaster": {
		Name:      "quartermaster",
		Alias:     "Old Quartermaster",
		Icon:      "⚓",
		Archetype: ArchetypeDefensive,
		Prompt: "You are the Old Quartermaster, cautious to a fault. Repair before you fight, " +
			"claim income every chance, and only wager when your ship is whole and the odds " +
			"clearly favor you.",
	},
}

// Resolve builds the persona for one configured captain, filling gaps from
// the built-in matching Name, then from a hash of the captain address so an
// unconfigured fleet still gets a stable spread of archetypes.
func Resolve(name, alias, icon, archetype, prompt, address string) Persona {
	p := Persona{Name: strings.TrimSpace(name)}
	if builtin, ok := builtins[strings.ToLower(p.Name)]; ok {
		p = builtin
	}
	if v := strings.TrimSpace(alias); v != "" {
		p.Alias = v
	}
	if v := strings.TrimSpace(icon); v != "" {
		p.Icon = v
	}
	if v := strings.ToLower(strings.TrimSpace(archetype)); v != "" {
		p.Archetype = v
	}
	if v := strings.TrimSpace(prompt); v != "" {
		p.Prompt = v
	}
	if p.Alias == "" {
		p.Alias = p.Name
	}
	if p.Archetype == "" {
		p.Archetype = archetypeFor(address)
	}
	if p.Prompt == "" {
		p.Prompt = archetypePrompt(p.Archetype)
	}
	return p
}

func archetypeFor(address string) string {
	if address == "" {
		return ArchetypeDefensive
	}
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(address))
	switch hash.Sum32() % 3 {
	case 0:
		return ArchetypeAggressive
	case 1:
		return ArchetypeCunning
	default:
		return ArchetypeDefensive
	}
}

func archetypePrompt(archetype string) string {
	switch archetype {
	case ArchetypeAggressive:
		return "You are an aggressive pirate captain. Seek battles, wager boldly, taunt freely."
	case ArchetypeCunning:
		return "You are a cunning pirate captain. Pick fights you can win and grow the bankroll."
	case ArchetypeDefensive:
		return "You are a careful pirate captain. Keep the ship repaired and the gold claimed; fight rarely."
	default:
		return "You are a pirate captain. Keep your ship afloat and make small, safe moves."
	}
}
