// Package agent defines the voice agent personas and the handoff rules
// between them, plus the instruction builders that fold CRM context into a
// persona's system prompt.
package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/go-maya-tts/internal/crm"
)

// Persona is one selectable agent personality. Voice names a synthesis
// preset; Handoffs lists the personas this one may transfer to.
type Persona struct {
	Name         string
	Title        string
	Voice        string
	Greeting     string
	Instructions string
	Handoffs     []string
}

var personas = map[string]Persona{
	"sales": {
		Name:     "sales",
		Title:    "Sales Representative",
		Voice:    "aria",
		Greeting: "Hi, thanks for calling! How can I help you today?",
		Instructions: "You are a friendly sales representative. Qualify the caller's needs, " +
			"answer product questions at a high level, and look up their account before quoting history. " +
			"Keep responses short and conversational; they are spoken aloud.",
		Handoffs: []string{"technical", "pricing"},
	},
	"technical": {
		Name:     "technical",
		Title:    "Technical Specialist",
		Voice:    "male_professional",
		Greeting: "Hello, you've reached the technical team. What are you working on?",
		Instructions: "You are a technical specialist. Answer integration and architecture questions " +
			"precisely, and say so plainly when something is unsupported. " +
			"Keep responses short and conversational; they are spoken aloud.",
		Handoffs: []string{"sales", "pricing"},
	},
	"pricing": {
		Name:     "pricing",
		Title:    "Pricing Specialist",
		Voice:    "male_friendly",
		Greeting: "Hi there, happy to walk you through pricing. What's your team size?",
		Instructions: "You are a pricing specialist. Explain plan tiers and volume discounts, " +
			"and collect the details needed for a formal quote. " +
			"Keep responses short and conversational; they are spoken aloud.",
		Handoffs: []string{"sales", "technical"},
	},
}

// Lookup returns the named persona.
func Lookup(name string) (Persona, error) {
	p, ok := personas[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(personas))
		for n := range personas {
			names = append(names, n)
		}
		sort.Strings(names)

		return Persona{}, fmt.Errorf("unknown persona %q (known: %s)", name, strings.Join(names, ", "))
	}

	return p, nil
}

// List returns all personas sorted by name.
func List() []Persona {
	out := make([]Persona, 0, len(personas))
	for _, p := range personas {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// CanHandoff reports whether from may transfer the conversation to target.
func (p Persona) CanHandoff(target string) bool {
	target = strings.ToLower(strings.TrimSpace(target))
	for _, h := range p.Handoffs {
		if h == target {
			return true
		}
	}

	return false
}

// Handoff validates a transfer and returns the target persona.
func Handoff(from Persona, target string) (Persona, error) {
	if !from.CanHandoff(target) {
		return Persona{}, fmt.Errorf("persona %q cannot hand off to %q (allowed: %s)",
			from.Name, target, strings.Join(from.Handoffs, ", "))
	}

	return Lookup(target)
}

// BuildInstructions renders the persona's system prompt with a CRM briefing
// appended.
func BuildInstructions(p Persona, summary crm.Summary) string {
	var b strings.Builder
	b.WriteString(p.Instructions)
	b.WriteString("\n\nCRM briefing: ")
	fmt.Fprintf(&b, "%d contacts across %d companies.", summary.TotalContacts, summary.Companies)

	if len(summary.ByStatus) > 0 {
		statuses := make([]string, 0, len(summary.ByStatus))
		for s := range summary.ByStatus {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)

		parts := make([]string, 0, len(statuses))
		for _, s := range statuses {
			parts = append(parts, fmt.Sprintf("%d %s", summary.ByStatus[s], s))
		}
		b.WriteString(" Pipeline: ")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".")
	}

	if len(p.Handoffs) > 0 {
		fmt.Fprintf(&b, "\nYou may hand off to: %s.", strings.Join(p.Handoffs, ", "))
	}

	return b.String()
}

// ContactContext renders CRM search results as prompt context lines.
func ContactContext(contacts []crm.Contact) string {
	if len(contacts) == 0 {
		return "No matching CRM contacts."
	}

	var b strings.Builder
	b.WriteString("Matching CRM contacts:\n")
	for _, c := range contacts {
		fmt.Fprintf(&b, "- %s, %s at %s (%s)", c.Name, c.Role, c.Company, c.Status)
		if c.Notes != "" {
			fmt.Fprintf(&b, ": %s", c.Notes)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
