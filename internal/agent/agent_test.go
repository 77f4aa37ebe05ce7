package agent

import (
	"strings"
	"testing"

	"github.com/example/go-maya-tts/internal/crm"
)

func TestLookup(t *testing.T) {
	t.Run("known persona", func(t *testing.T) {
		p, err := Lookup("sales")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Voice != "aria" {
			t.Errorf("sales voice = %q, want aria", p.Voice)
		}
	})

	t.Run("lookup is case insensitive", func(t *testing.T) {
		if _, err := Lookup(" Technical "); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown persona lists known names", func(t *testing.T) {
		_, err := Lookup("manager")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "sales") {
			t.Errorf("error should list known personas, got %v", err)
		}
	})
}

func TestList(t *testing.T) {
	got := List()
	if len(got) != 3 {
		t.Fatalf("got %d personas, want 3", len(got))
	}
	if got[0].Name != "pricing" || got[1].Name != "sales" || got[2].Name != "technical" {
		t.Errorf("unexpected order: %s, %s, %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestHandoff(t *testing.T) {
	sales, err := Lookup("sales")
	if err != nil {
		t.Fatalf("lookup sales: %v", err)
	}

	t.Run("allowed transfer", func(t *testing.T) {
		target, err := Handoff(sales, "technical")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if target.Name != "technical" {
			t.Errorf("got %q, want technical", target.Name)
		}
	})

	t.Run("self transfer is rejected", func(t *testing.T) {
		if _, err := Handoff(sales, "sales"); err == nil {
			t.Fatal("expected error for self handoff")
		}
	})

	t.Run("unknown target is rejected", func(t *testing.T) {
		if _, err := Handoff(sales, "manager"); err == nil {
			t.Fatal("expected error for unknown target")
		}
	})
}

func TestBuildInstructions(t *testing.T) {
	p, err := Lookup("pricing")
	if err != nil {
		t.Fatalf("lookup pricing: %v", err)
	}

	got := BuildInstructions(p, crm.Summary{
		TotalContacts: 12,
		Companies:     4,
		ByStatus:      map[string]int{"lead": 9, "customer": 3},
	})

	for _, want := range []string{
		p.Instructions,
		"12 contacts across 4 companies",
		"3 customer",
		"9 lead",
		"hand off to: sales, technical",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("instructions missing %q:\n%s", want, got)
		}
	}
}

func TestContactContext(t *testing.T) {
	t.Run("renders contacts", func(t *testing.T) {
		got := ContactContext([]crm.Contact{
			{Name: "Dana Whitfield", Role: "VP Engineering", Company: "Acme Corp", Status: "customer", Notes: "renewal due Q4"},
		})
		if !strings.Contains(got, "Dana Whitfield, VP Engineering at Acme Corp (customer)") {
			t.Errorf("unexpected context:\n%s", got)
		}
		if !strings.Contains(got, "renewal due Q4") {
			t.Error("notes missing from context")
		}
	})

	t.Run("empty result", func(t *testing.T) {
		if got := ContactContext(nil); got != "No matching CRM contacts." {
			t.Errorf("got %q", got)
		}
	})
}
