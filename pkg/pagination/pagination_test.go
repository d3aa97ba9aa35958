package pagination

import "testing"

func TestNormalize(t *testing.T) {
	p := Params{}.Normalize(StorefrontPerPage)
	if p.Page != 1 || p.PerPage != StorefrontPerPage {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	p = Params{Page: -3, PerPage: 500}.Normalize(AdminPerPage)
	if p.Page != 1 {
		t.Fatalf("expected page clamp to 1, got %d", p.Page)
	}
	if p.PerPage != MaxPerPage {
		t.Fatalf("expected per-page cap %d, got %d", MaxPerPage, p.PerPage)
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, PerPage: 12}
	if got := p.Offset(); got != 24 {
		t.Fatalf("expected offset 24, got %d", got)
	}
	if got := (Params{Page: 0, PerPage: 12}).Offset(); got != 0 {
		t.Fatalf("expected offset 0 for unnormalized page, got %d", got)
	}
}

func TestResolve(t *testing.T) {
	page := Params{Page: 2, PerPage: 12}.Resolve(25)
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
	if page.TotalItems != 25 {
		t.Fatalf("expected 25 total items, got %d", page.TotalItems)
	}

	empty := Params{Page: 1, PerPage: 12}.Resolve(0)
	if empty.TotalPages != 0 {
		t.Fatalf("expected 0 pages for empty set, got %d", empty.TotalPages)
	}
}
