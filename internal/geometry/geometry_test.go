package geometry

import "testing"

func TestCurrentPageWithinTolerance(t *testing.T) {
	viewport := Metrics{ScrollTop: 1200, ClientWidth: 800, ClientHeight: 600}
	pages := []Metrics{
		{OffsetTop: 0, ClientHeight: 600},
		{OffsetTop: 604, ClientHeight: 600},
		{OffsetTop: 1204, ClientHeight: 600},
	}

	idx, ok := CurrentPage(viewport, pages)
	if !ok {
		t.Fatalf("expected a current page at scrollTop=1200")
	}
	if idx != 2 {
		t.Fatalf("expected page index 2, got %d", idx)
	}
}

func TestCurrentPageExactMatch(t *testing.T) {
	viewport := Metrics{ScrollTop: 1200}
	pages := []Metrics{{OffsetTop: 1200}}

	idx, ok := CurrentPage(viewport, pages)
	if !ok || idx != 0 {
		t.Fatalf("expected exact-offset page to be current, got (%d, %v)", idx, ok)
	}
}

func TestCurrentPageNoneWithinTolerance(t *testing.T) {
	viewport := Metrics{ScrollTop: 300}
	pages := []Metrics{
		{OffsetTop: 0},
		{OffsetTop: 610},
	}

	if _, ok := CurrentPage(viewport, pages); ok {
		t.Fatalf("expected no current page mid-transition")
	}
}

func TestCurrentPageToleranceBoundary(t *testing.T) {
	viewport := Metrics{ScrollTop: 100}

	if _, ok := CurrentPage(viewport, []Metrics{{OffsetTop: 105}}); ok {
		t.Fatalf("offset exactly at tolerance must not match")
	}
	if idx, ok := CurrentPage(viewport, []Metrics{{OffsetTop: 104.5}}); !ok || idx != 0 {
		t.Fatalf("offset within tolerance must match, got (%d, %v)", idx, ok)
	}
}

func TestCurrentPageFirstMatchWinsOnTie(t *testing.T) {
	viewport := Metrics{ScrollTop: 100}
	pages := []Metrics{
		{OffsetTop: 98},
		{OffsetTop: 102},
	}

	idx, ok := CurrentPage(viewport, pages)
	if !ok || idx != 0 {
		t.Fatalf("expected first page in document order, got (%d, %v)", idx, ok)
	}
}

func TestCurrentPageEmptySnapshot(t *testing.T) {
	if _, ok := CurrentPage(Metrics{}, nil); ok {
		t.Fatalf("expected no current page for empty snapshot")
	}
}

func TestCenterOffsetLargePage(t *testing.T) {
	viewport := Metrics{ClientWidth: 800, ClientHeight: 600}
	page := Metrics{OffsetTop: 1200, OffsetLeft: 0, ClientWidth: 800, ClientHeight: 600}

	target := CenterOffset(viewport, page)
	if target.Top != 1200 || target.Left != 0 {
		t.Fatalf("expected {1200, 0}, got {%v, %v}", target.Top, target.Left)
	}
}

func TestCenterOffsetNegativeSlack(t *testing.T) {
	// Page narrower than the viewport: slack pulls the target left so the
	// page stays visually centered.
	viewport := Metrics{ClientWidth: 800, ClientHeight: 600}
	page := Metrics{OffsetTop: 1200, OffsetLeft: 200, ClientWidth: 400, ClientHeight: 600}

	target := CenterOffset(viewport, page)
	if target.Left != 0 {
		t.Fatalf("expected left=0 (200 + (400-800)/2), got %v", target.Left)
	}
	if target.Top != 1200 {
		t.Fatalf("expected top=1200, got %v", target.Top)
	}
}

func TestCenterOffsetOversizedPage(t *testing.T) {
	viewport := Metrics{ClientWidth: 800, ClientHeight: 600}
	page := Metrics{OffsetTop: 2000, OffsetLeft: 0, ClientWidth: 1000, ClientHeight: 1400}

	target := CenterOffset(viewport, page)
	if target.Top != 2400 {
		t.Fatalf("expected top=2400 (2000 + (1400-600)/2), got %v", target.Top)
	}
	if target.Left != 100 {
		t.Fatalf("expected left=100 (0 + (1000-800)/2), got %v", target.Left)
	}
}

func TestCenterOffsetShortPage(t *testing.T) {
	viewport := Metrics{ClientWidth: 800, ClientHeight: 600}
	page := Metrics{OffsetTop: 600, OffsetLeft: 0, ClientWidth: 800, ClientHeight: 400}

	target := CenterOffset(viewport, page)
	if target.Top != 500 {
		t.Fatalf("expected top=500 (600 + (400-600)/2), got %v", target.Top)
	}
}
