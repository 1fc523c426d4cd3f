package crawler

import (
	"slices"
	"testing"
)

func TestDiscover(t *testing.T) {
	t.Parallel()

	page := []byte(`<!DOCTYPE html>
<html>
<body>
  <a href="/ukpga/2010/15">Equality Act</a>
  <a href="contents">Relative sibling</a>
  <a href="https://external.example.com/page">External</a>
  <a href="#section-2">Fragment</a>
  <a href="mailto:clerk@example.gov">Mail</a>
  <a href="javascript:void(0)">Script</a>
  <a href="tel:+441234567890">Phone</a>
  <a href="/ukpga/2010/15">Duplicate</a>
  <a href="/ukpga/2010/15#part-1">Duplicate via fragment</a>
  <a>No href</a>
</body>
</html>`)

	d := NewDiscoverer()
	got := d.Discover("https://www.legislation.gov.uk/ukpga/2010/", page)

	want := []string{
		"https://www.legislation.gov.uk/ukpga/2010/15",
		"https://www.legislation.gov.uk/ukpga/2010/contents",
		"https://external.example.com/page",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscoverRelativeResolution(t *testing.T) {
	t.Parallel()

	page := []byte(`<a href="../2011/3">Next year</a><a href="./section/1">Section</a>`)

	d := NewDiscoverer()
	got := d.Discover("https://www.legislation.gov.uk/ukpga/2010/15", page)

	want := []string{
		"https://www.legislation.gov.uk/ukpga/2011/3",
		"https://www.legislation.gov.uk/ukpga/2010/section/1",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscoverNoLinks(t *testing.T) {
	t.Parallel()

	d := NewDiscoverer()
	if got := d.Discover("https://www.gov.uk/", []byte("<p>No anchors here.</p>")); len(got) != 0 {
		t.Errorf("Discover() = %v, want none", got)
	}
}

func TestDiscoverMalformedBase(t *testing.T) {
	t.Parallel()

	d := NewDiscoverer()
	if got := d.Discover("::bad::", []byte(`<a href="/x">x</a>`)); got != nil {
		t.Errorf("Discover() with bad base = %v, want nil", got)
	}
}

func TestDiscoverDeterministic(t *testing.T) {
	t.Parallel()

	page := []byte(`<a href="/c">c</a><a href="/a">a</a><a href="/b">b</a>`)
	d := NewDiscoverer()

	first := d.Discover("https://www.gov.uk/", page)
	for range 5 {
		if again := d.Discover("https://www.gov.uk/", page); !slices.Equal(first, again) {
			t.Fatalf("Discover() not deterministic: %v vs %v", first, again)
		}
	}
}
