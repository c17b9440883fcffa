package enums

import "testing"

func TestParseProductCategory(t *testing.T) {
	cases := map[string]ProductCategory{
		"Men":    ProductCategoryMen,
		"women":  ProductCategoryWomen,
		" KIDS ": ProductCategoryKids,
	}
	for input, want := range cases {
		got, err := ParseProductCategory(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s got %s", input, want, got)
		}
	}
	if _, err := ParseProductCategory("Pets"); err == nil {
		t.Fatal("expected unknown category to fail")
	}
}

func TestParseProductSize(t *testing.T) {
	got, err := ParseProductSize("xl")
	if err != nil || got != ProductSizeXL {
		t.Fatalf("expected XL, got %q err=%v", got, err)
	}
	if _, err := ParseProductSize("XXL"); err == nil {
		t.Fatal("expected XXL to be rejected")
	}
	if ProductSize("m").IsValid() {
		t.Fatal("IsValid must be exact")
	}
}

func TestProductCategoriesReturnsCopy(t *testing.T) {
	cats := ProductCategories()
	cats[0] = "Mutated"
	if ProductCategories()[0] != ProductCategoryMen {
		t.Fatal("ProductCategories must not expose the backing slice")
	}
}

func TestOrderStatus(t *testing.T) {
	if !OrderStatusPlaced.IsValid() {
		t.Fatal("placed must be valid")
	}
	if _, err := ParseOrderStatus("lost"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}
