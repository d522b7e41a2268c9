package feature

import (
	"context"
	"testing"

	"github.com/rushteam/searchkit/core"
)

func TestPriceMatchIndicator(t *testing.T) {
	tests := []struct {
		name  string
		query string
		price float64
		want  float64
	}{
		{name: "cheap query low price", query: "cheap shoes", price: 50, want: 1},
		{name: "budget query low price", query: "budget laptop", price: 99.99, want: 1},
		{name: "cheap query high price", query: "cheap shoes", price: 150, want: 0},
		{name: "premium query high price", query: "premium watch", price: 500, want: 1},
		{name: "expensive query boundary", query: "expensive bag", price: 300, want: 1},
		{name: "premium query low price", query: "premium watch", price: 100, want: 0},
		{name: "no budget words", query: "red shoes", price: 50, want: 0},
		{name: "case insensitive", query: "CHEAP shoes", price: 50, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriceMatchIndicator(tt.query, tt.price); got != tt.want {
				t.Errorf("PriceMatchIndicator(%q, %v) = %v, want %v", tt.query, tt.price, got, tt.want)
			}
		})
	}
}

func TestBuildRowColumns(t *testing.T) {
	p := core.Product{ID: "p1", Category: "footwear", Price: 50}
	row := BuildRow(context.Background(), "cheap red shoes", "u1", p, 0.8, 0.6, 0.7, nil)

	for _, col := range Columns {
		if _, ok := row[col]; !ok {
			t.Errorf("row missing column %q", col)
		}
	}
	if row[ColBM25] != 0.8 || row[ColCosine] != 0.6 || row[ColHybrid] != 0.7 {
		t.Errorf("retrieval features not passed through: %v", row)
	}
	if row[ColQueryLen] != 3 {
		t.Errorf("query_length = %v, want 3", row[ColQueryLen])
	}
	if row[ColPriceMatch] != 1 {
		t.Errorf("price_match_indicator = %v, want 1", row[ColPriceMatch])
	}
	// nil provider degrades to zero, not error
	if row[ColPopularity] != 0 || row[ColCategory] != 0 {
		t.Errorf("provider-backed features should default to 0: %v", row)
	}
}

func TestBuildRowWithProvider(t *testing.T) {
	products := []core.Product{{ID: "p1", Category: "footwear"}}
	events := []core.InteractionEvent{
		{UserID: "u1", ProductID: "p1", Event: core.EventClick},
	}
	provider := BuildContext(products, events)

	p := core.Product{ID: "p1", Category: "footwear", Price: 80}
	row := BuildRow(context.Background(), "shoes", "u1", p, 0.5, 0.5, 0.5, provider)

	if row[ColPopularity] != 1.0 {
		t.Errorf("product_popularity = %v, want 1.0", row[ColPopularity])
	}
	if row[ColCategory] != 1.0 {
		t.Errorf("user_category_preference = %v, want 1.0", row[ColCategory])
	}
}

func TestToMatrix(t *testing.T) {
	rows := []Row{
		{ColBM25: 1, ColCosine: 2, ColHybrid: 3, ColPopularity: 4, ColCategory: 5, ColQueryLen: 6, ColPriceMatch: 7},
		{}, // missing keys become zeros
	}
	matrix := ToMatrix(rows)
	if len(matrix) != 2 {
		t.Fatalf("len(matrix) = %d, want 2", len(matrix))
	}
	want := []float64{1, 2, 3, 4, 5, 6, 7}
	for i, v := range want {
		if matrix[0][i] != v {
			t.Errorf("matrix[0][%d] = %v, want %v (column order contract)", i, matrix[0][i], v)
		}
	}
	for i, v := range matrix[1] {
		if v != 0 {
			t.Errorf("matrix[1][%d] = %v, want 0", i, v)
		}
	}
}
