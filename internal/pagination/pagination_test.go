package pagination

import "testing"

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		number     int
		size       int
		wantLimit  int
		wantOffset int
	}{
		{name: "first page", number: 1, size: 10, wantLimit: 10, wantOffset: 0},
		{name: "third page", number: 3, size: 10, wantLimit: 10, wantOffset: 20},
		{name: "zero page clamps to first", number: 0, size: 25, wantLimit: 25, wantOffset: 0},
		{name: "negative page clamps to first", number: -2, size: 5, wantLimit: 5, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := Paginate(tt.number, tt.size)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Fatalf("Paginate(%d, %d) = (%d, %d), want (%d, %d)",
					tt.number, tt.size, limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		total int
		size  int
		want  int
	}{
		{name: "exact fit", total: 20, size: 10, want: 2},
		{name: "partial last page", total: 21, size: 10, want: 3},
		{name: "single row", total: 1, size: 10, want: 1},
		{name: "no rows", total: 0, size: 10, want: 0},
		{name: "zero size", total: 50, size: 0, want: 0},
		{name: "negative size", total: 50, size: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalPages(tt.total, tt.size); got != tt.want {
				t.Fatalf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	page := New(2, 10, 35)
	want := Page{Number: 2, Size: 10, Total: 35, TotalPages: 4}
	if page != want {
		t.Fatalf("New(2, 10, 35) = %+v, want %+v", page, want)
	}

	page = New(0, 10, 5)
	if page.Number != 1 {
		t.Fatalf("page number not clamped: %+v", page)
	}
}
