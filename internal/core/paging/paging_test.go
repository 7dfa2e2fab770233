package paging

import (
	"errors"
	"testing"
)

func TestOffset(t *testing.T) {
	t.Parallel()

	for size := 1; size <= 30; size++ {
		for page := 1; page <= 10; page++ {
			got, err := Offset(page, size)
			if err != nil {
				t.Fatalf("Offset(%d, %d) returned error: %v", page, size, err)
			}
			if want := size * (page - 1); got != want {
				t.Fatalf("Offset(%d, %d) = %d, want %d", page, size, got, want)
			}
		}
	}
}

func TestOffset_InvalidArguments(t *testing.T) {
	t.Parallel()

	if _, err := Offset(0, 15); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
	if _, err := Offset(1, 0); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := Offset(1, MaxPageSize+1); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
}

func TestPageCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 15, 0},
		{1, 15, 1},
		{15, 15, 1},
		{16, 15, 2},
		{45, 15, 3},
	}
	for _, c := range cases {
		if got := PageCount(c.total, c.size); got != c.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", c.total, c.size, got, c.want)
		}
	}
}
