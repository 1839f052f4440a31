package atlas

// shelfAllocator packs rectangles into horizontal shelves on one page.
// A rectangle goes to the shelf that leaves the fewest unused rows above
// it. Only the newest shelf grows taller; otherwise a new shelf opens
// below it.
type shelfAllocator struct {
	width   int
	height  int
	padding int
	shelves []shelf

	usedArea int
}

type shelf struct {
	y      int // top row
	height int // tallest rectangle so far
	x      int // next free column
}

func newShelfAllocator(width, height, padding int) *shelfAllocator {
	return &shelfAllocator{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// allocate finds space for a w×h rectangle. It returns -1, -1, false when
// the page has no room left.
func (a *shelfAllocator) allocate(w, h int) (x, y int, ok bool) {
	paddedW, paddedH := w+a.padding, h+a.padding
	if paddedW > a.width || paddedH > a.height {
		return -1, -1, false
	}

	best := a.bestShelf(paddedW, h)
	if best < 0 {
		best = a.growLast(paddedW, h)
	}
	if best < 0 {
		best = a.openShelf(h)
	}
	if best < 0 {
		return -1, -1, false
	}

	s := &a.shelves[best]
	x, y = s.x, s.y
	s.x += paddedW
	a.usedArea += w * h
	return x, y, true
}

// bestShelf returns the lowest shelf at least h tall with paddedW columns
// free, or -1.
func (a *shelfAllocator) bestShelf(paddedW, h int) int {
	best := -1
	for i, s := range a.shelves {
		if h > s.height || s.x+paddedW > a.width {
			continue
		}
		if best < 0 || s.height < a.shelves[best].height {
			best = i
		}
	}
	return best
}

func (a *shelfAllocator) growLast(paddedW, h int) int {
	n := len(a.shelves)
	if n == 0 {
		return -1
	}
	last := &a.shelves[n-1]
	if last.x+paddedW > a.width || last.y+h+a.padding > a.height {
		return -1
	}
	last.height = max(last.height, h)
	return n - 1
}

func (a *shelfAllocator) openShelf(h int) int {
	y := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		y = last.y + last.height + a.padding
	}
	if y+h+a.padding > a.height {
		return -1
	}
	a.shelves = append(a.shelves, shelf{y: y, height: h})
	return len(a.shelves) - 1
}

// utilization returns the used fraction of the page area.
func (a *shelfAllocator) utilization() float64 {
	if a.width <= 0 || a.height <= 0 {
		return 0
	}
	return float64(a.usedArea) / float64(a.width*a.height)
}
