package entity

import "math/rand"

const (
	CardSize    = 5
	ColumnRange = 15

	MinNumber = 1
	MaxNumber = CardSize * ColumnRange

	// TotalLines - 5 rows, 5 columns and 2 diagonals.
	TotalLines = CardSize + CardSize + 2

	// WinningLines - completed lines required to win.
	WinningLines = 5

	centerCell = CardSize / 2
)

type Cell struct {
	Number int  `json:"number"`
	Free   bool `json:"free,omitempty"`
	Marked bool `json:"marked"`
}

type Card struct {
	Cells [CardSize][CardSize]Cell `json:"cells"`
}

// NewCard - generates a randomized card. Column j draws unique numbers from
// [15j+1, 15j+15]; the center cell is a pre-marked free space.
func NewCard() *Card {
	card := &Card{}

	for col := 0; col < CardSize; col++ {
		low := col*ColumnRange + 1
		taken := make(map[int]bool, CardSize)

		for row := 0; row < CardSize; row++ {
			if row == centerCell && col == centerCell {
				card.Cells[row][col] = Cell{Free: true, Marked: true}
				continue
			}

			number := low + rand.Intn(ColumnRange) //nolint: gosec // it's ok
			for taken[number] {
				number = low + rand.Intn(ColumnRange) //nolint: gosec // it's ok
			}
			taken[number] = true

			card.Cells[row][col] = Cell{Number: number}
		}
	}

	return card
}

// ApplyCalled - re-derives every mark from the called-number history.
// A cell is marked iff it is the free space or its number was called.
func (that *Card) ApplyCalled(called []int) {
	calledSet := make(map[int]bool, len(called))
	for _, number := range called {
		calledSet[number] = true
	}

	for row := 0; row < CardSize; row++ {
		for col := 0; col < CardSize; col++ {
			cell := &that.Cells[row][col]
			cell.Marked = cell.Free || calledSet[cell.Number]
		}
	}
}

// CompletedLines - counts rows, columns and diagonals where every cell is marked.
func (that *Card) CompletedLines() int {
	completed := 0

	for row := 0; row < CardSize; row++ {
		if that.isRowCompleted(row) {
			completed++
		}
	}

	for col := 0; col < CardSize; col++ {
		if that.isColumnCompleted(col) {
			completed++
		}
	}

	mainDiagonal, antiDiagonal := true, true
	for i := 0; i < CardSize; i++ {
		if !that.Cells[i][i].Marked {
			mainDiagonal = false
		}
		if !that.Cells[i][CardSize-1-i].Marked {
			antiDiagonal = false
		}
	}
	if mainDiagonal {
		completed++
	}
	if antiDiagonal {
		completed++
	}

	return completed
}

func (that *Card) isRowCompleted(row int) bool {
	for col := 0; col < CardSize; col++ {
		if !that.Cells[row][col].Marked {
			return false
		}
	}
	return true
}

func (that *Card) isColumnCompleted(col int) bool {
	for row := 0; row < CardSize; row++ {
		if !that.Cells[row][col].Marked {
			return false
		}
	}
	return true
}
