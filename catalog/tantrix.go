package catalog

import (
	"sync"

	"tantrixfinder/palette"
)

// tantrixSequences lists the tiles in tile number order (tile 1 first), read
// counter-clockwise. Codes: 1 blue, 2 yellow, 3 red, 4 green.
var tantrixSequences = [...]string{
	"112323", "212313", "131322", "112332", "131223", "121332", "113232",
	"112233", "121323", "113223", "131232", "221331", "113322", "121233",
	"232344", "242343", "224343", "332442", "223434", "242433", "232443",
	"223344", "323424", "223443", "232434", "224334", "224433", "242334",
	"114343", "313414", "131344", "114334", "131443", "141334", "113434",
	"114433", "141343", "113443", "131434", "331441", "113344", "141433",
	"112424", "212414", "141422", "112442", "141224", "121442", "114242",
	"112244", "121424", "114224", "141242", "221441", "114422", "121244",
}

var (
	tantrixOnce    sync.Once
	tantrixCatalog *Catalog
)

// Tantrix returns the built-in catalog of the 56 tiles. It is built and
// validated on first use; a corrupt table is a programming error and panics.
func Tantrix() *Catalog {
	tantrixOnce.Do(func() {
		entries := make([]Entry, len(tantrixSequences))
		for i, s := range tantrixSequences {
			entries[i] = Entry{Index: i + 1, Sequence: palette.MustParseSequence(s)}
		}
		c, err := New(entries)
		if err != nil {
			panic(err)
		}
		tantrixCatalog = c
	})
	return tantrixCatalog
}
