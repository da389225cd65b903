package mapper

// GenreEntry maps a catalog category key to seed genres.
type GenreEntry struct {
	Category string
	Genres   []string
}

// genreTable is searched top to bottom and the first key contained in a
// category wins. Order is precedence: "Fantasy Fighting" maps to Fantasy.
var genreTable = []GenreEntry{
	{"Fantasy", []string{"fantasy", "folk", "celtic"}},
	{"Science Fiction", []string{"electronic", "ambient", "synth-pop"}},
	{"Economic", []string{"classical", "jazz", "lounge"}},
	{"Wargame", []string{"rock", "metal", "orchestral"}},
	{"Adventure", []string{"soundtrack", "world", "folk"}},
	{"Fighting", []string{"rock", "metal", "electronic"}},
	{"Medieval", []string{"classical", "folk", "world"}},
	{"Civilization", []string{"world", "classical", "new-age"}},
	{"Horror", []string{"dark-ambient", "industrial", "experimental"}},
	{"Party Game", []string{"pop", "dance", "funk"}},
	{"Puzzle", []string{"ambient", "classical", "jazz"}},
	{"Abstract Strategy", []string{"minimal", "ambient", "classical"}},
	{"Dice", []string{"jazz", "funk", "pop"}},
	{"Card Game", []string{"acoustic", "folk", "pop"}},
}

// GenreTable returns a copy of the lookup table in precedence order.
func GenreTable() []GenreEntry {
	out := make([]GenreEntry, len(genreTable))
	for i, e := range genreTable {
		out[i] = GenreEntry{Category: e.Category, Genres: append([]string(nil), e.Genres...)}
	}
	return out
}
