package schema

// ChReleaseTable represents the 'ch_release' table
type ChReleaseTable struct {
	Table       string
	ReleaseID   string
	ReleaseDate string
	ChapterID   string
	NovelID     string
	Lang        string
	Official    string
	Title       string
	Latin       string
}

// ChRelease is the schema definition for ch_release
var ChRelease = ChReleaseTable{
	Table:       "ch_release",
	ReleaseID:   "release_id",
	ReleaseDate: "release_date",
	ChapterID:   "chapter_id",
	NovelID:     "novel_id",
	Lang:        "lang",
	Official:    "official",
	Title:       "title",
	Latin:       "latin",
}

func (t ChReleaseTable) Columns() []string {
	return []string{
		t.ReleaseID, t.ReleaseDate, t.ChapterID, t.NovelID,
		t.Lang, t.Official, t.Title, t.Latin,
	}
}
