package schema

// NovelTable represents the 'novel' table
type NovelTable struct {
	Table            string
	NovelID          string
	OriginalLanguage string
	Description      string
	Slug             string
}

// Novel is the schema definition for novel
var Novel = NovelTable{
	Table:            "novel",
	NovelID:          "novel_id",
	OriginalLanguage: "original_language",
	Description:      "description",
	Slug:             "slug",
}

func (t NovelTable) Columns() []string {
	return []string{t.NovelID, t.OriginalLanguage, t.Description, t.Slug}
}
